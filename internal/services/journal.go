package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bobby-s-dev/farmlens/internal/models"
	"github.com/bobby-s-dev/farmlens/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	JournalKey = "farmlens_journal"

	unknownMonthKey = "unknown"
	isoDate         = "2006-01-02"
)

var ErrInvalidEntry = errors.New("invalid journal entry")

var monthNames = map[string][12]string{
	"id": {"Januari", "Februari", "Maret", "April", "Mei", "Juni",
		"Juli", "Agustus", "September", "Oktober", "November", "Desember"},
	"en": {"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December"},
}

var unknownLabels = map[string]string{
	"id": "Tanpa tanggal",
	"en": "Undated",
}

func normalizeLocale(locale string) string {
	locale = strings.ToLower(locale)
	if i := strings.IndexAny(locale, "-_"); i >= 0 {
		locale = locale[:i]
	}
	if _, ok := monthNames[locale]; ok {
		return locale
	}
	return "id"
}

// MonthLabel renders a YYYY-MM key for display, e.g. "Januari 2026".
func MonthLabel(key, locale string) string {
	locale = normalizeLocale(locale)
	month, err := time.Parse("2006-01", key)
	if err != nil {
		return unknownLabels[locale]
	}
	return fmt.Sprintf("%s %d", monthNames[locale][month.Month()-1], month.Year())
}

func monthKey(date string) string {
	if len(date) < 7 {
		return unknownMonthKey
	}
	if _, err := time.Parse("2006-01", date[:7]); err != nil {
		return unknownMonthKey
	}
	return date[:7]
}

// GroupJournalByMonth partitions entries into calendar-month groups, newest
// month first. Entries keep their input order inside a group.
func GroupJournalByMonth(entries []models.JournalEntry, locale string) []models.JournalMonthGroup {
	index := make(map[string]int)
	groups := make([]models.JournalMonthGroup, 0)

	for _, entry := range entries {
		key := monthKey(entry.Date)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, models.JournalMonthGroup{
				Key:   key,
				Label: MonthLabel(key, locale),
			})
		}
		groups[i].Entries = append(groups[i].Entries, entry)
	}

	sort.SliceStable(groups, func(a, b int) bool {
		if groups[a].Key == unknownMonthKey {
			return false
		}
		if groups[b].Key == unknownMonthKey {
			return true
		}
		return groups[a].Key > groups[b].Key
	})

	return groups
}

// JournalService keeps the photo journal as one JSON array under JournalKey.
type JournalService struct {
	repo   storage.Repository
	logger *zap.Logger
	now    func() time.Time

	// serialises read-modify-write of the array
	mu sync.Mutex
}

func NewJournalService(repo storage.Repository, logger *zap.Logger) *JournalService {
	return &JournalService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

func (s *JournalService) List(ctx context.Context) ([]models.JournalEntry, error) {
	data, err := s.repo.Get(ctx, JournalKey)
	if errors.Is(err, storage.ErrNotFound) {
		return []models.JournalEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load journal: %w", err)
	}

	var entries []models.JournalEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode journal: %w", err)
	}
	if entries == nil {
		entries = []models.JournalEntry{}
	}
	return entries, nil
}

// Add validates and appends a new entry. ID is always assigned here; an
// empty date defaults to today.
func (s *JournalService) Add(ctx context.Context, entry models.JournalEntry) (models.JournalEntry, error) {
	entry.Description = strings.TrimSpace(entry.Description)
	if entry.Date == "" {
		entry.Date = s.now().Format(isoDate)
	}
	if _, err := time.Parse(isoDate, entry.Date); err != nil {
		return models.JournalEntry{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidEntry)
	}
	if !strings.HasPrefix(entry.Image, "data:image/") {
		return models.JournalEntry{}, fmt.Errorf("%w: image must be a data:image/ URI", ErrInvalidEntry)
	}
	entry.ID = uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.List(ctx)
	if err != nil {
		return models.JournalEntry{}, err
	}
	entries = append(entries, entry)

	data, err := json.Marshal(entries)
	if err != nil {
		return models.JournalEntry{}, fmt.Errorf("failed to encode journal: %w", err)
	}
	if err := s.repo.Set(ctx, JournalKey, data); err != nil {
		return models.JournalEntry{}, fmt.Errorf("failed to save journal: %w", err)
	}

	s.logger.Info("Journal entry saved",
		zap.String("id", entry.ID),
		zap.String("date", entry.Date),
		zap.Int("total", len(entries)))

	return entry, nil
}

func (s *JournalService) Groups(ctx context.Context, locale string) ([]models.JournalMonthGroup, error) {
	entries, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return GroupJournalByMonth(entries, locale), nil
}
