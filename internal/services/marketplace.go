package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bobby-s-dev/farmlens/internal/models"
	"github.com/bobby-s-dev/farmlens/internal/storage"
	"go.uber.org/zap"
)

var (
	ErrProfileNotFound = errors.New("marketplace profile not found")
	ErrInvalidProfile  = errors.New("invalid marketplace profile")
)

func ProfileKey(ownerID string) string {
	return "marketplace_profile:" + ownerID
}

// MarketplaceService stores one shop profile per owner.
type MarketplaceService struct {
	repo   storage.Repository
	logger *zap.Logger
	now    func() time.Time

	// serialises the read of CreatedAt with the write
	mu sync.Mutex
}

func NewMarketplaceService(repo storage.Repository, logger *zap.Logger) *MarketplaceService {
	return &MarketplaceService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

func (s *MarketplaceService) Get(ctx context.Context, ownerID string) (*models.MarketplaceProfile, error) {
	data, err := s.repo.Get(ctx, ProfileKey(ownerID))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	var profile models.MarketplaceProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	return &profile, nil
}

// Save writes the profile. CreatedAt is stamped on the first save and kept
// on later ones.
func (s *MarketplaceService) Save(ctx context.Context, profile models.MarketplaceProfile) (*models.MarketplaceProfile, error) {
	profile.OwnerID = strings.TrimSpace(profile.OwnerID)
	profile.ShopName = strings.TrimSpace(profile.ShopName)
	if profile.OwnerID == "" {
		return nil, fmt.Errorf("%w: owner id is required", ErrInvalidProfile)
	}
	if profile.ShopName == "" {
		return nil, fmt.Errorf("%w: shop name is required", ErrInvalidProfile)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.Get(ctx, profile.OwnerID)
	switch {
	case err == nil:
		profile.CreatedAt = existing.CreatedAt
	case errors.Is(err, ErrProfileNotFound):
		profile.CreatedAt = s.now().UTC()
	default:
		return nil, err
	}

	data, err := json.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("failed to encode profile: %w", err)
	}
	if err := s.repo.Set(ctx, ProfileKey(profile.OwnerID), data); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	s.logger.Info("Marketplace profile saved",
		zap.String("owner_id", profile.OwnerID),
		zap.String("shop_name", profile.ShopName))

	return &profile, nil
}
