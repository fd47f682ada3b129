package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/bobby-s-dev/farmlens/internal/content"
	"github.com/bobby-s-dev/farmlens/internal/models"
	"github.com/bobby-s-dev/farmlens/internal/services"
	"github.com/bobby-s-dev/farmlens/pkg/client"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const maxImageBytes = 8 << 20

type StatusReporter interface {
	GetStatus() map[string]interface{}
}

// Services bundles everything the handlers call into.
type Services struct {
	Upstream    *services.UpstreamService
	Chat        *services.ChatService
	Journal     *services.JournalService
	Marketplace *services.MarketplaceService
	Detector    services.Detector
	Content     *content.Catalogue
	Scheduler   StatusReporter
}

type Handler struct {
	svc    Services
	logger *zap.Logger
}

func NewHandler(svc Services, logger *zap.Logger) *Handler {
	return &Handler{
		svc:    svc,
		logger: logger,
	}
}

func sendRawJSON(c *fiber.Ctx, data []byte) error {
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(fiber.StatusOK).Send(data)
}

// GetBMKG handles GET /api/bmkg
func (h *Handler) GetBMKG(c *fiber.Ctx) error {
	data, err := h.svc.Upstream.Forecast(c.UserContext())
	if err != nil {
		h.logger.Error("Failed to fetch BMKG forecast", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch weather data",
		})
	}
	return sendRawJSON(c, data)
}

// Wilayah handles /api/wilayah?path=...
func (h *Handler) Wilayah(c *fiber.Ctx) error {
	c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
	c.Set(fiber.HeaderAccessControlAllowMethods, "GET,OPTIONS")
	c.Set(fiber.HeaderAccessControlAllowHeaders, "Content-Type")

	switch c.Method() {
	case fiber.MethodOptions:
		return c.Status(fiber.StatusOK).Send(nil)
	case fiber.MethodGet:
	default:
		return c.Status(fiber.StatusMethodNotAllowed).JSON(fiber.Map{
			"error": "Method not allowed",
		})
	}

	path := c.Query("path")
	if path == "" {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "Wilayah proxy is running",
			"examples": []string{
				"/api/wilayah?path=provinces.json",
				"/api/wilayah?path=regencies/32.json",
				"/api/wilayah?path=districts/32.73.json",
				"/api/wilayah?path=villages/32.73.01.json",
			},
		})
	}

	if !services.ValidRegionPath(path) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Invalid path",
			"allowed": services.RegionPathPatterns,
		})
	}

	data, err := h.svc.Upstream.Region(c.UserContext(), path)
	if err != nil {
		h.logger.Error("Failed to fetch region data",
			zap.String("path", path),
			zap.Error(err))

		body := fiber.Map{"error": "Failed to fetch region data"}
		if code, ok := client.UpstreamStatus(err); ok {
			body["status"] = code
		}
		return c.Status(fiber.StatusInternalServerError).JSON(body)
	}

	return sendRawJSON(c, data)
}

type chatRequest struct {
	Messages json.RawMessage `json:"messages"`
}

// Chat handles POST /api/chat
func (h *Handler) Chat(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodPost {
		return c.Status(fiber.StatusMethodNotAllowed).JSON(fiber.Map{
			"error": "Method not allowed",
		})
	}

	var req chatRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	trimmed := bytes.TrimSpace(req.Messages)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "messages must be an array",
		})
	}

	var messages []models.ChatMessage
	if err := json.Unmarshal(trimmed, &messages); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "messages must be an array of {role, content}",
		})
	}

	reply, err := h.svc.Chat.Reply(c.UserContext(), messages)
	if errors.Is(err, services.ErrEmptyConversation) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "messages must not be empty",
		})
	}
	if err != nil {
		h.logger.Error("Chat reply failed",
			zap.Int("messages", len(messages)),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": services.ChatErrorMessage,
		})
	}

	return c.JSON(fiber.Map{"reply": reply})
}

// GetAdvisory handles GET /api/weather/advisory
func (h *Handler) GetAdvisory(c *fiber.Ctx) error {
	crop := c.Query("crop")

	payload, err := h.svc.Upstream.ForecastPayload(c.UserContext())
	if err != nil {
		h.logger.Error("Failed to build weather advisory",
			zap.String("crop", crop),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status": "failure",
			"error":  "Failed to fetch weather data",
		})
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"data":   services.BuildAdvisory(payload, crop),
	})
}

// GetHarvest handles GET /api/harvest
func (h *Handler) GetHarvest(c *fiber.Ctx) error {
	predictions := services.HarvestPredictions()
	return c.JSON(fiber.Map{
		"predictions": predictions,
		"summary":     services.SummarizeHarvest(predictions),
	})
}

// DetectDisease handles POST /api/disease/detect
func (h *Handler) DetectDisease(c *fiber.Ctx) error {
	file, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "image file is required",
		})
	}
	if !strings.HasPrefix(file.Header.Get(fiber.HeaderContentType), "image/") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "uploaded file must be an image",
		})
	}
	if file.Size > maxImageBytes {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "image is too large",
		})
	}

	f, err := file.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	image, err := io.ReadAll(io.LimitReader(f, maxImageBytes))
	if err != nil {
		return err
	}

	result, err := h.svc.Detector.Detect(c.UserContext(), image)
	if err != nil {
		h.logger.Error("Disease detection failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to analyze image",
		})
	}

	return c.JSON(result)
}

// ListJournal handles GET /api/journal
func (h *Handler) ListJournal(c *fiber.Ctx) error {
	entries, err := h.svc.Journal.List(c.UserContext())
	if err != nil {
		h.logger.Error("Failed to list journal", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load journal",
		})
	}
	return c.JSON(fiber.Map{"entries": entries})
}

// AddJournalEntry handles POST /api/journal
func (h *Handler) AddJournalEntry(c *fiber.Ctx) error {
	var entry models.JournalEntry
	if err := json.Unmarshal(c.Body(), &entry); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	saved, err := h.svc.Journal.Add(c.UserContext(), entry)
	if errors.Is(err, services.ErrInvalidEntry) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if err != nil {
		h.logger.Error("Failed to save journal entry", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save journal entry",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(saved)
}

// GetJournalGroups handles GET /api/journal/groups
func (h *Handler) GetJournalGroups(c *fiber.Ctx) error {
	groups, err := h.svc.Journal.Groups(c.UserContext(), c.Query("locale", "id"))
	if err != nil {
		h.logger.Error("Failed to group journal", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load journal",
		})
	}
	return c.JSON(fiber.Map{"groups": groups})
}

// GetProfile handles GET /api/marketplace/profiles/:ownerId
func (h *Handler) GetProfile(c *fiber.Ctx) error {
	profile, err := h.svc.Marketplace.Get(c.UserContext(), c.Params("ownerId"))
	if errors.Is(err, services.ErrProfileNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Profile not found",
		})
	}
	if err != nil {
		h.logger.Error("Failed to load profile", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load profile",
		})
	}
	return c.JSON(profile)
}

// PutProfile handles PUT /api/marketplace/profiles/:ownerId
func (h *Handler) PutProfile(c *fiber.Ctx) error {
	var profile models.MarketplaceProfile
	if err := json.Unmarshal(c.Body(), &profile); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	profile.OwnerID = c.Params("ownerId")

	saved, err := h.svc.Marketplace.Save(c.UserContext(), profile)
	if errors.Is(err, services.ErrInvalidProfile) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if err != nil {
		h.logger.Error("Failed to save profile", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save profile",
		})
	}
	return c.JSON(saved)
}

// GetContent handles GET /api/content
func (h *Handler) GetContent(c *fiber.Ctx) error {
	items := h.svc.Content.Filter(content.Query{
		Kind:     c.Query("kind"),
		Category: c.Query("category"),
		Tag:      c.Query("tag"),
		Search:   c.Query("q"),
	})

	return c.JSON(fiber.Map{
		"items":      items,
		"count":      len(items),
		"categories": h.svc.Content.Categories(),
		"tags":       h.svc.Content.Tags(),
	})
}

// GetContentItem handles GET /api/content/:slug
func (h *Handler) GetContentItem(c *fiber.Ctx) error {
	item, ok := h.svc.Content.BySlug(c.Params("slug"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Content not found",
		})
	}
	return c.JSON(item)
}

// GetHealth handles GET /api/health
func (h *Handler) GetHealth(c *fiber.Ctx) error {
	health := fiber.Map{
		"status":     "healthy",
		"timestamp":  time.Now(),
		"last_fetch": h.svc.Upstream.GetLastFetchTime(),
		"uptime":     time.Since(startTime).String(),
		"stats":      h.svc.Upstream.GetStats(),
	}
	if h.svc.Scheduler != nil {
		health["scheduler"] = h.svc.Scheduler.GetStatus()
	}
	return c.JSON(health)
}

var startTime = time.Now()
