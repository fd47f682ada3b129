package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bobby-s-dev/farmlens/internal/api"
	"github.com/bobby-s-dev/farmlens/internal/config"
	"github.com/bobby-s-dev/farmlens/internal/content"
	"github.com/bobby-s-dev/farmlens/internal/scheduler"
	"github.com/bobby-s-dev/farmlens/internal/services"
	"github.com/bobby-s-dev/farmlens/internal/storage"
	"github.com/bobby-s-dev/farmlens/pkg/client"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Journal entries carry their photo inline as a data URI.
const bodyLimit = 10 * 1024 * 1024

func main() {
	// Initialize logger
	logger := newLogger(os.Getenv("LOG_LEVEL"))
	defer logger.Sync()

	zap.ReplaceGlobals(logger)
	logger.Info("Starting FarmLens API")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	clientConfig := client.ClientConfig{
		Timeout:        cfg.Upstream.Timeout,
		MaxRetries:     cfg.Retry.MaxRetries,
		RetryDelay:     cfg.Retry.Delay,
		Multiplier:     cfg.Retry.Multiplier,
		Threshold:      cfg.CircuitBreaker.Threshold,
		BreakerTimeout: cfg.CircuitBreaker.Timeout,
	}

	cache := services.NewResponseCache(cfg.Cache.Duration, cfg.Cache.MaxSize, logger)
	defer cache.Stop()

	upstream := services.NewUpstreamService(
		client.NewBMKGClient(cfg.Upstream.BMKGURL, cfg.Upstream.BMKGAdm4, clientConfig, logger),
		client.NewWilayahClient(cfg.Upstream.WilayahURL, clientConfig, logger),
		cache,
		logger,
	)

	store, err := storage.NewSQLiteStore(cfg.Storage.Path)
	if err != nil {
		logger.Fatal("Failed to open storage", zap.String("path", cfg.Storage.Path), zap.Error(err))
	}
	defer store.Close()

	catalogue, err := content.Load()
	if err != nil {
		logger.Fatal("Failed to load content catalogue", zap.Error(err))
	}

	chat := newChatService(cfg, logger)

	weatherScheduler := scheduler.NewScheduler(upstream, cfg.Scheduler.WeatherRefresh, cfg.Upstream.Timeout, logger)

	// Create Fiber app
	app := newApp(cfg)

	// Setup handlers and routes
	handler := api.NewHandler(api.Services{
		Upstream:    upstream,
		Chat:        chat,
		Journal:     services.NewJournalService(store, logger),
		Marketplace: services.NewMarketplaceService(store, logger),
		Detector:    services.NewMockDetector(cfg.Disease.MockDelay, logger),
		Content:     catalogue,
		Scheduler:   weatherScheduler,
	}, logger)
	api.SetupRoutes(app, handler, logger)

	if err := weatherScheduler.Start(); err != nil {
		logger.Fatal("Failed to start scheduler", zap.Error(err))
	}

	// Start server in goroutine
	go func() {
		addr := ":" + cfg.Server.Port
		logger.Info("Starting server", zap.String("address", addr))

		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	weatherScheduler.Stop()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}

	logger.Info("Server stopped")
}

func newApp(cfg *config.Config) *fiber.App {
	return fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		BodyLimit:    bodyLimit,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ErrorHandler: errorHandler,
	})
}

func newLogger(level string) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if level == "debug" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// newChatService wires the Gemini model when a key is configured. Without
// one the chat endpoint still answers, with its generic error.
func newChatService(cfg *config.Config, logger *zap.Logger) *services.ChatService {
	chatConfig := services.ChatConfig{
		APIKey:    cfg.Chat.GeminiAPIKey,
		Model:     cfg.Chat.Model,
		RateLimit: cfg.Chat.RateLimit,
		RateBurst: cfg.Chat.RateBurst,
	}

	model, err := services.NewGeminiModel(context.Background(), chatConfig)
	if err != nil {
		if errors.Is(err, services.ErrChatUnavailable) {
			logger.Warn("GEMINI_API_KEY not set, chat is disabled")
		} else {
			logger.Error("Failed to initialize chat model", zap.Error(err))
		}
		return services.NewChatService(nil, logger)
	}

	logger.Info("Gemini chat model initialized",
		zap.String("model", chatConfig.Model),
		zap.Float64("rate_limit", chatConfig.RateLimit))
	limited := services.NewRateLimitedModel(model, chatConfig.RateLimit, chatConfig.RateBurst)
	return services.NewChatService(limited, logger)
}

func errorHandler(c *fiber.Ctx, err error) error {
	zap.L().Error("HTTP error",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err))

	// Default to 500 status code
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	// Check if it's a Fiber error
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   message,
		"success": false,
	})
}
