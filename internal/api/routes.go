package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
)

func SetupRoutes(app *fiber.App, handler *Handler, log *zap.Logger) {
	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		// the region proxy answers its own preflight
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/wilayah")
		},
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,OPTIONS",
		AllowHeaders: "Content-Type",
	}))

	app.Use(logger.New(logger.Config{
		Format:     "${time} ${pid} ${locals:requestid} ${status} - ${method} ${path}\n",
		TimeFormat: time.RFC3339,
	}))

	api := app.Group("/api")

	api.Get("/health", handler.GetHealth)

	// Upstream proxies
	api.Get("/bmkg", handler.GetBMKG)
	api.All("/wilayah", handler.Wilayah)
	api.All("/chat", handler.Chat)

	// Dashboard
	api.Get("/weather/advisory", handler.GetAdvisory)
	api.Get("/harvest", handler.GetHarvest)
	api.Post("/disease/detect", handler.DetectDisease)

	journal := api.Group("/journal")
	journal.Get("/", handler.ListJournal)
	journal.Post("/", handler.AddJournalEntry)
	journal.Get("/groups", handler.GetJournalGroups)

	marketplace := api.Group("/marketplace")
	marketplace.Get("/profiles/:ownerId", handler.GetProfile)
	marketplace.Put("/profiles/:ownerId", handler.PutProfile)

	api.Get("/content", handler.GetContent)
	api.Get("/content/:slug", handler.GetContentItem)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Endpoint not found",
			"path":  c.Path(),
		})
	})

	log.Info("Routes registered")
}
