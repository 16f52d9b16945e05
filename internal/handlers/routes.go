package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/resume-ranker/internal/services"
)

type AppConfig struct {
	BodyLimit    int64
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// NewApp builds the fiber app with middleware and routes.
func NewApp(cfg AppConfig, model *services.Model, classify *ClassifyHandler, info *ModelHandler, log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      serviceName,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		BodyLimit:    int(cfg.BodyLimit),
		ErrorHandler: ErrorHandler(log),
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(RequestLogger(log))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	// Health stays reachable without a model
	app.Get("/health", info.HandleHealth)

	requireModel := RequireModel(model)
	app.Get("/", requireModel, info.HandleInfo)
	app.Get("/categories", requireModel, info.HandleCategories)
	app.Post("/classify", requireModel, classify.HandleClassify)
	app.Post("/classify/export", requireModel, classify.HandleExport)

	return app
}
