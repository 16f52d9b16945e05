package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-ranker/internal/models"
	"alfredoptarigan/resume-ranker/internal/services"
)

const (
	serviceName    = "Resume Ranker API"
	serviceVersion = "1.0.0"
)

type ModelHandler struct {
	model       *services.Model
	loadErr     error
	maxUpload   int64
	defaultTopK int
}

// NewModelHandler accepts a nil model together with the error that prevented
// loading it.
func NewModelHandler(model *services.Model, loadErr error, maxUpload int64, defaultTopK int) *ModelHandler {
	return &ModelHandler{
		model:       model,
		loadErr:     loadErr,
		maxUpload:   maxUpload,
		defaultTopK: defaultTopK,
	}
}

// HandleCategories handles GET /categories
func (h *ModelHandler) HandleCategories(c *fiber.Ctx) error {
	categories := h.model.Categories()
	return c.JSON(models.CategoriesResponse{
		TotalCategories: len(categories),
		Categories:      categories,
	})
}

// HandleHealth handles GET /health
func (h *ModelHandler) HandleHealth(c *fiber.Ctx) error {
	now := time.Now().UTC().Format(time.RFC3339)

	if h.model == nil {
		resp := models.HealthResponse{
			Status:      "unavailable",
			ModelLoaded: false,
			Error:       "model artifacts are not loaded",
			Time:        now,
		}
		if h.loadErr != nil {
			resp.Error = h.loadErr.Error()
		}
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}

	info := h.model.Info()
	return c.JSON(models.HealthResponse{
		Status:      "healthy",
		ModelLoaded: true,
		Model:       &info,
		Time:        now,
	})
}

// HandleInfo handles GET /
func (h *ModelHandler) HandleInfo(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": serviceName,
		"version": serviceVersion,
		"endpoints": []string{
			"POST /classify",
			"POST /classify/export",
			"GET /categories",
			"GET /health",
		},
		"supported_formats": services.SupportedExtensions,
		"max_upload_size":   h.maxUpload,
		"default_top_k":     h.defaultTopK,
		"categories":        len(h.model.Categories()),
	})
}
