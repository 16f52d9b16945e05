package handlers

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/resume-ranker/internal/apperr"
	"alfredoptarigan/resume-ranker/internal/logger"
	"alfredoptarigan/resume-ranker/internal/models"
	"alfredoptarigan/resume-ranker/internal/services"
)

// Multipart form fields of a ranking request.
const (
	fieldJobCircular   = "job_circular"
	fieldResumeFiles   = "resume_files"
	fieldTopK          = "top_k"
	fieldSkills        = "skills"
	fieldMinExperience = "min_experience"
)

type ClassifyHandler struct {
	pipeline    services.Pipeline
	uploads     services.UploadService
	defaultTopK int
	log         *zap.Logger
}

func NewClassifyHandler(
	pipeline services.Pipeline,
	uploads services.UploadService,
	defaultTopK int,
	log *zap.Logger,
) *ClassifyHandler {
	return &ClassifyHandler{
		pipeline:    pipeline,
		uploads:     uploads,
		defaultTopK: defaultTopK,
		log:         logger.OrNop(log),
	}
}

// HandleClassify handles POST /classify
func (h *ClassifyHandler) HandleClassify(c *fiber.Ctx) error {
	req, result, err := h.rank(c)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(services.BuildRankingResponse(req, result))
}

// HandleExport handles POST /classify/export
func (h *ClassifyHandler) HandleExport(c *fiber.Ctx) error {
	req, result, err := h.rank(c)
	if err != nil {
		return respondError(c, err)
	}

	now := time.Now()
	var buf bytes.Buffer
	if err := services.ExportRankingXLSX(&buf, services.BuildRankingResponse(req, result), now); err != nil {
		return respondError(c, apperr.Wrap(err, apperr.CodeInternal, "failed to build workbook"))
	}

	c.Attachment(fmt.Sprintf("resume-ranking-%s.xlsx", now.Format("20060102-150405")))
	return c.Send(buf.Bytes())
}

func (h *ClassifyHandler) rank(c *fiber.Ctx) (models.RankingRequest, *services.RankingResult, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return models.RankingRequest{}, nil, apperr.New(apperr.CodeInvalidParameter, "failed to parse multipart form")
	}

	req, files, err := h.parseForm(form)
	if err != nil {
		return req, nil, err
	}

	req.Documents, err = h.uploads.ReadUploads(files)
	if err != nil {
		return req, nil, err
	}

	result, err := h.pipeline.Run(c.UserContext(), req)
	if err != nil {
		return req, nil, err
	}
	return req, result, nil
}

func (h *ClassifyHandler) parseForm(form *multipart.Form) (models.RankingRequest, []*multipart.FileHeader, error) {
	req := models.RankingRequest{
		JobCircular: strings.TrimSpace(formValue(form, fieldJobCircular)),
		TopK:        h.defaultTopK,
		Skills:      services.ParseSkills(formValue(form, fieldSkills)),
	}
	if req.JobCircular == "" {
		return req, nil, apperr.New(apperr.CodeInvalidParameter, "job_circular is required")
	}

	files := form.File[fieldResumeFiles]
	if len(files) == 0 {
		return req, nil, apperr.New(apperr.CodeEmptyBatch, "at least one resume file is required")
	}

	if raw := strings.TrimSpace(formValue(form, fieldTopK)); raw != "" {
		topK, err := strconv.Atoi(raw)
		if err != nil || topK < 1 {
			return req, nil, apperr.Newf(apperr.CodeInvalidParameter, "top_k must be a positive integer, got %q", raw)
		}
		req.TopK = topK
	}

	if raw := strings.TrimSpace(formValue(form, fieldMinExperience)); raw != "" {
		years, err := strconv.Atoi(raw)
		if err != nil || years < 0 {
			return req, nil, apperr.Newf(apperr.CodeInvalidParameter, "min_experience must be a non-negative integer, got %q", raw)
		}
		if years > 0 {
			req.MinExperience = &years
		}
	}

	return req, files, nil
}

func formValue(form *multipart.Form, key string) string {
	if values := form.Value[key]; len(values) > 0 {
		return values[0]
	}
	return ""
}
