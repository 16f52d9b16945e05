package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"

	"alfredoptarigan/resume-ranker/internal/apperr"
	"alfredoptarigan/resume-ranker/internal/models"
)

// respondError writes a coded error as JSON with the matching HTTP status.
func respondError(c *fiber.Ctx, err error) error {
	code := apperr.CodeOf(err)

	message := "internal server error"
	var coded *apperr.Error
	switch {
	case errors.As(err, &coded):
		message = coded.Message()
	case code == apperr.CodeTimeout:
		message = "request timed out"
	}

	return c.Status(apperr.HTTPStatus(code)).JSON(models.ErrorResponse{
		Error: message,
		Code:  code.String(),
	})
}

// ErrorHandler renders errors returned from handlers and fiber itself.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(models.ErrorResponse{
				Error: fe.Message,
				Code:  statusCode(fe.Code),
			})
		}

		if apperr.CodeOf(err) == apperr.CodeInternal && log != nil {
			log.Error("unhandled error",
				zap.String("path", c.Path()),
				zap.Error(err))
		}
		return respondError(c, err)
	}
}

// statusCode turns an HTTP status into an upper-case code such as NOT_FOUND.
func statusCode(status int) string {
	msg := utils.StatusMessage(status)
	if msg == "" {
		return apperr.CodeInternal.String()
	}
	return strings.ToUpper(strings.ReplaceAll(msg, " ", "_"))
}
