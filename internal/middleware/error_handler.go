package middleware

import (
	"impact-backend/internal/pkg/apperror"
	"impact-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// ErrorHandler is the global error handler. Typed application errors map to
// their status; everything else becomes a 500 with the cause logged and
// withheld from the client.
func ErrorHandler(c *fiber.Ctx, err error) error {
	if e, ok := apperror.As(err); ok {
		return response.Error(c, e.Message, e.StatusCode, e.Details)
	}
	if e, ok := err.(*fiber.Error); ok {
		return response.Error(c, e.Message, e.Code, nil)
	}
	log.Error().Str("trace_id", GetTraceID(c)).Str("path", c.Path()).Err(err).Msg("Unhandled error")
	return response.Error(c, "Internal server error", fiber.StatusInternalServerError, nil)
}
