package apperror

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Error is the typed application error carried from services to the HTTP
// boundary. The global error handler maps it to a status deterministically;
// anything that is not an *Error becomes a 500 with the cause logged only.
type Error struct {
	StatusCode int         `json:"statusCode"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// FieldDetail is one entry of a validation detail list.
type FieldDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func New(statusCode int, message string) *Error {
	return &Error{StatusCode: statusCode, Message: message}
}

// Validation is a 400 for malformed or missing input, with optional
// field-level details.
func Validation(message string, details ...FieldDetail) *Error {
	e := &Error{StatusCode: fiber.StatusBadRequest, Message: message}
	if len(details) > 0 {
		e.Details = details
	}
	return e
}

// Unauthorized is a 401 for a missing or invalid credential.
func Unauthorized(message string) *Error {
	return New(fiber.StatusUnauthorized, message)
}

// Forbidden is a 403 for an authenticated caller lacking role or scope.
func Forbidden(message string) *Error {
	return New(fiber.StatusForbidden, message)
}

// NotFound is a 404.
func NotFound(message string) *Error {
	return New(fiber.StatusNotFound, message)
}

// Conflict is a 409 for duplicate unique keys and blocked deletes.
func Conflict(message string) *Error {
	return New(fiber.StatusConflict, message)
}

// ConflictDetails is Conflict with extra context (e.g. child counts).
func ConflictDetails(message string, details interface{}) *Error {
	return &Error{StatusCode: fiber.StatusConflict, Message: message, Details: details}
}

// InvalidState is a 400 for a lifecycle transition the current status does
// not permit.
func InvalidState(message string) *Error {
	return New(fiber.StatusBadRequest, message)
}

// Internal is a 500 with a generic message; the cause stays server-side.
func Internal(message string) *Error {
	return New(fiber.StatusInternalServerError, message)
}

// As unwraps err into an *Error when possible.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
