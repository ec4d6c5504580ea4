package validation

import (
	"encoding/json"
	"fmt"
	"strings"

	"impact-backend/internal/pkg/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// ParseBody unmarshals the request body into out and runs struct validation.
// Failures come back as a 400 apperror with a field-level detail list.
func ParseBody(c *fiber.Ctx, out interface{}) error {
	if err := json.Unmarshal(c.Body(), out); err != nil {
		return apperror.Validation("Invalid request body")
	}
	return Struct(out)
}

// Struct validates a struct using its validate tags.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperror.Validation("Invalid request body")
	}
	details := make([]apperror.FieldDetail, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, apperror.FieldDetail{
			Field:   fieldName(fe),
			Message: fieldMessage(fe),
		})
	}
	return apperror.Validation("Validation error", details...)
}

func fieldName(fe validator.FieldError) string {
	// StructNamespace is Type.Field[.Nested]; drop the type prefix and
	// lower-case the first letter of each segment to match the JSON keys.
	ns := fe.StructNamespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	parts := strings.Split(ns, ".")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToLower(p[:1]) + p[1:]
	}
	return strings.Join(parts, ".")
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "email":
		return "must be a valid email"
	case "gte":
		return fmt.Sprintf("must be %s or greater", fe.Param())
	case "lte":
		return fmt.Sprintf("must be %s or less", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
