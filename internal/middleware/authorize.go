package middleware

import (
	"impact-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// RequireRoles allows the request through only when the principal's role is
// one of roles. Must run after Authenticate.
func RequireRoles(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := GetPrincipal(c)
		if p == nil {
			return response.Error(c, "Authentication required", fiber.StatusUnauthorized, nil)
		}
		for _, r := range roles {
			if p.Role == r {
				return c.Next()
			}
		}
		return response.Error(c, "Insufficient permissions", fiber.StatusForbidden, nil)
	}
}
