package middleware

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"impact-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const (
	principalLocal = "user"

	// TokenRedisPrefix is the key prefix for issued bearer tokens. Exported
	// so the auth service can issue and revoke with the same keys.
	TokenRedisPrefix = "token:"

	// TokenTTL is how long an issued token stays valid.
	TokenTTL = 24 * time.Hour
)

// Principal is the authenticated caller attached to each request. It is the
// JSON shape stored in Redis under the bearer token.
type Principal struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

// Authenticate resolves the Authorization bearer token against Redis and
// stores the principal in Locals. 401 when missing, unknown or expired.
func Authenticate(rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(header, "Bearer ") {
			return response.Error(c, "No token provided", fiber.StatusUnauthorized, nil)
		}
		token := strings.TrimSpace(header[len("Bearer "):])
		if token == "" {
			return response.Error(c, "No token provided", fiber.StatusUnauthorized, nil)
		}

		b, err := rdb.Get(context.Background(), TokenRedisPrefix+token).Bytes()
		if err != nil {
			return response.Error(c, "Invalid token", fiber.StatusUnauthorized, nil)
		}
		var p Principal
		if err := json.Unmarshal(b, &p); err != nil || p.UserID == "" {
			return response.Error(c, "Invalid token", fiber.StatusUnauthorized, nil)
		}

		c.Locals(principalLocal, &p)
		c.Locals("token", token)
		return c.Next()
	}
}

// GetPrincipal returns the authenticated principal, or nil outside an
// authenticated route.
func GetPrincipal(c *fiber.Ctx) *Principal {
	p, _ := c.Locals(principalLocal).(*Principal)
	return p
}

// GetToken returns the raw bearer token for the current request.
func GetToken(c *fiber.Ctx) string {
	t, _ := c.Locals("token").(string)
	return t
}
