package auth

import (
	"impact-backend/internal/middleware"
	"impact-backend/internal/pkg/apperror"
	"impact-backend/internal/pkg/response"
	"impact-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *Service
}

func (h *Handlers) Login(c *fiber.Ctx) error {
	var in LoginInput
	if err := validation.ParseBody(c, &in); err != nil {
		return err
	}
	result, err := h.Service.Login(c.Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

func (h *Handlers) Me(c *fiber.Ctx) error {
	p := middleware.GetPrincipal(c)
	if p == nil {
		return apperror.Unauthorized("Authentication required")
	}
	userID, err := uuid.Parse(p.UserID)
	if err != nil {
		return apperror.Unauthorized("Invalid token")
	}
	user, err := h.Service.Me(c.Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

func (h *Handlers) Logout(c *fiber.Ctx) error {
	token := middleware.GetToken(c)
	if token == "" {
		return apperror.Unauthorized("Authentication required")
	}
	if err := h.Service.Logout(c.Context(), token); err != nil {
		return err
	}
	return response.Message(c, "Logged out successfully")
}
