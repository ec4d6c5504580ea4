package users

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

func paramID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, apperror.Validation("Invalid user id")
	}
	return id, nil
}

func principalID(c *fiber.Ctx) (uuid.UUID, error) {
	p := middleware.GetPrincipal(c)
	if p == nil {
		return uuid.Nil, apperror.Unauthorized("Authentication required")
	}
	id, err := uuid.Parse(p.UserID)
	if err != nil {
		return uuid.Nil, apperror.Unauthorized("Invalid token")
	}
	return id, nil
}

func (h *Handlers) List(c *fiber.Ctx) error {
	users, err := h.Service.List(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": users})
}

func (h *Handlers) Invite(c *fiber.Ctx) error {
	actorID, err := principalID(c)
	if err != nil {
		return err
	}
	var in InviteInput
	if err := validation.ParseBody(c, &in); err != nil {
		return err
	}
	result, err := h.Service.Invite(c.Context(), in, actorID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

type acceptInvitationBody struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

func (h *Handlers) AcceptInvitation(c *fiber.Ctx) error {
	var body acceptInvitationBody
	if err := validation.ParseBody(c, &body); err != nil {
		return err
	}
	if err := h.Service.AcceptInvitation(c.Context(), body.Token, body.Password); err != nil {
		return err
	}
	return response.Message(c, "Invitation accepted successfully")
}

func (h *Handlers) ResendInvitation(c *fiber.Ctx) error {
	actorID, err := principalID(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	result, err := h.Service.ResendInvitation(c.Context(), id, actorID)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var in UpdateInput
	if err := validation.ParseBody(c, &in); err != nil {
		return err
	}
	user, err := h.Service.Update(c.Context(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.Service.Delete(c.Context(), id); err != nil {
		return err
	}
	return response.Message(c, "User deleted successfully")
}
