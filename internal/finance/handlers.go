package finance

import (
	"impact-backend/internal/middleware"
	"impact-backend/internal/pkg/apperror"
	"impact-backend/internal/pkg/response"
	"impact-backend/internal/pkg/validation"
	"impact-backend/internal/scope"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *Service
}

func (h *Handlers) resolve(c *fiber.Ctx) (*scope.Scope, error) {
	p := middleware.GetPrincipal(c)
	if p == nil {
		return nil, apperror.Unauthorized("Authentication required")
	}
	userID, err := uuid.Parse(p.UserID)
	if err != nil {
		return nil, apperror.Unauthorized("Invalid token")
	}
	return scope.Resolve(h.Service.DB.WithContext(c.Context()), userID, p.Role)
}

func paramID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, apperror.Validation("Invalid finance record id")
	}
	return id, nil
}

func (h *Handlers) List(c *fiber.Ctx) error {
	sc, err := h.resolve(c)
	if err != nil {
		return err
	}
	records, err := h.Service.List(c.Context(), sc)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": records})
}

func (h *Handlers) BudgetOverview(c *fiber.Ctx) error {
	sc, err := h.resolve(c)
	if err != nil {
		return err
	}
	overview, err := h.Service.BudgetOverview(c.Context(), sc)
	if err != nil {
		return err
	}
	return c.JSON(overview)
}

func (h *Handlers) Create(c *fiber.Ctx) error {
	sc, err := h.resolve(c)
	if err != nil {
		return err
	}
	var in CreateInput
	if err := validation.ParseBody(c, &in); err != nil {
		return err
	}
	record, err := h.Service.Create(c.Context(), sc, in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(record)
}

func (h *Handlers) Update(c *fiber.Ctx) error {
	sc, err := h.resolve(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var in UpdateInput
	if err := validation.ParseBody(c, &in); err != nil {
		return err
	}
	record, err := h.Service.Update(c.Context(), sc, id, in)
	if err != nil {
		return err
	}
	return c.JSON(record)
}

func (h *Handlers) Delete(c *fiber.Ctx) error {
	sc, err := h.resolve(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.Service.Delete(c.Context(), sc, id); err != nil {
		return err
	}
	return response.Message(c, "Finance record deleted successfully")
}
