package activities

import (
	"impact-backend/internal/middleware"
	"impact-backend/internal/pkg/apperror"
	"impact-backend/internal/pkg/response"
	"impact-backend/internal/pkg/validation"
	"impact-backend/internal/scope"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers bundles the activity endpoints with their service.
type Handlers struct {
	Service *Service
}

func callerFrom(c *fiber.Ctx) (Caller, error) {
	p := middleware.GetPrincipal(c)
	if p == nil {
		return Caller{}, apperror.Unauthorized("Authentication required")
	}
	id, err := uuid.Parse(p.UserID)
	if err != nil {
		return Caller{}, apperror.Unauthorized("Authentication required")
	}
	return Caller{UserID: id, Role: p.Role}, nil
}

func paramID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, apperror.Validation("Invalid activity id")
	}
	return id, nil
}

// List GET /api/activities
func (h *Handlers) List(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	filters, err := ParseFilters(c)
	if err != nil {
		return err
	}
	page, err := ParsePage(c)
	if err != nil {
		return err
	}

	sc, err := scope.Resolve(h.Service.DB, caller.UserID, caller.Role)
	if err != nil {
		return err
	}
	if filters.ProjectID != nil && !sc.HasProject(*filters.ProjectID) {
		return apperror.Forbidden("No access to this project")
	}

	rows, total, err := h.Service.List(c.Context(), sc, filters, page)
	if err != nil {
		return err
	}
	return c.JSON(response.Paginated{
		Data:       rows,
		Pagination: response.NewPagination(page.Page, page.Limit, total),
	})
}

// Get GET /api/activities/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	a, err := h.Service.Get(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(a)
}

// Create POST /api/activities
func (h *Handlers) Create(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	var in CreateInput
	if err := validation.ParseBody(c, &in); err != nil {
		return err
	}
	a, err := h.Service.Create(c.Context(), in, caller)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(a)
}

// Update PUT /api/activities/:id
func (h *Handlers) Update(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
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
	a, err := h.Service.Update(c.Context(), id, in, caller)
	if err != nil {
		return err
	}
	return c.JSON(a)
}

// Submit POST /api/activities/:id/submit
func (h *Handlers) Submit(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	a, err := h.Service.Submit(c.Context(), id, caller)
	if err != nil {
		return err
	}
	return c.JSON(a)
}

type decideBody struct {
	Status          string `json:"status" validate:"required,oneof=VALIDATED REJECTED"`
	RejectionReason string `json:"rejectionReason"`
}

// Validate POST /api/activities/:id/validate records a reviewer decision.
func (h *Handlers) Validate(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var body decideBody
	if err := validation.ParseBody(c, &body); err != nil {
		return err
	}
	a, err := h.Service.Decide(c.Context(), id, caller, body.Status, body.RejectionReason)
	if err != nil {
		return err
	}
	return c.JSON(a)
}

// Delete DELETE /api/activities/:id
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.Service.Delete(c.Context(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}
