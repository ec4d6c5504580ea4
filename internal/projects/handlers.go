package projects

import (
	"impact-backend/internal/middleware"
	"impact-backend/internal/pkg/apperror"
	"impact-backend/internal/pkg/response"
	"impact-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers serves the project endpoints. Writes are ADMIN-gated at the
// route; reads are scoped inside the service.
type Handlers struct {
	Service *Service
}

func principalID(c *fiber.Ctx) (uuid.UUID, string, error) {
	p := middleware.GetPrincipal(c)
	if p == nil {
		return uuid.Nil, "", apperror.Unauthorized("Authentication required")
	}
	id, err := uuid.Parse(p.UserID)
	if err != nil {
		return uuid.Nil, "", apperror.Unauthorized("Authentication required")
	}
	return id, p.Role, nil
}

// List GET /api/projects
func (h *Handlers) List(c *fiber.Ctx) error {
	userID, role, err := principalID(c)
	if err != nil {
		return err
	}
	rows, err := h.Service.List(c.Context(), userID, role)
	if err != nil {
		return err
	}
	return c.JSON(rows)
}

// Get GET /api/projects/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	userID, role, err := principalID(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperror.NotFound("Project not found")
	}
	p, err := h.Service.Get(c.Context(), id, userID, role)
	if err != nil {
		return err
	}
	return c.JSON(p)
}

// Create POST /api/projects
func (h *Handlers) Create(c *fiber.Ctx) error {
	var in CreateInput
	if err := validation.ParseBody(c, &in); err != nil {
		return err
	}
	p, err := h.Service.Create(c.Context(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

// Update PUT /api/projects/:id
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperror.NotFound("Project not found")
	}
	var in UpdateInput
	if err := validation.ParseBody(c, &in); err != nil {
		return err
	}
	p, err := h.Service.Update(c.Context(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(p)
}

// Delete DELETE /api/projects/:id
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperror.NotFound("Project not found")
	}
	if err := h.Service.Delete(c.Context(), id); err != nil {
		return err
	}
	return response.Message(c, "Project deleted successfully")
}

type addMemberBody struct {
	UserID string `json:"userId" validate:"required,uuid"`
}

// AddMember POST /api/projects/:id/users
func (h *Handlers) AddMember(c *fiber.Ctx) error {
	projectID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperror.NotFound("Project not found")
	}
	var body addMemberBody
	if err := validation.ParseBody(c, &body); err != nil {
		return err
	}
	userID, _ := uuid.Parse(body.UserID)
	up, err := h.Service.AddMember(c.Context(), projectID, userID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(up)
}

// RemoveMember DELETE /api/projects/:id/users/:userId
func (h *Handlers) RemoveMember(c *fiber.Ctx) error {
	projectID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperror.NotFound("Project not found")
	}
	userID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return apperror.NotFound("Membership not found")
	}
	if err := h.Service.RemoveMember(c.Context(), projectID, userID); err != nil {
		return err
	}
	return response.Message(c, "User removed from project")
}
