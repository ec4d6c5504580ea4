package reference

import (
	"impact-backend/internal/models"
	"impact-backend/internal/pkg/apperror"
	"impact-backend/internal/pkg/response"
	"impact-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers serves the reference catalog endpoints. Reads are open to any
// authenticated user; writes are gated to ADMIN at the route.
type Handlers struct {
	Service *Service
}

// categoryAliases maps the plural path segments the web client uses onto
// the canonical category names.
var categoryAliases = map[string]models.Category{
	"countries":     models.CategoryCountry,
	"regions":       models.CategoryRegion,
	"cities":        models.CategoryCity,
	"funders":       models.CategoryFunder,
	"thematicFocus": models.CategoryThematicFocus,
	"activityTypes": models.CategoryActivityType,
	"targetGroups":  models.CategoryTargetGroup,
}

func parseCategory(raw string) (models.Category, error) {
	if c, ok := categoryAliases[raw]; ok {
		return c, nil
	}
	c := models.Category(raw)
	if !c.Valid() {
		return "", apperror.Validation("Invalid category")
	}
	return c, nil
}

// List GET /api/reference/:category
func (h *Handlers) List(c *fiber.Ctx) error {
	category, err := parseCategory(c.Params("category"))
	if err != nil {
		return err
	}
	items, err := h.Service.List(c.Context(), category)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": items})
}

// Children GET /api/reference/:category/:id/children
func (h *Handlers) Children(c *fiber.Ctx) error {
	parentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperror.Validation("Invalid parent id")
	}
	items, err := h.Service.Children(c.Context(), parentID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /api/reference/:category/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	category, err := parseCategory(c.Params("category"))
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperror.NotFound("Item not found")
	}
	item, err := h.Service.Get(c.Context(), category, id)
	if err != nil {
		return err
	}
	return c.JSON(item)
}

// Create POST /api/reference/:category
func (h *Handlers) Create(c *fiber.Ctx) error {
	category, err := parseCategory(c.Params("category"))
	if err != nil {
		return err
	}
	var in CreateInput
	if err := validation.ParseBody(c, &in); err != nil {
		return err
	}
	item, err := h.Service.Create(c.Context(), category, in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// Update PUT /api/reference/:category/:id
func (h *Handlers) Update(c *fiber.Ctx) error {
	category, err := parseCategory(c.Params("category"))
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperror.NotFound("Item not found")
	}
	var in UpdateInput
	if err := validation.ParseBody(c, &in); err != nil {
		return err
	}
	item, err := h.Service.Update(c.Context(), category, id, in)
	if err != nil {
		return err
	}
	return c.JSON(item)
}

// Delete DELETE /api/reference/:category/:id
func (h *Handlers) Delete(c *fiber.Ctx) error {
	category, err := parseCategory(c.Params("category"))
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperror.NotFound("Item not found")
	}
	if err := h.Service.Delete(c.Context(), category, id); err != nil {
		return err
	}
	return response.Message(c, "Item deleted successfully")
}
