package dashboard

import (
	"impact-backend/internal/activities"
	"impact-backend/internal/middleware"
	"impact-backend/internal/pkg/apperror"
	"impact-backend/internal/scope"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers serves the four aggregate views. All share the activity filter
// query params, minus pagination.
type Handlers struct {
	Service *Service
}

func (h *Handlers) resolve(c *fiber.Ctx) (*scope.Scope, activities.Filters, error) {
	p := middleware.GetPrincipal(c)
	if p == nil {
		return nil, activities.Filters{}, apperror.Unauthorized("Authentication required")
	}
	userID, err := uuid.Parse(p.UserID)
	if err != nil {
		return nil, activities.Filters{}, apperror.Unauthorized("Authentication required")
	}
	filters, err := activities.ParseFilters(c)
	if err != nil {
		return nil, activities.Filters{}, err
	}
	sc, err := scope.Resolve(h.Service.DB, userID, p.Role)
	if err != nil {
		return nil, activities.Filters{}, err
	}
	return sc, filters, nil
}

// Stats GET /api/dashboard/stats
func (h *Handlers) Stats(c *fiber.Ctx) error {
	sc, filters, err := h.resolve(c)
	if err != nil {
		return err
	}
	stats, err := h.Service.GetStats(c.Context(), sc, filters)
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

// ByStatus GET /api/dashboard/activities-by-status
func (h *Handlers) ByStatus(c *fiber.Ctx) error {
	sc, filters, err := h.resolve(c)
	if err != nil {
		return err
	}
	rows, err := h.Service.ActivitiesByStatus(c.Context(), sc, filters)
	if err != nil {
		return err
	}
	return c.JSON(rows)
}

// ByGender GET /api/dashboard/participants-by-gender
func (h *Handlers) ByGender(c *fiber.Ctx) error {
	sc, filters, err := h.resolve(c)
	if err != nil {
		return err
	}
	rows, err := h.Service.ParticipantsByGender(c.Context(), sc, filters)
	if err != nil {
		return err
	}
	return c.JSON(rows)
}

// Trend GET /api/dashboard/activities-trend
func (h *Handlers) Trend(c *fiber.Ctx) error {
	sc, filters, err := h.resolve(c)
	if err != nil {
		return err
	}
	rows, err := h.Service.ActivitiesTrend(c.Context(), sc, filters)
	if err != nil {
		return err
	}
	return c.JSON(rows)
}
