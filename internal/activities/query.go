package activities

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"impact-backend/internal/models"
	"impact-backend/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Filters are the caller-supplied predicates ANDed onto the scope. All are
// optional; zero values mean "no constraint".
type Filters struct {
	ProjectID *uuid.UUID
	Status    string
	Search    string
	Country   *uuid.UUID
	Funder    *uuid.UUID
	Thematic  *uuid.UUID
	DateFrom  *time.Time
	DateTo    *time.Time
}

// Page is pagination plus ordering for the list endpoint.
type Page struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

const (
	defaultLimit = 20
	maxLimit     = 100
)

// sortColumns is the allow-list of sortable fields, mapped to columns.
var sortColumns = map[string]string{
	"createdAt":         "created_at",
	"updatedAt":         "updated_at",
	"activityTitle":     "activity_title",
	"activityStartDate": "activity_start_date",
	"status":            "status",
}

// ParseFilters reads the shared filter query params. Malformed values fail
// fast with a validation error before any query executes.
func ParseFilters(c *fiber.Ctx) (Filters, error) {
	var f Filters

	id, err := optionalUUID(c.Query("projectId"), "projectId")
	if err != nil {
		return f, err
	}
	f.ProjectID = id

	if status := c.Query("status"); status != "" {
		if !models.ValidStatus(status) {
			return f, apperror.Validation("Invalid status filter", apperror.FieldDetail{Field: "status", Message: "must be one of [DRAFT SUBMITTED VALIDATED REJECTED]"})
		}
		f.Status = status
	}

	f.Search = strings.TrimSpace(c.Query("search"))

	if f.Country, err = optionalUUID(c.Query("country"), "country"); err != nil {
		return f, err
	}
	if f.Funder, err = optionalUUID(c.Query("funder"), "funder"); err != nil {
		return f, err
	}
	if f.Thematic, err = optionalUUID(c.Query("thematic"), "thematic"); err != nil {
		return f, err
	}

	if f.DateFrom, err = optionalDate(c.Query("dateFrom"), "dateFrom"); err != nil {
		return f, err
	}
	if f.DateTo, err = optionalDate(c.Query("dateTo"), "dateTo"); err != nil {
		return f, err
	}
	return f, nil
}

// ParsePage reads pagination and ordering params with the standard
// defaults: page 1, limit 20 (max 100), createdAt descending.
func ParsePage(c *fiber.Ctx) (Page, error) {
	p := Page{Page: 1, Limit: defaultLimit, SortBy: "createdAt", SortOrder: "desc"}

	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return p, apperror.Validation("Invalid pagination", apperror.FieldDetail{Field: "page", Message: "must be a positive integer"})
		}
		p.Page = n
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxLimit {
			return p, apperror.Validation("Invalid pagination", apperror.FieldDetail{Field: "limit", Message: fmt.Sprintf("must be between 1 and %d", maxLimit)})
		}
		p.Limit = n
	}
	if raw := c.Query("sortBy"); raw != "" {
		if _, ok := sortColumns[raw]; !ok {
			return p, apperror.Validation("Invalid sort field", apperror.FieldDetail{Field: "sortBy", Message: "unsupported sort field"})
		}
		p.SortBy = raw
	}
	if raw := c.Query("sortOrder"); raw != "" {
		if raw != "asc" && raw != "desc" {
			return p, apperror.Validation("Invalid sort order", apperror.FieldDetail{Field: "sortOrder", Message: "must be asc or desc"})
		}
		p.SortOrder = raw
	}
	return p, nil
}

// Apply adds every set filter to the query. Association filters use
// membership subqueries against the join tables; the date range tests the
// denormalized activity start date.
func (f Filters) Apply(q *gorm.DB) *gorm.DB {
	if f.ProjectID != nil {
		q = q.Where("project_id = ?", *f.ProjectID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Search != "" {
		q = q.Where("LOWER(activity_title) LIKE ?", "%"+strings.ToLower(f.Search)+"%")
	}
	if f.Country != nil {
		q = q.Where("id IN (SELECT activity_id FROM activity_locations WHERE country_id = ?)", *f.Country)
	}
	if f.Funder != nil {
		q = q.Where(fmt.Sprintf("id IN (SELECT activity_id FROM %s WHERE reference_item_id = ?)", models.JoinActivityFunders), *f.Funder)
	}
	if f.Thematic != nil {
		q = q.Where(fmt.Sprintf("id IN (SELECT activity_id FROM %s WHERE reference_item_id = ?)", models.JoinActivityThematicFocus), *f.Thematic)
	}
	if f.DateFrom != nil {
		q = q.Where("activity_start_date >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		q = q.Where("activity_start_date <= ?", *f.DateTo)
	}
	return q
}

// OrderClause renders the validated sort params as SQL.
func (p Page) OrderClause() string {
	dir := "DESC"
	if p.SortOrder == "asc" {
		dir = "ASC"
	}
	return sortColumns[p.SortBy] + " " + dir
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

func optionalUUID(raw, field string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperror.Validation("Invalid filter value", apperror.FieldDetail{Field: field, Message: "must be a valid UUID"})
	}
	return &id, nil
}

func optionalDate(raw, field string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, apperror.Validation("Invalid filter value", apperror.FieldDetail{Field: field, Message: "must be a date in YYYY-MM-DD format"})
	}
	return &t, nil
}
