package activities

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parseProbe runs ParseFilters+ParsePage against a query string and reports
// the outcome through the response status.
func parseProbe(t *testing.T, query string) (int, Filters, Page) {
	t.Helper()

	var gotF Filters
	var gotP Page

	app := fiber.New()
	app.Get("/probe", func(c *fiber.Ctx) error {
		f, err := ParseFilters(c)
		if err != nil {
			return c.SendStatus(fiber.StatusBadRequest)
		}
		p, err := ParsePage(c)
		if err != nil {
			return c.SendStatus(fiber.StatusBadRequest)
		}
		gotF, gotP = f, p
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/probe?"+query, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode, gotF, gotP
}

func TestParse_Defaults(t *testing.T) {
	status, f, p := parseProbe(t, "")
	require.Equal(t, fiber.StatusOK, status)

	assert.Nil(t, f.ProjectID)
	assert.Empty(t, f.Status)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, defaultLimit, p.Limit)
	assert.Equal(t, "createdAt", p.SortBy)
	assert.Equal(t, "desc", p.SortOrder)
}

func TestParse_MalformedValuesFailFast(t *testing.T) {
	cases := []string{
		"projectId=not-a-uuid",
		"status=PENDING",
		"country=123",
		"funder=xyz",
		"thematic=xyz",
		"dateFrom=March+1",
		"dateTo=2026-13-99",
		"page=0",
		"page=abc",
		"limit=0",
		"limit=101",
		"sortBy=passwordHash",
		"sortOrder=sideways",
	}
	for _, q := range cases {
		status, _, _ := parseProbe(t, q)
		assert.Equal(t, fiber.StatusBadRequest, status, "query %q should be rejected", q)
	}
}

func TestParse_ValidValues(t *testing.T) {
	status, f, p := parseProbe(t, "status=DRAFT&search=%20training%20&page=3&limit=100&sortBy=activityTitle&sortOrder=asc&dateFrom=2026-01-01")
	require.Equal(t, fiber.StatusOK, status)

	assert.Equal(t, "DRAFT", f.Status)
	assert.Equal(t, "training", f.Search, "search is trimmed")
	require.NotNil(t, f.DateFrom)
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 100, p.Limit)
	assert.Equal(t, "activity_title ASC", p.OrderClause())
	assert.Equal(t, 200, p.Offset())
}
