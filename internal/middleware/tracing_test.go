package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tracingApp() *fiber.App {
	app := fiber.New()
	app.Use(Tracing())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(GetTraceID(c))
	})
	return app
}

func TestTracing_GeneratesTraceID(t *testing.T) {
	app := tracingApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)

	traceID := resp.Header.Get("X-Trace-Id")
	_, err = uuid.Parse(traceID)
	assert.NoError(t, err)
}

func TestTracing_ReusesInboundTraceID(t *testing.T) {
	app := tracingApp()
	inbound := uuid.New().String()

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Trace-Id", inbound)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, inbound, resp.Header.Get("X-Trace-Id"))
}

func TestTracing_RejectsMalformedInboundID(t *testing.T) {
	app := tracingApp()

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Trace-Id", "not-a-uuid")
	resp, err := app.Test(req)
	require.NoError(t, err)

	echoed := resp.Header.Get("X-Trace-Id")
	assert.NotEqual(t, "not-a-uuid", echoed)
	_, err = uuid.Parse(echoed)
	assert.NoError(t, err)
}
