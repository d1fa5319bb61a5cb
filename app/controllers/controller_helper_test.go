package controllers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePagination(t *testing.T) {
	app := fiber.New()
	var page, perPage, offset int
	app.Get("/list", func(c *fiber.Ctx) error {
		page, perPage, offset = ParsePagination(c)
		return c.SendStatus(fiber.StatusNoContent)
	})

	tests := []struct {
		name       string
		query      string
		wantPage   int
		wantPer    int
		wantOffset int
	}{
		{"defaults", "", 1, 20, 0},
		{"explicit", "?page=3&per_page=10", 3, 10, 20},
		{"negative page clamps", "?page=-4", 1, 20, 0},
		{"per_page capped", "?per_page=1000", 1, 100, 0},
		{"garbage falls back", "?page=abc&per_page=xyz", 1, 20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/list"+tt.query, nil))
			require.NoError(t, err)
			require.Equal(t, fiber.StatusNoContent, resp.StatusCode)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantPer, perPage)
			assert.Equal(t, tt.wantOffset, offset)
		})
	}
}

func TestJSONValidationErrorDetails(t *testing.T) {
	type probe struct {
		Email string `json:"email" validate:"required,email"`
		Name  string `json:"name" validate:"required,min=3"`
	}

	app := fiber.New()
	app.Post("/probe", func(c *fiber.Ctx) error {
		return JSONValidationError(c, validate.Struct(probe{Email: "not-an-email", Name: "x"}))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/probe", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body struct {
		Success bool              `json:"success"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Success)
	assert.Equal(t, "validation failed", body.Message)
	assert.Contains(t, body.Details, "email")
	assert.Contains(t, body.Details, "name")
}

func TestJSONErrorEnvelope(t *testing.T) {
	app := fiber.New()
	app.Get("/fail", func(c *fiber.Ctx) error {
		return JSONError(c, fiber.StatusNotFound, "movie not found")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/fail", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"message":"movie not found"}`, string(raw))
}

func TestGetClientIP(t *testing.T) {
	app := fiber.New()
	var ipv4, ipv6 string
	app.Get("/ip", func(c *fiber.Ctx) error {
		ipv4, ipv6 = GetClientIP(c)
		return c.SendStatus(fiber.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ip", nil)
	req.Header.Set("CF-Connecting-IP", "203.0.113.7")
	req.Header.Set("X-Forwarded-For", "2001:db8::1, 198.51.100.2")
	_, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.7", ipv4)
	assert.Equal(t, "2001:db8::1", ipv6)

	// Mapped IPv4 in an IPv6 header counts as IPv4.
	req = httptest.NewRequest(http.MethodGet, "/ip", nil)
	req.Header.Set("X-Real-IP", "::ffff:192.0.2.10")
	_, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "192.0.2.10", ipv4)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "maintenance-window-friday", slugify("Maintenance Window: Friday!"))
	assert.Equal(t, "new-4k-titles", slugify("  New 4K Titles  "))
	assert.Equal(t, "", slugify("!!!"))
}
