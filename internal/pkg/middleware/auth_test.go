package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flixhive/flixhive/internal/pkg/usercontext"
)

func newGuardedApp(ctx *usercontext.UserContext, guard fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if ctx != nil {
			c.Locals(usercontext.KeyUserContext, *ctx)
		}
		return c.Next()
	})
	app.Get("/guarded", guard, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func TestRequireAuthAnonymous(t *testing.T) {
	app := newGuardedApp(nil, RequireAuth)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/guarded", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequireAuthLoggedIn(t *testing.T) {
	app := newGuardedApp(&usercontext.UserContext{UserID: 7, IsLoggedIn: true}, RequireAuth)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/guarded", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestRequireAdminAnonymous(t *testing.T) {
	app := newGuardedApp(nil, RequireAdmin)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/guarded", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequireAdminNonAdmin(t *testing.T) {
	app := newGuardedApp(&usercontext.UserContext{UserID: 7, IsLoggedIn: true}, RequireAdmin)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/guarded", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestRequireAdminAdmin(t *testing.T) {
	app := newGuardedApp(&usercontext.UserContext{UserID: 7, IsLoggedIn: true, IsAdmin: true}, RequireAdmin)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/guarded", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestExtractBearerToken(t *testing.T) {
	app := fiber.New()
	var token string
	app.Get("/t", func(c *fiber.Ctx) error {
		token = ExtractBearerToken(c)
		return c.SendStatus(fiber.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/t", nil)
	req.Header.Set("Authorization", "Bearer abc.def.ghi")
	_, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	req = httptest.NewRequest(http.MethodGet, "/t", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	_, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "", token)
}
