package apiv1

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestOpenAPISpecIsValid(t *testing.T) {
	loader := openapi3.NewLoader()

	doc, err := loader.LoadFromFile("../../../public/docs/v1/openapi.yml")
	require.NoError(t, err, "spec file should load")

	err = doc.Validate(context.Background())
	require.NoError(t, err, "spec should validate")

	require.NotNil(t, doc.Paths.Find("/ping"))
	require.NotNil(t, doc.Paths.Find("/auth/login"))
	require.NotNil(t, doc.Paths.Find("/billing/checkout"))
	require.NotNil(t, doc.Paths.Find("/admin/funding"))
}

func TestPingHandler(t *testing.T) {
	app := fiber.New()
	RegisterHandlers(app, NewAPIServer())

	resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var pong Pong
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&pong))
	require.Equal(t, "pong", pong.Ping)
}
