package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/flixhive/flixhive/app/controllers"
	"github.com/flixhive/flixhive/internal/pkg/constants"
	"github.com/flixhive/flixhive/internal/pkg/middleware"
	"github.com/flixhive/flixhive/internal/pkg/oauth"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init oauth providers
	oauth.Setup()

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	// Social OAuth (session handled by goth_fiber, never by access tokens)
	app.Get("/auth/:provider", controllers.HandleOAuthBegin)
	app.Get("/auth/:provider/callback", controllers.HandleOAuthCallback)

	// Billing provider webhooks (signature-verified in controller, no auth)
	app.Post(constants.StripeWebhookRoute, controllers.HandleStripeWebhook)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}
