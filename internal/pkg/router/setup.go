package router

import (
	"github.com/gofiber/fiber/v2"
)

// Router is anything that can mount its routes on the app.
type Router interface {
	InstallRouter(app *fiber.App)
}

func InstallRouter(app *fiber.App) {
	// Install HttpRouter first to initialize oauth providers and the global
	// UserContext middleware. Then register API routes which depend on that
	// middleware (e.g. RequireAuth).
	setup(app, NewHttpRouter(), NewApiRouter())
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
