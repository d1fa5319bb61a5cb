package router

import (
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	redisstorage "github.com/gofiber/storage/redis"

	apiv1 "github.com/flixhive/flixhive/internal/api/v1"

	"github.com/flixhive/flixhive/app/controllers"
	"github.com/flixhive/flixhive/app/repository"
	"github.com/flixhive/flixhive/internal/pkg/cache"
	"github.com/flixhive/flixhive/internal/pkg/constants"
	"github.com/flixhive/flixhive/internal/pkg/metadata"
	"github.com/flixhive/flixhive/internal/pkg/middleware"
	"github.com/flixhive/flixhive/internal/pkg/streaming"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group(constants.APIRoute, limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		Storage:    limiterStorage(),
	}))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	// API v1 routes
	v1 := api.Group("/v1")
	apiServer := apiv1.NewAPIServer()
	apiv1.RegisterHandlers(v1, apiServer)

	repos := repository.GetGlobalRepositories()
	movieController := controllers.NewMovieController(repos.Movie, metadata.NewClientFromEnv(), streaming.NewProviderFromEnv())
	watchlistController := controllers.NewWatchlistController(repos.Watchlist, repos.Movie)
	announcementController := controllers.NewAnnouncementController(repos.Announcement)
	adminController := controllers.NewAdminController(repos)
	fundingController := controllers.NewAdminFundingController()
	queueController := controllers.NewAdminQueueController(repos.Queue)

	// Accounts & auth
	auth := v1.Group("/auth")
	auth.Post("/register", controllers.HandleRegister)
	auth.Get("/activate", controllers.HandleActivate)
	auth.Post("/login", controllers.HandleLogin)
	auth.Post("/logout", middleware.RequireAuth, controllers.HandleLogout)

	// Profile + preferences
	me := v1.Group("/users/me", middleware.RequireAuth)
	me.Get("/", controllers.HandleGetMe)
	me.Put("/", controllers.HandleUpdateMe)
	me.Put("/password", controllers.HandleUpdatePassword)
	me.Get("/settings", controllers.HandleGetSettings)
	me.Put("/settings", controllers.HandleUpdateSettings)
	me.Post("/api-key", controllers.HandleIssueAPIKey)
	me.Delete("/api-key", controllers.HandleRevokeAPIKey)

	// Catalog
	movies := v1.Group("/movies")
	movies.Get("/search", movieController.HandleSearch)
	movies.Get("/trending", movieController.HandleTrending)
	movies.Get("/:id", movieController.HandleGetMovie)
	movies.Get("/:id/stream", middleware.RequireAuth, movieController.HandleGetStream)
	v1.Get("/genres", movieController.HandleListGenres)

	// Watchlist
	watchlist := v1.Group("/watchlist", middleware.RequireAuth)
	watchlist.Get("/", watchlistController.HandleList)
	watchlist.Post("/:movieID", watchlistController.HandleAdd)
	watchlist.Delete("/:movieID", watchlistController.HandleRemove)

	// Billing
	billing := v1.Group("/billing")
	billing.Get("/plans", controllers.HandleGetPlans)
	billing.Post("/checkout", middleware.RequireAuth, controllers.HandleCreateCheckout)
	billing.Post("/cancel", middleware.RequireAuth, controllers.HandleCancelSubscription)
	billing.Get("/subscription", middleware.RequireAuth, controllers.HandleGetSubscription)
	billing.Get("/payments", middleware.RequireAuth, controllers.HandleGetPayments)

	// Announcements (public read)
	v1.Get("/announcements", announcementController.HandleListPublished)
	v1.Get("/announcements/:slug", announcementController.HandleGetBySlug)

	// API-key clients (scripted access, no JWT)
	client := v1.Group("/client", middleware.APIKeyAuthMiddleware())
	client.Get("/profile", controllers.HandleGetMe)
	client.Get("/watchlist", watchlistController.HandleList)

	// Admin console
	admin := v1.Group("/admin", middleware.RequireAdmin)
	admin.Get("/dashboard", adminController.HandleDashboard)
	admin.Get("/users", adminController.HandleListUsers)
	admin.Get("/users/:id", adminController.HandleGetUser)
	admin.Put("/users/:id", adminController.HandleUpdateUser)
	admin.Delete("/users/:id", adminController.HandleDeleteUser)
	admin.Get("/subscriptions", adminController.HandleListSubscriptions)
	admin.Post("/funding", fundingController.HandleGrantFunding)
	admin.Get("/funding", fundingController.HandleListFunding)
	admin.Get("/announcements", announcementController.HandleAdminList)
	admin.Post("/announcements", announcementController.HandleAdminCreate)
	admin.Put("/announcements/:id", announcementController.HandleAdminUpdate)
	admin.Delete("/announcements/:id", announcementController.HandleAdminDelete)
	admin.Get("/queues", queueController.HandleListQueues)
	admin.Delete("/queues/:key", queueController.HandleDeleteQueueKey)
	admin.Post("/queues/bulk-delete", queueController.HandleBulkDelete)
}

// limiterStorage puts rate-limit counters in Redis so limits hold across
// instances. Falls back to the limiter's in-memory storage when the cache
// is not up.
func limiterStorage() fiber.Storage {
	client := cache.GetClient()
	if client == nil {
		return nil
	}
	opts := client.Options()
	host, port := "127.0.0.1", 6379
	if opts != nil && opts.Addr != "" {
		if h, p, err := net.SplitHostPort(opts.Addr); err == nil {
			host = h
			if parsed, e := strconv.Atoi(p); e == nil {
				port = parsed
			}
		} else {
			host = opts.Addr
		}
	}
	return redisstorage.New(redisstorage.Config{
		Host:     host,
		Port:     port,
		Username: opts.Username,
		Password: opts.Password,
		Database: 1,
		Reset:    false,
	})
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
