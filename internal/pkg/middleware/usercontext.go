package middleware

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/flixhive/flixhive/app/models"
	"github.com/flixhive/flixhive/app/repository"
	"github.com/flixhive/flixhive/internal/pkg/usercontext"
)

// UserContextMiddleware sets up the complete user context for every request.
// It accepts a bearer access token when one is present and falls back to an
// anonymous context otherwise; route guards decide whether anonymous is
// acceptable.
func UserContextMiddleware(c *fiber.Ctx) error {
	// Goth handles its own per-request state on the OAuth routes; the user
	// context there is established after the callback issues a token.
	if strings.HasPrefix(c.Path(), "/auth/") {
		return c.Next()
	}

	if ExtractBearerToken(c) == "" {
		return setAnonymousContext(c)
	}

	claims, err := ParseRequestToken(c)
	if err != nil {
		return setAnonymousContext(c)
	}

	// Load the user row so role, status, and subscription state are current
	// rather than frozen at token-issue time.
	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByID(claims.UserID)
	if err != nil {
		log.Printf("user context: failed to load user %d: %v", claims.UserID, err)
		return setAnonymousContext(c)
	}
	if user.Status != models.STATUS_ACTIVE {
		return setAnonymousContext(c)
	}

	userCtx := usercontext.UserContext{
		UserID:             user.ID,
		Username:           user.Name,
		IsLoggedIn:         true,
		IsAdmin:            user.IsAdmin(),
		SubscriptionStatus: user.SubscriptionStatus,
	}
	c.Locals(usercontext.KeyUserContext, userCtx)
	c.Locals(usercontext.KeyFromProtected, true)
	c.Locals(usercontext.KeyUserID, user.ID)
	c.Locals(usercontext.KeyUsername, user.Name)
	c.Locals(usercontext.KeyIsAdmin, userCtx.IsAdmin)
	c.Locals(usercontext.KeyTokenID, claims.ID)

	return c.Next()
}

func setAnonymousContext(c *fiber.Ctx) error {
	c.Locals(usercontext.KeyUserContext, usercontext.UserContext{
		IsLoggedIn: false,
		IsAdmin:    false,
	})
	c.Locals(usercontext.KeyFromProtected, false)
	c.Locals(usercontext.KeyIsAdmin, false)
	return c.Next()
}
