package controllers

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/markbates/goth"
	gothfiber "github.com/shareed2k/goth_fiber"
	"gorm.io/gorm"

	"github.com/flixhive/flixhive/app/models"
	"github.com/flixhive/flixhive/app/repository"
	"github.com/flixhive/flixhive/internal/pkg/env"
	"github.com/flixhive/flixhive/internal/pkg/middleware"
	"github.com/flixhive/flixhive/internal/pkg/security"
	"github.com/flixhive/flixhive/internal/pkg/utils"
)

// HandleOAuthBegin starts the social-login flow for :provider.
func HandleOAuthBegin(c *fiber.Ctx) error {
	return gothfiber.BeginAuthHandler(c)
}

// HandleOAuthCallback completes the flow, finds or creates the local account,
// and hands the client a freshly issued access token via fragment redirect.
func HandleOAuthCallback(c *fiber.Ctx) error {
	gothUser, err := gothfiber.CompleteUserAuth(c)
	if err != nil {
		log.Printf("oauth: completing %s auth failed: %v", c.Params("provider"), err)
		return redirectWithOAuthError(c, "authentication failed")
	}

	user, err := findOrCreateOAuthUser(gothUser)
	if err != nil {
		log.Printf("oauth: local account resolution failed: %v", err)
		return redirectWithOAuthError(c, "account could not be linked")
	}
	if user.Status == models.STATUS_DISABLED {
		return redirectWithOAuthError(c, "account is disabled")
	}

	ttl := middleware.AccessTokenTTL()
	token, err := security.GenerateAccessToken(user.ID, user.Name, user.Email, user.IsAdmin(), ttl, middleware.JWTSecret())
	if err != nil {
		log.Printf("oauth: token generation failed for user %d: %v", user.ID, err)
		return redirectWithOAuthError(c, "login failed")
	}

	return c.Redirect(fmt.Sprintf("%s/auth/callback#token=%s", frontendBaseURL(), token), fiber.StatusSeeOther)
}

func findOrCreateOAuthUser(gothUser goth.User) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(gothUser.Email))
	if email == "" {
		return nil, errors.New("provider returned no email address")
	}

	userRepo := repository.GetGlobalFactory().GetUserRepository()
	user, err := userRepo.GetByEmail(email)
	if err == nil {
		now := time.Now()
		user.LastLoginAt = &now
		if err := userRepo.Update(user); err != nil {
			log.Printf("oauth: failed to persist login metadata for user %d: %v", user.ID, err)
		}
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	name := strings.TrimSpace(gothUser.Name)
	if name == "" {
		name = strings.Split(email, "@")[0]
	}
	// Social accounts arrive with a verified email, so they start active.
	// The random password is never usable; such accounts log in via OAuth.
	password, err := randomOAuthPassword()
	if err != nil {
		return nil, err
	}
	user, err = models.CreateUser(name, email, password)
	if err != nil {
		return nil, err
	}
	user.Status = models.STATUS_ACTIVE
	user.AvatarURL = gothUser.AvatarURL
	if user.AvatarURL == "" {
		user.AvatarURL = utils.GetGravatarURL(email, 200)
	}
	if err := userRepo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

func randomOAuthPassword() (string, error) {
	u := &models.User{}
	if err := u.GenerateActivationToken(); err != nil {
		return "", err
	}
	return u.ActivationToken, nil
}

func frontendBaseURL() string {
	return strings.TrimRight(env.GetEnv("FRONTEND_URL", env.GetEnv("PUBLIC_DOMAIN", "")), "/")
}

func redirectWithOAuthError(c *fiber.Ctx, msg string) error {
	return c.Redirect(fmt.Sprintf("%s/auth/callback#error=%s", frontendBaseURL(), strings.ReplaceAll(msg, " ", "+")), fiber.StatusSeeOther)
}
