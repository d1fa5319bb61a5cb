package controllers

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/flixhive/flixhive/app/models"
	"github.com/flixhive/flixhive/app/repository"
	"github.com/flixhive/flixhive/internal/pkg/env"
	"github.com/flixhive/flixhive/internal/pkg/hcaptcha"
	"github.com/flixhive/flixhive/internal/pkg/jobqueue"
	"github.com/flixhive/flixhive/internal/pkg/middleware"
	"github.com/flixhive/flixhive/internal/pkg/security"
	"github.com/flixhive/flixhive/internal/pkg/utils"
)

type registerRequest struct {
	Name         string `json:"name" validate:"required,min=3,max=150"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=6"`
	CaptchaToken string `json:"captcha_token"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// HandleRegister creates an inactive account and queues the activation mail.
func HandleRegister(c *fiber.Ctx) error {
	settings := models.GetAppSettings()
	if settings != nil && !settings.IsRegistrationEnabled() {
		return JSONError(c, fiber.StatusForbidden, "registration is currently disabled")
	}

	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return JSONError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return JSONValidationError(c, err)
	}

	// Captcha is enforced whenever a secret is configured.
	if env.GetEnv("HCAPTCHA_SECRET", "") != "" {
		ok, err := hcaptcha.Verify(req.CaptchaToken)
		if err != nil || !ok {
			return JSONError(c, fiber.StatusBadRequest, "captcha verification failed")
		}
	}

	userRepo := repository.GetGlobalFactory().GetUserRepository()
	if _, err := userRepo.GetByEmail(strings.ToLower(req.Email)); err == nil {
		return JSONError(c, fiber.StatusConflict, "an account with this email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("register: email lookup failed: %v", err)
		return JSONError(c, fiber.StatusInternalServerError, "registration failed")
	}

	user, err := models.CreateUser(req.Name, strings.ToLower(req.Email), req.Password)
	if err != nil {
		return JSONValidationError(c, err)
	}
	if err := user.GenerateActivationToken(); err != nil {
		log.Printf("register: token generation failed: %v", err)
		return JSONError(c, fiber.StatusInternalServerError, "registration failed")
	}
	user.AvatarURL = utils.GetGravatarURL(user.Email, 200)
	ipv4, ipv6 := GetClientIP(c)
	user.IPv4, user.IPv6 = ipv4, ipv6

	if err := userRepo.Create(user); err != nil {
		log.Printf("register: user create failed: %v", err)
		return JSONError(c, fiber.StatusInternalServerError, "registration failed")
	}

	activationURL := fmt.Sprintf("%s/auth/activate?token=%s",
		strings.TrimRight(env.GetEnv("FRONTEND_URL", env.GetEnv("PUBLIC_DOMAIN", "")), "/"),
		user.ActivationToken)
	if _, err := jobqueue.GetManager().GetQueue().EnqueueActivationMailJob(user.Email, user.Name, activationURL); err != nil {
		log.Printf("register: activation mail enqueue failed for user %d: %v", user.ID, err)
	}

	return JSONCreated(c, userResponse(user))
}

// HandleActivate flips an account to active when the token matches.
func HandleActivate(c *fiber.Ctx) error {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		return JSONError(c, fiber.StatusBadRequest, "activation token is required")
	}

	userRepo := repository.GetGlobalFactory().GetUserRepository()
	user, err := userRepo.GetByActivationToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return JSONError(c, fiber.StatusNotFound, "invalid activation token")
		}
		log.Printf("activate: lookup failed: %v", err)
		return JSONError(c, fiber.StatusInternalServerError, "activation failed")
	}

	user.Status = models.STATUS_ACTIVE
	user.ActivationToken = ""
	if err := userRepo.Update(user); err != nil {
		log.Printf("activate: update failed for user %d: %v", user.ID, err)
		return JSONError(c, fiber.StatusInternalServerError, "activation failed")
	}

	return JSONSuccessMessage(c, userResponse(user), "account activated")
}

// HandleLogin checks credentials and issues an access token.
func HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return JSONError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return JSONValidationError(c, err)
	}

	userRepo := repository.GetGlobalFactory().GetUserRepository()
	user, err := userRepo.GetByEmail(strings.ToLower(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return JSONError(c, fiber.StatusUnauthorized, "invalid email or password")
		}
		log.Printf("login: lookup failed: %v", err)
		return JSONError(c, fiber.StatusInternalServerError, "login failed")
	}

	if !user.CheckPassword(req.Password) {
		return JSONError(c, fiber.StatusUnauthorized, "invalid email or password")
	}
	switch user.Status {
	case models.STATUS_ACTIVE:
	case models.STATUS_INACTIVE:
		return JSONError(c, fiber.StatusForbidden, "account is not activated")
	default:
		return JSONError(c, fiber.StatusForbidden, "account is disabled")
	}

	now := time.Now()
	user.LastLoginAt = &now
	user.IPv4, user.IPv6 = GetClientIP(c)
	if err := userRepo.Update(user); err != nil {
		log.Printf("login: failed to persist login metadata for user %d: %v", user.ID, err)
	}

	ttl := middleware.AccessTokenTTL()
	token, err := security.GenerateAccessToken(user.ID, user.Name, user.Email, user.IsAdmin(), ttl, middleware.JWTSecret())
	if err != nil {
		log.Printf("login: token generation failed for user %d: %v", user.ID, err)
		return JSONError(c, fiber.StatusInternalServerError, "login failed")
	}

	return JSONSuccess(c, fiber.Map{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_in":   int(ttl.Seconds()),
		"user":         userResponse(user),
	})
}

// HandleLogout revokes the presented token until its natural expiry.
func HandleLogout(c *fiber.Ctx) error {
	claims, err := middleware.ParseRequestToken(c)
	if err != nil {
		return JSONError(c, fiber.StatusUnauthorized, "authentication required")
	}
	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	if err := middleware.RevokeToken(claims.ID, expiresAt); err != nil {
		log.Printf("logout: token revocation failed for user %d: %v", claims.UserID, err)
		return JSONError(c, fiber.StatusInternalServerError, "logout failed")
	}
	return JSONSuccessMessage(c, nil, "logged out")
}

func userResponse(user *models.User) fiber.Map {
	return fiber.Map{
		"id":                  user.UUID,
		"name":                user.Name,
		"email":               user.Email,
		"role":                user.Role,
		"status":              user.Status,
		"subscription_status": user.SubscriptionStatus,
		"avatar_url":          utils.ResolveAvatarURL(user.AvatarURL, user.Email),
		"created_at":          user.CreatedAt.UTC().Format(time.RFC3339),
		"last_login_at":       formatTimePtr(user.LastLoginAt),
	}
}

func formatTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
