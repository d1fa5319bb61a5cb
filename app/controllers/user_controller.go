package controllers

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/flixhive/flixhive/app/models"
	"github.com/flixhive/flixhive/app/repository"
	"github.com/flixhive/flixhive/internal/pkg/database"
	"github.com/flixhive/flixhive/internal/pkg/entitlements"
	"github.com/flixhive/flixhive/internal/pkg/usercontext"
)

type updateProfileRequest struct {
	Name      string `json:"name" validate:"omitempty,min=3,max=150"`
	AvatarURL string `json:"avatar_url" validate:"omitempty,url,max=255"`
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
}

type updateSettingsRequest struct {
	PreferredQuality *string `json:"preferred_quality" validate:"omitempty,oneof=auto 720p 1080p 2160p"`
	SubtitleLanguage *string `json:"subtitle_language" validate:"omitempty,min=2,max=10"`
	AutoplayNext     *bool   `json:"autoplay_next"`
	MatureContent    *bool   `json:"mature_content"`
}

// HandleGetMe returns the profile, preferences, and computed entitlement of
// the authenticated user.
func HandleGetMe(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	userRepo := repository.GetGlobalFactory().GetUserRepository()

	user, err := userRepo.GetByID(userCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return JSONError(c, fiber.StatusNotFound, "user not found")
		}
		log.Printf("me: user load failed: %v", err)
		return JSONError(c, fiber.StatusInternalServerError, "failed to load profile")
	}

	db := database.GetDB()
	settings, err := models.GetOrCreateUserSettings(db, user.ID)
	if err != nil {
		log.Printf("me: settings load failed for user %d: %v", user.ID, err)
		return JSONError(c, fiber.StatusInternalServerError, "failed to load profile")
	}

	var latestSub models.Subscription
	var subPtr *models.Subscription
	if err := db.Where("user_id = ?", user.ID).Order("created_at DESC").First(&latestSub).Error; err == nil {
		subPtr = &latestSub
	}

	return JSONSuccess(c, fiber.Map{
		"user":        userResponse(user),
		"settings":    settings,
		"entitlement": entitlements.ForUser(user, subPtr),
	})
}

// HandleUpdateMe updates mutable profile fields.
func HandleUpdateMe(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return JSONError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return JSONValidationError(c, err)
	}

	userRepo := repository.GetGlobalFactory().GetUserRepository()
	user, err := userRepo.GetByID(userCtx.UserID)
	if err != nil {
		return JSONError(c, fiber.StatusNotFound, "user not found")
	}

	if strings.TrimSpace(req.Name) != "" {
		user.Name = strings.TrimSpace(req.Name)
	}
	if req.AvatarURL != "" {
		user.AvatarURL = req.AvatarURL
	}
	if err := userRepo.Update(user); err != nil {
		log.Printf("me: profile update failed for user %d: %v", user.ID, err)
		return JSONError(c, fiber.StatusInternalServerError, "profile update failed")
	}
	return JSONSuccessMessage(c, userResponse(user), "profile updated")
}

// HandleUpdatePassword rotates the password after verifying the current one.
func HandleUpdatePassword(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	var req updatePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return JSONError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return JSONValidationError(c, err)
	}

	userRepo := repository.GetGlobalFactory().GetUserRepository()
	user, err := userRepo.GetByID(userCtx.UserID)
	if err != nil {
		return JSONError(c, fiber.StatusNotFound, "user not found")
	}
	if !user.CheckPassword(req.CurrentPassword) {
		return JSONError(c, fiber.StatusUnauthorized, "current password is incorrect")
	}
	if err := user.SetPassword(req.NewPassword); err != nil {
		log.Printf("me: password hash failed for user %d: %v", user.ID, err)
		return JSONError(c, fiber.StatusInternalServerError, "password update failed")
	}
	if err := userRepo.Update(user); err != nil {
		log.Printf("me: password update failed for user %d: %v", user.ID, err)
		return JSONError(c, fiber.StatusInternalServerError, "password update failed")
	}
	return JSONSuccessMessage(c, nil, "password updated")
}

// HandleGetSettings returns playback preferences.
func HandleGetSettings(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	settings, err := models.GetOrCreateUserSettings(database.GetDB(), userCtx.UserID)
	if err != nil {
		log.Printf("settings: load failed for user %d: %v", userCtx.UserID, err)
		return JSONError(c, fiber.StatusInternalServerError, "failed to load settings")
	}
	return JSONSuccess(c, settings)
}

// HandleUpdateSettings updates playback preferences.
func HandleUpdateSettings(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	var req updateSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return JSONError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return JSONValidationError(c, err)
	}

	db := database.GetDB()
	settings, err := models.GetOrCreateUserSettings(db, userCtx.UserID)
	if err != nil {
		return JSONError(c, fiber.StatusInternalServerError, "failed to load settings")
	}

	if req.PreferredQuality != nil {
		settings.PreferredQuality = *req.PreferredQuality
	}
	if req.SubtitleLanguage != nil {
		settings.SubtitleLanguage = *req.SubtitleLanguage
	}
	if req.AutoplayNext != nil {
		settings.AutoplayNext = *req.AutoplayNext
	}
	if req.MatureContent != nil {
		settings.MatureContent = *req.MatureContent
	}
	if err := db.Save(settings).Error; err != nil {
		log.Printf("settings: save failed for user %d: %v", userCtx.UserID, err)
		return JSONError(c, fiber.StatusInternalServerError, "settings update failed")
	}
	return JSONSuccessMessage(c, settings, "settings updated")
}

// HandleIssueAPIKey generates a fresh API key. The raw secret appears in this
// response only; afterwards just the prefix is recoverable.
func HandleIssueAPIKey(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	db := database.GetDB()
	settings, err := models.GetOrCreateUserSettings(db, userCtx.UserID)
	if err != nil {
		return JSONError(c, fiber.StatusInternalServerError, "failed to load settings")
	}

	rawKey, err := settings.IssueAPIKey()
	if err != nil {
		log.Printf("api key: issue failed for user %d: %v", userCtx.UserID, err)
		return JSONError(c, fiber.StatusInternalServerError, "API key generation failed")
	}
	if err := db.Save(settings).Error; err != nil {
		log.Printf("api key: persist failed for user %d: %v", userCtx.UserID, err)
		return JSONError(c, fiber.StatusInternalServerError, "API key generation failed")
	}
	return JSONSuccess(c, fiber.Map{
		"api_key":    rawKey,
		"prefix":     settings.APIKeyPrefix,
		"created_at": settings.APIKeyCreatedAt,
	})
}

// HandleRevokeAPIKey invalidates the current API key.
func HandleRevokeAPIKey(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	db := database.GetDB()
	settings, err := models.GetOrCreateUserSettings(db, userCtx.UserID)
	if err != nil {
		return JSONError(c, fiber.StatusInternalServerError, "failed to load settings")
	}
	if !settings.HasActiveAPIKey() {
		return JSONError(c, fiber.StatusNotFound, "no active API key")
	}
	settings.RevokeAPIKey()
	if err := db.Save(settings).Error; err != nil {
		log.Printf("api key: revoke failed for user %d: %v", userCtx.UserID, err)
		return JSONError(c, fiber.StatusInternalServerError, "API key revocation failed")
	}
	return JSONSuccessMessage(c, nil, "API key revoked")
}
