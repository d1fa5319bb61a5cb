package controllers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/flixhive/flixhive/app/models"
	"github.com/flixhive/flixhive/internal/pkg/database"
	"github.com/flixhive/flixhive/internal/pkg/funding"
	"github.com/flixhive/flixhive/internal/pkg/usercontext"
)

// AdminFundingController lets admins grant subscription time without a
// billing vendor transaction.
type AdminFundingController struct {
	service *funding.Service
}

// NewAdminFundingController creates a funding controller backed by the
// default database handle.
func NewAdminFundingController() *AdminFundingController {
	return &AdminFundingController{
		service: funding.NewServiceFromDB(database.GetDB()),
	}
}

type grantFundingRequest struct {
	UserID uint    `json:"user_id" validate:"required,min=1"`
	Months int     `json:"months" validate:"omitempty,min=1,max=120"`
	Amount float64 `json:"amount" validate:"omitempty,min=0"`
}

// HandleGrantFunding creates an AdminFunding audit row and extends or creates
// the target user's subscription.
func (fc *AdminFundingController) HandleGrantFunding(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req grantFundingRequest
	if err := c.BodyParser(&req); err != nil {
		return JSONError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return JSONValidationError(c, err)
	}

	result, err := fc.service.GrantFunding(c.Context(), req.UserID, userCtx.UserID, req.Months, req.Amount)
	if err != nil {
		if errors.Is(err, funding.ErrUserNotFound) {
			return JSONError(c, fiber.StatusNotFound, "user not found")
		}
		log.Printf("funding: grant failed for user %d by admin %d: %v", req.UserID, userCtx.UserID, err)
		return JSONError(c, fiber.StatusInternalServerError, "failed to grant funding")
	}

	log.Printf("funding: admin %d granted %d month(s) to user %d", userCtx.UserID, result.Funding.Months, req.UserID)
	return JSONCreated(c, result)
}

// HandleListFunding returns the funding audit trail, newest first.
func (fc *AdminFundingController) HandleListFunding(c *fiber.Ctx) error {
	page, perPage, offset := ParsePagination(c)

	db := database.GetDB()
	var grants []models.AdminFunding
	if err := db.Order("created_at DESC").Offset(offset).Limit(perPage).Find(&grants).Error; err != nil {
		log.Printf("funding: audit list failed: %v", err)
		return JSONError(c, fiber.StatusInternalServerError, "failed to load funding history")
	}
	var total int64
	if err := db.Model(&models.AdminFunding{}).Count(&total).Error; err != nil {
		log.Printf("funding: audit count failed: %v", err)
		return JSONError(c, fiber.StatusInternalServerError, "failed to load funding history")
	}

	return JSONSuccess(c, fiber.Map{
		"grants":   grants,
		"page":     page,
		"per_page": perPage,
		"total":    total,
	})
}
