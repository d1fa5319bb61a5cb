package controllers

import (
	"errors"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/flixhive/flixhive/app/models"
	"github.com/flixhive/flixhive/app/repository"
	"github.com/flixhive/flixhive/internal/pkg/database"
	"github.com/flixhive/flixhive/internal/pkg/statistics"
	"github.com/flixhive/flixhive/internal/pkg/usercontext"
)

// AdminController handles the admin console endpoints using the repository pattern.
type AdminController struct {
	repos *repository.Repositories
}

// NewAdminController creates a new admin controller with repository dependencies.
func NewAdminController(repos *repository.Repositories) *AdminController {
	return &AdminController{
		repos: repos,
	}
}

// HandleDashboard returns the cached platform statistics.
func (ac *AdminController) HandleDashboard(c *fiber.Ctx) error {
	stats := statistics.GetStatisticsData()

	recentUsers, err := ac.repos.User.List(0, 5)
	if err != nil {
		log.Printf("admin: recent users failed: %v", err)
		return JSONError(c, fiber.StatusInternalServerError, "failed to load dashboard")
	}
	recent := make([]fiber.Map, len(recentUsers))
	for i := range recentUsers {
		recent[i] = userResponse(&recentUsers[i])
	}

	return JSONSuccess(c, fiber.Map{
		"total_users":          stats.TotalUsers,
		"today_signups":        stats.TodaySignups,
		"total_movies":         stats.TotalMovies,
		"active_subscriptions": stats.ActiveSubscriptions,
		"month_revenue":        stats.MonthRevenue,
		"recent_users":         recent,
	})
}

// HandleListUsers returns users, optionally filtered by a search query across
// name and email.
func (ac *AdminController) HandleListUsers(c *fiber.Ctx) error {
	page, perPage, offset := ParsePagination(c)
	search := c.Query("search")

	var (
		users []models.User
		total int64
		err   error
	)
	if search != "" {
		users, err = ac.repos.User.Search(search, offset, perPage)
		if err == nil {
			total, err = ac.repos.User.CountSearch(search)
		}
	} else {
		users, err = ac.repos.User.List(offset, perPage)
		if err == nil {
			total, err = ac.repos.User.Count()
		}
	}
	if err != nil {
		log.Printf("admin: user list failed: %v", err)
		return JSONError(c, fiber.StatusInternalServerError, "failed to load users")
	}

	result := make([]fiber.Map, len(users))
	for i := range users {
		result[i] = userResponse(&users[i])
	}
	return JSONSuccess(c, fiber.Map{
		"users":    result,
		"page":     page,
		"per_page": perPage,
		"total":    total,
	})
}

// HandleGetUser returns a single user with their latest subscription.
func (ac *AdminController) HandleGetUser(c *fiber.Ctx) error {
	user, err := ac.lookupUser(c)
	if err != nil {
		return err
	}

	response := userResponse(user)
	var sub models.Subscription
	if dbErr := database.GetDB().Where("user_id = ?", user.ID).Order("created_at DESC").First(&sub).Error; dbErr == nil {
		response["subscription"] = sub
	}
	return JSONSuccess(c, response)
}

type adminUpdateUserRequest struct {
	Role   *string `json:"role" validate:"omitempty,oneof=user admin"`
	Status *string `json:"status" validate:"omitempty,oneof=active inactive disabled"`
}

// HandleUpdateUser changes a user's role and/or status. Admins cannot demote
// or disable themselves.
func (ac *AdminController) HandleUpdateUser(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	user, err := ac.lookupUser(c)
	if err != nil {
		return err
	}

	var req adminUpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return JSONError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return JSONValidationError(c, err)
	}

	if user.ID == userCtx.UserID {
		if (req.Role != nil && *req.Role != models.ROLE_ADMIN) ||
			(req.Status != nil && *req.Status != models.STATUS_ACTIVE) {
			return JSONError(c, fiber.StatusBadRequest, "cannot change your own role or status")
		}
	}

	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.Status != nil {
		user.Status = *req.Status
	}
	if err := ac.repos.User.Update(user); err != nil {
		log.Printf("admin: user update failed for %d: %v", user.ID, err)
		return JSONError(c, fiber.StatusInternalServerError, "failed to update user")
	}
	return JSONSuccess(c, userResponse(user))
}

// HandleDeleteUser removes a user account.
func (ac *AdminController) HandleDeleteUser(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	user, err := ac.lookupUser(c)
	if err != nil {
		return err
	}
	if user.ID == userCtx.UserID {
		return JSONError(c, fiber.StatusBadRequest, "cannot delete your own account")
	}

	if err := ac.repos.User.Delete(user.ID); err != nil {
		log.Printf("admin: user delete failed for %d: %v", user.ID, err)
		return JSONError(c, fiber.StatusInternalServerError, "failed to delete user")
	}
	return JSONSuccessMessage(c, nil, "user deleted")
}

// HandleListSubscriptions returns the subscription overview, newest first.
func (ac *AdminController) HandleListSubscriptions(c *fiber.Ctx) error {
	page, perPage, offset := ParsePagination(c)

	db := database.GetDB()
	var subs []models.Subscription
	if err := db.Order("created_at DESC").Offset(offset).Limit(perPage).Find(&subs).Error; err != nil {
		log.Printf("admin: subscription list failed: %v", err)
		return JSONError(c, fiber.StatusInternalServerError, "failed to load subscriptions")
	}
	var total int64
	if err := db.Model(&models.Subscription{}).Count(&total).Error; err != nil {
		log.Printf("admin: subscription count failed: %v", err)
		return JSONError(c, fiber.StatusInternalServerError, "failed to load subscriptions")
	}

	return JSONSuccess(c, fiber.Map{
		"subscriptions": subs,
		"page":          page,
		"per_page":      perPage,
		"total":         total,
	})
}

func (ac *AdminController) lookupUser(c *fiber.Ctx) (*models.User, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return nil, JSONError(c, fiber.StatusBadRequest, "invalid user id")
	}
	user, err := ac.repos.User.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, JSONError(c, fiber.StatusNotFound, "user not found")
		}
		log.Printf("admin: user lookup failed for %d: %v", id, err)
		return nil, JSONError(c, fiber.StatusInternalServerError, "failed to load user")
	}
	return user, nil
}
