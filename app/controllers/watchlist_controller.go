package controllers

import (
	"errors"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/flixhive/flixhive/app/models"
	"github.com/flixhive/flixhive/app/repository"
	"github.com/flixhive/flixhive/internal/pkg/usercontext"
)

// WatchlistController handles the caller's saved-movies list.
type WatchlistController struct {
	watchlistRepo repository.WatchlistRepository
	movieRepo     repository.MovieRepository
}

// NewWatchlistController creates a watchlist controller with its repositories.
func NewWatchlistController(watchlistRepo repository.WatchlistRepository, movieRepo repository.MovieRepository) *WatchlistController {
	return &WatchlistController{
		watchlistRepo: watchlistRepo,
		movieRepo:     movieRepo,
	}
}

// HandleList returns the caller's watchlist with pagination.
func (wc *WatchlistController) HandleList(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	page, perPage, offset := ParsePagination(c)

	entries, err := wc.watchlistRepo.ListByUser(userCtx.UserID, offset, perPage)
	if err != nil {
		log.Printf("watchlist: list failed for user %d: %v", userCtx.UserID, err)
		return JSONError(c, fiber.StatusInternalServerError, "failed to load watchlist")
	}
	total, err := wc.watchlistRepo.CountByUser(userCtx.UserID)
	if err != nil {
		log.Printf("watchlist: count failed for user %d: %v", userCtx.UserID, err)
		return JSONError(c, fiber.StatusInternalServerError, "failed to load watchlist")
	}

	return JSONSuccess(c, fiber.Map{
		"entries":  entries,
		"page":     page,
		"per_page": perPage,
		"total":    total,
	})
}

// HandleAdd puts a movie on the caller's watchlist. Adding twice is a no-op.
func (wc *WatchlistController) HandleAdd(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	movieID, err := strconv.ParseUint(c.Params("movieID"), 10, 64)
	if err != nil || movieID == 0 {
		return JSONError(c, fiber.StatusBadRequest, "invalid movie id")
	}

	if _, err := wc.movieRepo.GetByID(uint(movieID)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return JSONError(c, fiber.StatusNotFound, "movie not found")
		}
		log.Printf("watchlist: movie lookup failed for %d: %v", movieID, err)
		return JSONError(c, fiber.StatusInternalServerError, "failed to update watchlist")
	}

	entry := &models.WatchlistEntry{UserID: userCtx.UserID, MovieID: uint(movieID)}
	if err := wc.watchlistRepo.Add(entry); err != nil {
		log.Printf("watchlist: add failed for user %d movie %d: %v", userCtx.UserID, movieID, err)
		return JSONError(c, fiber.StatusInternalServerError, "failed to update watchlist")
	}
	return JSONCreated(c, entry)
}

// HandleRemove takes a movie off the caller's watchlist.
func (wc *WatchlistController) HandleRemove(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	movieID, err := strconv.ParseUint(c.Params("movieID"), 10, 64)
	if err != nil || movieID == 0 {
		return JSONError(c, fiber.StatusBadRequest, "invalid movie id")
	}

	removed, err := wc.watchlistRepo.Remove(userCtx.UserID, uint(movieID))
	if err != nil {
		log.Printf("watchlist: remove failed for user %d movie %d: %v", userCtx.UserID, movieID, err)
		return JSONError(c, fiber.StatusInternalServerError, "failed to update watchlist")
	}
	if removed == 0 {
		return JSONError(c, fiber.StatusNotFound, "movie is not on the watchlist")
	}
	return JSONSuccessMessage(c, nil, "removed from watchlist")
}
