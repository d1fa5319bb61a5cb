package repository

import (
	"github.com/flixhive/flixhive/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// watchlistRepository implements the WatchlistRepository interface
type watchlistRepository struct {
	db *gorm.DB
}

// NewWatchlistRepository creates a new watchlist repository instance
func NewWatchlistRepository(db *gorm.DB) WatchlistRepository {
	return &watchlistRepository{db: db}
}

// ListByUser retrieves watchlist entries (with movies) for a user, newest first
func (r *watchlistRepository) ListByUser(userID uint, offset, limit int) ([]models.WatchlistEntry, error) {
	var entries []models.WatchlistEntry
	err := r.db.Preload("Movie").Preload("Movie.Genres").
		Where("user_id = ?", userID).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&entries).Error
	return entries, err
}

// CountByUser returns the number of watchlist entries for a user
func (r *watchlistRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.WatchlistEntry{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// Add inserts a watchlist entry; repeated adds are a no-op thanks to the
// composite unique index.
func (r *watchlistRepository) Add(entry *models.WatchlistEntry) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "movie_id"}},
		DoNothing: true,
	}).Create(entry).Error
}

// Remove deletes a watchlist entry and reports how many rows were removed
func (r *watchlistRepository) Remove(userID, movieID uint) (int64, error) {
	tx := r.db.Where("user_id = ? AND movie_id = ?", userID, movieID).
		Delete(&models.WatchlistEntry{})
	return tx.RowsAffected, tx.Error
}

// Exists reports whether a movie is on the user's watchlist
func (r *watchlistRepository) Exists(userID, movieID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.WatchlistEntry{}).
		Where("user_id = ? AND movie_id = ?", userID, movieID).Count(&count).Error
	return count > 0, err
}
