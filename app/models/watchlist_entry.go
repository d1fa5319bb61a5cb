package models

import "time"

// WatchlistEntry links a user to a movie they saved for later. The composite
// unique index makes repeated adds a no-op at the database level.
type WatchlistEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index:ux_watchlist_user_movie,unique,priority:1" json:"user_id"`
	MovieID   uint      `gorm:"not null;index:ux_watchlist_user_movie,unique,priority:2" json:"movie_id"`
	Movie     Movie     `gorm:"foreignKey:MovieID" json:"movie,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (WatchlistEntry) TableName() string {
	return "watchlist_entries"
}
