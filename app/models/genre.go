package models

import "time"

// Genre mirrors the TMDB genre list. TmdbID is the vendor id so imports
// stay idempotent.
type Genre struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TmdbID    int64     `gorm:"not null;uniqueIndex" json:"tmdb_id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	Movies    []Movie   `gorm:"many2many:movie_genres;" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
