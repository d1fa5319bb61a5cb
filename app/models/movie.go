package models

import (
	"time"

	"gorm.io/gorm"
)

// Movie is a catalog entry backed by TMDB metadata. PosterObjectKey points
// at the mirrored artwork in object storage once the mirror job has run;
// until then clients fall back to PosterPath on the TMDB CDN.
type Movie struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	TmdbID            int64          `gorm:"not null;uniqueIndex" json:"tmdb_id"`
	Title             string         `gorm:"type:varchar(255);not null;index" json:"title"`
	OriginalTitle     string         `gorm:"type:varchar(255)" json:"original_title"`
	Overview          string         `gorm:"type:text" json:"overview"`
	Tagline           string         `gorm:"type:varchar(500)" json:"tagline"`
	ReleaseDate       *time.Time     `json:"release_date,omitempty"`
	Runtime           int            `gorm:"default:0" json:"runtime"`
	PosterPath        string         `gorm:"type:varchar(255)" json:"poster_path"`
	BackdropPath      string         `gorm:"type:varchar(255)" json:"backdrop_path"`
	PosterObjectKey   string         `gorm:"type:varchar(255)" json:"poster_object_key"`
	BackdropObjectKey string         `gorm:"type:varchar(255)" json:"backdrop_object_key"`
	VoteAverage       float64        `gorm:"type:decimal(3,1);default:0" json:"vote_average"`
	VoteCount         int            `gorm:"default:0" json:"vote_count"`
	Popularity        float64        `gorm:"default:0" json:"popularity"`
	Adult             bool           `gorm:"default:false" json:"adult"`
	OriginalLang      string         `gorm:"type:varchar(10)" json:"original_language"`
	ViewCount         uint64         `gorm:"default:0" json:"view_count"`
	Genres            []Genre        `gorm:"many2many:movie_genres;" json:"genres,omitempty"`
	CreatedAt         time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

// ReleaseYear returns the four digit year or 0 when the release date is
// unknown.
func (m *Movie) ReleaseYear() int {
	if m.ReleaseDate == nil {
		return 0
	}
	return m.ReleaseDate.Year()
}
