package repository

import (
	"github.com/flixhive/flixhive/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// movieRepository implements the MovieRepository interface
type movieRepository struct {
	db *gorm.DB
}

// NewMovieRepository creates a new movie repository instance
func NewMovieRepository(db *gorm.DB) MovieRepository {
	return &movieRepository{db: db}
}

// Create creates a new movie in the database
func (r *movieRepository) Create(movie *models.Movie) error {
	return r.db.Create(movie).Error
}

// GetByID retrieves a movie (with genres) by its internal ID
func (r *movieRepository) GetByID(id uint) (*models.Movie, error) {
	var movie models.Movie
	err := r.db.Preload("Genres").First(&movie, id).Error
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

// GetByTmdbID retrieves a movie (with genres) by its vendor ID
func (r *movieRepository) GetByTmdbID(tmdbID int64) (*models.Movie, error) {
	var movie models.Movie
	err := r.db.Preload("Genres").Where("tmdb_id = ?", tmdbID).First(&movie).Error
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

// Update updates an existing movie in the database
func (r *movieRepository) Update(movie *models.Movie) error {
	return r.db.Save(movie).Error
}

// List retrieves movies with pagination, most popular first
func (r *movieRepository) List(offset, limit int) ([]models.Movie, error) {
	var movies []models.Movie
	err := r.db.Preload("Genres").Order("popularity DESC").
		Offset(offset).Limit(limit).Find(&movies).Error
	return movies, err
}

// Count returns the total number of movies
func (r *movieRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Movie{}).Count(&count).Error
	return count, err
}

// UpsertGenres creates-or-keeps genres keyed by vendor ID and returns the
// stored rows so callers get local primary keys.
func (r *movieRepository) UpsertGenres(genres []models.Genre) ([]models.Genre, error) {
	if len(genres) == 0 {
		return nil, nil
	}

	if err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tmdb_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "updated_at"}),
	}).Create(&genres).Error; err != nil {
		return nil, err
	}

	tmdbIDs := make([]int64, 0, len(genres))
	for _, g := range genres {
		tmdbIDs = append(tmdbIDs, g.TmdbID)
	}
	var stored []models.Genre
	if err := r.db.Where("tmdb_id IN ?", tmdbIDs).Find(&stored).Error; err != nil {
		return nil, err
	}
	return stored, nil
}

// ListGenres returns all genres ordered by name
func (r *movieRepository) ListGenres() ([]models.Genre, error) {
	var genres []models.Genre
	err := r.db.Order("name ASC").Find(&genres).Error
	return genres, err
}

// ReplaceGenres sets the genre associations of a movie
func (r *movieRepository) ReplaceGenres(movie *models.Movie, genres []models.Genre) error {
	return r.db.Model(movie).Association("Genres").Replace(genres)
}
