package repository

import (
	"time"

	"github.com/flixhive/flixhive/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByUUID(uuid string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByActivationToken(token string) (*models.User, error)
	GetByAPIKeyHash(hash string) (*models.User, *models.UserSettings, error)
	GetByStripeCustomerID(customerID string) (*models.User, error)
	Update(user *models.User) error
	Delete(id uint) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)
	Search(query string, offset, limit int) ([]models.User, error)
	CountSearch(query string) (int64, error)
}

// MovieRepository defines the interface for catalog database operations
type MovieRepository interface {
	Create(movie *models.Movie) error
	GetByID(id uint) (*models.Movie, error)
	GetByTmdbID(tmdbID int64) (*models.Movie, error)
	Update(movie *models.Movie) error
	List(offset, limit int) ([]models.Movie, error)
	Count() (int64, error)
	UpsertGenres(genres []models.Genre) ([]models.Genre, error)
	ListGenres() ([]models.Genre, error)
	ReplaceGenres(movie *models.Movie, genres []models.Genre) error
}

// WatchlistRepository defines the interface for watchlist operations
type WatchlistRepository interface {
	ListByUser(userID uint, offset, limit int) ([]models.WatchlistEntry, error)
	CountByUser(userID uint) (int64, error)
	Add(entry *models.WatchlistEntry) error
	Remove(userID, movieID uint) (int64, error)
	Exists(userID, movieID uint) (bool, error)
}

// AnnouncementRepository defines the interface for announcement operations
type AnnouncementRepository interface {
	Create(announcement *models.Announcement) error
	GetByID(id uint) (*models.Announcement, error)
	GetBySlug(slug string) (*models.Announcement, error)
	GetPublished(offset, limit int) ([]models.Announcement, error)
	GetAll(offset, limit int) ([]models.Announcement, error)
	Update(announcement *models.Announcement) error
	Delete(id uint) error
	SlugExists(slug string) (bool, error)
}

// SettingRepository defines the interface for application settings
type SettingRepository interface {
	Get() (*models.AppSettings, error)
	Save(settings *models.AppSettings) error
	GetValue(key string) (string, error)
	SetValue(key, value string) error
}

// QueueRepository defines the interface for cache/queue operations
type QueueRepository interface {
	GetAllKeys() ([]string, error)
	GetValue(key string) (string, error)
	GetTTL(key string) (time.Duration, error)
	DeleteKey(key string) (int64, error)
	GetListLength(key string) (int64, error)
	FindKeysByPatterns(patterns []string) ([]string, error)
	DeleteKeys(keys []string) (int64, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	User         UserRepository
	Movie        MovieRepository
	Watchlist    WatchlistRepository
	Announcement AnnouncementRepository
	Setting      SettingRepository
	Queue        QueueRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Movie:        NewMovieRepository(db),
		Watchlist:    NewWatchlistRepository(db),
		Announcement: NewAnnouncementRepository(db),
		Setting:      NewSettingRepository(db),
		Queue:        NewQueueRepository(),
	}
}
