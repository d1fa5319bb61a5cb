package repository

import (
	"github.com/flixhive/flixhive/app/models"
	"gorm.io/gorm"
)

// announcementRepository implements the AnnouncementRepository interface
type announcementRepository struct {
	db *gorm.DB
}

// NewAnnouncementRepository creates a new announcement repository instance
func NewAnnouncementRepository(db *gorm.DB) AnnouncementRepository {
	return &announcementRepository{db: db}
}

// Create creates a new announcement
func (r *announcementRepository) Create(announcement *models.Announcement) error {
	return r.db.Create(announcement).Error
}

// GetByID retrieves an announcement by ID
func (r *announcementRepository) GetByID(id uint) (*models.Announcement, error) {
	var announcement models.Announcement
	err := r.db.First(&announcement, id).Error
	if err != nil {
		return nil, err
	}
	return &announcement, nil
}

// GetBySlug retrieves an announcement by its slug
func (r *announcementRepository) GetBySlug(slug string) (*models.Announcement, error) {
	var announcement models.Announcement
	err := r.db.Where("slug = ?", slug).First(&announcement).Error
	if err != nil {
		return nil, err
	}
	return &announcement, nil
}

// GetPublished retrieves published announcements, newest first
func (r *announcementRepository) GetPublished(offset, limit int) ([]models.Announcement, error) {
	var announcements []models.Announcement
	err := r.db.Where("published = ?", true).
		Order("published_at DESC").Offset(offset).Limit(limit).Find(&announcements).Error
	return announcements, err
}

// GetAll retrieves all announcements regardless of publish state
func (r *announcementRepository) GetAll(offset, limit int) ([]models.Announcement, error) {
	var announcements []models.Announcement
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&announcements).Error
	return announcements, err
}

// Update updates an existing announcement
func (r *announcementRepository) Update(announcement *models.Announcement) error {
	return r.db.Save(announcement).Error
}

// Delete soft-deletes an announcement by ID
func (r *announcementRepository) Delete(id uint) error {
	return r.db.Delete(&models.Announcement{}, id).Error
}

// SlugExists reports whether a slug is already taken
func (r *announcementRepository) SlugExists(slug string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Announcement{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}
