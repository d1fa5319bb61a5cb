package funding

import (
	"github.com/flixhive/flixhive/app/models"
	"gorm.io/gorm"
)

// Repository provides DB operations used by the funding service.
type Repository interface {
	GetUserByID(id uint) (*models.User, error)
	CreateFunding(funding *models.AdminFunding) error
	GetLatestSubscriptionByUser(userID uint) (*models.Subscription, error)
	CreateSubscription(sub *models.Subscription) error
	SaveSubscription(sub *models.Subscription) error
	UpdateUserSubscriptionStatus(userID uint, status string) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a funding repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormRepository) CreateFunding(funding *models.AdminFunding) error {
	return r.db.Create(funding).Error
}

func (r *gormRepository) GetLatestSubscriptionByUser(userID uint) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) CreateSubscription(sub *models.Subscription) error {
	return r.db.Create(sub).Error
}

func (r *gormRepository) SaveSubscription(sub *models.Subscription) error {
	return r.db.Save(sub).Error
}

func (r *gormRepository) UpdateUserSubscriptionStatus(userID uint, status string) error {
	return r.db.Model(&models.User{}).Where("id = ?", userID).
		Update("subscription_status", status).Error
}
