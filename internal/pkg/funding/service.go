package funding

import (
	"context"
	"errors"
	"time"

	"github.com/flixhive/flixhive/app/models"
	"gorm.io/gorm"
)

// ErrUserNotFound marks a grant against a user id that does not exist. The
// check runs before any write.
var ErrUserNotFound = errors.New("funding target user not found")

// DefaultMonths is granted when the caller does not specify a duration.
const DefaultMonths = 3

// Service lets an admin grant subscription time directly, bypassing the
// billing vendor. Funded subscriptions never acquire a vendor id.
type Service struct {
	repo Repository
}

// NewService creates a funding service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NewServiceFromDB creates a funding service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}

// GrantResult carries the rows a grant produced.
type GrantResult struct {
	Funding      *models.AdminFunding `json:"funding"`
	Subscription *models.Subscription `json:"subscription"`
}

// GrantFunding creates an audit row and extends (or creates) the user's
// latest subscription through now+months. The writes below are independent;
// a failure leaves the earlier ones in place.
func (s *Service) GrantFunding(ctx context.Context, userID, adminID uint, months int, amount float64) (*GrantResult, error) {
	_ = ctx
	if userID == 0 || adminID == 0 {
		return nil, errors.New("user_id and admin_id are required")
	}
	if months <= 0 {
		months = DefaultMonths
	}
	if amount < 0 {
		amount = 0
	}

	if _, err := s.repo.GetUserByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	now := time.Now()
	endDate := now.AddDate(0, months, 0)

	funding := &models.AdminFunding{
		UserID:    userID,
		AdminID:   adminID,
		Amount:    amount,
		Months:    months,
		StartDate: now,
		EndDate:   endDate,
		Status:    models.FundingStatusActive,
	}
	if err := s.repo.CreateFunding(funding); err != nil {
		return nil, err
	}

	sub, err := s.repo.GetLatestSubscriptionByUser(userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		sub = &models.Subscription{
			UserID:        userID,
			PlanType:      models.PlanTypeMonthly,
			Status:        models.SubscriptionStatusActive,
			FundedByAdmin: true,
			StartDate:     &now,
			EndDate:       &endDate,
		}
		if err := s.repo.CreateSubscription(sub); err != nil {
			return nil, err
		}
	} else {
		// The granted period replaces whatever end the row had.
		sub.EndDate = &endDate
		sub.FundedByAdmin = true
		sub.Status = models.SubscriptionStatusActive
		if err := s.repo.SaveSubscription(sub); err != nil {
			return nil, err
		}
	}

	if err := s.repo.UpdateUserSubscriptionStatus(userID, models.SUBSCRIPTION_ACTIVE); err != nil {
		return nil, err
	}

	return &GrantResult{Funding: funding, Subscription: sub}, nil
}
