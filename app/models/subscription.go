package models

import "time"

const (
	PlanTypeMonthly = "monthly"
	PlanTypeYearly  = "yearly"
)

const (
	SubscriptionStatusActive    = "active"
	SubscriptionStatusInactive  = "inactive"
	SubscriptionStatusCancelled = "cancelled"
	SubscriptionStatusPastDue   = "past_due"
	SubscriptionStatusTrialing  = "trialing"
)

// Subscription mirrors vendor-reported subscription state for billed rows and
// carries admin-granted access for funded rows. Funded rows never acquire a
// vendor subscription ID, hence the nullable unique column.
//
// There is deliberately no single-current-subscription constraint: readers
// always take the most recent row by creation time.
type Subscription struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	UserID               uint       `gorm:"not null;index" json:"user_id"`
	StripeSubscriptionID *string    `gorm:"type:varchar(191);default:null;uniqueIndex" json:"stripe_subscription_id,omitempty"`
	Status               string     `gorm:"type:varchar(20);not null;default:'inactive';index" json:"status"`
	PlanType             string     `gorm:"type:varchar(10);not null;default:'monthly'" json:"plan_type"`
	StartDate            *time.Time `gorm:"type:timestamp;default:null" json:"start_date,omitempty"`
	EndDate              *time.Time `gorm:"type:timestamp;default:null" json:"end_date,omitempty"`
	CurrentPeriodStart   *time.Time `gorm:"type:timestamp;default:null" json:"current_period_start,omitempty"`
	CurrentPeriodEnd     *time.Time `gorm:"type:timestamp;default:null" json:"current_period_end,omitempty"`
	CancelAtPeriodEnd    bool       `gorm:"default:false" json:"cancel_at_period_end"`
	FundedByAdmin        bool       `gorm:"default:false" json:"funded_by_admin"`
	CancelledAt          *time.Time `gorm:"type:timestamp;default:null" json:"cancelled_at,omitempty"`
	CreatedAt            time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt            time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsEntitling reports whether this row grants playback access.
func (s *Subscription) IsEntitling() bool {
	switch s.Status {
	case SubscriptionStatusActive, SubscriptionStatusTrialing:
		return true
	default:
		return false
	}
}
