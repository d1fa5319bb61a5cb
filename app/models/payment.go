package models

import "time"

const (
	PaymentStatusPending   = "pending"
	PaymentStatusSucceeded = "succeeded"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)

// Payment records a vendor payment intent. Amount is stored in decimal
// currency units (the vendor reports minor units; the reconciliation engine
// divides by 100 before persisting).
type Payment struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`
	UserID                uint      `gorm:"not null;index" json:"user_id"`
	StripePaymentIntentID string    `gorm:"type:varchar(191);not null;uniqueIndex" json:"stripe_payment_intent_id"`
	Amount                float64   `gorm:"type:decimal(10,2);not null;default:0" json:"amount"`
	Currency              string    `gorm:"type:varchar(10);not null;default:'usd'" json:"currency"`
	Status                string    `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	SubscriptionID        *uint     `gorm:"index" json:"subscription_id,omitempty"`
	PaymentMethod         string    `gorm:"type:varchar(50)" json:"payment_method"`
	CreatedAt             time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt             time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
