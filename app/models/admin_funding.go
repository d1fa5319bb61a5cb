package models

import "time"

const (
	FundingStatusActive    = "active"
	FundingStatusExpired   = "expired"
	FundingStatusCancelled = "cancelled"
)

// AdminFunding is the audit trail for manually granted subscription time.
// One row per grant, never updated by the billing webhook path.
type AdminFunding struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	AdminID   uint      `gorm:"not null;index" json:"admin_id"`
	Amount    float64   `gorm:"type:decimal(10,2);not null;default:0" json:"amount"`
	Months    int       `gorm:"not null;default:3" json:"months"`
	StartDate time.Time `gorm:"not null" json:"start_date"`
	EndDate   time.Time `gorm:"not null" json:"end_date"`
	Status    string    `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	Notes     string    `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (AdminFunding) TableName() string {
	return "admin_funding"
}
