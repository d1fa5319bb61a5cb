package models

import "time"

// WebhookEvent stores every webhook delivery we have seen, keyed by the
// vendor event id. Redeliveries of successfully reconciled events
// short-circuit before touching billing state; ProcessingError keeps the
// last failure so a redelivery after a failed attempt gets reprocessed.
type WebhookEvent struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Provider        string     `gorm:"type:varchar(32);not null;index:ux_webhook_provider_event,unique,priority:1" json:"provider"`
	EventID         string     `gorm:"type:varchar(191);not null;index:ux_webhook_provider_event,unique,priority:2" json:"event_id"`
	EventType       string     `gorm:"type:varchar(100);not null;index" json:"event_type"`
	Payload         string     `gorm:"type:longtext" json:"-"`
	Processed       bool       `gorm:"not null;default:false;index" json:"processed"`
	ProcessedAt     *time.Time `json:"processed_at,omitempty"`
	ProcessingError string     `gorm:"type:text" json:"processing_error,omitempty"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (WebhookEvent) TableName() string {
	return "webhook_events"
}

// Reconciled reports whether this delivery completed without a processing
// error. Only such events are safe to acknowledge on redelivery without
// another reconciliation attempt.
func (e *WebhookEvent) Reconciled() bool {
	return e != nil && e.Processed && e.ProcessingError == ""
}
