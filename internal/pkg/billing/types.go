package billing

import "time"

// NormalizedSubscription is the vendor-agnostic shape used by the billing
// service when syncing external subscription state into local tables. The
// gateway validates vendor payloads once at the boundary and emits this.
type NormalizedSubscription struct {
	UserID               uint
	VendorSubscriptionID string
	VendorStatus         string
	BillingInterval      string
	CancelAtPeriodEnd    bool
	CurrentPeriodStart   *time.Time
	CurrentPeriodEnd     *time.Time
	RawPayloadJSON       string
}

// NormalizedPayment is the vendor-agnostic shape for payment-intent events.
// AmountMinor is the vendor's minor-unit integer, converted to decimal
// currency units when persisted.
type NormalizedPayment struct {
	UserID                uint
	VendorPaymentIntentID string
	AmountMinor           int64
	Currency              string
	VendorStatus          string
	PaymentMethod         string
	RawPayloadJSON        string
}

// WebhookEventInput is the normalized input for webhook event persistence.
type WebhookEventInput struct {
	Provider        string
	ProviderEventID string
	EventType       string
	PayloadJSON     string
}
