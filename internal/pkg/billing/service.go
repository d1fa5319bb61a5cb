package billing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/flixhive/flixhive/app/models"
	"gorm.io/gorm"
)

// Service reconciles vendor-reported billing state into local tables. It
// never talks to the vendor SDK; verified, normalized events come in through
// the gateway boundary.
type Service struct {
	repo Repository
}

// NewService creates a billing service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NewServiceFromDB creates a billing service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}

// SyncSubscription upserts a subscription row keyed by the vendor
// subscription id. Full-field overwrite: whichever event is processed last
// wins, regardless of vendor-side ordering.
func (s *Service) SyncSubscription(ctx context.Context, in NormalizedSubscription) (*models.Subscription, error) {
	_ = ctx
	vendorID := strings.TrimSpace(in.VendorSubscriptionID)
	if vendorID == "" {
		return nil, errors.New("vendor_subscription_id is required")
	}
	if in.UserID == 0 {
		return nil, ErrMissingOwner
	}

	sub := &models.Subscription{
		UserID:               in.UserID,
		StripeSubscriptionID: &vendorID,
		Status:               MapSubscriptionStatus(in.VendorStatus),
		PlanType:             MapBillingInterval(in.BillingInterval),
		StartDate:            in.CurrentPeriodStart,
		EndDate:              in.CurrentPeriodEnd,
		CurrentPeriodStart:   in.CurrentPeriodStart,
		CurrentPeriodEnd:     in.CurrentPeriodEnd,
		CancelAtPeriodEnd:    in.CancelAtPeriodEnd,
	}
	if err := s.repo.UpsertSubscription(sub); err != nil {
		return nil, &ReconciliationError{Op: "upsert_subscription", Err: err}
	}

	if err := s.refreshUserSubscriptionStatus(in.UserID); err != nil {
		return sub, &ReconciliationError{Op: "refresh_user_status", Err: err}
	}
	return sub, nil
}

// HandleSubscriptionDeleted marks the matching subscription cancelled and
// stamps the cancellation time. A delete for an unknown vendor id is a no-op,
// not an error.
func (s *Service) HandleSubscriptionDeleted(ctx context.Context, vendorSubscriptionID string) (*models.Subscription, error) {
	_ = ctx
	vendorID := strings.TrimSpace(vendorSubscriptionID)
	if vendorID == "" {
		return nil, errors.New("vendor_subscription_id is required")
	}

	sub, err := s.repo.GetSubscriptionByVendorID(vendorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, &ReconciliationError{Op: "load_subscription", Err: err}
	}

	now := time.Now()
	sub.Status = models.SubscriptionStatusCancelled
	sub.CancelledAt = &now
	if err := s.repo.SaveSubscription(sub); err != nil {
		return nil, &ReconciliationError{Op: "cancel_subscription", Err: err}
	}

	if err := s.refreshUserSubscriptionStatus(sub.UserID); err != nil {
		return sub, &ReconciliationError{Op: "refresh_user_status", Err: err}
	}
	return sub, nil
}

// SyncPayment upserts a payment row keyed by the vendor payment-intent id.
// The vendor reports minor units; the stored amount is decimal currency
// units. The payment links to the owner's most recent subscription when one
// exists.
func (s *Service) SyncPayment(ctx context.Context, in NormalizedPayment) (*models.Payment, error) {
	_ = ctx
	vendorID := strings.TrimSpace(in.VendorPaymentIntentID)
	if vendorID == "" {
		return nil, errors.New("vendor_payment_intent_id is required")
	}
	if in.UserID == 0 {
		return nil, ErrMissingOwner
	}

	currency := strings.ToLower(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = "usd"
	}

	payment := &models.Payment{
		UserID:                in.UserID,
		StripePaymentIntentID: vendorID,
		Amount:                float64(in.AmountMinor) / 100,
		Currency:              currency,
		Status:                MapPaymentStatus(in.VendorStatus),
		PaymentMethod:         in.PaymentMethod,
	}

	latest, err := s.repo.GetLatestSubscriptionByUser(in.UserID)
	if err == nil {
		payment.SubscriptionID = &latest.ID
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &ReconciliationError{Op: "load_latest_subscription", Err: err}
	}

	if err := s.repo.UpsertPayment(payment); err != nil {
		return nil, &ReconciliationError{Op: "upsert_payment", Err: err}
	}
	return payment, nil
}

// refreshUserSubscriptionStatus keeps the denormalized user column in step
// with the latest subscription row.
func (s *Service) refreshUserSubscriptionStatus(userID uint) error {
	latest, err := s.repo.GetLatestSubscriptionByUser(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.repo.UpdateUserSubscriptionStatus(userID, models.SUBSCRIPTION_NONE)
		}
		return err
	}
	return s.repo.UpdateUserSubscriptionStatus(userID, latest.Status)
}

// RecordWebhookEvent persists webhook payloads idempotently. Events without a
// vendor event id fall back to a payload hash key.
func (s *Service) RecordWebhookEvent(ctx context.Context, in WebhookEventInput) (bool, *models.WebhookEvent, error) {
	_ = ctx
	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	if provider == "" {
		return false, nil, errors.New("provider is required")
	}
	eventID := strings.TrimSpace(in.ProviderEventID)
	if eventID == "" {
		sum := sha256.Sum256([]byte(in.PayloadJSON))
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}

	event := &models.WebhookEvent{
		Provider:  provider,
		EventID:   eventID,
		EventType: strings.TrimSpace(in.EventType),
		Payload:   in.PayloadJSON,
	}
	return s.repo.CreateWebhookEventIfNotExists(event)
}

// MarkWebhookProcessed marks an event as processed and stores an optional error.
func (s *Service) MarkWebhookProcessed(ctx context.Context, webhookEventID uint, processingErr error) error {
	_ = ctx
	if webhookEventID == 0 {
		return errors.New("webhook_event_id is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.repo.MarkWebhookProcessed(webhookEventID, errMsg)
}
