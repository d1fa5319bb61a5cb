package billing

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/flixhive/flixhive/app/models"
	"gorm.io/gorm"
)

// fakeRepository is an in-memory Repository for service tests. writes counts
// every store mutation so tests can assert that rejected events touch
// nothing.
type fakeRepository struct {
	subs          []*models.Subscription
	payments      []*models.Payment
	userStatuses  map[uint]string
	webhookEvents []*models.WebhookEvent
	nextID        uint
	writes        int
	failUpserts   bool
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{userStatuses: make(map[uint]string)}
}

func (f *fakeRepository) newID() uint {
	f.nextID++
	return f.nextID
}

func (f *fakeRepository) UpsertSubscription(sub *models.Subscription) error {
	if f.failUpserts {
		return errors.New("store unreachable")
	}
	f.writes++
	for _, existing := range f.subs {
		if existing.StripeSubscriptionID != nil && sub.StripeSubscriptionID != nil &&
			*existing.StripeSubscriptionID == *sub.StripeSubscriptionID {
			existing.UserID = sub.UserID
			existing.Status = sub.Status
			existing.PlanType = sub.PlanType
			existing.StartDate = sub.StartDate
			existing.EndDate = sub.EndDate
			existing.CurrentPeriodStart = sub.CurrentPeriodStart
			existing.CurrentPeriodEnd = sub.CurrentPeriodEnd
			existing.CancelAtPeriodEnd = sub.CancelAtPeriodEnd
			existing.UpdatedAt = time.Now()
			*sub = *existing
			return nil
		}
	}
	sub.ID = f.newID()
	sub.CreatedAt = time.Now()
	stored := *sub
	f.subs = append(f.subs, &stored)
	return nil
}

func (f *fakeRepository) GetSubscriptionByVendorID(vendorSubscriptionID string) (*models.Subscription, error) {
	for _, sub := range f.subs {
		if sub.StripeSubscriptionID != nil && *sub.StripeSubscriptionID == vendorSubscriptionID {
			return sub, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) SaveSubscription(sub *models.Subscription) error {
	f.writes++
	for i, existing := range f.subs {
		if existing.ID == sub.ID {
			f.subs[i] = sub
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeRepository) GetLatestSubscriptionByUser(userID uint) (*models.Subscription, error) {
	var latest *models.Subscription
	for _, sub := range f.subs {
		if sub.UserID != userID {
			continue
		}
		if latest == nil || sub.CreatedAt.After(latest.CreatedAt) {
			latest = sub
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return latest, nil
}

func (f *fakeRepository) UpsertPayment(payment *models.Payment) error {
	if f.failUpserts {
		return errors.New("store unreachable")
	}
	f.writes++
	for _, existing := range f.payments {
		if existing.StripePaymentIntentID == payment.StripePaymentIntentID {
			existing.UserID = payment.UserID
			existing.Amount = payment.Amount
			existing.Currency = payment.Currency
			existing.Status = payment.Status
			existing.SubscriptionID = payment.SubscriptionID
			existing.PaymentMethod = payment.PaymentMethod
			existing.UpdatedAt = time.Now()
			*payment = *existing
			return nil
		}
	}
	payment.ID = f.newID()
	payment.CreatedAt = time.Now()
	stored := *payment
	f.payments = append(f.payments, &stored)
	return nil
}

func (f *fakeRepository) UpdateUserSubscriptionStatus(userID uint, status string) error {
	f.writes++
	f.userStatuses[userID] = status
	return nil
}

func (f *fakeRepository) CreateWebhookEventIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error) {
	for _, existing := range f.webhookEvents {
		if existing.Provider == event.Provider && existing.EventID == event.EventID {
			return false, existing, nil
		}
	}
	f.writes++
	event.ID = f.newID()
	stored := *event
	f.webhookEvents = append(f.webhookEvents, &stored)
	return true, &stored, nil
}

func (f *fakeRepository) MarkWebhookProcessed(id uint, processingError string) error {
	f.writes++
	for _, event := range f.webhookEvents {
		if event.ID == id {
			now := time.Now()
			event.Processed = true
			event.ProcessedAt = &now
			event.ProcessingError = processingError
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func timePtr(t time.Time) *time.Time { return &t }

func TestSyncSubscriptionCreatesRow(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	sub, err := svc.SyncSubscription(context.Background(), NormalizedSubscription{
		UserID:               42,
		VendorSubscriptionID: "sub_123",
		VendorStatus:         "active",
		BillingInterval:      "month",
		CurrentPeriodStart:   timePtr(start),
		CurrentPeriodEnd:     timePtr(end),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.subs) != 1 {
		t.Fatalf("expected 1 subscription row, got %d", len(repo.subs))
	}
	if sub.Status != models.SubscriptionStatusActive {
		t.Fatalf("expected status active, got %q", sub.Status)
	}
	if sub.PlanType != models.PlanTypeMonthly {
		t.Fatalf("expected monthly plan, got %q", sub.PlanType)
	}
	if repo.userStatuses[42] != models.SUBSCRIPTION_ACTIVE {
		t.Fatalf("expected user status active, got %q", repo.userStatuses[42])
	}
}

func TestSyncSubscriptionIdempotent(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)

	in := NormalizedSubscription{
		UserID:               42,
		VendorSubscriptionID: "sub_123",
		VendorStatus:         "active",
		BillingInterval:      "year",
		CancelAtPeriodEnd:    true,
	}

	first, err := svc.SyncSubscription(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error on first sync: %v", err)
	}
	second, err := svc.SyncSubscription(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error on second sync: %v", err)
	}

	if len(repo.subs) != 1 {
		t.Fatalf("expected 1 subscription row after replay, got %d", len(repo.subs))
	}
	if first.ID != second.ID {
		t.Fatalf("expected same row, got ids %d and %d", first.ID, second.ID)
	}
	if second.Status != first.Status || second.PlanType != first.PlanType ||
		second.CancelAtPeriodEnd != first.CancelAtPeriodEnd {
		t.Fatalf("expected identical fields after replay: %+v vs %+v", first, second)
	}
}

func TestSyncSubscriptionOverwritesOnUpdate(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)

	_, err := svc.SyncSubscription(context.Background(), NormalizedSubscription{
		UserID:               42,
		VendorSubscriptionID: "sub_123",
		VendorStatus:         "trialing",
		BillingInterval:      "month",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated, err := svc.SyncSubscription(context.Background(), NormalizedSubscription{
		UserID:               42,
		VendorSubscriptionID: "sub_123",
		VendorStatus:         "past_due",
		BillingInterval:      "year",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.subs) != 1 {
		t.Fatalf("expected 1 row, got %d", len(repo.subs))
	}
	if updated.Status != models.SubscriptionStatusPastDue {
		t.Fatalf("expected past_due after overwrite, got %q", updated.Status)
	}
	if updated.PlanType != models.PlanTypeYearly {
		t.Fatalf("expected yearly after overwrite, got %q", updated.PlanType)
	}
	if repo.userStatuses[42] != models.SUBSCRIPTION_PAST_DUE {
		t.Fatalf("expected user status past_due, got %q", repo.userStatuses[42])
	}
}

func TestSyncSubscriptionUnknownStatusIsInactive(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)

	sub, err := svc.SyncSubscription(context.Background(), NormalizedSubscription{
		UserID:               42,
		VendorSubscriptionID: "sub_123",
		VendorStatus:         "totally_new_vendor_state",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.Status != models.SubscriptionStatusInactive {
		t.Fatalf("expected inactive for unknown vendor status, got %q", sub.Status)
	}
}

func TestSyncSubscriptionMissingOwner(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)

	_, err := svc.SyncSubscription(context.Background(), NormalizedSubscription{
		UserID:               0,
		VendorSubscriptionID: "sub_123",
		VendorStatus:         "active",
	})
	if !errors.Is(err, ErrMissingOwner) {
		t.Fatalf("expected ErrMissingOwner, got %v", err)
	}
	if repo.writes != 0 {
		t.Fatalf("expected zero store writes for owner-less event, got %d", repo.writes)
	}
}

func TestHandleSubscriptionDeleted(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)

	_, err := svc.SyncSubscription(context.Background(), NormalizedSubscription{
		UserID:               42,
		VendorSubscriptionID: "sub_123",
		VendorStatus:         "active",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sub, err := svc.HandleSubscriptionDeleted(context.Background(), "sub_123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub == nil {
		t.Fatalf("expected cancelled subscription, got nil")
	}
	if sub.Status != models.SubscriptionStatusCancelled {
		t.Fatalf("expected cancelled, got %q", sub.Status)
	}
	if sub.CancelledAt == nil {
		t.Fatalf("expected cancellation timestamp to be set")
	}
	if repo.userStatuses[42] != models.SUBSCRIPTION_CANCELLED {
		t.Fatalf("expected user status cancelled, got %q", repo.userStatuses[42])
	}
}

func TestHandleSubscriptionDeletedUnknownIsNoop(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)

	sub, err := svc.HandleSubscriptionDeleted(context.Background(), "sub_missing")
	if err != nil {
		t.Fatalf("expected no error for unknown vendor id, got %v", err)
	}
	if sub != nil {
		t.Fatalf("expected nil subscription for unknown vendor id")
	}
	if repo.writes != 0 {
		t.Fatalf("expected zero writes for unknown vendor id, got %d", repo.writes)
	}
}

func TestSyncPaymentConvertsMinorUnits(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)

	payment, err := svc.SyncPayment(context.Background(), NormalizedPayment{
		UserID:                42,
		VendorPaymentIntentID: "pi_123",
		AmountMinor:           1999,
		Currency:              "usd",
		VendorStatus:          "succeeded",
		PaymentMethod:         "card",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payment.Amount != 19.99 {
		t.Fatalf("expected amount 19.99, got %v", payment.Amount)
	}
	if payment.Currency != "usd" {
		t.Fatalf("expected currency usd, got %q", payment.Currency)
	}
	if payment.Status != models.PaymentStatusSucceeded {
		t.Fatalf("expected succeeded, got %q", payment.Status)
	}
}

func TestSyncPaymentLinksLatestSubscription(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)

	older := "sub_old"
	newer := "sub_new"
	repo.subs = append(repo.subs, &models.Subscription{
		ID: 1, UserID: 42, StripeSubscriptionID: &older,
		Status: models.SubscriptionStatusCancelled, CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	repo.subs = append(repo.subs, &models.Subscription{
		ID: 2, UserID: 42, StripeSubscriptionID: &newer,
		Status: models.SubscriptionStatusActive, CreatedAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	repo.nextID = 2

	payment, err := svc.SyncPayment(context.Background(), NormalizedPayment{
		UserID:                42,
		VendorPaymentIntentID: "pi_123",
		AmountMinor:           999,
		VendorStatus:          "succeeded",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payment.SubscriptionID == nil || *payment.SubscriptionID != 2 {
		t.Fatalf("expected payment linked to latest subscription 2, got %v", payment.SubscriptionID)
	}
}

func TestSyncPaymentWithoutSubscription(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)

	payment, err := svc.SyncPayment(context.Background(), NormalizedPayment{
		UserID:                42,
		VendorPaymentIntentID: "pi_123",
		AmountMinor:           500,
		VendorStatus:          "failed",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payment.SubscriptionID != nil {
		t.Fatalf("expected no subscription link, got %v", *payment.SubscriptionID)
	}
	if payment.Status != models.PaymentStatusFailed {
		t.Fatalf("expected failed, got %q", payment.Status)
	}
}

func TestSyncPaymentIdempotent(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)

	in := NormalizedPayment{
		UserID:                42,
		VendorPaymentIntentID: "pi_123",
		AmountMinor:           1999,
		VendorStatus:          "succeeded",
	}

	first, err := svc.SyncPayment(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.SyncPayment(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.payments) != 1 {
		t.Fatalf("expected 1 payment row after replay, got %d", len(repo.payments))
	}
	if first.ID != second.ID || first.Amount != second.Amount {
		t.Fatalf("expected identical payment after replay: %+v vs %+v", first, second)
	}
}

func TestSyncPaymentMissingOwner(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)

	_, err := svc.SyncPayment(context.Background(), NormalizedPayment{
		VendorPaymentIntentID: "pi_123",
		AmountMinor:           1999,
		VendorStatus:          "succeeded",
	})
	if !errors.Is(err, ErrMissingOwner) {
		t.Fatalf("expected ErrMissingOwner, got %v", err)
	}
	if repo.writes != 0 {
		t.Fatalf("expected zero store writes, got %d", repo.writes)
	}
}

func TestSyncSubscriptionPersistenceFailure(t *testing.T) {
	repo := newFakeRepository()
	repo.failUpserts = true
	svc := NewService(repo)

	_, err := svc.SyncSubscription(context.Background(), NormalizedSubscription{
		UserID:               42,
		VendorSubscriptionID: "sub_123",
		VendorStatus:         "active",
	})
	var recErr *ReconciliationError
	if !errors.As(err, &recErr) {
		t.Fatalf("expected ReconciliationError, got %v", err)
	}
}

func TestRecordWebhookEventDeduplicates(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)

	in := WebhookEventInput{
		Provider:        ProviderStripe,
		ProviderEventID: "evt_123",
		EventType:       EventSubscriptionUpdated,
		PayloadJSON:     `{"id":"evt_123"}`,
	}

	created, first, err := svc.RecordWebhookEvent(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Fatalf("expected first delivery to create the event")
	}

	created, second, err := svc.RecordWebhookEvent(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Fatalf("expected redelivery to be deduplicated")
	}
	if first.ID != second.ID {
		t.Fatalf("expected same stored event, got ids %d and %d", first.ID, second.ID)
	}
}

func TestRecordWebhookEventHashFallback(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)

	_, event, err := svc.RecordWebhookEvent(context.Background(), WebhookEventInput{
		Provider:    ProviderStripe,
		EventType:   EventPaymentSucceeded,
		PayloadJSON: `{"amount":1999}`,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(event.EventID, "hash:") {
		t.Fatalf("expected hash fallback event id, got %q", event.EventID)
	}
}

func TestMarkWebhookProcessed(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)

	_, event, err := svc.RecordWebhookEvent(context.Background(), WebhookEventInput{
		Provider:        ProviderStripe,
		ProviderEventID: "evt_123",
		EventType:       EventSubscriptionUpdated,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.MarkWebhookProcessed(context.Background(), event.ID, errors.New("boom")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored := repo.webhookEvents[0]
	if !stored.Processed || stored.ProcessedAt == nil {
		t.Fatalf("expected event marked processed")
	}
	if stored.ProcessingError != "boom" {
		t.Fatalf("expected processing error recorded, got %q", stored.ProcessingError)
	}
}

func TestWebhookRedeliveryAfterFailureReprocesses(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)
	ctx := context.Background()

	in := WebhookEventInput{
		Provider:        ProviderStripe,
		ProviderEventID: "evt_retry",
		EventType:       EventSubscriptionUpdated,
		PayloadJSON:     `{"id":"evt_retry"}`,
	}
	normalized := NormalizedSubscription{
		UserID:               42,
		VendorSubscriptionID: "sub_retry",
		VendorStatus:         "active",
		BillingInterval:      "year",
	}

	// First delivery: the event row is recorded but reconciliation fails,
	// so the error is stamped and the vendor gets a 500.
	created, event, err := svc.RecordWebhookEvent(ctx, in)
	if err != nil || !created {
		t.Fatalf("expected first delivery to create the event, got created=%v err=%v", created, err)
	}
	repo.failUpserts = true
	_, syncErr := svc.SyncSubscription(ctx, normalized)
	if syncErr == nil {
		t.Fatalf("expected reconciliation failure")
	}
	if err := svc.MarkWebhookProcessed(ctx, event.ID, syncErr); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.webhookEvents[0].Reconciled() {
		t.Fatalf("expected failed delivery to stay unreconciled")
	}

	// Redelivery of the same event id: deduplicated row, but the stored
	// failure means it must be processed again, not acknowledged.
	repo.failUpserts = false
	created, event, err = svc.RecordWebhookEvent(ctx, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Fatalf("expected redelivery to hit the existing row")
	}
	if event.Reconciled() {
		t.Fatalf("expected redelivery of a failed event to be reprocessed")
	}

	sub, err := svc.SyncSubscription(ctx, normalized)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub == nil || len(repo.subs) != 1 {
		t.Fatalf("expected redelivery to create the subscription row")
	}
	if err := svc.MarkWebhookProcessed(ctx, event.ID, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !repo.webhookEvents[0].Reconciled() {
		t.Fatalf("expected event reconciled after the successful retry")
	}
}
