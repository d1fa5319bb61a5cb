package funding

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/flixhive/flixhive/app/models"
	"gorm.io/gorm"
)

type fakeRepository struct {
	users          map[uint]*models.User
	subs           []*models.Subscription
	fundings       []*models.AdminFunding
	userStatuses   map[uint]string
	nextID         uint
	writes         int
	failCreateSub  bool
	failUserStatus bool
}

func newFakeRepository(users ...*models.User) *fakeRepository {
	f := &fakeRepository{
		users:        make(map[uint]*models.User),
		userStatuses: make(map[uint]string),
	}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeRepository) newID() uint {
	f.nextID++
	return f.nextID
}

func (f *fakeRepository) GetUserByID(id uint) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) CreateFunding(funding *models.AdminFunding) error {
	f.writes++
	funding.ID = f.newID()
	stored := *funding
	f.fundings = append(f.fundings, &stored)
	return nil
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

func (f *fakeRepository) CreateSubscription(sub *models.Subscription) error {
	if f.failCreateSub {
		return errors.New("store unreachable")
	}
	f.writes++
	sub.ID = f.newID()
	sub.CreatedAt = time.Now()
	stored := *sub
	f.subs = append(f.subs, &stored)
	return nil
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

func (f *fakeRepository) UpdateUserSubscriptionStatus(userID uint, status string) error {
	if f.failUserStatus {
		return errors.New("store unreachable")
	}
	f.writes++
	f.userStatuses[userID] = status
	return nil
}

func assertRoughly(t *testing.T, got, want time.Time) {
	t.Helper()
	diff := got.Sub(want)
	if diff < -time.Minute || diff > time.Minute {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestGrantFundingUserNotFound(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)

	_, err := svc.GrantFunding(context.Background(), 42, 1, 3, 0)
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if repo.writes != 0 {
		t.Fatalf("expected zero writes before the existence check, got %d", repo.writes)
	}
}

func TestGrantFundingExtendsLatestSubscription(t *testing.T) {
	repo := newFakeRepository(&models.User{ID: 42})
	oldEnd := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	vendorID := "sub_123"
	repo.subs = append(repo.subs, &models.Subscription{
		ID:                   1,
		UserID:               42,
		StripeSubscriptionID: &vendorID,
		Status:               models.SubscriptionStatusPastDue,
		PlanType:             models.PlanTypeYearly,
		EndDate:              &oldEnd,
		CreatedAt:            time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC),
	})
	repo.nextID = 1
	svc := NewService(repo)

	result, err := svc.GrantFunding(context.Background(), 42, 1, 3, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sub := result.Subscription
	if sub.ID != 1 {
		t.Fatalf("expected the existing subscription to be extended, got id %d", sub.ID)
	}
	// The new end date counts from the grant, not from the old end date.
	assertRoughly(t, *sub.EndDate, time.Now().AddDate(0, 3, 0))
	if sub.EndDate.Equal(oldEnd) || sub.EndDate.Equal(oldEnd.AddDate(0, 3, 0)) {
		t.Fatalf("expected old end date to be discarded, got %v", sub.EndDate)
	}
	if !sub.FundedByAdmin {
		t.Fatalf("expected funded_by_admin to be set")
	}
	if sub.Status != models.SubscriptionStatusActive {
		t.Fatalf("expected status active, got %q", sub.Status)
	}
	if sub.PlanType != models.PlanTypeYearly {
		t.Fatalf("expected plan type untouched on extension, got %q", sub.PlanType)
	}
}

func TestGrantFundingCreatesSubscription(t *testing.T) {
	repo := newFakeRepository(&models.User{ID: 42})
	svc := NewService(repo)

	result, err := svc.GrantFunding(context.Background(), 42, 1, 3, 9.99)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.subs) != 1 {
		t.Fatalf("expected exactly one subscription row, got %d", len(repo.subs))
	}
	if len(repo.fundings) != 1 {
		t.Fatalf("expected exactly one funding audit row, got %d", len(repo.fundings))
	}

	sub := result.Subscription
	if sub.PlanType != models.PlanTypeMonthly {
		t.Fatalf("expected monthly plan, got %q", sub.PlanType)
	}
	if !sub.FundedByAdmin || sub.Status != models.SubscriptionStatusActive {
		t.Fatalf("expected active funded subscription, got %+v", sub)
	}
	if sub.StripeSubscriptionID != nil {
		t.Fatalf("funded subscriptions must not carry a vendor id")
	}

	fund := result.Funding
	if fund.Amount != 9.99 {
		t.Fatalf("expected amount 9.99, got %v", fund.Amount)
	}
	if fund.Months != 3 {
		t.Fatalf("expected 3 months, got %d", fund.Months)
	}
	if fund.Status != models.FundingStatusActive {
		t.Fatalf("expected active funding, got %q", fund.Status)
	}
	assertRoughly(t, fund.EndDate, time.Now().AddDate(0, 3, 0))
}

func TestGrantFundingDefaultMonths(t *testing.T) {
	repo := newFakeRepository(&models.User{ID: 42})
	svc := NewService(repo)

	result, err := svc.GrantFunding(context.Background(), 42, 1, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Funding.Months != DefaultMonths {
		t.Fatalf("expected default months %d, got %d", DefaultMonths, result.Funding.Months)
	}
}

func TestGrantFundingSetsUserStatus(t *testing.T) {
	repo := newFakeRepository(&models.User{ID: 42, SubscriptionStatus: models.SUBSCRIPTION_NONE})
	svc := NewService(repo)

	if _, err := svc.GrantFunding(context.Background(), 42, 1, 3, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.userStatuses[42] != models.SUBSCRIPTION_ACTIVE {
		t.Fatalf("expected user status active, got %q", repo.userStatuses[42])
	}
}

func TestGrantFundingPartialWriteOnFailure(t *testing.T) {
	// The writes are not transactional: a failure after the audit row leaves
	// the audit row in place.
	repo := newFakeRepository(&models.User{ID: 42})
	repo.failCreateSub = true
	svc := NewService(repo)

	_, err := svc.GrantFunding(context.Background(), 42, 1, 3, 0)
	if err == nil {
		t.Fatalf("expected error from subscription write")
	}
	if len(repo.fundings) != 1 {
		t.Fatalf("expected funding audit row to survive the failure, got %d", len(repo.fundings))
	}
	if len(repo.subs) != 0 {
		t.Fatalf("expected no subscription row, got %d", len(repo.subs))
	}
	if repo.userStatuses[42] != "" {
		t.Fatalf("expected user status untouched, got %q", repo.userStatuses[42])
	}
}
