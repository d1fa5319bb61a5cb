package entitlements

import (
	"testing"

	"github.com/flixhive/flixhive/app/models"
	"github.com/stretchr/testify/assert"
)

func TestStreamLimits(t *testing.T) {
	q, c := StreamLimits(PlanYearly)
	assert.Equal(t, QualityUHD, q)
	assert.Equal(t, 4, c)

	q, c = StreamLimits(PlanMonthly)
	assert.Equal(t, QualityHD, q)
	assert.Equal(t, 2, c)

	q, c = StreamLimits(PlanNone)
	assert.Equal(t, "", q)
	assert.Equal(t, 0, c)
}

func TestForUserWithoutActiveSubscription(t *testing.T) {
	e := ForUser(&models.User{SubscriptionStatus: models.SUBSCRIPTION_INACTIVE}, nil)
	assert.False(t, e.CanStream)
	assert.Equal(t, PlanNone, e.Plan)

	e = ForUser(nil, nil)
	assert.False(t, e.CanStream)
}

func TestForUserYearlyGetsUHD(t *testing.T) {
	user := &models.User{SubscriptionStatus: models.SUBSCRIPTION_ACTIVE}
	sub := &models.Subscription{Status: models.SubscriptionStatusActive, PlanType: models.PlanTypeYearly}

	e := ForUser(user, sub)
	assert.True(t, e.CanStream)
	assert.Equal(t, QualityUHD, e.MaxQuality)
	assert.Equal(t, 4, e.ConcurrentStreams)
	assert.Equal(t, PlanYearly, e.Plan)
}

func TestForUserMonthlyGetsHD(t *testing.T) {
	user := &models.User{SubscriptionStatus: models.SUBSCRIPTION_ACTIVE}
	sub := &models.Subscription{Status: models.SubscriptionStatusActive, PlanType: models.PlanTypeMonthly}

	e := ForUser(user, sub)
	assert.True(t, e.CanStream)
	assert.Equal(t, QualityHD, e.MaxQuality)
	assert.Equal(t, 2, e.ConcurrentStreams)
}

func TestForUserStaleSubscriptionRow(t *testing.T) {
	// Denormalized status says active but the latest row is cancelled:
	// the row wins, nothing streams.
	user := &models.User{SubscriptionStatus: models.SUBSCRIPTION_ACTIVE}
	sub := &models.Subscription{Status: models.SubscriptionStatusCancelled, PlanType: models.PlanTypeYearly}

	e := ForUser(user, sub)
	assert.False(t, e.CanStream)
	assert.Equal(t, PlanNone, e.Plan)
}
