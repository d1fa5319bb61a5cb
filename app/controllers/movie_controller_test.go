package controllers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flixhive/flixhive/app/models"
	"github.com/flixhive/flixhive/internal/pkg/entitlements"
)

func TestStreamGrantYearlySubscriberGetsUHD(t *testing.T) {
	user := &models.User{SubscriptionStatus: models.SUBSCRIPTION_ACTIVE}
	sub := &models.Subscription{Status: models.SubscriptionStatusActive, PlanType: models.PlanTypeYearly}

	allowed, quality := streamGrant(user, sub)
	assert.True(t, allowed)
	assert.Equal(t, entitlements.QualityUHD, quality)
}

func TestStreamGrantMonthlySubscriberGetsHD(t *testing.T) {
	user := &models.User{SubscriptionStatus: models.SUBSCRIPTION_ACTIVE}
	sub := &models.Subscription{Status: models.SubscriptionStatusActive, PlanType: models.PlanTypeMonthly}

	allowed, quality := streamGrant(user, sub)
	assert.True(t, allowed)
	assert.Equal(t, entitlements.QualityHD, quality)
}

func TestStreamGrantDeniedWithoutSubscription(t *testing.T) {
	user := &models.User{Role: models.ROLE_USER, SubscriptionStatus: models.SUBSCRIPTION_NONE}

	allowed, _ := streamGrant(user, nil)
	assert.False(t, allowed)
}

func TestStreamGrantAdminBypass(t *testing.T) {
	user := &models.User{Role: models.ROLE_ADMIN, SubscriptionStatus: models.SUBSCRIPTION_NONE}

	allowed, quality := streamGrant(user, nil)
	assert.True(t, allowed)
	assert.Equal(t, entitlements.QualityUHD, quality)
}
