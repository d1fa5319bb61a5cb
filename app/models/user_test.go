package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("sup3r-secret")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "sup3r-secret", hash)

	assert.True(t, CheckPasswordHash("sup3r-secret", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestUserHasActiveSubscription(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{SUBSCRIPTION_ACTIVE, true},
		{SUBSCRIPTION_TRIALING, true},
		{SUBSCRIPTION_NONE, false},
		{SUBSCRIPTION_INACTIVE, false},
		{SUBSCRIPTION_CANCELLED, false},
		{SUBSCRIPTION_PAST_DUE, false},
	}

	for _, tc := range tests {
		u := &User{SubscriptionStatus: tc.status}
		assert.Equal(t, tc.want, u.HasActiveSubscription(), "status %s", tc.status)
	}
}

func TestGenerateActivationToken(t *testing.T) {
	u := &User{}
	require.NoError(t, u.GenerateActivationToken())

	assert.NotEmpty(t, u.ActivationToken)
	assert.NotNil(t, u.ActivationSentAt)

	prev := u.ActivationToken
	require.NoError(t, u.GenerateActivationToken())
	assert.NotEqual(t, prev, u.ActivationToken)
}

func TestSubscriptionIsEntitling(t *testing.T) {
	assert.True(t, (&Subscription{Status: SubscriptionStatusActive}).IsEntitling())
	assert.True(t, (&Subscription{Status: SubscriptionStatusTrialing}).IsEntitling())
	assert.False(t, (&Subscription{Status: SubscriptionStatusCancelled}).IsEntitling())
	assert.False(t, (&Subscription{Status: SubscriptionStatusInactive}).IsEntitling())
	assert.False(t, (&Subscription{Status: SubscriptionStatusPastDue}).IsEntitling())
}
