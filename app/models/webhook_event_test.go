package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWebhookEventReconciled(t *testing.T) {
	now := time.Now()

	fresh := &WebhookEvent{}
	assert.False(t, fresh.Reconciled())

	failed := &WebhookEvent{Processed: true, ProcessedAt: &now, ProcessingError: "store unreachable"}
	assert.False(t, failed.Reconciled(), "a stored failure must not count as reconciled")

	done := &WebhookEvent{Processed: true, ProcessedAt: &now}
	assert.True(t, done.Reconciled())

	var missing *WebhookEvent
	assert.False(t, missing.Reconciled())
}
