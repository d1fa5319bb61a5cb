package billing

import (
	"strings"

	"github.com/flixhive/flixhive/app/models"
)

// MapSubscriptionStatus translates the vendor subscription status vocabulary
// into the internal one. Unknown vendor statuses map to inactive so a local
// row never ends up in an undefined state.
func MapSubscriptionStatus(vendorStatus string) string {
	switch strings.ToLower(strings.TrimSpace(vendorStatus)) {
	case "active":
		return models.SubscriptionStatusActive
	case "trialing":
		return models.SubscriptionStatusTrialing
	case "past_due":
		return models.SubscriptionStatusPastDue
	case "canceled", "cancelled":
		return models.SubscriptionStatusCancelled
	case "unpaid", "incomplete", "incomplete_expired", "paused":
		return models.SubscriptionStatusInactive
	default:
		return models.SubscriptionStatusInactive
	}
}

// MapPaymentStatus translates vendor payment-intent statuses. Vendor
// "canceled" counts as failed: the internal vocabulary has no canceled member.
func MapPaymentStatus(vendorStatus string) string {
	switch strings.ToLower(strings.TrimSpace(vendorStatus)) {
	case "succeeded":
		return models.PaymentStatusSucceeded
	case "pending", "processing":
		return models.PaymentStatusPending
	case "requires_payment_method", "requires_confirmation", "requires_action", "requires_capture":
		return models.PaymentStatusPending
	case "canceled", "cancelled", "failed":
		return models.PaymentStatusFailed
	case "refunded":
		return models.PaymentStatusRefunded
	default:
		return models.PaymentStatusPending
	}
}

// MapBillingInterval derives the internal plan type from a vendor recurring
// interval. Only "year" selects the yearly plan.
func MapBillingInterval(interval string) string {
	switch strings.ToLower(strings.TrimSpace(interval)) {
	case "year":
		return models.PlanTypeYearly
	default:
		return models.PlanTypeMonthly
	}
}
