package billing

import (
	"testing"

	"github.com/flixhive/flixhive/app/models"
)

func TestMapSubscriptionStatus(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "active", want: models.SubscriptionStatusActive},
		{in: "trialing", want: models.SubscriptionStatusTrialing},
		{in: "past_due", want: models.SubscriptionStatusPastDue},
		{in: "canceled", want: models.SubscriptionStatusCancelled},
		{in: "cancelled", want: models.SubscriptionStatusCancelled},
		{in: "unpaid", want: models.SubscriptionStatusInactive},
		{in: "incomplete", want: models.SubscriptionStatusInactive},
		{in: "incomplete_expired", want: models.SubscriptionStatusInactive},
		{in: "paused", want: models.SubscriptionStatusInactive},
		{in: "ACTIVE", want: models.SubscriptionStatusActive},
		{in: " active ", want: models.SubscriptionStatusActive},
	}

	for _, tt := range tests {
		if got := MapSubscriptionStatus(tt.in); got != tt.want {
			t.Fatalf("MapSubscriptionStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMapSubscriptionStatusUnknownIsInactive(t *testing.T) {
	for _, status := range []string{"", "something_new", "deleted", "on_hold", "???"} {
		if got := MapSubscriptionStatus(status); got != models.SubscriptionStatusInactive {
			t.Fatalf("expected unknown status %q to map to inactive, got %q", status, got)
		}
	}
}

func TestMapPaymentStatus(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "succeeded", want: models.PaymentStatusSucceeded},
		{in: "pending", want: models.PaymentStatusPending},
		{in: "processing", want: models.PaymentStatusPending},
		{in: "requires_payment_method", want: models.PaymentStatusPending},
		{in: "requires_confirmation", want: models.PaymentStatusPending},
		{in: "requires_action", want: models.PaymentStatusPending},
		{in: "requires_capture", want: models.PaymentStatusPending},
		{in: "failed", want: models.PaymentStatusFailed},
		{in: "refunded", want: models.PaymentStatusRefunded},
	}

	for _, tt := range tests {
		if got := MapPaymentStatus(tt.in); got != tt.want {
			t.Fatalf("MapPaymentStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMapPaymentStatusCanceledIsFailed(t *testing.T) {
	// Pinned: canceled payments are failures, not a status of their own.
	if got := MapPaymentStatus("canceled"); got != models.PaymentStatusFailed {
		t.Fatalf("MapPaymentStatus(\"canceled\") = %q, want %q", got, models.PaymentStatusFailed)
	}
	if got := MapPaymentStatus("cancelled"); got != models.PaymentStatusFailed {
		t.Fatalf("MapPaymentStatus(\"cancelled\") = %q, want %q", got, models.PaymentStatusFailed)
	}
}

func TestMapPaymentStatusUnknownIsPending(t *testing.T) {
	for _, status := range []string{"", "disputed", "???"} {
		if got := MapPaymentStatus(status); got != models.PaymentStatusPending {
			t.Fatalf("expected unknown status %q to map to pending, got %q", status, got)
		}
	}
}

func TestMapBillingInterval(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "year", want: models.PlanTypeYearly},
		{in: "YEAR", want: models.PlanTypeYearly},
		{in: "month", want: models.PlanTypeMonthly},
		{in: "week", want: models.PlanTypeMonthly},
		{in: "day", want: models.PlanTypeMonthly},
		{in: "", want: models.PlanTypeMonthly},
	}

	for _, tt := range tests {
		if got := MapBillingInterval(tt.in); got != tt.want {
			t.Fatalf("MapBillingInterval(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
