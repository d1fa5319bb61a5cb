package billing

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured is returned by gateway calls when no vendor key is
	// configured. Outside production the platform runs with billing disabled
	// instead of refusing to boot.
	ErrNotConfigured = errors.New("billing is not configured")

	// ErrSignature marks a webhook delivery whose signature did not verify.
	// Permanent: the request must be rejected before any state change.
	ErrSignature = errors.New("webhook signature verification failed")

	// ErrMissingOwner marks a vendor event without user correlation metadata.
	// The engine cannot repair the linkage, so the event is logged and dropped.
	ErrMissingOwner = errors.New("vendor event is missing owner metadata")
)

// GatewayError wraps a vendor SDK rejection (invalid price, unknown customer).
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("billing gateway %s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// ReconciliationError wraps a persistence failure during webhook processing.
// The webhook endpoint answers 5xx on it so the vendor redelivers the event.
type ReconciliationError struct {
	Op  string
	Err error
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("reconciliation %s: %v", e.Op, e.Err)
}

func (e *ReconciliationError) Unwrap() error { return e.Err }
