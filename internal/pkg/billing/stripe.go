package billing

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	stripe "github.com/stripe/stripe-go/v82"
	session "github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/customer"
	stripeSubscription "github.com/stripe/stripe-go/v82/subscription"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/flixhive/flixhive/app/models"
	"github.com/flixhive/flixhive/internal/pkg/env"
)

const ProviderStripe = "stripe"

// Webhook event types the reconciliation engine reacts to. Everything else
// is recorded and ignored.
const (
	EventSubscriptionCreated = "customer.subscription.created"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
	EventPaymentSucceeded    = "payment_intent.succeeded"
	EventPaymentFailed       = "payment_intent.payment_failed"
)

const metadataUserIDKey = "user_id"

// SetupStripe configures the vendor SDK key at startup. The key is optional
// outside production (billing degrades to disabled); production refuses to
// boot without it.
func SetupStripe() {
	key := strings.TrimSpace(env.GetEnv("STRIPE_SECRET_KEY", ""))
	if key == "" {
		if env.IsProduction() {
			panic("STRIPE_SECRET_KEY is required in production")
		}
		log.Println("[Billing] STRIPE_SECRET_KEY not set - billing is disabled")
		return
	}
	stripe.Key = key
}

// IsConfigured reports whether the vendor SDK has a key to work with.
func IsConfigured() bool {
	return strings.TrimSpace(stripe.Key) != ""
}

// WebhookSecret returns the shared webhook signing secret.
func WebhookSecret() string {
	return strings.TrimSpace(env.GetEnv("STRIPE_WEBHOOK_SECRET", ""))
}

// PriceRefForPlan maps an internal plan type to the configured vendor price.
func PriceRefForPlan(planType string) (string, error) {
	var ref string
	switch strings.ToLower(strings.TrimSpace(planType)) {
	case models.PlanTypeYearly:
		ref = strings.TrimSpace(env.GetEnv("STRIPE_PRICE_YEARLY", ""))
	default:
		ref = strings.TrimSpace(env.GetEnv("STRIPE_PRICE_MONTHLY", ""))
	}
	if ref == "" {
		return "", fmt.Errorf("no vendor price configured for plan %q", planType)
	}
	return ref, nil
}

// EnsureCustomer returns the vendor customer reference for a user, creating
// one when the user has none or the stored one no longer exists. The caller
// persists the returned reference on the user row.
func EnsureCustomer(user *models.User) (string, error) {
	if !IsConfigured() {
		return "", ErrNotConfigured
	}
	if user == nil {
		return "", errors.New("user is required")
	}

	if user.StripeCustomerID != nil && *user.StripeCustomerID != "" {
		if _, err := customer.Get(*user.StripeCustomerID, nil); err == nil {
			return *user.StripeCustomerID, nil
		}
	}

	params := &stripe.CustomerParams{
		Name:  stripe.String(user.Name),
		Email: stripe.String(user.Email),
	}
	params.AddMetadata(metadataUserIDKey, strconv.FormatUint(uint64(user.ID), 10))
	cust, err := customer.New(params)
	if err != nil {
		return "", &GatewayError{Op: "create_customer", Err: err}
	}
	return cust.ID, nil
}

// CreateSubscription forwards a subscription creation to the vendor. No local
// state change; webhook reconciliation persists the result.
func CreateSubscription(customerRef, priceRef string, metadata map[string]string) (*stripe.Subscription, error) {
	if !IsConfigured() {
		return nil, ErrNotConfigured
	}
	if strings.TrimSpace(customerRef) == "" || strings.TrimSpace(priceRef) == "" {
		return nil, errors.New("customer and price references are required")
	}

	params := &stripe.SubscriptionParams{
		Customer: stripe.String(customerRef),
		Items: []*stripe.SubscriptionItemsParams{
			{Price: stripe.String(priceRef)},
		},
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	sub, err := stripeSubscription.New(params)
	if err != nil {
		return nil, &GatewayError{Op: "create_subscription", Err: err}
	}
	return sub, nil
}

// CreateCheckoutSession builds a subscription-mode checkout session. The user
// id is stamped into the subscription metadata so every later webhook for the
// subscription carries its owner.
func CreateCheckoutSession(customerRef string, userID uint, planType string) (*stripe.CheckoutSession, error) {
	if !IsConfigured() {
		return nil, ErrNotConfigured
	}
	priceRef, err := PriceRefForPlan(planType)
	if err != nil {
		return nil, err
	}

	base := strings.TrimRight(env.GetEnv("FRONTEND_URL", env.GetEnv("PUBLIC_DOMAIN", "")), "/")
	userRef := strconv.FormatUint(uint64(userID), 10)

	params := &stripe.CheckoutSessionParams{
		Customer: stripe.String(customerRef),
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceRef),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(base + "/subscription/success"),
		CancelURL:         stripe.String(base + "/subscription/cancelled"),
		ClientReferenceID: stripe.String(userRef),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{metadataUserIDKey: userRef},
		},
	}
	params.AddMetadata(metadataUserIDKey, userRef)

	s, err := session.New(params)
	if err != nil {
		return nil, &GatewayError{Op: "create_checkout_session", Err: err}
	}
	return s, nil
}

// CancelSubscription cancels on the vendor side. immediate=true hard-cancels,
// otherwise the subscription runs out at the period end. No local state
// change; the caller persists whatever the following webhook reports.
func CancelSubscription(vendorSubscriptionID string, immediate bool) (*stripe.Subscription, error) {
	if !IsConfigured() {
		return nil, ErrNotConfigured
	}
	if strings.TrimSpace(vendorSubscriptionID) == "" {
		return nil, errors.New("vendor subscription id is required")
	}

	if immediate {
		sub, err := stripeSubscription.Cancel(vendorSubscriptionID, nil)
		if err != nil {
			return nil, &GatewayError{Op: "cancel_subscription", Err: err}
		}
		return sub, nil
	}

	sub, err := stripeSubscription.Update(vendorSubscriptionID, &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(true),
	})
	if err != nil {
		return nil, &GatewayError{Op: "cancel_subscription", Err: err}
	}
	return sub, nil
}

// VerifyWebhookSignature checks the vendor HMAC over the raw request body and
// returns the parsed event envelope. Callers must not touch the payload when
// this fails.
func VerifyWebhookSignature(payload []byte, signatureHeader string) (stripe.Event, error) {
	secret := WebhookSecret()
	if secret == "" || strings.TrimSpace(signatureHeader) == "" {
		return stripe.Event{}, ErrSignature
	}

	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return stripe.Event{}, fmt.Errorf("%w: %v", ErrSignature, err)
	}
	return event, nil
}

// vendorSubscription is the slice of the vendor subscription object this
// platform reads. Unmarshaling the raw payload into a local struct keeps the
// engine independent of vendor SDK struct churn.
type vendorSubscription struct {
	ID                 string `json:"id"`
	Customer           string `json:"customer"`
	Status             string `json:"status"`
	CancelAtPeriodEnd  bool   `json:"cancel_at_period_end"`
	CurrentPeriodStart int64  `json:"current_period_start"`
	CurrentPeriodEnd   int64  `json:"current_period_end"`
	Items              struct {
		Data []struct {
			CurrentPeriodStart int64 `json:"current_period_start"`
			CurrentPeriodEnd   int64 `json:"current_period_end"`
			Price              struct {
				ID        string `json:"id"`
				Recurring struct {
					Interval string `json:"interval"`
				} `json:"recurring"`
			} `json:"price"`
		} `json:"data"`
	} `json:"items"`
	Metadata map[string]string `json:"metadata"`
}

type vendorPaymentIntent struct {
	ID                 string            `json:"id"`
	Customer           string            `json:"customer"`
	Amount             int64             `json:"amount"`
	Currency           string            `json:"currency"`
	Status             string            `json:"status"`
	PaymentMethodTypes []string          `json:"payment_method_types"`
	Metadata           map[string]string `json:"metadata"`
}

// IsSubscriptionEvent reports whether the event carries a subscription object.
func IsSubscriptionEvent(eventType string) bool {
	switch eventType {
	case EventSubscriptionCreated, EventSubscriptionUpdated, EventSubscriptionDeleted:
		return true
	default:
		return false
	}
}

// IsPaymentEvent reports whether the event carries a payment intent.
func IsPaymentEvent(eventType string) bool {
	switch eventType {
	case EventPaymentSucceeded, EventPaymentFailed:
		return true
	default:
		return false
	}
}

// ParseSubscriptionEvent converts a verified vendor event into the normalized
// subscription shape. Owner resolution happens here: the user id comes from
// the subscription metadata written at checkout time.
func ParseSubscriptionEvent(event stripe.Event) (*NormalizedSubscription, error) {
	var sub vendorSubscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return nil, fmt.Errorf("decode subscription event: %w", err)
	}
	if strings.TrimSpace(sub.ID) == "" {
		return nil, errors.New("subscription event missing id")
	}

	periodStart := sub.CurrentPeriodStart
	periodEnd := sub.CurrentPeriodEnd
	interval := ""
	if len(sub.Items.Data) > 0 {
		item := sub.Items.Data[0]
		interval = item.Price.Recurring.Interval
		// Newer vendor API versions report the billing period on the line
		// item instead of the subscription.
		if periodStart == 0 {
			periodStart = item.CurrentPeriodStart
		}
		if periodEnd == 0 {
			periodEnd = item.CurrentPeriodEnd
		}
	}

	return &NormalizedSubscription{
		UserID:               ownerFromMetadata(sub.Metadata),
		VendorSubscriptionID: strings.TrimSpace(sub.ID),
		VendorStatus:         sub.Status,
		BillingInterval:      interval,
		CancelAtPeriodEnd:    sub.CancelAtPeriodEnd,
		CurrentPeriodStart:   unixTime(periodStart),
		CurrentPeriodEnd:     unixTime(periodEnd),
		RawPayloadJSON:       string(event.Data.Raw),
	}, nil
}

// ParsePaymentEvent converts a verified payment-intent event. The payment
// status follows the event kind: a payment_failed delivery counts as failed
// even though the intent itself reports requires_payment_method.
func ParsePaymentEvent(event stripe.Event) (*NormalizedPayment, error) {
	var pi vendorPaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("decode payment event: %w", err)
	}
	if strings.TrimSpace(pi.ID) == "" {
		return nil, errors.New("payment event missing id")
	}

	status := "failed"
	if event.Type == EventPaymentSucceeded {
		status = "succeeded"
	}

	paymentMethod := ""
	if len(pi.PaymentMethodTypes) > 0 {
		paymentMethod = pi.PaymentMethodTypes[0]
	}

	return &NormalizedPayment{
		UserID:                ownerFromMetadata(pi.Metadata),
		VendorPaymentIntentID: strings.TrimSpace(pi.ID),
		AmountMinor:           pi.Amount,
		Currency:              strings.ToLower(strings.TrimSpace(pi.Currency)),
		VendorStatus:          status,
		PaymentMethod:         paymentMethod,
		RawPayloadJSON:        string(event.Data.Raw),
	}, nil
}

func ownerFromMetadata(metadata map[string]string) uint {
	raw := strings.TrimSpace(metadata[metadataUserIDKey])
	if raw == "" {
		return 0
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}

func unixTime(ts int64) *time.Time {
	if ts <= 0 {
		return nil
	}
	t := time.Unix(ts, 0)
	return &t
}
