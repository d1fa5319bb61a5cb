package constants

// Static route constants
const (
	PublicRoute  = "/"
	APIRoute     = "/api"
	APIV1Route   = "/api/v1"
	WebhookRoute = "/webhooks"
	// Stripe webhook path, registered outside the API group so the limiter
	// never throttles vendor deliveries.
	StripeWebhookRoute = "/webhooks/stripe"
	DocsRoute          = "/docs/api/"
)
