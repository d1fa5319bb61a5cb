package controllers

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	stripe "github.com/stripe/stripe-go/v82"
	"gorm.io/gorm"

	"github.com/flixhive/flixhive/app/models"
	"github.com/flixhive/flixhive/app/repository"
	"github.com/flixhive/flixhive/internal/pkg/billing"
	"github.com/flixhive/flixhive/internal/pkg/database"
	"github.com/flixhive/flixhive/internal/pkg/entitlements"
	"github.com/flixhive/flixhive/internal/pkg/jobqueue"
	"github.com/flixhive/flixhive/internal/pkg/usercontext"
)

type checkoutRequest struct {
	Plan string `json:"plan" validate:"required,oneof=monthly yearly"`
}

type cancelSubscriptionRequest struct {
	Immediate bool `json:"immediate"`
}

// HandleStripeWebhook is the vendor-facing reconciliation entry point. The
// signature is verified over the raw body before anything touches the store;
// unverified payloads are never parsed.
func HandleStripeWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := strings.TrimSpace(c.Get("Stripe-Signature"))

	event, err := billing.VerifyWebhookSignature(rawBody, signature)
	if err != nil {
		log.Printf("webhook: signature verification failed: %v", err)
		return JSONError(c, fiber.StatusBadRequest, "invalid signature")
	}

	svc := billing.NewServiceFromDB(database.GetDB())
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	created, stored, err := svc.RecordWebhookEvent(ctx, billing.WebhookEventInput{
		Provider:        billing.ProviderStripe,
		ProviderEventID: event.ID,
		EventType:       string(event.Type),
		PayloadJSON:     string(rawBody),
	})
	if err != nil {
		log.Printf("webhook: event persist failed: %v", err)
		return JSONError(c, fiber.StatusInternalServerError, "webhook persistence failed")
	}
	if !created && stored.Reconciled() {
		// Redelivery of an event we already reconciled; answer success so
		// the vendor stops retrying. A stored row with a processing error
		// falls through: the vendor's redelivery is our retry mechanism.
		return c.JSON(fiber.Map{"received": true, "duplicate": true})
	}

	switch {
	case billing.IsSubscriptionEvent(string(event.Type)):
		return handleSubscriptionWebhook(ctx, c, svc, event, stored.ID)
	case billing.IsPaymentEvent(string(event.Type)):
		return handlePaymentWebhook(ctx, c, svc, event, stored.ID)
	default:
		// Recorded and ignored; success keeps the vendor from retrying
		// events this platform does not care about.
		_ = svc.MarkWebhookProcessed(ctx, stored.ID, nil)
		return c.JSON(fiber.Map{"received": true, "ignored": true})
	}
}

func handleSubscriptionWebhook(ctx context.Context, c *fiber.Ctx, svc *billing.Service, event stripe.Event, eventRowID uint) error {
	normalized, err := billing.ParseSubscriptionEvent(event)
	if err != nil {
		_ = svc.MarkWebhookProcessed(ctx, eventRowID, err)
		return JSONError(c, fiber.StatusBadRequest, "invalid event payload")
	}

	if string(event.Type) == billing.EventSubscriptionDeleted {
		_, err := svc.HandleSubscriptionDeleted(ctx, normalized.VendorSubscriptionID)
		_ = svc.MarkWebhookProcessed(ctx, eventRowID, err)
		if err != nil {
			log.Printf("webhook: subscription delete failed for %s: %v", normalized.VendorSubscriptionID, err)
			return JSONError(c, fiber.StatusInternalServerError, "reconciliation failed")
		}
		return c.JSON(fiber.Map{"received": true})
	}

	if normalized.UserID == 0 {
		// The engine cannot repair a missing owner linkage. Dropped, not
		// retried: a 4xx/5xx would make the vendor redeliver forever.
		log.Printf("webhook: subscription event %s has no owner metadata, dropping", normalized.VendorSubscriptionID)
		_ = svc.MarkWebhookProcessed(ctx, eventRowID, billing.ErrMissingOwner)
		return c.JSON(fiber.Map{"received": true, "ignored": true})
	}

	_, err = svc.SyncSubscription(ctx, *normalized)
	_ = svc.MarkWebhookProcessed(ctx, eventRowID, err)
	if err != nil {
		log.Printf("webhook: subscription sync failed for %s: %v", normalized.VendorSubscriptionID, err)
		return JSONError(c, fiber.StatusInternalServerError, "reconciliation failed")
	}
	return c.JSON(fiber.Map{"received": true})
}

func handlePaymentWebhook(ctx context.Context, c *fiber.Ctx, svc *billing.Service, event stripe.Event, eventRowID uint) error {
	normalized, err := billing.ParsePaymentEvent(event)
	if err != nil {
		_ = svc.MarkWebhookProcessed(ctx, eventRowID, err)
		return JSONError(c, fiber.StatusBadRequest, "invalid event payload")
	}

	if normalized.UserID == 0 {
		log.Printf("webhook: payment event %s has no owner metadata, dropping", normalized.VendorPaymentIntentID)
		_ = svc.MarkWebhookProcessed(ctx, eventRowID, billing.ErrMissingOwner)
		return c.JSON(fiber.Map{"received": true, "ignored": true})
	}

	payment, err := svc.SyncPayment(ctx, *normalized)
	_ = svc.MarkWebhookProcessed(ctx, eventRowID, err)
	if err != nil {
		log.Printf("webhook: payment sync failed for %s: %v", normalized.VendorPaymentIntentID, err)
		return JSONError(c, fiber.StatusInternalServerError, "reconciliation failed")
	}

	if string(event.Type) == billing.EventPaymentFailed {
		notifyPaymentFailed(payment.UserID)
	}
	return c.JSON(fiber.Map{"received": true})
}

// notifyPaymentFailed queues a dunning mail; delivery failures are the mail
// job's problem, never the webhook response's.
func notifyPaymentFailed(userID uint) {
	userRepo := repository.GetGlobalFactory().GetUserRepository()
	user, err := userRepo.GetByID(userID)
	if err != nil {
		log.Printf("webhook: cannot notify user %d about failed payment: %v", userID, err)
		return
	}
	if _, err := jobqueue.GetManager().GetQueue().EnqueuePaymentFailedMailJob(user.Email, user.Name); err != nil {
		log.Printf("webhook: payment-failed mail enqueue failed for user %d: %v", userID, err)
	}
}

// HandleGetPlans lists the subscription plans offered at checkout.
func HandleGetPlans(c *fiber.Ctx) error {
	plans := []fiber.Map{}
	for _, planType := range []string{models.PlanTypeMonthly, models.PlanTypeYearly} {
		priceRef, err := billing.PriceRefForPlan(planType)
		if err != nil {
			continue
		}
		maxQuality, concurrent := entitlements.StreamLimits(entitlements.Plan(planType))
		plans = append(plans, fiber.Map{
			"plan":               planType,
			"price_ref":          priceRef,
			"max_quality":        maxQuality,
			"concurrent_streams": concurrent,
		})
	}
	return JSONSuccess(c, fiber.Map{
		"billing_enabled": billing.IsConfigured(),
		"plans":           plans,
	})
}

// HandleCreateCheckout builds a vendor checkout session for the caller. The
// local subscription row appears later via webhook reconciliation, never here.
func HandleCreateCheckout(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return JSONError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return JSONValidationError(c, err)
	}

	userRepo := repository.GetGlobalFactory().GetUserRepository()
	user, err := userRepo.GetByID(userCtx.UserID)
	if err != nil {
		return JSONError(c, fiber.StatusNotFound, "user not found")
	}

	customerRef, err := billing.EnsureCustomer(user)
	if err != nil {
		if errors.Is(err, billing.ErrNotConfigured) {
			return JSONError(c, fiber.StatusServiceUnavailable, "billing is disabled")
		}
		log.Printf("checkout: customer resolution failed for user %d: %v", user.ID, err)
		return JSONError(c, fiber.StatusBadGateway, "billing provider rejected the request")
	}
	if user.StripeCustomerID == nil || *user.StripeCustomerID != customerRef {
		user.StripeCustomerID = &customerRef
		if err := userRepo.Update(user); err != nil {
			log.Printf("checkout: failed to persist customer ref for user %d: %v", user.ID, err)
			return JSONError(c, fiber.StatusInternalServerError, "checkout failed")
		}
	}

	session, err := billing.CreateCheckoutSession(customerRef, user.ID, req.Plan)
	if err != nil {
		if errors.Is(err, billing.ErrNotConfigured) {
			return JSONError(c, fiber.StatusServiceUnavailable, "billing is disabled")
		}
		log.Printf("checkout: session creation failed for user %d: %v", user.ID, err)
		return JSONError(c, fiber.StatusBadGateway, "billing provider rejected the request")
	}

	return JSONSuccess(c, fiber.Map{
		"checkout_url": session.URL,
		"session_id":   session.ID,
	})
}

// HandleCancelSubscription cancels on the vendor side and persists the
// returned vendor state. immediate=true hard-cancels; otherwise the
// subscription runs out at the period end.
func HandleCancelSubscription(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	var req cancelSubscriptionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return JSONError(c, fiber.StatusBadRequest, "invalid request body")
		}
	}

	billingRepo := billing.NewRepository(database.GetDB())
	sub, err := billingRepo.GetLatestSubscriptionByUser(userCtx.UserID)
	if err != nil || sub.StripeSubscriptionID == nil || *sub.StripeSubscriptionID == "" {
		return JSONError(c, fiber.StatusNotFound, "no vendor-billed subscription to cancel")
	}

	vendorSub, err := billing.CancelSubscription(*sub.StripeSubscriptionID, req.Immediate)
	if err != nil {
		if errors.Is(err, billing.ErrNotConfigured) {
			return JSONError(c, fiber.StatusServiceUnavailable, "billing is disabled")
		}
		log.Printf("cancel: gateway call failed for %s: %v", *sub.StripeSubscriptionID, err)
		return JSONError(c, fiber.StatusBadGateway, "billing provider rejected the request")
	}

	// Persist vendor-reported truth now; the webhook that follows will
	// overwrite with the same values.
	sub.Status = billing.MapSubscriptionStatus(string(vendorSub.Status))
	sub.CancelAtPeriodEnd = vendorSub.CancelAtPeriodEnd
	if vendorSub.CanceledAt > 0 {
		t := time.Unix(vendorSub.CanceledAt, 0)
		sub.CancelledAt = &t
	}
	if err := billingRepo.SaveSubscription(sub); err != nil {
		log.Printf("cancel: persist failed for subscription %d: %v", sub.ID, err)
		return JSONError(c, fiber.StatusInternalServerError, "cancellation could not be persisted")
	}
	if err := billingRepo.UpdateUserSubscriptionStatus(userCtx.UserID, sub.Status); err != nil {
		log.Printf("cancel: user status refresh failed for user %d: %v", userCtx.UserID, err)
	}

	return JSONSuccessMessage(c, sub, "subscription cancelled")
}

// HandleGetSubscription returns the caller's most recent subscription row.
func HandleGetSubscription(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	billingRepo := billing.NewRepository(database.GetDB())
	sub, err := billingRepo.GetLatestSubscriptionByUser(userCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return JSONSuccess(c, nil)
		}
		log.Printf("subscription: load failed for user %d: %v", userCtx.UserID, err)
		return JSONError(c, fiber.StatusInternalServerError, "failed to load subscription")
	}
	return JSONSuccess(c, sub)
}

// HandleGetPayments returns the caller's payment history, newest first.
func HandleGetPayments(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	_, perPage, offset := ParsePagination(c)

	var payments []models.Payment
	if err := database.GetDB().Where("user_id = ?", userCtx.UserID).
		Order("created_at DESC").Offset(offset).Limit(perPage).Find(&payments).Error; err != nil {
		log.Printf("payments: load failed for user %d: %v", userCtx.UserID, err)
		return JSONError(c, fiber.StatusInternalServerError, "failed to load payments")
	}
	return JSONSuccess(c, payments)
}
