package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spiralhq/spiral-platform/app/models"
	"github.com/spiralhq/spiral-platform/app/repository"
	"github.com/spiralhq/spiral-platform/internal/pkg/billing"
	"github.com/spiralhq/spiral-platform/internal/pkg/cache"
	"github.com/spiralhq/spiral-platform/internal/pkg/suscoin"
	"github.com/spiralhq/spiral-platform/internal/pkg/usercontext"
)

const webhookSeenTTL = 24 * time.Hour

func webhookSeenKey(eventID string) string {
	return "webhook:stripe:" + eventID
}

const statusCacheTTL = 30 * time.Second

func statusCacheKey(userID uint) string {
	return fmt.Sprintf("sus:status:%d", userID)
}

// invalidateStatusCache drops the cached status payload after any balance
// or membership change. Best-effort, like the cache itself.
func invalidateStatusCache(userID uint) {
	if err := cache.Delete(statusCacheKey(userID)); err != nil {
		log.Printf("sus: invalidating status cache for user %d failed: %v", userID, err)
	}
}

// HandleSusStatus returns the current user's balance, subscription tier and
// memberships. Loading the status also settles the monthly-card daily coin
// when one is due. Responses are cached briefly; every balance mutation
// invalidates the cached payload.
func HandleSusStatus(c *fiber.Ctx) error {
	ensureSetup()
	userID := usercontext.GetUserID(c)

	granted, err := ledger.GrantDailyBonus(c.Context(), userID)
	if err != nil {
		log.Printf("sus: daily bonus check failed for user %d: %v", userID, err)
	}
	if granted {
		invalidateStatusCache(userID)
	} else if cache.Available() {
		if raw, err := cache.Get(statusCacheKey(userID)); err == nil {
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.SendString(raw)
		}
	}

	status, err := ledger.Status(c.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "User not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load status")
	}

	if cache.Available() {
		if raw, err := json.Marshal(status); err == nil {
			if err := cache.Set(statusCacheKey(userID), string(raw), statusCacheTTL); err != nil {
				log.Printf("sus: caching status for user %d failed: %v", userID, err)
			}
		}
	}
	return c.JSON(status)
}

// HandleCreatePayment opens a gateway checkout for a catalog plan and
// returns the redirect URL.
func HandleCreatePayment(c *fiber.Ctx) error {
	ensureSetup()

	var body struct {
		PlanID string `json:"planId"`
	}
	if err := c.BodyParser(&body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_error", "Invalid request body")
	}

	checkoutURL, err := billingSvc.CreateCheckout(c.Context(), usercontext.GetUserID(c), body.PlanID)
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrInvalidPlan):
			return jsonError(c, fiber.StatusBadRequest, "invalid_plan", "Unknown plan: "+body.PlanID)
		case errors.Is(err, repository.ErrNotFound):
			return jsonError(c, fiber.StatusNotFound, "not_found", "User not found")
		default:
			log.Printf("sus: checkout creation failed: %v", err)
			return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to create checkout")
		}
	}
	return c.JSON(fiber.Map{"checkoutUrl": checkoutURL})
}

type coinRequest struct {
	Amount      int    `json:"amount"`
	Description string `json:"description"`
}

// HandleAddSuscoins credits the current user's balance.
func HandleAddSuscoins(c *fiber.Ctx) error {
	ensureSetup()

	var body coinRequest
	if err := c.BodyParser(&body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_error", "Invalid request body")
	}
	if body.Amount <= 0 {
		return jsonError(c, fiber.StatusBadRequest, "validation_error", "Amount must be positive")
	}
	if body.Description == "" {
		return jsonError(c, fiber.StatusBadRequest, "validation_error", "Description is required")
	}

	userID := usercontext.GetUserID(c)
	balance, err := ledger.Credit(c.Context(), userID, body.Amount, body.Description)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "User not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to add suscoins")
	}
	invalidateStatusCache(userID)
	return c.JSON(fiber.Map{"suscoins": balance})
}

// HandleSpendSuscoins debits the current user's balance. Overdrafts are
// rejected without touching the balance; creator subscribers spend for free.
func HandleSpendSuscoins(c *fiber.Ctx) error {
	ensureSetup()

	var body coinRequest
	if err := c.BodyParser(&body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_error", "Invalid request body")
	}
	if body.Amount <= 0 {
		return jsonError(c, fiber.StatusBadRequest, "validation_error", "Amount must be positive")
	}
	if body.Description == "" {
		return jsonError(c, fiber.StatusBadRequest, "validation_error", "Description is required")
	}

	userID := usercontext.GetUserID(c)
	balance, err := ledger.Debit(c.Context(), userID, body.Amount, body.Description)
	if err != nil {
		switch {
		case errors.Is(err, suscoin.ErrInsufficientFunds):
			return jsonError(c, fiber.StatusBadRequest, "insufficient_funds", "Not enough suscoins")
		case errors.Is(err, repository.ErrNotFound):
			return jsonError(c, fiber.StatusNotFound, "not_found", "User not found")
		default:
			return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to spend suscoins")
		}
	}
	invalidateStatusCache(userID)
	return c.JSON(fiber.Map{"suscoins": balance})
}

// HandleStripeWebhook consumes gateway deliveries. The signature is checked
// against the raw body before anything is stored; valid deliveries are
// recorded idempotently so a retried event never fulfills twice.
func HandleStripeWebhook(c *fiber.Ctx) error {
	ensureSetup()

	payload := c.BodyRaw()
	if err := billingSvc.VerifyWebhookSignature(payload, c.Get("Stripe-Signature")); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_signature", "Webhook signature verification failed")
	}

	event, err := billing.ParseCheckoutEvent(payload)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_error", "Invalid webhook payload")
	}

	// Fast path for retried deliveries that were already fully handled. The
	// unique event key in the store stays authoritative when the cache is
	// cold or unavailable.
	if event.EventID != "" && cache.Available() {
		if _, err := cache.Get(webhookSeenKey(event.EventID)); err == nil {
			return c.JSON(fiber.Map{"received": true, "duplicate": true})
		}
	}

	created, stored, err := billingSvc.RecordWebhookEvent(c.Context(), billing.WebhookEventInput{
		Provider:        models.PaymentProviderStripe,
		ProviderEventID: event.EventID,
		EventType:       event.EventType,
		PayloadJSON:     string(payload),
		SignatureValid:  true,
	})
	if err != nil {
		log.Printf("sus: recording webhook event failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to record webhook event")
	}
	if !created {
		return c.JSON(fiber.Map{"received": true, "duplicate": true})
	}

	var processingErr error
	if event.EventType == billing.EventTypeCheckoutCompleted {
		processingErr = billingSvc.HandleCheckoutCompleted(c.Context(), event)
		if processingErr != nil {
			log.Printf("sus: fulfilling %s failed: %v", event.EventID, processingErr)
		}
	}
	if err := billingSvc.MarkWebhookProcessed(c.Context(), stored.ID, processingErr); err != nil {
		log.Printf("sus: marking webhook %d processed failed: %v", stored.ID, err)
	}
	if processingErr == nil && event.EventID != "" {
		if err := cache.Set(webhookSeenKey(event.EventID), "1", webhookSeenTTL); err != nil {
			log.Printf("sus: caching webhook %s failed: %v", event.EventID, err)
		}
	}
	if processingErr == nil && event.UserID != 0 {
		invalidateStatusCache(event.UserID)
	}

	// Always acknowledge: fulfillment problems are recorded on the event and
	// must not trigger an endless gateway retry loop.
	return c.JSON(fiber.Map{"received": true})
}

// HandleListPlans returns the purchasable plan catalog.
func HandleListPlans(c *fiber.Ctx) error {
	plans := billing.Plans()
	out := make([]fiber.Map, 0, len(plans))
	for _, p := range plans {
		out = append(out, fiber.Map{
			"id":          p.ID,
			"name":        p.Name,
			"priceCents":  p.PriceCents,
			"kind":        p.Kind,
			"interval":    p.Interval,
			"description": p.Description,
			"price":       fmt.Sprintf("$%.2f", float64(p.PriceCents)/100),
		})
	}
	return c.JSON(out)
}
