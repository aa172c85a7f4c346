package billing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/spiralhq/spiral-platform/app/models"
	"github.com/spiralhq/spiral-platform/app/repository"
	"github.com/spiralhq/spiral-platform/internal/pkg/env"
	"github.com/spiralhq/spiral-platform/internal/pkg/suscoin"
)

// ErrSignatureInvalid is returned when a webhook delivery fails the
// authenticity check. Rejection happens before any side effect.
var ErrSignatureInvalid = errors.New("invalid webhook signature")

// Service is the payment gateway adapter: it opens checkouts and consumes
// completion events, fulfilling them through the ledger and membership
// store.
type Service struct {
	repos         *repository.Repositories
	ledger        *suscoin.Service
	client        *StripeClient
	webhookSecret string
}

// NewService creates a billing service over the given repositories, ledger
// and gateway client.
func NewService(repos *repository.Repositories, ledger *suscoin.Service, client *StripeClient) *Service {
	return &Service{
		repos:         repos,
		ledger:        ledger,
		client:        client,
		webhookSecret: env.GetEnv("STRIPE_WEBHOOK_SECRET", ""),
	}
}

// CreateCheckout resolves the plan and user, opens a gateway checkout with
// correlation metadata and returns the redirect URL. Nothing is persisted
// locally; the webhook is the only trusted signal that payment happened.
func (s *Service) CreateCheckout(ctx context.Context, userID uint, planID string) (string, error) {
	plan, err := LookupPlan(planID)
	if err != nil {
		return "", err
	}
	user, err := s.repos.Users.GetByID(userID)
	if err != nil {
		return "", err
	}

	session, err := s.client.CreateCheckoutSession(ctx, plan, user.ID, uuid.NewString())
	if err != nil {
		return "", err
	}
	return session.URL, nil
}

// VerifyWebhookSignature checks a delivery's authenticity against the
// shared endpoint secret.
func (s *Service) VerifyWebhookSignature(payload []byte, signatureHeader string) error {
	if !VerifyStripeWebhookSignature(payload, signatureHeader, s.webhookSecret, DefaultSignatureTolerance) {
		return ErrSignatureInvalid
	}
	return nil
}

// RecordWebhookEvent persists a delivery idempotently, keyed by provider
// event id (or a payload hash when the gateway sent none). The returned
// bool is false for duplicate deliveries, which must not be fulfilled
// again.
func (s *Service) RecordWebhookEvent(ctx context.Context, in WebhookEventInput) (bool, *models.WebhookEvent, error) {
	_ = ctx
	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	if provider == "" {
		provider = models.PaymentProviderStripe
	}
	eventID := strings.TrimSpace(in.ProviderEventID)
	if eventID == "" {
		sum := sha256.Sum256([]byte(in.PayloadJSON))
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}

	return s.repos.WebhookEvents.CreateIfNotExists(&models.WebhookEvent{
		Provider:        provider,
		ProviderEventID: eventID,
		EventType:       strings.TrimSpace(in.EventType),
		PayloadJSON:     in.PayloadJSON,
		SignatureValid:  in.SignatureValid,
	})
}

// MarkWebhookProcessed marks an event as processed and stores an optional
// processing error.
func (s *Service) MarkWebhookProcessed(ctx context.Context, webhookEventID uint, processingErr error) error {
	_ = ctx
	if webhookEventID == 0 {
		return errors.New("webhook_event_id is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.repos.WebhookEvents.MarkProcessed(webhookEventID, errMsg)
}

// HandleCheckoutCompleted fulfills a verified checkout completion. Events
// with missing or unrecognized correlation metadata are logged and dropped
// without error so the gateway does not retry them forever. Known one-time
// plans credit the ledger; known subscription plans create a membership and
// lift the user's subscription tier.
func (s *Service) HandleCheckoutCompleted(ctx context.Context, ev *CheckoutEvent) error {
	if ev.UserID == 0 || ev.PlanID == "" {
		log.Printf("billing: checkout %s has no usable correlation metadata, ignoring", ev.SessionID)
		return nil
	}
	plan, err := LookupPlan(ev.PlanID)
	if err != nil {
		log.Printf("billing: checkout %s references unknown plan %q, ignoring", ev.SessionID, ev.PlanID)
		return nil
	}
	if _, err := s.repos.Users.GetByID(ev.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Printf("billing: checkout %s references unknown user %d, ignoring", ev.SessionID, ev.UserID)
			return nil
		}
		return err
	}

	if !plan.IsRecurring() {
		_, err := s.ledger.CreditWith(ctx, ev.UserID, plan.SuscoinGrant, "Purchase: "+plan.Name, suscoin.CreditOptions{
			TransactionType: models.TransactionPurchase,
			AmountCents:     plan.PriceCents,
			PaymentRef:      ev.PaymentIntentID,
			Metadata: models.JSONMap{
				"checkout_session": ev.SessionID,
				"plan_id":          plan.ID,
			},
		})
		return err
	}

	if err := s.repos.Memberships.Create(&models.Membership{
		UserID:               ev.UserID,
		Service:              plan.ID,
		Type:                 models.MembershipTypeSubscription,
		Status:               models.MembershipStatusActive,
		StripeSubscriptionID: ev.SubscriptionID,
		// ExpiresAt stays nil: auto-renewing plans do not expire locally,
		// the gateway tells us when they end.
	}); err != nil {
		return err
	}

	patch := models.UserPatch{
		StripeCustomerID:     &ev.CustomerID,
		StripeSubscriptionID: &ev.SubscriptionID,
	}
	if plan.SubscriptionType != "" {
		patch.SubscriptionType = &plan.SubscriptionType
	}
	_, err = s.repos.Users.Update(ev.UserID, patch)
	return err
}
