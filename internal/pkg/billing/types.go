package billing

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// EventTypeCheckoutCompleted is the only event type that triggers
// fulfillment; everything else is recorded and ignored.
const EventTypeCheckoutCompleted = "checkout.session.completed"

// WebhookEventInput is the normalized input for webhook event persistence.
type WebhookEventInput struct {
	Provider        string
	ProviderEventID string
	EventType       string
	PayloadJSON     string
	SignatureValid  bool
}

// CheckoutEvent is the parsed view of a checkout completion delivery. UserID
// and PlanID come from the correlation metadata attached at session
// creation; either may be absent on deliveries this platform did not
// originate.
type CheckoutEvent struct {
	EventID         string
	EventType       string
	SessionID       string
	UserID          uint
	PlanID          string
	PaymentIntentID string
	SubscriptionID  string
	CustomerID      string
}

// ParseCheckoutEvent extracts the fields fulfillment needs from a raw
// gateway event payload.
func ParseCheckoutEvent(payload []byte) (*CheckoutEvent, error) {
	var raw struct {
		ID   string `json:"id"`
		Type string `json:"type"`
		Data struct {
			Object struct {
				ID            string            `json:"id"`
				PaymentIntent string            `json:"payment_intent"`
				Subscription  string            `json:"subscription"`
				Customer      string            `json:"customer"`
				Metadata      map[string]string `json:"metadata"`
			} `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, err
	}
	if strings.TrimSpace(raw.Type) == "" {
		return nil, errors.New("webhook payload missing event type")
	}

	out := &CheckoutEvent{
		EventID:         strings.TrimSpace(raw.ID),
		EventType:       strings.TrimSpace(raw.Type),
		SessionID:       strings.TrimSpace(raw.Data.Object.ID),
		PlanID:          strings.TrimSpace(raw.Data.Object.Metadata["plan_id"]),
		PaymentIntentID: strings.TrimSpace(raw.Data.Object.PaymentIntent),
		SubscriptionID:  strings.TrimSpace(raw.Data.Object.Subscription),
		CustomerID:      strings.TrimSpace(raw.Data.Object.Customer),
	}
	if rawUserID := strings.TrimSpace(raw.Data.Object.Metadata["user_id"]); rawUserID != "" {
		if parsed, err := strconv.ParseUint(rawUserID, 10, 32); err == nil {
			out.UserID = uint(parsed)
		}
	}
	return out, nil
}
