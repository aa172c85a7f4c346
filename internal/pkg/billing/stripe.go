package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spiralhq/spiral-platform/internal/pkg/env"
)

const defaultStripeAPIBaseURL = "https://api.stripe.com/v1"

// StripeClient is a thin checkout-session client. The gateway stays the
// source of truth on whether a checkout is ever paid; this client only
// creates sessions and hands back the redirect URL.
type StripeClient struct {
	SecretKey  string
	APIBaseURL string
	SuccessURL string
	CancelURL  string

	HTTPClient *http.Client
}

// CheckoutSession is the subset of the gateway response the platform needs.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// NewStripeClientFromEnv builds a client from STRIPE_* environment config.
func NewStripeClientFromEnv() *StripeClient {
	base := strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", "http://localhost:4000"), "/")
	successURL := strings.TrimSpace(env.GetEnv("STRIPE_SUCCESS_URL", ""))
	if successURL == "" {
		successURL = base + "/member-center?payment=success"
	}
	cancelURL := strings.TrimSpace(env.GetEnv("STRIPE_CANCEL_URL", ""))
	if cancelURL == "" {
		cancelURL = base + "/member-center?payment=cancelled"
	}

	return &StripeClient{
		SecretKey:  strings.TrimSpace(env.GetEnv("STRIPE_SECRET_KEY", "")),
		APIBaseURL: strings.TrimSpace(env.GetEnv("STRIPE_API_BASE_URL", defaultStripeAPIBaseURL)),
		SuccessURL: successURL,
		CancelURL:  cancelURL,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// CreateCheckoutSession opens a gateway checkout for the given plan. The
// user and plan ids ride along as opaque correlation metadata and come back
// on the completion webhook. No local state is written here.
func (c *StripeClient) CreateCheckoutSession(ctx context.Context, plan Plan, userID uint, reference string) (*CheckoutSession, error) {
	if strings.TrimSpace(c.SecretKey) == "" {
		return nil, errors.New("STRIPE_SECRET_KEY is not configured")
	}

	form := url.Values{}
	if plan.IsRecurring() {
		form.Set("mode", "subscription")
		form.Set("line_items[0][price_data][recurring][interval]", plan.Interval)
	} else {
		form.Set("mode", "payment")
	}
	form.Set("line_items[0][price_data][currency]", "usd")
	form.Set("line_items[0][price_data][unit_amount]", strconv.Itoa(plan.PriceCents))
	form.Set("line_items[0][price_data][product_data][name]", plan.Name)
	form.Set("line_items[0][quantity]", "1")
	form.Set("metadata[user_id]", strconv.FormatUint(uint64(userID), 10))
	form.Set("metadata[plan_id]", plan.ID)
	form.Set("client_reference_id", reference)
	form.Set("success_url", c.SuccessURL)
	form.Set("cancel_url", c.CancelURL)

	endpoint := strings.TrimRight(c.APIBaseURL, "/") + "/checkout/sessions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("stripe checkout session failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var out CheckoutSession
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.URL) == "" {
		return nil, errors.New("stripe checkout session returned empty url")
	}
	return &out, nil
}
