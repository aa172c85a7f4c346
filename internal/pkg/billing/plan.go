package billing

import (
	"errors"
	"sort"
	"strings"

	"github.com/spiralhq/spiral-platform/app/models"
)

// ErrInvalidPlan is returned when a plan id is not in the catalog. It is a
// caller error, not a store error.
var ErrInvalidPlan = errors.New("unknown plan")

const (
	PlanKindOneTime      = "one-time"
	PlanKindSubscription = "subscription"
)

const (
	PlanMonthlyCard = "monthly-card"
	PlanTopup1USD   = "topup-1usd"
	PlanCreatorMode = "creator-mode"
)

// Plan describes a purchasable catalog entry and its fulfillment rule:
// one-time plans grant a fixed number of suscoins, subscription plans grant
// a membership (and possibly a subscription tier on the user).
type Plan struct {
	ID         string
	Name       string
	PriceCents int
	Kind       string
	// Interval is the recurring billing interval for subscription plans.
	Interval string
	// SuscoinGrant is the fixed coin grant fulfilled on one-time purchase.
	SuscoinGrant int
	// DailySuscoinGrant is the per-day coin grant an active membership earns.
	DailySuscoinGrant int
	// SubscriptionType is the tier written to the user on fulfillment.
	SubscriptionType string
	// UnlimitedSpending waives all suscoin debits for the subscriber.
	UnlimitedSpending bool
	Description       string
}

// catalog is read-only process-wide configuration; there is no mutation and
// no per-request state.
var catalog = map[string]Plan{
	PlanMonthlyCard: {
		ID:                PlanMonthlyCard,
		Name:              "Monthly Card",
		PriceCents:        300,
		Kind:              PlanKindSubscription,
		Interval:          "month",
		DailySuscoinGrant: 1,
		SubscriptionType:  models.SubscriptionMonthly,
		Description:       "Auto-renewing monthly card, +1 suscoin per day",
	},
	PlanTopup1USD: {
		ID:           PlanTopup1USD,
		Name:         "Suscoin Top-Up",
		PriceCents:   100,
		Kind:         PlanKindOneTime,
		SuscoinGrant: 10,
		Description:  "$1 = 10 suscoins, instant delivery",
	},
	PlanCreatorMode: {
		ID:                PlanCreatorMode,
		Name:              "Creator Mode",
		PriceCents:        6000,
		Kind:              PlanKindSubscription,
		Interval:          "month",
		SubscriptionType:  models.SubscriptionCreator,
		UnlimitedSpending: true,
		Description:       "All suscoin deductions waived",
	},
}

// LookupPlan resolves a plan id, returning ErrInvalidPlan for unknown ids.
func LookupPlan(id string) (Plan, error) {
	p, ok := catalog[strings.TrimSpace(id)]
	if !ok {
		return Plan{}, ErrInvalidPlan
	}
	return p, nil
}

// Plans returns the catalog sorted by id for stable listings.
func Plans() []Plan {
	out := make([]Plan, 0, len(catalog))
	for _, p := range catalog {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// IsRecurring reports whether fulfillment creates a membership instead of a
// coin grant.
func (p Plan) IsRecurring() bool {
	return p.Kind == PlanKindSubscription
}
