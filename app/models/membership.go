package models

import "time"

const (
	MembershipTypeSubscription = "subscription"
	MembershipTypeOneTime      = "one-time"
	MembershipTypeLifetime     = "lifetime"
)

const (
	MembershipStatusActive    = "active"
	MembershipStatusCancelled = "cancelled"
	MembershipStatusExpired   = "expired"
)

// Membership records a paid service entitlement for a user. Memberships are
// created only by payment fulfillment, never directly by a client request.
// A nil ExpiresAt means the entitlement is non-expiring (auto-renewing).
type Membership struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	UserID               uint       `gorm:"not null;index" json:"userId"`
	Service              string     `gorm:"type:varchar(100);not null;index" json:"service"`
	Type                 string     `gorm:"type:varchar(20);not null;default:'subscription'" json:"type"`
	Status               string     `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	StripeSubscriptionID string     `gorm:"type:varchar(191)" json:"stripeSubscriptionId"`
	StripePriceID        string     `gorm:"type:varchar(191)" json:"stripePriceId"`
	ExpiresAt            *time.Time `gorm:"type:timestamp;default:null" json:"expiresAt"`
	CreatedAt            time.Time  `gorm:"autoCreateTime" json:"createdAt"`
}

// MembershipPatch carries a partial update; nil fields keep their stored value.
type MembershipPatch struct {
	Status               *string    `json:"status"`
	StripeSubscriptionID *string    `json:"stripeSubscriptionId"`
	ExpiresAt            *time.Time `json:"expiresAt"`
}

// ApplyCreateDefaults fills documented defaults for fields the caller omitted.
func (m *Membership) ApplyCreateDefaults() {
	if m.Status == "" {
		m.Status = MembershipStatusActive
	}
	if m.Type == "" {
		m.Type = MembershipTypeSubscription
	}
}

// IsActive reports whether the membership currently entitles the user.
func (m *Membership) IsActive() bool {
	if m.Status != MembershipStatusActive {
		return false
	}
	return m.ExpiresAt == nil || m.ExpiresAt.After(time.Now())
}
