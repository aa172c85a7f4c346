package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	SubscriptionFree    = "free"
	SubscriptionMonthly = "monthly"
	SubscriptionCreator = "creator"
)

// User owns modules, fragments, memberships and ledger transactions. Users
// are never deleted; billing state lives directly on the record so the
// suscoin balance and subscription tier can be read in one lookup.
type User struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	Email                string    `gorm:"uniqueIndex;type:varchar(200)" json:"email" validate:"required,email,max=200"`
	DisplayName          string    `gorm:"type:varchar(150)" json:"displayName" validate:"max=150"`
	FlameMarkID          string    `gorm:"type:varchar(100);index" json:"flameMarkId" validate:"max=100"`
	Suscoins             int       `gorm:"not null;default:0" json:"suscoins" validate:"gte=0"`
	SubscriptionType     string    `gorm:"type:varchar(20);not null;default:'free'" json:"subscriptionType" validate:"omitempty,oneof=free monthly creator"`
	StripeCustomerID     string    `gorm:"type:varchar(191)" json:"stripeCustomerId"`
	StripeSubscriptionID string    `gorm:"type:varchar(191)" json:"stripeSubscriptionId"`
	CreatedAt            time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// UserPatch carries a partial update; nil fields keep their stored value.
type UserPatch struct {
	DisplayName          *string `json:"displayName"`
	FlameMarkID          *string `json:"flameMarkId"`
	Suscoins             *int    `json:"suscoins"`
	SubscriptionType     *string `json:"subscriptionType"`
	StripeCustomerID     *string `json:"stripeCustomerId"`
	StripeSubscriptionID *string `json:"stripeSubscriptionId"`
}

func (u *User) Validate() error {
	v := validator.New()

	return v.Struct(u)
}

// ApplyCreateDefaults fills documented defaults for fields the caller omitted.
func (u *User) ApplyCreateDefaults() {
	if u.SubscriptionType == "" {
		u.SubscriptionType = SubscriptionFree
	}
	if u.Suscoins < 0 {
		u.Suscoins = 0
	}
}

// HasUnlimitedSpending reports whether ledger debits are waived for this user.
func (u *User) HasUnlimitedSpending() bool {
	return u.SubscriptionType == SubscriptionCreator
}
