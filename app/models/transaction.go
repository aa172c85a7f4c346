package models

import "time"

const (
	TransactionPurchase     = "purchase"
	TransactionRefund       = "refund"
	TransactionSuscoinEarn  = "suscoin-earn"
	TransactionSuscoinSpend = "suscoin-spend"
)

// Transaction is an append-only ledger entry. Amount is in minor currency
// units for payment-origin entries and 0 for pure coin adjustments;
// SuscoinsChanged is the signed coin delta applied to the owner's balance.
// Entries are never mutated or deleted once created.
type Transaction struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`
	UserID                uint      `gorm:"not null;index" json:"userId"`
	Type                  string    `gorm:"type:varchar(20);not null" json:"type"`
	Amount                int       `gorm:"not null;default:0" json:"amount"`
	SuscoinsChanged       int       `gorm:"not null;default:0" json:"suscoinsChanged"`
	Description           string    `gorm:"type:varchar(255);not null" json:"description"`
	StripePaymentIntentID string    `gorm:"type:varchar(191)" json:"stripePaymentIntentId"`
	Metadata              JSONMap   `gorm:"type:longtext" json:"metadata"`
	CreatedAt             time.Time `gorm:"autoCreateTime" json:"createdAt"`
}
