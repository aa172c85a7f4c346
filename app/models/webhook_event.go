package models

import "time"

const PaymentProviderStripe = "stripe"

// WebhookEvent stores provider webhook payloads with deduplication metadata
// so fulfillment runs at most once per provider event.
type WebhookEvent struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Provider        string     `gorm:"type:varchar(20);not null;index:ux_webhook_events_provider_event,unique,priority:1" json:"provider"`
	ProviderEventID string     `gorm:"type:varchar(191);not null;default:'';index:ux_webhook_events_provider_event,unique,priority:2" json:"providerEventId"`
	EventType       string     `gorm:"type:varchar(100);not null;index" json:"eventType"`
	PayloadJSON     string     `gorm:"type:longtext;not null" json:"payloadJson"`
	SignatureValid  bool       `gorm:"default:false" json:"signatureValid"`
	ProcessedAt     *time.Time `gorm:"type:timestamp;default:null" json:"processedAt,omitempty"`
	ProcessingError string     `gorm:"type:text" json:"processingError"`
	CreatedAt       time.Time  `gorm:"autoCreateTime;index" json:"createdAt"`
}
