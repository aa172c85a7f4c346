package repository

import (
	"time"

	"github.com/spiralhq/spiral-platform/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormWebhookEventRepository implements WebhookEventRepository on MySQL
// using the unique (provider, provider_event_id) index for deduplication.
type gormWebhookEventRepository struct {
	db *gorm.DB
}

// NewWebhookEventRepository creates a GORM-backed webhook event repository.
func NewWebhookEventRepository(db *gorm.DB) WebhookEventRepository {
	return &gormWebhookEventRepository{db: db}
}

func (r *gormWebhookEventRepository) CreateIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "provider_event_id"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.WebhookEvent
	if err := r.db.Where("provider = ? AND provider_event_id = ?", event.Provider, event.ProviderEventID).
		First(&stored).Error; err != nil {
		return false, nil, mapNotFound(err)
	}
	return created, &stored, nil
}

func (r *gormWebhookEventRepository) MarkProcessed(id uint, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"processing_error": processingError,
	}
	return r.db.Model(&models.WebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}
