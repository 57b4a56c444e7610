package repository

import (
	"time"

	"github.com/imobipro/imobipro-api/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// webhookEventRepository implements the WebhookEventRepository interface
type webhookEventRepository struct {
	db *gorm.DB
}

// NewWebhookEventRepository creates a new webhook audit repository instance
func NewWebhookEventRepository(db *gorm.DB) WebhookEventRepository {
	return &webhookEventRepository{db: db}
}

// CreateIfNotExists inserts the delivery unless one with the same provider
// and event id was already recorded. Returns whether a row was created and
// the stored row either way.
func (r *webhookEventRepository) CreateIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error) {
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
		return false, nil, err
	}
	return created, &stored, nil
}

// MarkProcessed stamps the event as handled and stores an optional error
func (r *webhookEventRepository) MarkProcessed(id uint, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"processing_error": processingError,
	}
	return r.db.Model(&models.WebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}
