package models

import "time"

const WebhookProviderMercadoPago = "mercadopago"

// WebhookEvent stores every inbound gateway notification with deduplication
// metadata. Deliveries that fail mid-processing keep their error here, so
// the table doubles as the dead-letter record behind the uniform 200
// acknowledgments the webhook endpoint returns.
type WebhookEvent struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Provider        string     `gorm:"type:varchar(20);not null;index:ux_webhook_events_provider_event,unique,priority:1" json:"provider"`
	ProviderEventID string     `gorm:"type:varchar(191);not null;default:'';index:ux_webhook_events_provider_event,unique,priority:2" json:"provider_event_id"`
	EventType       string     `gorm:"type:varchar(100);not null;index" json:"event_type"`
	PayloadJSON     string     `gorm:"type:longtext;not null" json:"payload_json"`
	SignatureValid  bool       `gorm:"default:false;index" json:"signature_valid"`
	ProcessedAt     *time.Time `gorm:"type:timestamp;default:null" json:"processed_at,omitempty"`
	ProcessingError string     `gorm:"type:text" json:"processing_error"`
	CreatedAt       time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (WebhookEvent) TableName() string {
	return "webhook_events"
}
