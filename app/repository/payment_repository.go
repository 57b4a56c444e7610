package repository

import (
	"time"

	"github.com/imobipro/imobipro-api/app/models"
	"gorm.io/gorm"
)

// paymentRepository implements the PaymentRepository interface
type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new ledger repository instance
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

// Create inserts a new ledger row for a payment attempt
func (r *paymentRepository) Create(payment *models.Payment) error {
	return r.db.Create(payment).Error
}

// GetByMPPaymentID retrieves a ledger row by its Mercado Pago payment id
func (r *paymentRepository) GetByMPPaymentID(mpPaymentID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.Where("mp_payment_id = ?", mpPaymentID).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// UpdateStatusByMPPaymentID overwrites status and raw payload with the
// gateway's latest truth. Runs on every webhook delivery, whatever the
// status, so the ledger always mirrors the gateway.
func (r *paymentRepository) UpdateStatusByMPPaymentID(mpPaymentID, status, raw string) error {
	return r.db.Model(&models.Payment{}).
		Where("mp_payment_id = ?", mpPaymentID).
		Updates(map[string]interface{}{
			"status": status,
			"raw":    raw,
		}).Error
}

// MarkProvisioned flips the provisioned flag and attaches the tenant
// reference. Called exactly once per payment, as the last provisioning step.
func (r *paymentRepository) MarkProvisioned(mpPaymentID string, corretorID uint) error {
	return r.db.Model(&models.Payment{}).
		Where("mp_payment_id = ?", mpPaymentID).
		Updates(map[string]interface{}{
			"provisionado": true,
			"corretor_id":  corretorID,
		}).Error
}

// ListApprovedUnprovisioned returns approved payments that were never
// provisioned and are older than the given cutoff. This is the alert
// predicate for stuck provisioning runs.
func (r *paymentRepository) ListApprovedUnprovisioned(olderThan time.Time) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.
		Where("status = ? AND provisionado = ? AND updated_at < ?", models.PaymentStatusApproved, false, olderThan).
		Order("updated_at ASC").
		Find(&payments).Error
	return payments, err
}
