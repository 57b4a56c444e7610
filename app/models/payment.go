package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Mercado Pago payment status vocabulary. Only "approved" triggers
// provisioning; every other value is stored verbatim and treated as opaque.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusApproved  = "approved"
	PaymentStatusRejected  = "rejected"
	PaymentStatusInProcess = "in_process"
	PaymentStatusCancelled = "cancelled"
)

// Payment is the ledger row, one per payment attempt. The Mercado Pago
// payment id is the idempotency key for every mutation of this table.
type Payment struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	MPPaymentID  string          `gorm:"column:mp_payment_id;type:varchar(64);not null;uniqueIndex:ux_pagamentos_mp_payment_id" json:"mp_payment_id"`
	UserEmail    string          `gorm:"type:varchar(200);not null;index" json:"user_email"`
	Plano        string          `gorm:"type:varchar(50);not null" json:"plano"`
	Status       string          `gorm:"type:varchar(32);not null;default:'pending';index" json:"status"`
	Valor        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"valor"`
	Raw          string          `gorm:"type:longtext" json:"raw"`
	SignupRaw    string          `gorm:"type:longtext" json:"signup_raw"`
	Provisionado bool            `gorm:"default:false;index" json:"provisionado"`
	CorretorID   *uint           `gorm:"index" json:"corretor_id,omitempty"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Payment) TableName() string {
	return "pagamentos"
}

// NeedsProvisioning reports whether an approved ledger row still awaits
// tenant creation. This is the predicate operators alert on.
func (p *Payment) NeedsProvisioning() bool {
	return p.Status == PaymentStatusApproved && !p.Provisionado
}
