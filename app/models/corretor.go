package models

import "time"

const (
	CorretorStatusAtivo   = "ativo"
	CorretorStatusInativo = "inativo"
)

// Corretor is the tenant profile of a provisioned real-estate agent.
// Created exactly once per payer email by the webhook reconciliation flow;
// the unique index on email is the serialization point that keeps two
// concurrent webhook deliveries from creating two tenants.
type Corretor struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Nome      string    `gorm:"type:varchar(150);not null" json:"nome"`
	Email     string    `gorm:"type:varchar(200);not null;uniqueIndex:ux_corretores_email" json:"email"`
	Telefone  string    `gorm:"type:varchar(30);default:''" json:"telefone"`
	Plano     string    `gorm:"type:varchar(50);not null" json:"plano"`
	Status    string    `gorm:"type:varchar(32);not null;default:'ativo'" json:"status"`
	Slug      string    `gorm:"type:varchar(191);not null;uniqueIndex:ux_corretores_slug" json:"slug"`
	SiteURL   string    `gorm:"type:varchar(255);not null" json:"site_url"`
	SignupRaw string    `gorm:"type:longtext" json:"signup_raw"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Corretor) TableName() string {
	return "corretores"
}
