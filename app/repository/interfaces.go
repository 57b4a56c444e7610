package repository

import (
	"time"

	"github.com/imobipro/imobipro-api/app/models"
	"gorm.io/gorm"
)

// PaymentRepository defines the interface for ledger database operations.
// The Mercado Pago payment id is the key for every mutation.
type PaymentRepository interface {
	Create(payment *models.Payment) error
	GetByMPPaymentID(mpPaymentID string) (*models.Payment, error)
	UpdateStatusByMPPaymentID(mpPaymentID, status, raw string) error
	MarkProvisioned(mpPaymentID string, corretorID uint) error
	ListApprovedUnprovisioned(olderThan time.Time) ([]models.Payment, error)
}

// CorretorRepository defines the interface for tenant profile operations
type CorretorRepository interface {
	Create(corretor *models.Corretor) error
	GetByID(id uint) (*models.Corretor, error)
	GetByEmail(email string) (*models.Corretor, error)
}

// WorkspaceRepository defines the interface for CRM workspace operations
type WorkspaceRepository interface {
	Create(workspace *models.CRMWorkspace) error
	GetByCorretorID(corretorID uint) (*models.CRMWorkspace, error)
}

// SiteRepository defines the interface for site registration operations
type SiteRepository interface {
	Create(site *models.Site) error
	GetByCorretorID(corretorID uint) (*models.Site, error)
}

// UserRepository defines the interface for login identity operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	UpdatePassword(id uint, passwordHash string) error
}

// WebhookEventRepository defines the interface for inbound webhook audit rows
type WebhookEventRepository interface {
	CreateIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error)
	MarkProcessed(id uint, processingError string) error
}

// Repositories bundles all repository instances
type Repositories struct {
	Payment      PaymentRepository
	Corretor     CorretorRepository
	Workspace    WorkspaceRepository
	Site         SiteRepository
	User         UserRepository
	WebhookEvent WebhookEventRepository
}

// NewRepositories creates all repositories backed by the given DB handle
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Payment:      NewPaymentRepository(db),
		Corretor:     NewCorretorRepository(db),
		Workspace:    NewWorkspaceRepository(db),
		Site:         NewSiteRepository(db),
		User:         NewUserRepository(db),
		WebhookEvent: NewWebhookEventRepository(db),
	}
}
