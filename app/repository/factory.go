package repository

import (
	"sync"

	"gorm.io/gorm"
)

// Factory manages repository instances and ensures they are singletons
type Factory struct {
	db    *gorm.DB
	repos *Repositories
	once  sync.Once
}

// NewFactory creates a new repository factory
func NewFactory(db *gorm.DB) *Factory {
	return &Factory{
		db: db,
	}
}

// GetRepositories returns a singleton instance of all repositories
func (f *Factory) GetRepositories() *Repositories {
	f.once.Do(func() {
		f.repos = NewRepositories(f.db)
	})
	return f.repos
}

// GetPaymentRepository returns the ledger repository instance
func (f *Factory) GetPaymentRepository() PaymentRepository {
	return f.GetRepositories().Payment
}

// GetCorretorRepository returns the tenant profile repository instance
func (f *Factory) GetCorretorRepository() CorretorRepository {
	return f.GetRepositories().Corretor
}

// GetUserRepository returns the user repository instance
func (f *Factory) GetUserRepository() UserRepository {
	return f.GetRepositories().User
}

// GetWebhookEventRepository returns the webhook audit repository instance
func (f *Factory) GetWebhookEventRepository() WebhookEventRepository {
	return f.GetRepositories().WebhookEvent
}
