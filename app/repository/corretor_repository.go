package repository

import (
	"github.com/imobipro/imobipro-api/app/models"
	"gorm.io/gorm"
)

// corretorRepository implements the CorretorRepository interface
type corretorRepository struct {
	db *gorm.DB
}

// NewCorretorRepository creates a new tenant profile repository instance
func NewCorretorRepository(db *gorm.DB) CorretorRepository {
	return &corretorRepository{db: db}
}

// Create inserts a new corretor profile. The unique indexes on email and
// slug reject a second writer racing on the same payer.
func (r *corretorRepository) Create(corretor *models.Corretor) error {
	return r.db.Create(corretor).Error
}

// GetByID retrieves a corretor by primary key
func (r *corretorRepository) GetByID(id uint) (*models.Corretor, error) {
	var corretor models.Corretor
	err := r.db.First(&corretor, id).Error
	if err != nil {
		return nil, err
	}
	return &corretor, nil
}

// GetByEmail retrieves a corretor by payer email
func (r *corretorRepository) GetByEmail(email string) (*models.Corretor, error) {
	var corretor models.Corretor
	err := r.db.Where("email = ?", email).First(&corretor).Error
	if err != nil {
		return nil, err
	}
	return &corretor, nil
}

// workspaceRepository implements the WorkspaceRepository interface
type workspaceRepository struct {
	db *gorm.DB
}

// NewWorkspaceRepository creates a new CRM workspace repository instance
func NewWorkspaceRepository(db *gorm.DB) WorkspaceRepository {
	return &workspaceRepository{db: db}
}

func (r *workspaceRepository) Create(workspace *models.CRMWorkspace) error {
	return r.db.Create(workspace).Error
}

func (r *workspaceRepository) GetByCorretorID(corretorID uint) (*models.CRMWorkspace, error) {
	var workspace models.CRMWorkspace
	err := r.db.Where("corretor_id = ?", corretorID).First(&workspace).Error
	if err != nil {
		return nil, err
	}
	return &workspace, nil
}

// siteRepository implements the SiteRepository interface
type siteRepository struct {
	db *gorm.DB
}

// NewSiteRepository creates a new site registration repository instance
func NewSiteRepository(db *gorm.DB) SiteRepository {
	return &siteRepository{db: db}
}

func (r *siteRepository) Create(site *models.Site) error {
	return r.db.Create(site).Error
}

func (r *siteRepository) GetByCorretorID(corretorID uint) (*models.Site, error) {
	var site models.Site
	err := r.db.Where("corretor_id = ?", corretorID).First(&site).Error
	if err != nil {
		return nil, err
	}
	return &site, nil
}
