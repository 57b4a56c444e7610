package models

import "time"

// CRMWorkspace is the individual CRM workspace created for each corretor
// right after the profile row.
type CRMWorkspace struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CorretorID uint      `gorm:"not null;uniqueIndex:ux_crm_workspaces_corretor_id" json:"corretor_id"`
	Nome       string    `gorm:"type:varchar(200);not null" json:"nome"`
	Plano      string    `gorm:"type:varchar(50);not null" json:"plano"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (CRMWorkspace) TableName() string {
	return "crm_workspaces"
}
