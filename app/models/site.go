package models

import "time"

// Site is the site registration for a corretor's public page, reachable at
// https://<slug>.<base domain>.
type Site struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CorretorID uint      `gorm:"not null;uniqueIndex:ux_sites_corretor_id" json:"corretor_id"`
	Dominio    string    `gorm:"type:varchar(255);not null;uniqueIndex:ux_sites_dominio" json:"dominio"`
	Ativo      bool      `gorm:"default:true" json:"ativo"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Site) TableName() string {
	return "sites"
}
