package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Plan struct {
	ID              string    `gorm:"primaryKey;size:36" json:"id"`
	Name            string    `gorm:"column:name;size:255;not null" json:"name"`
	PrincipalAmount float64   `gorm:"column:principal_amount;type:decimal(20,2);not null" json:"principal_amount"`
	DurationMonths  int       `gorm:"column:duration_months;not null;default:12" json:"duration_months"`
	AnnualRate      float64   `gorm:"column:annual_rate;type:decimal(5,2);not null;default:10.00" json:"annual_rate"`
	Active          bool      `gorm:"column:active;default:true" json:"active"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Plan) TableName() string {
	return "plans"
}

func (p *Plan) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
