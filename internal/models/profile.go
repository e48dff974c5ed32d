package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Profile aggregates a user's approved contributions across payments.
type Profile struct {
	ID                  string    `gorm:"primaryKey;size:36" json:"id"`
	UserId              string    `gorm:"column:user_id;size:36;not null;uniqueIndex" json:"user_id"`
	CurrentPlanId       string    `gorm:"column:current_plan_id;size:36" json:"current_plan_id"`
	PlanAmount          float64   `gorm:"column:plan_amount;type:decimal(20,2);default:0.00" json:"plan_amount"`
	TotalInvestedAmount float64   `gorm:"column:total_invested_amount;type:decimal(20,2);default:0.00" json:"total_invested_amount"`
	CreatedAt           time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
