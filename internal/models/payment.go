package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PaymentPending  = "pending"
	PaymentApproved = "approved"
	PaymentRejected = "rejected"
)

// Payment is a claim submitted by a user against a plan. It carries the
// externally verified reference (e.g. a UPI ref) as advisory data only.
type Payment struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	PayerId     string    `gorm:"column:payer_id;size:36;not null;index" json:"payer_id"`
	PlanId      string    `gorm:"column:plan_id;size:36;not null" json:"plan_id"`
	Amount      float64   `gorm:"column:amount;type:decimal(20,2);not null" json:"amount"`
	ExternalRef string    `gorm:"column:external_ref;size:255;not null" json:"external_ref"`
	Status      string    `gorm:"column:status;size:20;default:pending;index" json:"status"`
	Notes       string    `gorm:"column:notes;type:text" json:"notes"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Payment) TableName() string {
	return "payments"
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
