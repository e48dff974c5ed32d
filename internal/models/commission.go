package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SchemePersonalBonus  = "personal_bonus"
	SchemeTeamInvestment = "team_investment"
)

// CommissionAward records a single commission paid (or tracked) for one
// ancestor in the sponsor chain when a payment is approved.
type CommissionAward struct {
	ID              string    `gorm:"primaryKey;size:36" json:"id"`
	BeneficiaryId   string    `gorm:"column:beneficiary_id;size:36;not null;index" json:"beneficiary_id"`
	Amount          float64   `gorm:"column:amount;type:decimal(20,2);not null" json:"amount"`
	Scheme          string    `gorm:"column:scheme;size:30;not null;index" json:"scheme"`
	Level           int       `gorm:"column:level;not null" json:"level"`
	SourcePaymentId string    `gorm:"column:source_payment_id;size:36;not null;index" json:"source_payment_id"`
	Paid            bool      `gorm:"column:paid;default:false" json:"paid"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (CommissionAward) TableName() string {
	return "commission_awards"
}

func (a *CommissionAward) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
