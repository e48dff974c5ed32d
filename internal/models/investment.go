package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	InvestmentActive    = "active"
	InvestmentCompleted = "completed"
)

type Investment struct {
	ID             string     `gorm:"primaryKey;size:36" json:"id"`
	OwnerId        string     `gorm:"column:owner_id;size:36;not null;index" json:"owner_id"`
	PlanId         string     `gorm:"column:plan_id;size:36;not null" json:"plan_id"`
	PlanName       string     `gorm:"column:plan_name;size:255;not null" json:"plan_name"`
	Principal      float64    `gorm:"column:principal;type:decimal(20,2);not null" json:"principal"`
	DurationMonths int        `gorm:"column:duration_months;not null" json:"duration_months"`
	AnnualRate     float64    `gorm:"column:annual_rate;type:decimal(5,2);not null" json:"annual_rate"`
	StartDate      time.Time  `gorm:"column:start_date;not null" json:"start_date"`
	EndDate        time.Time  `gorm:"column:end_date;not null" json:"end_date"`
	Status         string     `gorm:"column:status;size:20;default:active;index" json:"status"`
	AccruedReturns float64    `gorm:"column:accrued_returns;type:decimal(20,2);default:0.00" json:"accrued_returns"`
	LastAccruedAt  *time.Time `gorm:"column:last_accrued_at" json:"last_accrued_at"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Investment) TableName() string {
	return "investments"
}

func (i *Investment) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// TeamInvestment records the share of a new investment attributed to an
// upline member. Bookkeeping only; it never credits a wallet.
type TeamInvestment struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	InvestmentId string    `gorm:"column:investment_id;size:36;not null;index" json:"investment_id"`
	TeamMemberId string    `gorm:"column:team_member_id;size:36;not null;index" json:"team_member_id"`
	Amount       float64   `gorm:"column:amount;type:decimal(20,2);not null" json:"amount"`
	Level        int       `gorm:"column:level;not null" json:"level"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (TeamInvestment) TableName() string {
	return "team_investments"
}

func (t *TeamInvestment) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
