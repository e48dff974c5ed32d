package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	NotifyPaymentSubmitted = "payment_submitted"
	NotifyPaymentApproved  = "payment_approved"
	NotifyPaymentRejected  = "payment_rejected"
	NotifyBonusAwarded     = "bonus_awarded"
	NotifyInterestCredited = "interest_credited"
)

type Notification struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserId    string    `gorm:"column:user_id;size:36;not null;index" json:"user_id"`
	Kind      string    `gorm:"column:kind;size:50;not null" json:"kind"`
	Title     string    `gorm:"column:title;size:255;not null" json:"title"`
	Message   string    `gorm:"column:message;type:text" json:"message"`
	Read      bool      `gorm:"column:read;default:false" json:"read"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}
