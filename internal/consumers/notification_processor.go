package consumers

import (
	"fmt"
	"log"

	"settlement-service/internal/models"

	"gorm.io/gorm"
)

// NotificationProcessor persists notification rows for events emitted by
// the settlement and accrual services. Delivery is best-effort by design;
// a failed notification never affects the ledger.
type NotificationProcessor struct {
	DB *gorm.DB
}

func NewNotificationProcessor(db *gorm.DB) *NotificationProcessor {
	return &NotificationProcessor{DB: db}
}

// --- Task payloads ---

type PaymentNoticeDTO struct {
	UserId    string  `json:"user_id"`
	PaymentId string  `json:"payment_id"`
	Amount    float64 `json:"amount"`
	Reason    string  `json:"reason,omitempty"`
}

type BonusNoticeDTO struct {
	UserId string  `json:"user_id"`
	Amount float64 `json:"amount"`
	Level  int     `json:"level"`
}

type InterestNoticeDTO struct {
	UserId       string  `json:"user_id"`
	InvestmentId string  `json:"investment_id"`
	PlanName     string  `json:"plan_name"`
	Amount       float64 `json:"amount"`
}

func (p *NotificationProcessor) ProcessPaymentSubmitted(data PaymentNoticeDTO) {
	p.save(models.Notification{
		UserId:  data.UserId,
		Kind:    models.NotifyPaymentSubmitted,
		Title:   "Payment received",
		Message: fmt.Sprintf("Your payment of %.2f has been received and is awaiting approval.", data.Amount),
	})
}

func (p *NotificationProcessor) ProcessPaymentApproved(data PaymentNoticeDTO) {
	p.save(models.Notification{
		UserId:  data.UserId,
		Kind:    models.NotifyPaymentApproved,
		Title:   "Payment approved",
		Message: fmt.Sprintf("Your payment of %.2f was approved and your investment is now active.", data.Amount),
	})
}

func (p *NotificationProcessor) ProcessPaymentRejected(data PaymentNoticeDTO) {
	reason := data.Reason
	if reason == "" {
		reason = "No reason provided"
	}
	p.save(models.Notification{
		UserId:  data.UserId,
		Kind:    models.NotifyPaymentRejected,
		Title:   "Payment rejected",
		Message: fmt.Sprintf("Your payment of %.2f was rejected: %s", data.Amount, reason),
	})
}

func (p *NotificationProcessor) ProcessBonusAwarded(data BonusNoticeDTO) {
	p.save(models.Notification{
		UserId:  data.UserId,
		Kind:    models.NotifyBonusAwarded,
		Title:   "Referral bonus",
		Message: fmt.Sprintf("You earned a level %d referral bonus of %.2f.", data.Level, data.Amount),
	})
}

func (p *NotificationProcessor) ProcessInterestCredited(data InterestNoticeDTO) {
	p.save(models.Notification{
		UserId:  data.UserId,
		Kind:    models.NotifyInterestCredited,
		Title:   "Interest credited",
		Message: fmt.Sprintf("Monthly interest of %.2f from your %s plan was credited.", data.Amount, data.PlanName),
	})
}

func (p *NotificationProcessor) save(n models.Notification) {
	if err := p.DB.Create(&n).Error; err != nil {
		log.Printf("Failed to save notification for user %s: %v", n.UserId, err)
	}
}
