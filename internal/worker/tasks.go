package worker

import (
	"encoding/json"

	"settlement-service/internal/consumers"

	"github.com/hibiken/asynq"
)

// Task Types
const (
	TypePaymentSubmitted = "payment-submitted"
	TypePaymentApproved  = "payment-approved"
	TypePaymentRejected  = "payment-rejected"
	TypeBonusAwarded     = "bonus-awarded"
	TypeInterestCredited = "interest-credited"
)

// Task Creators

func NewPaymentSubmittedTask(payload consumers.PaymentNoticeDTO) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypePaymentSubmitted, data), nil
}

func NewPaymentApprovedTask(payload consumers.PaymentNoticeDTO) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypePaymentApproved, data), nil
}

func NewPaymentRejectedTask(payload consumers.PaymentNoticeDTO) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypePaymentRejected, data), nil
}

func NewBonusAwardedTask(payload consumers.BonusNoticeDTO) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeBonusAwarded, data), nil
}

func NewInterestCreditedTask(payload consumers.InterestNoticeDTO) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeInterestCredited, data), nil
}
