package services

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"settlement-service/internal/consumers"
	"settlement-service/internal/models"
	"settlement-service/internal/worker"
	"settlement-service/pkg/common"

	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

// SettlementService owns the payment state machine. Approval converts a
// pending payment into an active investment, credits the payer's ledger
// and fans commissions up the sponsor chain in a single transaction:
// either everything applies or nothing does.
type SettlementService struct {
	DB         *gorm.DB
	Ledger     *LedgerService
	Commission *CommissionService
	Queue      *asynq.Client

	// CreditPrincipal keeps the "wallet mirrors contributed capital"
	// semantic: the optimistic pending credit created with the payment
	// is completed on approval. When off it is resolved rejected so no
	// entry is ever left pending.
	CreditPrincipal bool
}

func NewSettlementService(db *gorm.DB, ledger *LedgerService, commission *CommissionService, queue *asynq.Client) *SettlementService {
	creditPrincipal := true
	if v := os.Getenv("CREDIT_PRINCIPAL"); v == "false" || v == "0" {
		creditPrincipal = false
	}
	return &SettlementService{
		DB:              db,
		Ledger:          ledger,
		Commission:      commission,
		Queue:           queue,
		CreditPrincipal: creditPrincipal,
	}
}

type CreatePaymentDTO struct {
	PayerId     string
	PlanId      string
	Amount      float64
	ExternalRef string
}

func (s *SettlementService) CreatePayment(data CreatePaymentDTO) (*models.Payment, error) {
	if data.Amount <= 0 || strings.TrimSpace(data.ExternalRef) == "" {
		return nil, ErrValidation
	}

	var payer models.User
	if err := s.DB.Where("id = ?", data.PayerId).First(&payer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var plan models.Plan
	if err := s.DB.Where("id = ?", data.PlanId).First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !plan.Active {
		return nil, ErrValidation
	}

	payment := models.Payment{
		PayerId:     data.PayerId,
		PlanId:      data.PlanId,
		Amount:      data.Amount,
		ExternalRef: strings.TrimSpace(data.ExternalRef),
		Status:      models.PaymentPending,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		// Optimistic hold: recorded now, resolved when an operator
		// approves or rejects the claim.
		_, err := s.Ledger.CreditTx(tx, EntryParams{
			OwnerId:     payment.PayerId,
			Amount:      payment.Amount,
			Status:      models.EntryPending,
			Description: fmt.Sprintf("Payment for %s plan - pending approval (Ref: %s)", plan.Name, payment.ExternalRef),
			SourceRef:   payment.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.enqueue(worker.NewPaymentSubmittedTask(consumers.PaymentNoticeDTO{
		UserId:    payment.PayerId,
		PaymentId: payment.ID,
		Amount:    payment.Amount,
	}))

	return &payment, nil
}

// Approve settles a pending payment. Re-invoking on a non-pending payment
// returns ErrNotPending with no side effects; concurrent approvals are
// serialized by the status compare-and-swap so exactly one caller settles.
func (s *SettlementService) Approve(paymentID, notes string) (*models.Investment, error) {
	var (
		payment    models.Payment
		investment models.Investment
		awards     []models.CommissionAward
	)

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Payment{}).
			Where("id = ? AND status = ?", paymentID, models.PaymentPending).
			Updates(map[string]interface{}{"status": models.PaymentApproved, "notes": notes})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return s.notPendingReason(tx, paymentID)
		}

		if err := tx.Where("id = ?", paymentID).First(&payment).Error; err != nil {
			return err
		}

		var plan models.Plan
		if err := tx.Where("id = ?", payment.PlanId).First(&plan).Error; err != nil {
			return err
		}

		var payer models.User
		if err := tx.Where("id = ?", payment.PayerId).First(&payer).Error; err != nil {
			return err
		}

		start := time.Now()
		investment = models.Investment{
			OwnerId:        payment.PayerId,
			PlanId:         plan.ID,
			PlanName:       plan.Name,
			Principal:      payment.Amount,
			DurationMonths: plan.DurationMonths,
			AnnualRate:     plan.AnnualRate,
			StartDate:      start,
			EndDate:        start.AddDate(0, 0, 30*plan.DurationMonths),
			Status:         models.InvestmentActive,
			AccruedReturns: 0,
		}
		if err := tx.Create(&investment).Error; err != nil {
			return err
		}

		if err := s.upsertProfileTx(tx, payment.PayerId, plan.ID, payment.Amount); err != nil {
			return err
		}

		if err := s.resolvePrincipalTx(tx, &payment, plan.Name); err != nil {
			return err
		}

		var err error
		awards, err = s.Commission.DistributeReferralBonusTx(tx, &payment, fmt.Sprintf("%s (%s)", payer.Name, payer.MemberId))
		if err != nil {
			return err
		}

		_, err = s.Commission.RecordTeamInvestmentsTx(tx, &investment, &payment)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.enqueue(worker.NewPaymentApprovedTask(consumers.PaymentNoticeDTO{
		UserId:    payment.PayerId,
		PaymentId: payment.ID,
		Amount:    payment.Amount,
	}))
	for _, award := range awards {
		s.enqueue(worker.NewBonusAwardedTask(consumers.BonusNoticeDTO{
			UserId: award.BeneficiaryId,
			Amount: award.Amount,
			Level:  award.Level,
		}))
	}

	return &investment, nil
}

// Reject closes a pending payment without settlement. The optimistic hold
// is resolved rejected, never left pending.
func (s *SettlementService) Reject(paymentID, reason string) (*models.Payment, error) {
	var payment models.Payment

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Payment{}).
			Where("id = ? AND status = ?", paymentID, models.PaymentPending).
			Updates(map[string]interface{}{"status": models.PaymentRejected, "notes": reason})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return s.notPendingReason(tx, paymentID)
		}

		if err := tx.Where("id = ?", paymentID).First(&payment).Error; err != nil {
			return err
		}

		err := s.resolvePendingEntryTx(tx, paymentID, models.EntryRejected)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.enqueue(worker.NewPaymentRejectedTask(consumers.PaymentNoticeDTO{
		UserId:    payment.PayerId,
		PaymentId: payment.ID,
		Amount:    payment.Amount,
		Reason:    reason,
	}))

	return &payment, nil
}

func (s *SettlementService) notPendingReason(tx *gorm.DB, paymentID string) error {
	var count int64
	if err := tx.Model(&models.Payment{}).Where("id = ?", paymentID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrNotPending
}

func (s *SettlementService) upsertProfileTx(tx *gorm.DB, userID, planID string, amount float64) error {
	var profile models.Profile
	err := tx.Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		profile = models.Profile{
			UserId:              userID,
			CurrentPlanId:       planID,
			PlanAmount:          amount,
			TotalInvestedAmount: amount,
		}
		return tx.Create(&profile).Error
	}
	if err != nil {
		return err
	}

	return tx.Model(&models.Profile{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"current_plan_id":       planID,
			"plan_amount":           gorm.Expr("plan_amount + ?", amount),
			"total_invested_amount": gorm.Expr("total_invested_amount + ?", amount),
		}).Error
}

func (s *SettlementService) resolvePrincipalTx(tx *gorm.DB, payment *models.Payment, planName string) error {
	target := models.EntryCompleted
	if !s.CreditPrincipal {
		target = models.EntryRejected
	}

	if err := s.resolvePendingEntryTx(tx, payment.ID, target); err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		// No optimistic hold on record; credit the principal directly.
		if !s.CreditPrincipal {
			return nil
		}
		_, err := s.Ledger.CreditTx(tx, EntryParams{
			OwnerId:     payment.PayerId,
			Amount:      payment.Amount,
			Status:      models.EntryCompleted,
			Description: fmt.Sprintf("Principal recorded for %s plan", planName),
			SourceRef:   payment.ID,
		})
		return err
	}
	return nil
}

func (s *SettlementService) resolvePendingEntryTx(tx *gorm.DB, sourceRef, target string) error {
	var entry models.LedgerEntry
	err := tx.Where("source_ref = ? AND status = ?", sourceRef, models.EntryPending).
		First(&entry).Error
	if err != nil {
		return err
	}
	_, err = s.Ledger.TransitionTx(tx, entry.ID, target)
	return err
}

// PendingPayments lists claims awaiting an operator decision, oldest
// first.
func (s *SettlementService) PendingPayments(page, limit int) (common.PaginationResult, error) {
	return s.paymentsPage(s.DB.Where("status = ?", models.PaymentPending).Order("created_at ASC"), page, limit)
}

func (s *SettlementService) UserPayments(userID string, page, limit int) (common.PaginationResult, error) {
	return s.paymentsPage(s.DB.Where("payer_id = ?", userID).Order("created_at DESC"), page, limit)
}

func (s *SettlementService) paymentsPage(query *gorm.DB, page, limit int) (common.PaginationResult, error) {
	if limit <= 0 {
		limit = 100
	}
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	var total int64
	if err := query.Model(&models.Payment{}).Count(&total).Error; err != nil {
		return common.PaginationResult{}, err
	}

	var payments []models.Payment
	if err := query.Limit(limit).Offset(offset).Find(&payments).Error; err != nil {
		return common.PaginationResult{}, err
	}

	return common.PaginateResponse(payments, total, page, limit, "Payments fetched"), nil
}

func (s *SettlementService) GetPayment(paymentID string) (*models.Payment, error) {
	var payment models.Payment
	if err := s.DB.Where("id = ?", paymentID).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &payment, nil
}

// enqueue dispatches a notification task fire-and-forget. Failure is
// logged and never fails the settlement that triggered it.
func (s *SettlementService) enqueue(task *asynq.Task, err error) {
	if s.Queue == nil {
		return
	}
	if err != nil {
		log.Printf("Failed to build notification task: %v", err)
		return
	}
	if _, err := s.Queue.Enqueue(task); err != nil {
		log.Printf("Failed to enqueue notification task %s: %v", task.Type(), err)
	}
}
