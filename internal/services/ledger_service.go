package services

import (
	"errors"
	"log"

	"settlement-service/internal/models"
	"settlement-service/pkg/common"

	"gorm.io/gorm"
)

// LedgerService owns every wallet balance mutation. Other services append
// entries through it; nothing else writes wallets.balance.
type LedgerService struct {
	DB *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{DB: db}
}

type EntryParams struct {
	OwnerId     string
	Amount      float64
	Status      string
	Description string
	SourceRef   string
}

func (s *LedgerService) Credit(p EntryParams) (*models.LedgerEntry, error) {
	var entry *models.LedgerEntry
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		e, err := s.CreditTx(tx, p)
		entry = e
		return err
	})
	return entry, err
}

// CreditTx appends a credit entry inside the caller's transaction. A
// completed entry adjusts the cached balance in the same transaction.
func (s *LedgerService) CreditTx(tx *gorm.DB, p EntryParams) (*models.LedgerEntry, error) {
	return s.appendTx(tx, models.DirectionCredit, p)
}

func (s *LedgerService) Debit(p EntryParams) (*models.LedgerEntry, error) {
	var entry *models.LedgerEntry
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		e, err := s.DebitTx(tx, p)
		entry = e
		return err
	})
	return entry, err
}

// DebitTx appends a debit entry. A completed debit fails with
// ErrInsufficientBalance when the balance would go negative; the entry is
// not created. Pending debits are provisional holds and skip the check.
func (s *LedgerService) DebitTx(tx *gorm.DB, p EntryParams) (*models.LedgerEntry, error) {
	return s.appendTx(tx, models.DirectionDebit, p)
}

func (s *LedgerService) appendTx(tx *gorm.DB, direction string, p EntryParams) (*models.LedgerEntry, error) {
	if p.Amount <= 0 || p.OwnerId == "" {
		return nil, ErrValidation
	}

	status := p.Status
	if status == "" {
		status = models.EntryPending
	}

	wallet, err := s.GetOrCreateWalletTx(tx, p.OwnerId)
	if err != nil {
		return nil, err
	}

	if status == models.EntryCompleted {
		if err := s.applyBalanceTx(tx, wallet.ID, direction, p.Amount); err != nil {
			return nil, err
		}
	}

	entry := models.LedgerEntry{
		WalletId:    wallet.ID,
		EntryNo:     common.GenerateEntryNo(),
		Amount:      p.Amount,
		Direction:   direction,
		Status:      status,
		Description: p.Description,
		SourceRef:   p.SourceRef,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *LedgerService) applyBalanceTx(tx *gorm.DB, walletID, direction string, amount float64) error {
	if direction == models.DirectionCredit {
		return tx.Model(&models.Wallet{}).
			Where("id = ?", walletID).
			UpdateColumn("balance", gorm.Expr("balance + ?", amount)).Error
	}

	// Guarded debit: single conditional update so concurrent spenders
	// cannot both pass a read-then-write check.
	res := tx.Model(&models.Wallet{}).
		Where("id = ? AND balance >= ?", walletID, amount).
		UpdateColumn("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientBalance
	}
	return nil
}

func (s *LedgerService) Transition(entryID, newStatus string) (*models.LedgerEntry, error) {
	var entry *models.LedgerEntry
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		e, err := s.TransitionTx(tx, entryID, newStatus)
		entry = e
		return err
	})
	return entry, err
}

// TransitionTx resolves a pending entry exactly once. Completing applies
// the balance effect; rejected and failed never touch the balance.
func (s *LedgerService) TransitionTx(tx *gorm.DB, entryID, newStatus string) (*models.LedgerEntry, error) {
	switch newStatus {
	case models.EntryCompleted, models.EntryRejected, models.EntryFailed:
	default:
		return nil, ErrValidation
	}

	var entry models.LedgerEntry
	if err := tx.Where("id = ?", entryID).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	res := tx.Model(&models.LedgerEntry{}).
		Where("id = ? AND status = ?", entryID, models.EntryPending).
		Update("status", newStatus)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrEntryNotPending
	}

	if newStatus == models.EntryCompleted {
		if err := s.applyBalanceTx(tx, entry.WalletId, entry.Direction, entry.Amount); err != nil {
			return nil, err
		}
	}

	entry.Status = newStatus
	return &entry, nil
}

func (s *LedgerService) GetOrCreateWalletTx(tx *gorm.DB, ownerID string) (*models.Wallet, error) {
	var wallet models.Wallet
	err := tx.Where("owner_id = ?", ownerID).First(&wallet).Error
	if err == nil {
		return &wallet, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	wallet = models.Wallet{OwnerId: ownerID}
	if err := tx.Create(&wallet).Error; err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (s *LedgerService) GetWallet(ownerID string) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := s.DB.Where("owner_id = ?", ownerID).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &wallet, nil
}

type ReconciliationResult struct {
	WalletId string  `json:"wallet_id"`
	OwnerId  string  `json:"owner_id"`
	Balance  float64 `json:"balance"`
	Drift    float64 `json:"drift"`
}

// Reconcile recomputes the balance strictly from completed history and
// corrects the cache. Drift is surfaced for operators; pending, rejected
// and failed entries never count.
func (s *LedgerService) Reconcile(ownerID string) (*ReconciliationResult, error) {
	var result *ReconciliationResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var wallet models.Wallet
		if err := tx.Where("owner_id = ?", ownerID).First(&wallet).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		replayed, err := s.replayBalanceTx(tx, wallet.ID)
		if err != nil {
			return err
		}

		drift := replayed - wallet.Balance
		if drift != 0 {
			log.Printf("Reconciliation drift on wallet %s: cached %.2f, replayed %.2f", wallet.ID, wallet.Balance, replayed)
			if err := tx.Model(&models.Wallet{}).Where("id = ?", wallet.ID).
				UpdateColumn("balance", replayed).Error; err != nil {
				return err
			}
		}

		result = &ReconciliationResult{
			WalletId: wallet.ID,
			OwnerId:  wallet.OwnerId,
			Balance:  replayed,
			Drift:    drift,
		}
		return nil
	})
	return result, err
}

func (s *LedgerService) replayBalanceTx(tx *gorm.DB, walletID string) (float64, error) {
	var credits, debits float64
	if err := tx.Model(&models.LedgerEntry{}).
		Where("wallet_id = ? AND direction = ? AND status = ?", walletID, models.DirectionCredit, models.EntryCompleted).
		Select("COALESCE(SUM(amount), 0)").Scan(&credits).Error; err != nil {
		return 0, err
	}
	if err := tx.Model(&models.LedgerEntry{}).
		Where("wallet_id = ? AND direction = ? AND status = ?", walletID, models.DirectionDebit, models.EntryCompleted).
		Select("COALESCE(SUM(amount), 0)").Scan(&debits).Error; err != nil {
		return 0, err
	}
	return credits - debits, nil
}

// Transactions returns a page of ledger history for a wallet owner,
// newest first.
func (s *LedgerService) Transactions(ownerID string, page, limit int) (common.PaginationResult, error) {
	if limit <= 0 {
		limit = 50
	}
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	wallet, err := s.GetWallet(ownerID)
	if err != nil {
		return common.PaginationResult{}, err
	}

	query := s.DB.Model(&models.LedgerEntry{}).Where("wallet_id = ?", wallet.ID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return common.PaginationResult{}, err
	}

	var entries []models.LedgerEntry
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&entries).Error; err != nil {
		return common.PaginationResult{}, err
	}

	return common.PaginateResponse(entries, total, page, limit, "Transactions fetched"), nil
}
