package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DirectionCredit = "credit"
	DirectionDebit  = "debit"
)

const (
	EntryPending   = "pending"
	EntryCompleted = "completed"
	EntryRejected  = "rejected"
	EntryFailed    = "failed"
)

// Wallet caches the balance derived from its completed ledger entries.
// Only the ledger service mutates Balance.
type Wallet struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	OwnerId   string    `gorm:"column:owner_id;size:36;not null;uniqueIndex" json:"owner_id"`
	Balance   float64   `gorm:"column:balance;type:decimal(20,2);default:0.00" json:"balance"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Wallet) TableName() string {
	return "wallets"
}

func (w *Wallet) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}

// LedgerEntry is append-only. Amount and Direction never change after
// creation; Status moves pending -> {completed, rejected, failed} once.
type LedgerEntry struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	WalletId    string    `gorm:"column:wallet_id;size:36;not null;index" json:"wallet_id"`
	EntryNo     string    `gorm:"column:entry_no;size:20;not null;index" json:"entry_no"`
	Amount      float64   `gorm:"column:amount;type:decimal(20,2);not null" json:"amount"`
	Direction   string    `gorm:"column:direction;size:10;not null" json:"direction"`
	Status      string    `gorm:"column:status;size:20;default:pending;index" json:"status"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	SourceRef   string    `gorm:"column:source_ref;size:36;index" json:"source_ref"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (LedgerEntry) TableName() string {
	return "ledger_entries"
}

func (e *LedgerEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
