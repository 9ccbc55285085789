package model

import (
	"time"
)

// LedgerEntry represents the database model for ledger entries. Rows are never
// updated or deleted.
type LedgerEntry struct {
	ID            string    `gorm:"primaryKey;type:varchar(36)"`
	AccountID     uint64    `gorm:"not null;uniqueIndex:uq_ledger_entries_reference,priority:1;index:idx_ledger_entries_account_created,priority:1"`
	Kind          string    `gorm:"type:varchar(16);not null;uniqueIndex:uq_ledger_entries_reference,priority:2"`
	Amount        int64     `gorm:"not null"` // Signed: negative for spend
	BalanceAfter  int64     `gorm:"not null"`
	Description   string    `gorm:"type:varchar(255);not null;default:''"`
	ReferenceType string    `gorm:"type:varchar(32);not null;uniqueIndex:uq_ledger_entries_reference,priority:3;index:idx_ledger_entries_reference,priority:1"`
	ReferenceID   string    `gorm:"type:varchar(128);not null;uniqueIndex:uq_ledger_entries_reference,priority:4;index:idx_ledger_entries_reference,priority:2"`
	CreatedAt     time.Time `gorm:"not null;index:idx_ledger_entries_account_created,priority:2"`

	// Define relationships
	Account Account `gorm:"foreignKey:AccountID;references:ID;constraint:OnDelete:RESTRICT"`
}

// TableName specifies the table name for LedgerEntry
func (LedgerEntry) TableName() string {
	return "ledger_entries"
}
