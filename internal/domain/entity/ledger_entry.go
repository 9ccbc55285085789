package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	errs "github.com/amirhossein-jamali/gem-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/gem-ledger/internal/domain/port/core"
)

// EntryKind classifies a ledger entry
type EntryKind string

// Ledger entry kinds
const (
	KindSpend    EntryKind = "spend"
	KindReceive  EntryKind = "receive"
	KindPurchase EntryKind = "purchase"
	KindBonus    EntryKind = "bonus"
	KindRefund   EntryKind = "refund"
)

// Reference types linking ledger entries to the record that caused them
const (
	RefTypeGift         = "gift"
	RefTypeWithdrawal   = "withdrawal"
	RefTypeAchievement  = "achievement"
	RefTypeStreakFreeze = "streak_freeze"
	RefTypeAdmin        = "admin"
	RefTypePurchase     = "purchase"
)

// ParseEntryKind validates a raw kind string
func ParseEntryKind(raw string) (EntryKind, error) {
	switch kind := EntryKind(raw); kind {
	case KindSpend, KindReceive, KindPurchase, KindBonus, KindRefund:
		return kind, nil
	default:
		return "", fmt.Errorf("%w: %s", errs.ErrInvalidEntryKind, raw)
	}
}

// IsDebit returns true if entries of this kind decrease the balance
func (k EntryKind) IsDebit() bool {
	return k == KindSpend
}

// IsCredit returns true if entries of this kind increase the balance
func (k EntryKind) IsCredit() bool {
	switch k {
	case KindReceive, KindPurchase, KindBonus, KindRefund:
		return true
	default:
		return false
	}
}

// LedgerEntry is an immutable record of one balance change
type LedgerEntry struct {
	ID            string    // UUID assigned at creation
	AccountID     uint64    // Account the change applies to
	Kind          EntryKind // Classification of the change
	Amount        int64     // Signed change: negative for spend, positive otherwise
	BalanceAfter  int64     // Account balance immediately after this entry
	Description   string    // Human readable summary
	ReferenceID   string    // Id of the gift, withdrawal, achievement, ... that caused the change
	ReferenceType string    // Kind of record ReferenceID points at
	CreatedAt     time.Time // When the entry was written
}

// NewLedgerEntry builds an entry for a mutation of the given magnitude
func NewLedgerEntry(
	accountID uint64,
	kind EntryKind,
	amount int64,
	description string,
	referenceID string,
	referenceType string,
	timeProvider coreport.TimeProvider,
) (*LedgerEntry, error) {
	if accountID == 0 {
		return nil, errs.ErrInvalidUserID
	}
	if _, err := ParseEntryKind(string(kind)); err != nil {
		return nil, err
	}
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}
	if referenceID == "" || referenceType == "" {
		return nil, errs.ErrInvalidReference
	}

	return &LedgerEntry{
		ID:            uuid.NewString(),
		AccountID:     accountID,
		Kind:          kind,
		Amount:        SignedAmount(kind, amount),
		Description:   description,
		ReferenceID:   referenceID,
		ReferenceType: referenceType,
		CreatedAt:     timeProvider.Now(),
	}, nil
}

// Magnitude returns the absolute number of gems moved by the entry
func (e *LedgerEntry) Magnitude() int64 {
	if e.Amount < 0 {
		return -e.Amount
	}
	return e.Amount
}
