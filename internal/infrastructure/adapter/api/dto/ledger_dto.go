package dto

import (
	"time"

	"github.com/amirhossein-jamali/gem-ledger/internal/domain/entity"
	"github.com/amirhossein-jamali/gem-ledger/internal/domain/port/usecase"
)

// LedgerEntryResponse is one ledger entry
type LedgerEntryResponse struct {
	ID            string `json:"id"`
	AccountID     uint64 `json:"accountId"`
	Kind          string `json:"kind"`
	Amount        int64  `json:"amount"`
	BalanceAfter  int64  `json:"balanceAfter"`
	Description   string `json:"description,omitempty"`
	ReferenceID   string `json:"referenceId"`
	ReferenceType string `json:"referenceType"`
	CreatedAt     string `json:"createdAt"`
}

// LedgerResponse is a page of ledger entries, newest first
type LedgerResponse struct {
	AccountID uint64                `json:"accountId"`
	Entries   []LedgerEntryResponse `json:"entries"`
}

// ReconcileResponse answers whether a reference reached the ledger
type ReconcileResponse struct {
	ReferenceID   string                `json:"referenceId"`
	ReferenceType string                `json:"referenceType"`
	Applied       bool                  `json:"applied"`
	Entries       []LedgerEntryResponse `json:"entries"`
}

// AuditResponse compares an account's balance with its ledger
type AuditResponse struct {
	AccountID   uint64 `json:"accountId"`
	Balance     int64  `json:"balance"`
	LedgerSum   int64  `json:"ledgerSum"`
	LifetimeNet int64  `json:"lifetimeNet"`
	Consistent  bool   `json:"consistent"`
}

// NewLedgerEntries maps ledger entries
func NewLedgerEntries(entries []*entity.LedgerEntry) []LedgerEntryResponse {
	out := make([]LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, LedgerEntryResponse{
			ID:            e.ID,
			AccountID:     e.AccountID,
			Kind:          string(e.Kind),
			Amount:        e.Amount,
			BalanceAfter:  e.BalanceAfter,
			Description:   e.Description,
			ReferenceID:   e.ReferenceID,
			ReferenceType: e.ReferenceType,
			CreatedAt:     formatTime(e.CreatedAt),
		})
	}
	return out
}

// NewReconcileResponse maps a reconcile result
func NewReconcileResponse(r *usecase.ReconcileResult) ReconcileResponse {
	return ReconcileResponse{
		ReferenceID:   r.ReferenceID,
		ReferenceType: r.ReferenceType,
		Applied:       r.Applied,
		Entries:       NewLedgerEntries(r.Entries),
	}
}

// NewAuditResponse maps an audit report
func NewAuditResponse(r *usecase.AuditReport) AuditResponse {
	return AuditResponse{
		AccountID:   r.AccountID,
		Balance:     r.Balance,
		LedgerSum:   r.LedgerSum,
		LifetimeNet: r.LifetimeNet,
		Consistent:  r.Consistent,
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}
