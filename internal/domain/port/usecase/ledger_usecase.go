package usecase

import (
	"context"

	"github.com/amirhossein-jamali/gem-ledger/internal/domain/entity"
)

// Mutation execution paths
const (
	PathAtomic   = "atomic"
	PathFallback = "fallback"
	PathReplay   = "replay"
)

// MutationRequest describes one balance change
type MutationRequest struct {
	AccountID     uint64
	Kind          entity.EntryKind
	Amount        int64 // magnitude, always positive
	Description   string
	ReferenceID   string
	ReferenceType string
}

// MutationResult reports an applied or replayed balance change
type MutationResult struct {
	Entry      *entity.LedgerEntry
	NewBalance int64
	Replayed   bool   // true when the reference had already been applied
	Path       string // PathAtomic, PathFallback or PathReplay
}

// BalanceView is the public view of an account
type BalanceView struct {
	AccountID      uint64 `json:"accountId"`
	Balance        int64  `json:"balance"`
	HeldBalance    int64  `json:"heldBalance"`
	Available      int64  `json:"available"`
	LifetimeEarned int64  `json:"lifetimeEarned"`
	LifetimeSpent  int64  `json:"lifetimeSpent"`
}

// AuditReport compares an account's cached balance with its ledger
type AuditReport struct {
	AccountID   uint64
	Balance     int64
	LedgerSum   int64
	LifetimeNet int64
	Consistent  bool
}

// ReconcileResult answers whether a referenced operation reached the ledger
type ReconcileResult struct {
	ReferenceID   string
	ReferenceType string
	Applied       bool
	Entries       []*entity.LedgerEntry
}

// LedgerUseCase defines the balance store, ledger and transfer engine operations
type LedgerUseCase interface {
	// OpenAccount creates an empty account for a user
	OpenAccount(ctx context.Context, userID uint64) (*entity.Account, error)

	// GetBalance returns the current balance of an account
	GetBalance(ctx context.Context, accountID uint64) (*BalanceView, error)

	// Spend debits an account; fails with ErrInsufficientFunds when the available balance is short
	Spend(ctx context.Context, accountID uint64, amount int64, description, referenceID, referenceType string) (*MutationResult, error)

	// Receive credits an account with a receive entry
	Receive(ctx context.Context, accountID uint64, amount int64, description, referenceID, referenceType string) (*MutationResult, error)

	// Apply runs a mutation of any kind
	Apply(ctx context.Context, req MutationRequest) (*MutationResult, error)

	// ListLedger returns the newest entries of an account
	ListLedger(ctx context.Context, accountID uint64, limit int) ([]*entity.LedgerEntry, error)

	// Reconcile reports the ledger entries written for a reference
	Reconcile(ctx context.Context, referenceID, referenceType string) (*ReconcileResult, error)

	// AuditAccount checks balance == lifetime_earned - lifetime_spent == sum(ledger)
	AuditAccount(ctx context.Context, accountID uint64) (*AuditReport, error)
}
