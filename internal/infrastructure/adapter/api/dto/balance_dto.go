package dto

import (
	"github.com/amirhossein-jamali/gem-ledger/internal/domain/entity"
	"github.com/amirhossein-jamali/gem-ledger/internal/domain/port/usecase"
)

// BalanceResponse represents the API response for an account's balance
type BalanceResponse struct {
	AccountID      uint64 `json:"accountId"`
	Balance        int64  `json:"balance"`
	HeldBalance    int64  `json:"heldBalance"`
	Available      int64  `json:"available"`
	LifetimeEarned int64  `json:"lifetimeEarned"`
	LifetimeSpent  int64  `json:"lifetimeSpent"`
}

// NewBalanceResponse maps a balance view
func NewBalanceResponse(v *usecase.BalanceView) BalanceResponse {
	return BalanceResponse{
		AccountID:      v.AccountID,
		Balance:        v.Balance,
		HeldBalance:    v.HeldBalance,
		Available:      v.Available,
		LifetimeEarned: v.LifetimeEarned,
		LifetimeSpent:  v.LifetimeSpent,
	}
}

// AccountResponse is returned when an account is opened
type AccountResponse struct {
	AccountID uint64 `json:"accountId"`
	Balance   int64  `json:"balance"`
	CreatedAt string `json:"createdAt"`
}

// NewAccountResponse maps an account
func NewAccountResponse(a *entity.Account) AccountResponse {
	return AccountResponse{
		AccountID: a.ID,
		Balance:   a.Balance,
		CreatedAt: formatTime(a.CreatedAt),
	}
}

// CreditRequest is an admin credit of an account
type CreditRequest struct {
	Amount      int64  `json:"amount" binding:"required,gt=0"`
	Kind        string `json:"kind" binding:"required,oneof=purchase bonus refund receive"`
	Description string `json:"description" binding:"max=255"`
	ReferenceID string `json:"referenceId" binding:"required,max=64"`
}

// MutationResponse reports an applied or replayed mutation
type MutationResponse struct {
	EntryID    string `json:"entryId"`
	AccountID  uint64 `json:"accountId"`
	Kind       string `json:"kind"`
	Amount     int64  `json:"amount"`
	NewBalance int64  `json:"newBalance"`
	Replayed   bool   `json:"replayed"`
}

// NewMutationResponse maps a mutation result
func NewMutationResponse(r *usecase.MutationResult) MutationResponse {
	return MutationResponse{
		EntryID:    r.Entry.ID,
		AccountID:  r.Entry.AccountID,
		Kind:       string(r.Entry.Kind),
		Amount:     r.Entry.Amount,
		NewBalance: r.NewBalance,
		Replayed:   r.Replayed,
	}
}
