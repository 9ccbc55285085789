package usecase

import (
	"context"

	"github.com/amirhossein-jamali/gem-ledger/internal/domain/entity"
)

// CreateWithdrawalRequest carries a partner's payout ask
type CreateWithdrawalRequest struct {
	PartnerID uint64
	Amount    int64
	Bank      entity.BankInfo
}

// WithdrawalUseCase defines the withdrawal lifecycle
type WithdrawalUseCase interface {
	// CreateWithdrawal validates eligibility, places a hold and stores a pending request
	CreateWithdrawal(ctx context.Context, req CreateWithdrawalRequest) (*entity.WithdrawalRequest, error)

	// ApproveWithdrawal moves a pending request to approved
	ApproveWithdrawal(ctx context.Context, id string, adminID uint64) (*entity.WithdrawalRequest, error)

	// StartProcessingWithdrawal moves an approved request to processing
	StartProcessingWithdrawal(ctx context.Context, id string, adminID uint64) (*entity.WithdrawalRequest, error)

	// RejectWithdrawal ends a request and releases its hold
	RejectWithdrawal(ctx context.Context, id string, adminID uint64, reason string) (*entity.WithdrawalRequest, error)

	// CompleteWithdrawal releases the hold and debits the account
	CompleteWithdrawal(ctx context.Context, id string, adminID uint64, transactionReference string) (*entity.WithdrawalRequest, error)

	// ListWithdrawals returns a partner's requests, newest first
	ListWithdrawals(ctx context.Context, partnerID uint64, limit int) ([]*entity.WithdrawalRequest, error)
}
