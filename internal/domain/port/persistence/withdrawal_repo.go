package persistence

import (
	"context"

	"github.com/amirhossein-jamali/gem-ledger/internal/domain/entity"
)

// WithdrawalRepository defines methods for payout requests
type WithdrawalRepository interface {
	// Create stores a new pending request
	//
	// Possible errors:
	// - ErrPendingWithdrawalExists: If the partner already has a pending request
	// - ErrDatabaseConnection: If database connection fails
	Create(ctx context.Context, request *entity.WithdrawalRequest) error

	// GetForUpdate returns a request and locks it until the surrounding transaction ends
	//
	// Possible errors:
	// - ErrWithdrawalNotFound: If the request doesn't exist
	GetForUpdate(ctx context.Context, id string) (*entity.WithdrawalRequest, error)

	// HasPending reports whether the partner has a pending request
	HasPending(ctx context.Context, partnerID uint64) (bool, error)

	// Update writes a transition only if the stored status still equals expectedStatus
	//
	// Possible errors:
	// - ErrConcurrentModification: If the status moved on
	Update(ctx context.Context, request *entity.WithdrawalRequest, expectedStatus entity.WithdrawalStatus) error

	// ListByPartner returns a partner's requests, newest first
	ListByPartner(ctx context.Context, partnerID uint64, limit int) ([]*entity.WithdrawalRequest, error)
}
