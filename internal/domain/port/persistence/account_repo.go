package persistence

import (
	"context"

	"github.com/amirhossein-jamali/gem-ledger/internal/domain/entity"
)

// AccountRepository defines methods to interact with gem accounts
type AccountRepository interface {
	// GetByID retrieves an account by its owner's user ID
	//
	// Possible errors:
	// - ErrAccountNotFound: If the account doesn't exist
	// - ErrDatabaseConnection: If database connection fails
	GetByID(ctx context.Context, id uint64) (*entity.Account, error)

	// GetForUpdate retrieves an account and locks its row until the surrounding
	// transaction ends
	//
	// Possible errors:
	// - ErrAccountNotFound: If the account doesn't exist
	// - ErrDatabaseConnection: If database connection fails
	GetForUpdate(ctx context.Context, id uint64) (*entity.Account, error)

	// Create opens a new account
	//
	// Possible errors:
	// - ErrDuplicateAccount: If the account already exists
	// - ErrDatabaseConnection: If database connection fails
	Create(ctx context.Context, account *entity.Account) error

	// UpdateIfVersion writes balance, hold and lifetime counters only if the stored
	// version still equals expectedVersion
	//
	// Possible errors:
	// - ErrConcurrentModification: If the stored version moved on
	// - ErrDatabaseConnection: If database connection fails
	UpdateIfVersion(ctx context.Context, account *entity.Account, expectedVersion int64) error

	// ApplyMutation runs the atomic lock-check-update-append primitive in the store.
	// entry.BalanceAfter is filled in on success.
	//
	// Possible errors:
	// - ErrInsufficientFunds: If a spend exceeds the available balance
	// - ErrAccountNotFound: If the account doesn't exist
	// - ErrDuplicateMutation: If an entry with the same reference already exists
	// - ErrSchemaNotProvisioned: If the primitive is missing from the schema
	ApplyMutation(ctx context.Context, entry *entity.LedgerEntry) error
}
