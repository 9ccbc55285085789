package persistence

import (
	"context"

	"github.com/amirhossein-jamali/gem-ledger/internal/domain/entity"
)

// LedgerRepository defines methods to interact with the append-only ledger
type LedgerRepository interface {
	// Append stores a new ledger entry
	//
	// Possible errors:
	// - ErrDuplicateMutation: If an entry with the same account, kind and reference exists
	// - ErrAccountNotFound: If the referenced account doesn't exist
	// - ErrDatabaseConnection: If database connection fails
	Append(ctx context.Context, entry *entity.LedgerEntry) error

	// FindForReference returns the entry an account received for a reference, used to
	// answer replayed mutations
	//
	// Possible errors:
	// - ErrLedgerEntryNotFound: If no such entry exists
	FindForReference(ctx context.Context, accountID uint64, kind entity.EntryKind, referenceID, referenceType string) (*entity.LedgerEntry, error)

	// FindByReference returns every entry written for a reference, oldest first
	FindByReference(ctx context.Context, referenceID, referenceType string) ([]*entity.LedgerEntry, error)

	// ListByAccount returns the most recent entries of an account, newest first
	ListByAccount(ctx context.Context, accountID uint64, limit int) ([]*entity.LedgerEntry, error)

	// SumByAccount returns the sum of signed amounts of an account's entries
	SumByAccount(ctx context.Context, accountID uint64) (int64, error)
}
