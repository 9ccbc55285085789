package persistence

import (
	"context"
)

// UnitOfWork defines an interface for coordinating transaction operations
// across multiple repositories to maintain data consistency
type UnitOfWork interface {
	// Begin starts a new transaction and returns a transactional context
	Begin(ctx context.Context) (context.Context, error)

	// Commit commits the transaction in the given context
	Commit(ctx context.Context) error

	// Rollback rolls back the transaction in the given context
	Rollback(ctx context.Context) error

	// InTransaction reports whether ctx carries an open transaction
	InTransaction(ctx context.Context) bool

	// Within runs fn in a transaction. If ctx already carries one, fn joins it and the
	// outermost caller decides the outcome. A failed rollback is reported as a
	// RollbackError wrapping fn's error.
	Within(ctx context.Context, fn func(ctx context.Context) error) error

	// AfterCommit runs fn once the transaction carried by ctx commits. Hooks of a
	// rolled back transaction are dropped. Without a transaction fn runs immediately.
	AfterCommit(ctx context.Context, fn func())

	// GetAccountRepository returns an account repository bound to the current transaction
	GetAccountRepository(ctx context.Context) AccountRepository

	// GetLedgerRepository returns a ledger repository bound to the current transaction
	GetLedgerRepository(ctx context.Context) LedgerRepository

	// GetGiftRepository returns a gift repository bound to the current transaction
	GetGiftRepository(ctx context.Context) GiftRepository

	// GetStreakRepository returns a streak repository bound to the current transaction
	GetStreakRepository(ctx context.Context) StreakRepository

	// GetAchievementRepository returns an achievement repository bound to the current transaction
	GetAchievementRepository(ctx context.Context) AchievementRepository

	// GetWithdrawalRepository returns a withdrawal repository bound to the current transaction
	GetWithdrawalRepository(ctx context.Context) WithdrawalRepository
}
