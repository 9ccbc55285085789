package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"gorm.io/gorm"

	errs "github.com/amirhossein-jamali/gem-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/gem-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/gem-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/gem-ledger/internal/infrastructure/adapter/repository"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

// Context keys
const (
	txKey    contextKey = "tx"
	hooksKey contextKey = "tx_hooks"
)

// commitHooks collects the callbacks of one transaction
type commitHooks struct {
	fns []func()
}

// UnitOfWork implements the unit of work pattern for database transactions
type UnitOfWork struct {
	db        *gorm.DB
	isolation sql.IsolationLevel
	retry     RetryConfig
	logger    coreport.Logger
}

// NewUnitOfWork creates a new UnitOfWork instance
func NewUnitOfWork(db *gorm.DB, isolation sql.IsolationLevel, retry RetryConfig, logger coreport.Logger) *UnitOfWork {
	return &UnitOfWork{
		db:        db,
		isolation: isolation,
		retry:     retry,
		logger:    logger,
	}
}

var _ persistence.UnitOfWork = (*UnitOfWork)(nil)

// ParseIsolationLevel maps a config string to a transaction isolation level
func ParseIsolationLevel(level string) (sql.IsolationLevel, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "serializable":
		return sql.LevelSerializable, nil
	case "repeatable read":
		return sql.LevelRepeatableRead, nil
	case "read committed":
		return sql.LevelReadCommitted, nil
	default:
		return sql.LevelDefault, fmt.Errorf("unsupported isolation level: %s", level)
	}
}

// Begin starts a new database transaction
func (u *UnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	u.logger.Debug("Beginning database transaction", map[string]any{"isolation": u.isolation.String()})

	tx := u.db.WithContext(ctx).Begin(&sql.TxOptions{Isolation: u.isolation})
	if tx.Error != nil {
		u.logger.Error("Failed to begin transaction", map[string]any{"error": tx.Error.Error()})
		return ctx, fmt.Errorf("%w: failed to begin transaction: %w", errs.ErrDatabaseConnection, tx.Error)
	}

	// Store transaction in context
	ctx = context.WithValue(ctx, hooksKey, &commitHooks{})
	return context.WithValue(ctx, txKey, tx), nil
}

// Commit commits the current transaction
func (u *UnitOfWork) Commit(ctx context.Context) error {
	tx, ok := ctx.Value(txKey).(*gorm.DB)
	if !ok || tx == nil {
		return fmt.Errorf("no transaction found in context")
	}

	u.logger.Debug("Committing database transaction", nil)
	if err := tx.Commit().Error; err != nil {
		u.logger.Error("Failed to commit transaction", map[string]any{"error": err.Error()})
		// A serialization failure at commit time is a clean abort
		if repository.IsRetryable(err) {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		return fmt.Errorf("%w: %w", errs.ErrCommitFailed, err)
	}

	if hooks, ok := ctx.Value(hooksKey).(*commitHooks); ok {
		for _, fn := range hooks.fns {
			fn()
		}
		hooks.fns = nil
	}
	return nil
}

// Rollback rolls back the current transaction
func (u *UnitOfWork) Rollback(ctx context.Context) error {
	tx, ok := ctx.Value(txKey).(*gorm.DB)
	if !ok || tx == nil {
		return fmt.Errorf("no transaction found in context")
	}

	u.logger.Debug("Rolling back database transaction", nil)
	if hooks, ok := ctx.Value(hooksKey).(*commitHooks); ok {
		hooks.fns = nil
	}

	err := tx.Rollback().Error

	// Already finished transactions are not a rollback failure
	if err != nil && strings.Contains(err.Error(), "already been committed or rolled back") {
		u.logger.Warn("Transaction has already been committed or rolled back", map[string]any{
			"error": err.Error(),
		})
		return nil
	}

	if err != nil {
		u.logger.Error("Failed to rollback transaction", map[string]any{
			"error": err.Error(),
		})
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	return nil
}

// InTransaction reports whether ctx carries an open transaction
func (u *UnitOfWork) InTransaction(ctx context.Context) bool {
	tx, ok := ctx.Value(txKey).(*gorm.DB)
	return ok && tx != nil
}

// AfterCommit defers fn until the transaction in ctx commits, or runs it now
// when there is none
func (u *UnitOfWork) AfterCommit(ctx context.Context, fn func()) {
	hooks, ok := ctx.Value(hooksKey).(*commitHooks)
	if !ok || !u.InTransaction(ctx) {
		fn()
		return
	}
	hooks.fns = append(hooks.fns, fn)
}

// Within runs fn in a transaction, joining one already carried by ctx. A
// transaction owned here is retried from the start when the database aborts it
// with a serialization failure or deadlock.
func (u *UnitOfWork) Within(ctx context.Context, fn func(ctx context.Context) error) error {
	if u.InTransaction(ctx) {
		return fn(ctx)
	}

	return RetryOnTransientError(ctx, u.retry, func() error {
		return u.runOnce(ctx, fn)
	}, u.logger)
}

func (u *UnitOfWork) runOnce(ctx context.Context, fn func(ctx context.Context) error) error {
	txCtx, err := u.Begin(ctx)
	if err != nil {
		return err
	}

	if err := fn(txCtx); err != nil {
		if rbErr := u.Rollback(txCtx); rbErr != nil {
			return &errs.RollbackError{Err: err, RollbackErr: rbErr}
		}
		return err
	}

	return u.Commit(txCtx)
}

// GetAccountRepository returns an account repository in the current transaction
func (u *UnitOfWork) GetAccountRepository(ctx context.Context) persistence.AccountRepository {
	return repository.NewAccountRepository(u.getDbFromContext(ctx), u.logger)
}

// GetLedgerRepository returns a ledger repository in the current transaction
func (u *UnitOfWork) GetLedgerRepository(ctx context.Context) persistence.LedgerRepository {
	return repository.NewLedgerRepository(u.getDbFromContext(ctx), u.logger)
}

// GetGiftRepository returns a gift repository in the current transaction
func (u *UnitOfWork) GetGiftRepository(ctx context.Context) persistence.GiftRepository {
	return repository.NewGiftRepository(u.getDbFromContext(ctx), u.logger)
}

// GetStreakRepository returns a streak repository in the current transaction
func (u *UnitOfWork) GetStreakRepository(ctx context.Context) persistence.StreakRepository {
	return repository.NewStreakRepository(u.getDbFromContext(ctx), u.InTransaction(ctx), u.logger)
}

// GetAchievementRepository returns an achievement repository in the current transaction
func (u *UnitOfWork) GetAchievementRepository(ctx context.Context) persistence.AchievementRepository {
	return repository.NewAchievementRepository(u.getDbFromContext(ctx), u.logger)
}

// GetWithdrawalRepository returns a withdrawal repository in the current transaction
func (u *UnitOfWork) GetWithdrawalRepository(ctx context.Context) persistence.WithdrawalRepository {
	return repository.NewWithdrawalRepository(u.getDbFromContext(ctx), u.logger)
}

// getDbFromContext retrieves the database instance from context
func (u *UnitOfWork) getDbFromContext(ctx context.Context) *gorm.DB {
	tx, ok := ctx.Value(txKey).(*gorm.DB)
	if ok && tx != nil {
		return tx
	}
	return u.db.WithContext(ctx)
}
