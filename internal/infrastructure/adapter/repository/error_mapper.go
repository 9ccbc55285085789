package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	errs "github.com/amirhossein-jamali/gem-ledger/internal/domain/error"
)

// EntityType represents the type of entity for errors mapping
type EntityType string

const (
	EntityAccount     EntityType = "account"
	EntityLedgerEntry EntityType = "ledger_entry"
	EntityCatalogItem EntityType = "gift_catalog_item"
	EntityGift        EntityType = "gift"
	EntityCompletion  EntityType = "daily_completion"
	EntityStreak      EntityType = "streak"
	EntityAchievement EntityType = "unlocked_achievement"
	EntityWithdrawal  EntityType = "withdrawal_request"
	EntityProfile     EntityType = "profile"
)

// SQLSTATE codes raised by the ledger's stored functions
const (
	SQLStateInsufficientFunds = "GL001"
	SQLStateAccountNotFound   = "GL002"
	SQLStateLedgerAppendOnly  = "GL003"
)

// Constraint names the mapper recognises in unique violations
const (
	ConstraintLedgerReference   = "uq_ledger_entries_reference"
	ConstraintPendingWithdrawal = "uq_withdrawal_requests_one_pending"
	ConstraintAccountPrimaryKey = "accounts_pkey"
	ConstraintCompletionDay     = "uq_daily_completions_user_date"
	ConstraintStreakType        = "uq_streaks_user_type"
	ConstraintAchievementUnlock = "uq_unlocked_achievements_user_achievement"
)

// MySQL server error numbers
const (
	mysqlDuplicateEntry     = 1062
	mysqlTableMissing       = 1146
	mysqlLockWaitTimeout    = 1205
	mysqlDeadlock           = 1213
	mysqlForeignKeyMissing  = 1452
	mysqlCheckConstraintHit = 3819
)

// ErrorMapper maps driver errors to domain errors. The driver error stays in the
// chain so retry classification can still inspect it.
type ErrorMapper struct{}

// NewErrorMapper creates a new ErrorMapper
func NewErrorMapper() *ErrorMapper {
	return &ErrorMapper{}
}

// MapError maps a database error raised while working on the given entity
func (m *ErrorMapper) MapError(err error, entity EntityType) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(entity)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return m.mapPostgres(pgErr, err, entity)
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return m.mapMySQL(myErr, err, entity)
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %s operation interrupted: %w", errs.ErrDatabaseConnection, entity, err)
	}

	errMsg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errMsg, "connection refused") ||
		strings.Contains(errMsg, "no connection") ||
		strings.Contains(errMsg, "connection reset") ||
		strings.Contains(errMsg, "broken pipe") ||
		strings.Contains(errMsg, "bad connection"):
		return fmt.Errorf("%w: %w", errs.ErrDatabaseConnection, err)
	default:
		return fmt.Errorf("%w: %s: %w", errs.ErrInternalServer, entity, err)
	}
}

func (m *ErrorMapper) mapPostgres(pgErr *pgconn.PgError, err error, entity EntityType) error {
	switch {
	case pgErr.Code == SQLStateInsufficientFunds:
		return fmt.Errorf("%w: %s", errs.ErrInsufficientFunds, pgErr.Message)
	case pgErr.Code == SQLStateAccountNotFound:
		return errs.ErrAccountNotFound
	case pgErr.Code == SQLStateLedgerAppendOnly:
		return fmt.Errorf("%w: %w", errs.ErrConstraintViolation, err)
	case pgErr.Code == pgerrcode.UniqueViolation:
		return uniqueViolation(pgErr.ConstraintName, err)
	case pgErr.Code == pgerrcode.ForeignKeyViolation:
		return fmt.Errorf("%w: %w", errs.ErrAccountNotFound, err)
	case pgErr.Code == pgerrcode.CheckViolation || pgErr.Code == pgerrcode.NotNullViolation:
		return fmt.Errorf("%w: %w", errs.ErrConstraintViolation, err)
	case pgErr.Code == pgerrcode.SerializationFailure ||
		pgErr.Code == pgerrcode.DeadlockDetected ||
		pgErr.Code == pgerrcode.LockNotAvailable:
		return fmt.Errorf("%w: %w", errs.ErrTransactionAborted, err)
	case pgErr.Code == pgerrcode.UndefinedFunction || pgErr.Code == pgerrcode.UndefinedTable:
		return fmt.Errorf("%w: %s: %w", errs.ErrSchemaNotProvisioned, entity, err)
	case pgerrcode.IsConnectionException(pgErr.Code) || pgerrcode.IsOperatorIntervention(pgErr.Code):
		return fmt.Errorf("%w: %w", errs.ErrDatabaseConnection, err)
	default:
		return fmt.Errorf("%w: %s: %w", errs.ErrInternalServer, entity, err)
	}
}

func (m *ErrorMapper) mapMySQL(myErr *mysql.MySQLError, err error, entity EntityType) error {
	switch myErr.Number {
	case mysqlDuplicateEntry:
		return uniqueViolation(duplicateKeyName(myErr.Message), err)
	case mysqlForeignKeyMissing:
		return fmt.Errorf("%w: %w", errs.ErrAccountNotFound, err)
	case mysqlCheckConstraintHit:
		return fmt.Errorf("%w: %w", errs.ErrConstraintViolation, err)
	case mysqlDeadlock, mysqlLockWaitTimeout:
		return fmt.Errorf("%w: %w", errs.ErrTransactionAborted, err)
	case mysqlTableMissing:
		return fmt.Errorf("%w: %s: %w", errs.ErrSchemaNotProvisioned, entity, err)
	default:
		return fmt.Errorf("%w: %s: %w", errs.ErrInternalServer, entity, err)
	}
}

func uniqueViolation(constraint string, err error) error {
	switch constraint {
	case ConstraintLedgerReference:
		return fmt.Errorf("%w: %w", errs.ErrDuplicateMutation, err)
	case ConstraintPendingWithdrawal:
		return errs.ErrPendingWithdrawalExists
	case ConstraintAccountPrimaryKey, "PRIMARY":
		return errs.ErrDuplicateAccount
	case ConstraintCompletionDay, ConstraintStreakType, ConstraintAchievementUnlock:
		return fmt.Errorf("%w: %w", errs.ErrConcurrentModification, err)
	default:
		return fmt.Errorf("%w: %w", errs.ErrConstraintViolation, err)
	}
}

// duplicateKeyName extracts the key from "Duplicate entry '...' for key 'table.key'"
func duplicateKeyName(message string) string {
	idx := strings.LastIndex(message, "for key '")
	if idx == -1 {
		return ""
	}
	key := strings.TrimSuffix(message[idx+len("for key '"):], "'")
	if dot := strings.LastIndex(key, "."); dot != -1 {
		key = key[dot+1:]
	}
	return key
}

func notFound(entity EntityType) error {
	switch entity {
	case EntityAccount:
		return errs.ErrAccountNotFound
	case EntityLedgerEntry:
		return errs.ErrLedgerEntryNotFound
	case EntityCatalogItem:
		return errs.ErrUnknownGift
	case EntityGift:
		return errs.ErrGiftNotFound
	case EntityCompletion:
		return errs.ErrCompletionNotFound
	case EntityStreak:
		return errs.ErrStreakNotFound
	case EntityWithdrawal:
		return errs.ErrWithdrawalNotFound
	default:
		return errs.ErrNotFound
	}
}

// IsRetryable reports whether a failed transaction may succeed when run again from
// the start: serialization failures, deadlocks and lock timeouts
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, errs.ErrRollbackFailed) || errors.Is(err, errs.ErrCommitFailed) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.SerializationFailure ||
			pgErr.Code == pgerrcode.DeadlockDetected ||
			pgErr.Code == pgerrcode.LockNotAvailable
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDeadlock || myErr.Number == mysqlLockWaitTimeout
	}

	return false
}
