package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	errs "github.com/amirhossein-jamali/gem-ledger/internal/domain/error"
)

func TestErrorMapper_MapError(t *testing.T) {
	mapper := NewErrorMapper()

	testCases := []struct {
		name     string
		err      error
		entity   EntityType
		expected error
	}{
		{"record not found account", gorm.ErrRecordNotFound, EntityAccount, errs.ErrAccountNotFound},
		{"record not found withdrawal", gorm.ErrRecordNotFound, EntityWithdrawal, errs.ErrWithdrawalNotFound},
		{"record not found catalog", gorm.ErrRecordNotFound, EntityCatalogItem, errs.ErrUnknownGift},
		{"record not found profile", gorm.ErrRecordNotFound, EntityProfile, errs.ErrNotFound},
		{
			"ledger reference collision",
			&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: ConstraintLedgerReference},
			EntityLedgerEntry,
			errs.ErrDuplicateMutation,
		},
		{
			"second pending withdrawal",
			&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: ConstraintPendingWithdrawal},
			EntityWithdrawal,
			errs.ErrPendingWithdrawalExists,
		},
		{
			"account already open",
			&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: ConstraintAccountPrimaryKey},
			EntityAccount,
			errs.ErrDuplicateAccount,
		},
		{
			"completion raced",
			&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: ConstraintCompletionDay},
			EntityCompletion,
			errs.ErrConcurrentModification,
		},
		{"insufficient funds from function", &pgconn.PgError{Code: SQLStateInsufficientFunds}, EntityAccount, errs.ErrInsufficientFunds},
		{"account missing in function", &pgconn.PgError{Code: SQLStateAccountNotFound}, EntityAccount, errs.ErrAccountNotFound},
		{"ledger rewrite rejected", &pgconn.PgError{Code: SQLStateLedgerAppendOnly}, EntityLedgerEntry, errs.ErrConstraintViolation},
		{"check violation", &pgconn.PgError{Code: pgerrcode.CheckViolation}, EntityAccount, errs.ErrConstraintViolation},
		{"serialization failure", &pgconn.PgError{Code: pgerrcode.SerializationFailure}, EntityAccount, errs.ErrTransactionAborted},
		{"deadlock", &pgconn.PgError{Code: pgerrcode.DeadlockDetected}, EntityAccount, errs.ErrTransactionAborted},
		{"missing function", &pgconn.PgError{Code: pgerrcode.UndefinedFunction}, EntityAccount, errs.ErrSchemaNotProvisioned},
		{"missing table", &pgconn.PgError{Code: pgerrcode.UndefinedTable}, EntityStreak, errs.ErrSchemaNotProvisioned},
		{"connection failure", &pgconn.PgError{Code: pgerrcode.ConnectionFailure}, EntityAccount, errs.ErrDatabaseConnection},
		{
			"mysql duplicate ledger reference",
			&mysql.MySQLError{Number: 1062, Message: "Duplicate entry '1-spend-gift-g1' for key 'ledger_entries.uq_ledger_entries_reference'"},
			EntityLedgerEntry,
			errs.ErrDuplicateMutation,
		},
		{
			"mysql duplicate primary key",
			&mysql.MySQLError{Number: 1062, Message: "Duplicate entry '7' for key 'accounts.PRIMARY'"},
			EntityAccount,
			errs.ErrDuplicateAccount,
		},
		{"mysql deadlock", &mysql.MySQLError{Number: 1213}, EntityAccount, errs.ErrTransactionAborted},
		{"mysql missing table", &mysql.MySQLError{Number: 1146}, EntityAchievement, errs.ErrSchemaNotProvisioned},
		{"deadline exceeded", context.DeadlineExceeded, EntityAccount, errs.ErrDatabaseConnection},
		{"connection refused", errors.New("dial tcp: connection refused"), EntityAccount, errs.ErrDatabaseConnection},
		{"anything else", errors.New("boom"), EntityGift, errs.ErrInternalServer},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mapped := mapper.MapError(tc.err, tc.entity)
			assert.ErrorIs(t, mapped, tc.expected)
		})
	}
}

func TestErrorMapper_MapErrorNil(t *testing.T) {
	assert.NoError(t, NewErrorMapper().MapError(nil, EntityAccount))
}

func TestErrorMapper_KeepsDriverErrorInChain(t *testing.T) {
	pgErr := &pgconn.PgError{Code: pgerrcode.SerializationFailure}
	mapped := NewErrorMapper().MapError(fmt.Errorf("update: %w", pgErr), EntityAccount)

	var target *pgconn.PgError
	assert.True(t, errors.As(mapped, &target))
	assert.True(t, IsRetryable(mapped))
}

func TestIsRetryable(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil", nil, false},
		{"serialization failure", &pgconn.PgError{Code: pgerrcode.SerializationFailure}, true},
		{"deadlock", &pgconn.PgError{Code: pgerrcode.DeadlockDetected}, true},
		{"lock not available", &pgconn.PgError{Code: pgerrcode.LockNotAvailable}, true},
		{"unique violation", &pgconn.PgError{Code: pgerrcode.UniqueViolation}, false},
		{"mysql deadlock", &mysql.MySQLError{Number: 1213}, true},
		{"mysql lock wait timeout", &mysql.MySQLError{Number: 1205}, true},
		{"mysql duplicate", &mysql.MySQLError{Number: 1062}, false},
		{"version mismatch", errs.ErrConcurrentModification, false},
		{
			"rollback failed after deadlock",
			&errs.RollbackError{Err: &pgconn.PgError{Code: pgerrcode.DeadlockDetected}, RollbackErr: errors.New("conn closed")},
			false,
		},
		{
			"commit outcome unknown",
			fmt.Errorf("%w: %w", errs.ErrCommitFailed, &pgconn.PgError{Code: pgerrcode.DeadlockDetected}),
			false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, IsRetryable(tc.err))
		})
	}
}

func TestDuplicateKeyName(t *testing.T) {
	assert.Equal(t, "uq_streaks_user_type", duplicateKeyName("Duplicate entry '1-habit' for key 'streaks.uq_streaks_user_type'"))
	assert.Equal(t, "PRIMARY", duplicateKeyName("Duplicate entry '1' for key 'PRIMARY'"))
	assert.Equal(t, "", duplicateKeyName("something else"))
}
