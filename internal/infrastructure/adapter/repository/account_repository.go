package repository

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/amirhossein-jamali/gem-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/gem-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/gem-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/gem-ledger/internal/infrastructure/adapter/model"
)

// applyMutationSQL calls the stored function provisioned by the ledger migrations.
// It locks the account row, checks funds, updates the balance and appends the
// entry, returning the new balance.
const applyMutationSQL = "SELECT apply_gem_mutation(?, ?, ?, ?, ?, ?, ?, ?)"

// AccountRepository implements AccountRepository interface using GORM
type AccountRepository struct {
	db          *gorm.DB
	logger      coreport.Logger
	errorMapper *ErrorMapper
}

// NewAccountRepository creates a new AccountRepository instance
func NewAccountRepository(db *gorm.DB, logger coreport.Logger) *AccountRepository {
	return &AccountRepository{
		db:          db,
		logger:      logger,
		errorMapper: NewErrorMapper(),
	}
}

func accountToEntity(m *model.Account) *entity.Account {
	return &entity.Account{
		ID:             m.ID,
		Balance:        m.Balance,
		HeldBalance:    m.HeldBalance,
		LifetimeEarned: m.LifetimeEarned,
		LifetimeSpent:  m.LifetimeSpent,
		Version:        m.Version,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// handleDatabaseError logs a failed statement and maps it to a domain error
func (r *AccountRepository) handleDatabaseError(operation string, err error, accountID uint64) error {
	mapped := r.errorMapper.MapError(err, EntityAccount)
	fields := map[string]any{
		"account_id": accountID,
		"operation":  operation,
		"error":      err.Error(),
	}
	if errs.IsNotFoundError(mapped) || errors.Is(mapped, errs.ErrDuplicateAccount) {
		r.logger.Debug("Account lookup rejected", fields)
	} else {
		r.logger.Error("Database error on account", fields)
	}
	return mapped
}

// GetByID retrieves an account by its owner's user ID
func (r *AccountRepository) GetByID(ctx context.Context, id uint64) (*entity.Account, error) {
	var m model.Account
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, r.handleDatabaseError("getting account", err, id)
	}
	return accountToEntity(&m), nil
}

// GetForUpdate retrieves an account and holds a row lock until the transaction ends
func (r *AccountRepository) GetForUpdate(ctx context.Context, id uint64) (*entity.Account, error) {
	var m model.Account
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&m, id).Error
	if err != nil {
		return nil, r.handleDatabaseError("locking account", err, id)
	}
	return accountToEntity(&m), nil
}

// Create opens a new account
func (r *AccountRepository) Create(ctx context.Context, account *entity.Account) error {
	m := model.Account{
		ID:             account.ID,
		Balance:        account.Balance,
		HeldBalance:    account.HeldBalance,
		LifetimeEarned: account.LifetimeEarned,
		LifetimeSpent:  account.LifetimeSpent,
		Version:        account.Version,
		CreatedAt:      account.CreatedAt,
		UpdatedAt:      account.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return r.handleDatabaseError("creating account", err, account.ID)
	}

	r.logger.Debug("Account created", map[string]any{"account_id": account.ID})
	return nil
}

// UpdateIfVersion writes the account only if nobody else wrote it since it was read
func (r *AccountRepository) UpdateIfVersion(ctx context.Context, account *entity.Account, expectedVersion int64) error {
	result := r.db.WithContext(ctx).Model(&model.Account{}).
		Where("id = ? AND version = ?", account.ID, expectedVersion).
		Updates(map[string]any{
			"balance":         account.Balance,
			"held_balance":    account.HeldBalance,
			"lifetime_earned": account.LifetimeEarned,
			"lifetime_spent":  account.LifetimeSpent,
			"version":         account.Version,
			"updated_at":      account.UpdatedAt,
		})
	if result.Error != nil {
		return r.handleDatabaseError("updating account", result.Error, account.ID)
	}

	if result.RowsAffected == 0 {
		r.logger.Warn("Account version check failed", map[string]any{
			"account_id":       account.ID,
			"expected_version": expectedVersion,
		})
		return errs.ErrConcurrentModification
	}
	return nil
}

// ApplyMutation runs the atomic lock-check-update-append function
func (r *AccountRepository) ApplyMutation(ctx context.Context, entry *entity.LedgerEntry) error {
	var balance int64
	err := r.db.WithContext(ctx).Raw(applyMutationSQL,
		entry.ID,
		entry.AccountID,
		string(entry.Kind),
		entry.Amount,
		entry.Description,
		entry.ReferenceID,
		entry.ReferenceType,
		entry.CreatedAt,
	).Row().Scan(&balance)
	if err != nil {
		if fundsErr := insufficientFunds(err, entry); fundsErr != nil {
			return fundsErr
		}
		return r.handleDatabaseError("applying mutation", err, entry.AccountID)
	}

	entry.BalanceAfter = balance
	r.logger.Debug("Mutation applied", map[string]any{
		"account_id":    entry.AccountID,
		"kind":          entry.Kind,
		"amount":        entry.Amount,
		"balance_after": balance,
	})
	return nil
}

// insufficientFunds rebuilds the detailed error from the function's SQLSTATE.
// The available balance travels in the error detail.
func insufficientFunds(err error, entry *entity.LedgerEntry) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != SQLStateInsufficientFunds {
		return nil
	}

	available, parseErr := strconv.ParseInt(pgErr.Detail, 10, 64)
	if parseErr != nil {
		available = 0
	}
	return errs.NewInsufficientFundsError(entry.AccountID, entry.Magnitude(), available)
}
