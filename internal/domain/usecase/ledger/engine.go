package ledger

import (
	"context"
	"errors"

	"github.com/amirhossein-jamali/gem-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/gem-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/gem-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/gem-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/gem-ledger/internal/domain/port/usecase"
)

// Config tunes the engine
type Config struct {
	// MaxCASRetries bounds how often the fallback path retries a lost compare-and-swap
	MaxCASRetries int
	// DefaultListLimit is used when a ledger listing asks for no limit
	DefaultListLimit int
	// MaxListLimit caps ledger listings
	MaxListLimit int
}

// DefaultConfig returns the engine defaults
func DefaultConfig() Config {
	return Config{MaxCASRetries: 3, DefaultListLimit: 50, MaxListLimit: 500}
}

// Engine is the balance store, ledger writer and transfer engine. Every mutation
// updates the account and appends its ledger entry in one transaction.
type Engine struct {
	uow          persistence.UnitOfWork
	capabilities persistence.SchemaCapabilities
	validator    *MutationValidator
	replay       *ReplayChecker
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
	metrics      coreport.Metrics
	config       Config
}

var _ usecase.LedgerUseCase = (*Engine)(nil)

// NewEngine creates a new ledger engine
func NewEngine(
	uow persistence.UnitOfWork,
	capabilities persistence.SchemaCapabilities,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	metrics coreport.Metrics,
	config Config,
) *Engine {
	logger = logger.With(map[string]any{"component": "ledger"})
	if !capabilities.AtomicMutation {
		logger.Warn("Atomic mutation primitive not provisioned, using locked read-modify-write", nil)
	}

	return &Engine{
		uow:          uow,
		capabilities: capabilities,
		validator:    NewMutationValidator(),
		replay:       NewReplayChecker(uow),
		timeProvider: timeProvider,
		logger:       logger,
		metrics:      metrics,
		config:       config,
	}
}

// OpenAccount creates an empty account for a user
func (e *Engine) OpenAccount(ctx context.Context, userID uint64) (*entity.Account, error) {
	account, err := entity.NewAccount(userID, e.timeProvider)
	if err != nil {
		return nil, err
	}

	if err := e.uow.GetAccountRepository(ctx).Create(ctx, account); err != nil {
		return nil, err
	}

	e.logger.Info("Account opened", map[string]any{"account_id": userID})
	return account, nil
}

// GetBalance returns the current balance of an account
func (e *Engine) GetBalance(ctx context.Context, accountID uint64) (*usecase.BalanceView, error) {
	if accountID == 0 {
		return nil, errs.ErrInvalidUserID
	}

	account, err := e.uow.GetAccountRepository(ctx).GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	return &usecase.BalanceView{
		AccountID:      account.ID,
		Balance:        account.Balance,
		HeldBalance:    account.HeldBalance,
		Available:      account.Available(),
		LifetimeEarned: account.LifetimeEarned,
		LifetimeSpent:  account.LifetimeSpent,
	}, nil
}

// Spend debits an account
func (e *Engine) Spend(
	ctx context.Context,
	accountID uint64,
	amount int64,
	description, referenceID, referenceType string,
) (*usecase.MutationResult, error) {
	return e.Apply(ctx, usecase.MutationRequest{
		AccountID:     accountID,
		Kind:          entity.KindSpend,
		Amount:        amount,
		Description:   description,
		ReferenceID:   referenceID,
		ReferenceType: referenceType,
	})
}

// Receive credits an account
func (e *Engine) Receive(
	ctx context.Context,
	accountID uint64,
	amount int64,
	description, referenceID, referenceType string,
) (*usecase.MutationResult, error) {
	return e.Apply(ctx, usecase.MutationRequest{
		AccountID:     accountID,
		Kind:          entity.KindReceive,
		Amount:        amount,
		Description:   description,
		ReferenceID:   referenceID,
		ReferenceType: referenceType,
	})
}

// Apply runs a mutation of any kind. It joins a transaction already carried by ctx.
func (e *Engine) Apply(ctx context.Context, req usecase.MutationRequest) (*usecase.MutationResult, error) {
	if err := e.validator.Validate(req); err != nil {
		return nil, err
	}

	var result *usecase.MutationResult
	err := e.uow.Within(ctx, func(txCtx context.Context) error {
		replayed, found, err := e.replay.Check(txCtx, req)
		if err != nil {
			return err
		}
		if found {
			result = replayed
			return nil
		}

		entry, err := entity.NewLedgerEntry(
			req.AccountID, req.Kind, req.Amount, req.Description,
			req.ReferenceID, req.ReferenceType, e.timeProvider,
		)
		if err != nil {
			return err
		}

		if e.capabilities.AtomicMutation {
			result, err = e.applyAtomic(txCtx, entry)
		} else {
			result, err = e.applyFallback(txCtx, entry)
		}
		return err
	})
	if err != nil {
		return nil, e.failed(req, err)
	}

	// Counted once the mutation is committed
	e.uow.AfterCommit(ctx, func() { e.recordApplied(req, result) })
	return result, nil
}

func (e *Engine) recordApplied(req usecase.MutationRequest, result *usecase.MutationResult) {
	e.metrics.MutationApplied(string(req.Kind), result.Path)
	if result.Path == usecase.PathFallback {
		e.metrics.FallbackUsed()
	}
	if result.Replayed {
		e.logger.Info("Mutation replayed", map[string]any{
			"account_id":     req.AccountID,
			"kind":           req.Kind,
			"reference_id":   req.ReferenceID,
			"reference_type": req.ReferenceType,
		})
	}
}

// applyAtomic delegates lock, check, update and append to the store's single-statement primitive
func (e *Engine) applyAtomic(ctx context.Context, entry *entity.LedgerEntry) (*usecase.MutationResult, error) {
	if err := e.uow.GetAccountRepository(ctx).ApplyMutation(ctx, entry); err != nil {
		return nil, err
	}

	return &usecase.MutationResult{Entry: entry, NewBalance: entry.BalanceAfter, Path: usecase.PathAtomic}, nil
}

// applyFallback locks the account row, writes it back with a version check and
// appends the entry, all inside the caller's transaction
func (e *Engine) applyFallback(ctx context.Context, entry *entity.LedgerEntry) (*usecase.MutationResult, error) {
	e.logger.Warn("Applying mutation without atomic primitive", map[string]any{
		"account_id":     entry.AccountID,
		"kind":           entry.Kind,
		"reference_id":   entry.ReferenceID,
		"reference_type": entry.ReferenceType,
	})

	accounts := e.uow.GetAccountRepository(ctx)
	for attempt := 0; ; attempt++ {
		account, err := accounts.GetForUpdate(ctx, entry.AccountID)
		if err != nil {
			return nil, err
		}

		expectedVersion := account.Version
		if err := account.ApplyMutation(entry.Kind, entry.Magnitude(), e.timeProvider); err != nil {
			return nil, err
		}

		err = accounts.UpdateIfVersion(ctx, account, expectedVersion)
		if errors.Is(err, errs.ErrConcurrentModification) && attempt < e.config.MaxCASRetries {
			e.metrics.CASConflict()
			e.logger.Warn("Account version moved during mutation, retrying", map[string]any{
				"account_id": entry.AccountID,
				"attempt":    attempt + 1,
			})
			continue
		}
		if err != nil {
			if errors.Is(err, errs.ErrConcurrentModification) {
				e.metrics.CASConflict()
			}
			return nil, err
		}

		entry.BalanceAfter = account.Balance
		if err := e.uow.GetLedgerRepository(ctx).Append(ctx, entry); err != nil {
			return nil, err
		}

		return &usecase.MutationResult{Entry: entry, NewBalance: account.Balance, Path: usecase.PathFallback}, nil
	}
}

// failed logs a rejected mutation and shapes the returned error. Insufficient funds
// is returned unchanged so callers can show it directly.
func (e *Engine) failed(req usecase.MutationRequest, err error) error {
	var fundsErr *errs.InsufficientFundsError
	if errors.As(err, &fundsErr) {
		e.logger.Info("Mutation rejected", fundsErr.LogFields())
		return fundsErr
	}

	mutationErr := &errs.MutationError{
		AccountID:     req.AccountID,
		Kind:          string(req.Kind),
		Amount:        req.Amount,
		ReferenceID:   req.ReferenceID,
		ReferenceType: req.ReferenceType,
		Err:           err,
	}
	if errs.IsNotFoundError(err) || errors.Is(err, errs.ErrDuplicateMutation) {
		e.logger.Warn("Mutation rejected", mutationErr.LogFields())
	} else {
		e.logger.Error("Mutation failed", mutationErr.LogFields())
	}
	return mutationErr
}
