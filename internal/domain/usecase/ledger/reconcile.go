package ledger

import (
	"context"
	"fmt"

	"github.com/amirhossein-jamali/gem-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/gem-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/gem-ledger/internal/domain/port/usecase"
)

// ListLedger returns the newest entries of an account
func (e *Engine) ListLedger(ctx context.Context, accountID uint64, limit int) ([]*entity.LedgerEntry, error) {
	if accountID == 0 {
		return nil, errs.ErrInvalidUserID
	}
	if limit <= 0 {
		limit = e.config.DefaultListLimit
	}
	if e.config.MaxListLimit > 0 && limit > e.config.MaxListLimit {
		limit = e.config.MaxListLimit
	}

	if _, err := e.uow.GetAccountRepository(ctx).GetByID(ctx, accountID); err != nil {
		return nil, err
	}

	entries, err := e.uow.GetLedgerRepository(ctx).ListByAccount(ctx, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger: %w", err)
	}
	if entries == nil {
		entries = []*entity.LedgerEntry{}
	}
	return entries, nil
}

// Reconcile reports the ledger entries written for a reference. A gift that
// failed half way shows up here with only its spend entry.
func (e *Engine) Reconcile(ctx context.Context, referenceID, referenceType string) (*usecase.ReconcileResult, error) {
	if referenceID == "" || referenceType == "" {
		return nil, errs.ErrInvalidReference
	}

	entries, err := e.uow.GetLedgerRepository(ctx).FindByReference(ctx, referenceID, referenceType)
	if err != nil {
		return nil, fmt.Errorf("failed to find reference entries: %w", err)
	}
	if entries == nil {
		entries = []*entity.LedgerEntry{}
	}

	return &usecase.ReconcileResult{
		ReferenceID:   referenceID,
		ReferenceType: referenceType,
		Applied:       len(entries) > 0,
		Entries:       entries,
	}, nil
}

// AuditAccount checks the cached balance against the lifetime counters and the ledger
func (e *Engine) AuditAccount(ctx context.Context, accountID uint64) (*usecase.AuditReport, error) {
	if accountID == 0 {
		return nil, errs.ErrInvalidUserID
	}

	var report *usecase.AuditReport
	err := e.uow.Within(ctx, func(txCtx context.Context) error {
		account, err := e.uow.GetAccountRepository(txCtx).GetByID(txCtx, accountID)
		if err != nil {
			return err
		}

		sum, err := e.uow.GetLedgerRepository(txCtx).SumByAccount(txCtx, accountID)
		if err != nil {
			return fmt.Errorf("failed to sum ledger: %w", err)
		}

		report = &usecase.AuditReport{
			AccountID:   accountID,
			Balance:     account.Balance,
			LedgerSum:   sum,
			LifetimeNet: account.LifetimeEarned - account.LifetimeSpent,
			Consistent:  account.IsConsistent() && sum == account.Balance,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !report.Consistent {
		e.logger.Error("Account balance does not match its ledger", map[string]any{
			"account_id":   report.AccountID,
			"balance":      report.Balance,
			"ledger_sum":   report.LedgerSum,
			"lifetime_net": report.LifetimeNet,
		})
	}
	return report, nil
}
