package ledger

import (
	"context"
	"errors"
	"fmt"

	errs "github.com/amirhossein-jamali/gem-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/gem-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/gem-ledger/internal/domain/port/usecase"
)

// ReplayChecker detects mutations whose reference was already applied
type ReplayChecker struct {
	uow persistence.UnitOfWork
}

// NewReplayChecker creates a new ReplayChecker
func NewReplayChecker(uow persistence.UnitOfWork) *ReplayChecker {
	return &ReplayChecker{uow: uow}
}

// Check looks up the ledger entry for the request's reference. It returns the
// original outcome and true when the mutation was already applied.
func (h *ReplayChecker) Check(ctx context.Context, req usecase.MutationRequest) (*usecase.MutationResult, bool, error) {
	entry, err := h.uow.GetLedgerRepository(ctx).FindForReference(ctx, req.AccountID, req.Kind, req.ReferenceID, req.ReferenceType)
	if err != nil {
		if errors.Is(err, errs.ErrLedgerEntryNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to check for replay: %w", err)
	}

	// The same reference with another amount is a caller bug, not a retry
	if entry.Magnitude() != req.Amount {
		return nil, true, fmt.Errorf("%w: reference %s/%s was applied with amount %d",
			errs.ErrDuplicateMutation, req.ReferenceType, req.ReferenceID, entry.Magnitude())
	}

	return &usecase.MutationResult{
		Entry:      entry,
		NewBalance: entry.BalanceAfter,
		Replayed:   true,
		Path:       usecase.PathReplay,
	}, true, nil
}
