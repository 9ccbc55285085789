package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	domainerr "github.com/amirhossein-jamali/gem-ledger/internal/domain/error"
)

func TestStatusForErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"insufficient funds", domainerr.NewInsufficientFundsError(1, 50, 10), http.StatusUnprocessableEntity, domainerr.ErrInsufficientFunds.Error()},
		{"wrapped mutation", domainerr.NewMutationError(1, "spend", 5, "r", "gift", domainerr.ErrAccountNotFound), http.StatusNotFound, domainerr.ErrAccountNotFound.Error()},
		{"self gift", domainerr.ErrSelfGift, http.StatusUnprocessableEntity, domainerr.ErrSelfGift.Error()},
		{"pending withdrawal", domainerr.ErrPendingWithdrawalExists, http.StatusConflict, domainerr.ErrPendingWithdrawalExists.Error()},
		{"transition", domainerr.NewWithdrawalTransitionError("w", "pending", "completed"), http.StatusConflict, domainerr.ErrInvalidTransition.Error()},
		{"below minimum amount", fmt.Errorf("%w: requested 1", domainerr.ErrBelowMinimumAmount), http.StatusBadRequest, domainerr.ErrBelowMinimumAmount.Error()},
		{"aborted transaction", domainerr.ErrTransactionAborted, http.StatusConflict, domainerr.ErrTransactionAborted.Error()},
		{"schema", domainerr.ErrSchemaNotProvisioned, http.StatusServiceUnavailable, genericFailureMessage},
		{"partial transfer", domainerr.NewPartialTransferError(1, 2, 10, "g", errors.New("boom")), http.StatusInternalServerError, genericFailureMessage},
		{"driver error", errors.New("pq: connection reset"), http.StatusInternalServerError, genericFailureMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := statusFor(domainerr.ErrorCode(tt.err))
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.message, publicMessage(tt.err, status))
		})
	}
}
