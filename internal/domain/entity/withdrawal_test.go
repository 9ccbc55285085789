package entity

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/amirhossein-jamali/gem-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/gem-ledger/internal/testutil/fakes"
)

func fundedAccount(t *testing.T, clock *fakes.Clock, balance int64) *Account {
	t.Helper()
	account, err := NewAccount(42, clock)
	require.NoError(t, err)
	require.NoError(t, account.ApplyCredit(balance, clock))
	return account
}

func validBank() BankInfo {
	return BankInfo{BankName: "Vietcombank", AccountNumber: "0123456789", AccountHolder: "NGUYEN VAN A"}
}

func TestWithdrawalQuote(t *testing.T) {
	policy := DefaultWithdrawalPolicy()

	t.Run("Ten thousand gems", func(t *testing.T) {
		quote := policy.Quote(10_000)

		assert.Equal(t, int64(2_000_000), quote.VNDAmount)
		assert.Equal(t, int64(600_000), quote.PlatformFee)
		assert.Equal(t, int64(1_400_000), quote.AuthorReceive)
	})

	t.Run("Fee is floored and the split always sums up", func(t *testing.T) {
		odd := WithdrawalPolicy{GemToVNDRate: decimal.NewFromInt(3), PlatformFeeRate: decimal.NewFromFloat(0.30)}
		for _, amount := range []int64{1, 7, 11, 333, 1001, 99_999} {
			quote := odd.Quote(amount)
			expectedFee := quote.VNDAmount * 30 / 100

			assert.Equal(t, expectedFee, quote.PlatformFee, "amount %d", amount)
			assert.Equal(t, quote.VNDAmount, quote.PlatformFee+quote.AuthorReceive, "amount %d", amount)
		}
	})
}

func TestNewWithdrawalRequest(t *testing.T) {
	clock := fakes.NewClock(time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC))
	policy := DefaultWithdrawalPolicy()

	t.Run("Valid request snapshots the available balance", func(t *testing.T) {
		account := fundedAccount(t, clock, 15_000)

		req, err := NewWithdrawalRequest(account, 10_000, validBank(), policy, clock)

		require.NoError(t, err)
		assert.Equal(t, WithdrawalPending, req.Status)
		assert.Equal(t, int64(15_000), req.AvailableBalanceAtRequest)
		assert.Equal(t, int64(1_400_000), req.AuthorReceive)
		assert.NotEmpty(t, req.ID)
	})

	t.Run("Eligibility failures", func(t *testing.T) {
		testCases := []struct {
			name     string
			balance  int64
			amount   int64
			bank     BankInfo
			expected error
		}{
			{"balance under minimum", 500, 1000, validBank(), errs.ErrBelowMinimumBalance},
			{"amount under minimum", 5000, 999, validBank(), errs.ErrBelowMinimumAmount},
			{"amount above balance", 5000, 6000, validBank(), errs.ErrInsufficientFunds},
			{"missing bank holder", 5000, 1000, BankInfo{BankName: "ACB", AccountNumber: "1"}, errs.ErrInvalidBankInfo},
			{"zero amount", 5000, 0, validBank(), errs.ErrInvalidAmount},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				account := fundedAccount(t, clock, tc.balance)

				req, err := NewWithdrawalRequest(account, tc.amount, tc.bank, policy, clock)

				assert.ErrorIs(t, err, tc.expected)
				assert.Nil(t, req)
			})
		}
	})
}

func TestWithdrawalTransitions(t *testing.T) {
	clock := fakes.NewClock(time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC))
	policy := DefaultWithdrawalPolicy()
	newRequest := func(t *testing.T) *WithdrawalRequest {
		req, err := NewWithdrawalRequest(fundedAccount(t, clock, 5000), 2000, validBank(), policy, clock)
		require.NoError(t, err)
		return req
	}

	t.Run("Happy path through processing", func(t *testing.T) {
		req := newRequest(t)

		require.NoError(t, req.Approve(9, clock))
		clock.Advance(time.Hour)
		require.NoError(t, req.StartProcessing(9, clock))
		clock.Advance(time.Hour)
		require.NoError(t, req.Complete(9, "VCB-778899", clock))

		assert.Equal(t, WithdrawalCompleted, req.Status)
		assert.Equal(t, "VCB-778899", req.TransactionReference)
		require.NotNil(t, req.ApprovedAt)
		require.NotNil(t, req.CompletedAt)
		assert.True(t, req.ApprovedAt.Before(*req.CompletedAt))
		assert.Equal(t, uint64(9), *req.ProcessedBy)
	})

	t.Run("Approved requests may complete directly", func(t *testing.T) {
		req := newRequest(t)
		require.NoError(t, req.Approve(9, clock))

		assert.NoError(t, req.Complete(9, "ref", clock))
	})

	t.Run("Reject is allowed from every pre-terminal state", func(t *testing.T) {
		for _, prepare := range []func(*WithdrawalRequest){
			func(*WithdrawalRequest) {},
			func(r *WithdrawalRequest) { _ = r.Approve(9, clock) },
			func(r *WithdrawalRequest) { _ = r.Approve(9, clock); _ = r.StartProcessing(9, clock) },
		} {
			req := newRequest(t)
			prepare(req)

			require.NoError(t, req.Reject(9, "name mismatch", clock))
			assert.Equal(t, WithdrawalRejected, req.Status)
			assert.Equal(t, "name mismatch", req.RejectionReason)
		}
	})

	t.Run("Terminal states accept nothing", func(t *testing.T) {
		req := newRequest(t)
		require.NoError(t, req.Reject(9, "no", clock))

		assert.ErrorIs(t, req.Approve(9, clock), errs.ErrInvalidTransition)
		assert.ErrorIs(t, req.Complete(9, "ref", clock), errs.ErrInvalidTransition)
		assert.ErrorIs(t, req.Reject(9, "again", clock), errs.ErrInvalidTransition)
	})

	t.Run("Pending cannot complete or process", func(t *testing.T) {
		req := newRequest(t)

		assert.ErrorIs(t, req.Complete(9, "ref", clock), errs.ErrInvalidTransition)
		assert.ErrorIs(t, req.StartProcessing(9, clock), errs.ErrInvalidTransition)
		assert.Equal(t, WithdrawalPending, req.Status)
	})
}
