package withdrawal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/gem-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/gem-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/gem-ledger/internal/domain/port/external"
	"github.com/amirhossein-jamali/gem-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/gem-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/gem-ledger/internal/domain/usecase/ledger"
	"github.com/amirhossein-jamali/gem-ledger/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/gem-ledger/internal/testutil/fakes"
	"github.com/amirhossein-jamali/gem-ledger/internal/testutil/memstore"
)

const (
	partner uint64 = 11
	admin   uint64 = 99
)

var bank = entity.BankInfo{BankName: "VCB", AccountNumber: "0123456789", AccountHolder: "NGUYEN VAN A"}

type fixture struct {
	store     *memstore.Store
	metrics   *fakes.Metrics
	notifier  *fakes.Notifier
	gems      *ledger.Engine
	lifecycle *Lifecycle
}

func newFixture(t *testing.T, balance int64) *fixture {
	t.Helper()

	store := memstore.New()
	store.SeedAccount(partner, balance)
	clock := fakes.NewClock(time.Date(2025, 7, 1, 8, 0, 0, 0, time.UTC))
	log := logger.NewNoopLogger()
	metrics := fakes.NewMetrics()
	notifier := fakes.NewNotifier(t)
	gems := ledger.NewEngine(store, persistence.FullCapabilities(), clock, log, metrics, ledger.DefaultConfig())

	return &fixture{
		store:     store,
		metrics:   metrics,
		notifier:  notifier,
		gems:      gems,
		lifecycle: NewLifecycle(store, gems, notifier, clock, log, metrics, Config{Policy: entity.DefaultWithdrawalPolicy()}),
	}
}

func (f *fixture) create(t *testing.T, amount int64) *entity.WithdrawalRequest {
	t.Helper()
	request, err := f.lifecycle.CreateWithdrawal(context.Background(), usecase.CreateWithdrawalRequest{
		PartnerID: partner, Amount: amount, Bank: bank,
	})
	require.NoError(t, err)
	return request
}

func (f *fixture) expectUpdate(status entity.WithdrawalStatus) {
	f.notifier.On("Notify", mock.Anything, mock.MatchedBy(func(n external.Notification) bool {
		return n.RecipientID == partner &&
			n.Type == external.NotificationWithdrawalUpdated &&
			n.Data["status"] == string(status)
	})).Return(nil).Once()
}

func TestCreateWithdrawal(t *testing.T) {
	ctx := context.Background()

	t.Run("Prices the request and holds the gems", func(t *testing.T) {
		f := newFixture(t, 15000)

		request := f.create(t, 10000)

		assert.Equal(t, entity.WithdrawalPending, request.Status)
		assert.Equal(t, int64(15000), request.AvailableBalanceAtRequest)
		assert.Equal(t, int64(2000000), request.VNDAmount)
		assert.Equal(t, int64(600000), request.PlatformFee)
		assert.Equal(t, int64(1400000), request.AuthorReceive)

		account := f.store.Account(partner)
		assert.Equal(t, int64(15000), account.Balance, "holds never change the balance")
		assert.Equal(t, int64(10000), account.HeldBalance)
		assert.Equal(t, 1, f.metrics.WithdrawalStatuses["pending"])

		_, err := f.gems.Spend(ctx, partner, 6000, "", "gift-x", entity.RefTypeGift)
		assert.ErrorIs(t, err, errs.ErrInsufficientFunds, "held gems cannot be spent")
	})

	t.Run("One pending request per partner", func(t *testing.T) {
		f := newFixture(t, 50000)
		f.create(t, 1000)

		_, err := f.lifecycle.CreateWithdrawal(ctx, usecase.CreateWithdrawalRequest{PartnerID: partner, Amount: 1000, Bank: bank})

		assert.ErrorIs(t, err, errs.ErrPendingWithdrawalExists)
		assert.Equal(t, int64(1000), f.store.Account(partner).HeldBalance)
	})

	tests := []struct {
		name    string
		balance int64
		amount  int64
		bank    entity.BankInfo
		want    error
	}{
		{"Balance below the floor", 900, 1000, bank, errs.ErrBelowMinimumBalance},
		{"Amount below the minimum", 5000, 999, bank, errs.ErrBelowMinimumAmount},
		{"Amount above the balance", 5000, 6000, bank, errs.ErrInsufficientFunds},
		{"Missing bank details", 5000, 1000, entity.BankInfo{BankName: "VCB"}, errs.ErrInvalidBankInfo},
		{"Zero amount", 5000, 0, bank, errs.ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.balance)

			_, err := f.lifecycle.CreateWithdrawal(ctx, usecase.CreateWithdrawalRequest{PartnerID: partner, Amount: tt.amount, Bank: tt.bank})

			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, int64(0), f.store.Account(partner).HeldBalance)
		})
	}

	t.Run("Unknown partner", func(t *testing.T) {
		f := newFixture(t, 5000)

		_, err := f.lifecycle.CreateWithdrawal(ctx, usecase.CreateWithdrawalRequest{PartnerID: 404, Amount: 1000, Bank: bank})

		assert.ErrorIs(t, err, errs.ErrAccountNotFound)
	})
}

func TestWithdrawalTransitions(t *testing.T) {
	ctx := context.Background()

	t.Run("Approve, process and complete debits once", func(t *testing.T) {
		f := newFixture(t, 15000)
		request := f.create(t, 10000)
		f.expectUpdate(entity.WithdrawalApproved)
		f.expectUpdate(entity.WithdrawalProcessing)
		f.expectUpdate(entity.WithdrawalCompleted)

		approved, err := f.lifecycle.ApproveWithdrawal(ctx, request.ID, admin)
		require.NoError(t, err)
		assert.NotNil(t, approved.ApprovedAt)
		assert.Equal(t, admin, *approved.ProcessedBy)

		_, err = f.lifecycle.StartProcessingWithdrawal(ctx, request.ID, admin)
		require.NoError(t, err)

		completed, err := f.lifecycle.CompleteWithdrawal(ctx, request.ID, admin, "FT-2025-001")
		require.NoError(t, err)
		assert.Equal(t, entity.WithdrawalCompleted, completed.Status)
		assert.Equal(t, "FT-2025-001", completed.TransactionReference)

		account := f.store.Account(partner)
		assert.Equal(t, int64(5000), account.Balance)
		assert.Equal(t, int64(0), account.HeldBalance)
		assert.True(t, account.IsConsistent())

		entries := f.store.Entries(partner)
		last := entries[len(entries)-1]
		assert.Equal(t, int64(-10000), last.Amount)
		assert.Equal(t, request.ID, last.ReferenceID)
		assert.Equal(t, entity.RefTypeWithdrawal, last.ReferenceType)

		_, err = f.lifecycle.CompleteWithdrawal(ctx, request.ID, admin, "FT-2025-001")
		assert.ErrorIs(t, err, errs.ErrInvalidTransition)
		assert.Equal(t, int64(5000), f.store.Account(partner).Balance)
	})

	t.Run("Complete straight from approved", func(t *testing.T) {
		f := newFixture(t, 2000)
		request := f.create(t, 1500)
		f.expectUpdate(entity.WithdrawalApproved)
		f.expectUpdate(entity.WithdrawalCompleted)

		_, err := f.lifecycle.ApproveWithdrawal(ctx, request.ID, admin)
		require.NoError(t, err)
		_, err = f.lifecycle.CompleteWithdrawal(ctx, request.ID, admin, "FT-2")
		require.NoError(t, err)

		assert.Equal(t, int64(500), f.store.Account(partner).Balance)
	})

	t.Run("Reject releases the hold", func(t *testing.T) {
		f := newFixture(t, 5000)
		request := f.create(t, 3000)
		f.notifier.On("Notify", mock.Anything, mock.MatchedBy(func(n external.Notification) bool {
			return n.Body == "Your withdrawal of 3000 gems is rejected: bank details mismatch"
		})).Return(nil).Once()

		rejected, err := f.lifecycle.RejectWithdrawal(ctx, request.ID, admin, "bank details mismatch")

		require.NoError(t, err)
		assert.Equal(t, entity.WithdrawalRejected, rejected.Status)
		assert.NotNil(t, rejected.RejectedAt)
		account := f.store.Account(partner)
		assert.Equal(t, int64(5000), account.Balance)
		assert.Equal(t, int64(0), account.HeldBalance)

		t.Run("A new request is allowed afterwards", func(t *testing.T) {
			f.create(t, 1000)
		})
	})

	t.Run("Pending cannot complete", func(t *testing.T) {
		f := newFixture(t, 5000)
		request := f.create(t, 1000)

		_, err := f.lifecycle.CompleteWithdrawal(ctx, request.ID, admin, "FT-3")

		assert.ErrorIs(t, err, errs.ErrInvalidTransition)
		assert.Equal(t, errs.CodeInvalidTransition, errs.ErrorCode(err))
		assert.Equal(t, entity.WithdrawalPending, f.store.Withdrawal(request.ID).Status)
		assert.Equal(t, int64(5000), f.store.Account(partner).Balance)
	})

	t.Run("Failed debit leaves the request approved and the hold in place", func(t *testing.T) {
		f := newFixture(t, 5000)
		request := f.create(t, 2000)
		f.expectUpdate(entity.WithdrawalApproved)
		_, err := f.lifecycle.ApproveWithdrawal(ctx, request.ID, admin)
		require.NoError(t, err)

		f.store.SetFault(func(op memstore.Op) error {
			if op.Name == "account.apply" {
				return errs.ErrDatabaseConnection
			}
			return nil
		})

		_, err = f.lifecycle.CompleteWithdrawal(ctx, request.ID, admin, "FT-4")

		assert.ErrorIs(t, err, errs.ErrDatabaseConnection)
		assert.Equal(t, entity.WithdrawalApproved, f.store.Withdrawal(request.ID).Status)
		account := f.store.Account(partner)
		assert.Equal(t, int64(5000), account.Balance)
		assert.Equal(t, int64(2000), account.HeldBalance)
	})

	t.Run("Missing request or admin", func(t *testing.T) {
		f := newFixture(t, 5000)
		request := f.create(t, 1000)

		_, err := f.lifecycle.ApproveWithdrawal(ctx, "nope", admin)
		assert.ErrorIs(t, err, errs.ErrWithdrawalNotFound)

		_, err = f.lifecycle.ApproveWithdrawal(ctx, request.ID, 0)
		assert.ErrorIs(t, err, errs.ErrInvalidUserID)
	})
}

func TestListWithdrawals(t *testing.T) {
	f := newFixture(t, 5000)
	f.create(t, 1000)

	requests, err := f.lifecycle.ListWithdrawals(context.Background(), partner, 0)

	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, int64(1000), requests[0].Amount)

	none, err := f.lifecycle.ListWithdrawals(context.Background(), 12345, 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}
