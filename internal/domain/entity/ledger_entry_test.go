package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/amirhossein-jamali/gem-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/gem-ledger/internal/testutil/fakes"
)

func TestNewLedgerEntry(t *testing.T) {
	fixedTime := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := fakes.NewClock(fixedTime)

	t.Run("Spend is stored as a negative amount", func(t *testing.T) {
		entry, err := NewLedgerEntry(7, KindSpend, 300, "gift", "g-1", RefTypeGift, clock)

		require.NoError(t, err)
		assert.NotEmpty(t, entry.ID)
		assert.Equal(t, int64(-300), entry.Amount)
		assert.Equal(t, int64(300), entry.Magnitude())
		assert.Equal(t, fixedTime, entry.CreatedAt)
	})

	t.Run("Credit kinds are stored as positive amounts", func(t *testing.T) {
		for _, kind := range []EntryKind{KindReceive, KindPurchase, KindBonus, KindRefund} {
			entry, err := NewLedgerEntry(7, kind, 40, "credit", "r-1", RefTypeAdmin, clock)

			require.NoError(t, err)
			assert.Equal(t, int64(40), entry.Amount, string(kind))
		}
	})

	t.Run("Invalid input is rejected", func(t *testing.T) {
		testCases := []struct {
			name      string
			accountID uint64
			kind      EntryKind
			amount    int64
			refID     string
			expected  error
		}{
			{"zero account", 0, KindSpend, 10, "r", errs.ErrInvalidUserID},
			{"unknown kind", 1, EntryKind("steal"), 10, "r", errs.ErrInvalidEntryKind},
			{"zero amount", 1, KindSpend, 0, "r", errs.ErrInvalidAmount},
			{"missing reference", 1, KindSpend, 10, "", errs.ErrInvalidReference},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				entry, err := NewLedgerEntry(tc.accountID, tc.kind, tc.amount, "", tc.refID, RefTypeGift, clock)

				assert.ErrorIs(t, err, tc.expected)
				assert.Nil(t, entry)
			})
		}
	})
}

func TestParseEntryKind(t *testing.T) {
	kind, err := ParseEntryKind("bonus")
	require.NoError(t, err)
	assert.Equal(t, KindBonus, kind)
	assert.True(t, kind.IsCredit())
	assert.False(t, kind.IsDebit())

	_, err = ParseEntryKind("withdraw")
	assert.ErrorIs(t, err, errs.ErrInvalidEntryKind)
}
