package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/amirhossein-jamali/gem-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/gem-ledger/internal/testutil/fakes"
)

func TestComboMultiplier(t *testing.T) {
	testCases := []struct {
		count    int
		expected string
	}{
		{0, "1"},
		{1, "1"},
		{2, "1.5"},
		{3, "2"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, ComboMultiplier(tc.count).String(), "combo %d", tc.count)
	}
}

func TestDailyCompletionMark(t *testing.T) {
	clock := fakes.NewClock(time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC))
	day := DateOf(clock.Now())

	t.Run("Two categories give a 1.5 multiplier", func(t *testing.T) {
		completion := NewDailyCompletion(1, day, clock)

		changed, err := completion.Mark(CategoryAffirmation, clock)
		require.NoError(t, err)
		assert.True(t, changed)
		_, err = completion.Mark(CategoryHabit, clock)
		require.NoError(t, err)

		assert.Equal(t, 2, completion.ComboCount)
		assert.Equal(t, "1.5", completion.Multiplier.String())
		assert.False(t, completion.IsFullCombo())
	})

	t.Run("All categories make a full combo", func(t *testing.T) {
		completion := NewDailyCompletion(1, day, clock)
		for _, c := range Categories {
			_, err := completion.Mark(c, clock)
			require.NoError(t, err)
		}

		assert.Equal(t, 3, completion.ComboCount)
		assert.Equal(t, "2", completion.Multiplier.String())
		assert.True(t, completion.IsFullCombo())
	})

	t.Run("Marking twice is a no-op", func(t *testing.T) {
		completion := NewDailyCompletion(1, day, clock)
		_, _ = completion.Mark(CategoryGoal, clock)

		changed, err := completion.Mark(CategoryGoal, clock)

		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, 1, completion.ComboCount)
	})

	t.Run("Unknown category is rejected", func(t *testing.T) {
		completion := NewDailyCompletion(1, day, clock)

		_, err := completion.Mark(Category("sleep"), clock)

		assert.ErrorIs(t, err, errs.ErrInvalidCategory)
		assert.Equal(t, 0, completion.ComboCount)
	})
}
