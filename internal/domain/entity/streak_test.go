package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/amirhossein-jamali/gem-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/gem-ledger/internal/testutil/fakes"
)

func TestStreakRecordCompletion(t *testing.T) {
	clock := fakes.NewClock(time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC))
	policy := StreakPolicy{FreezeWindowDays: 1, FreezeEarnInterval: 0, MaxFreezes: 2}
	day1 := DateOf(clock.Now())

	t.Run("First completion starts at one", func(t *testing.T) {
		streak := NewStreak(1, StreakHabit, clock)

		update := streak.RecordCompletion(day1, policy, clock)

		assert.Equal(t, OutcomeStarted, update.Outcome)
		assert.Equal(t, 1, streak.CurrentStreak)
		assert.Equal(t, 1, streak.LongestStreak)
		assert.Equal(t, 1, streak.TotalCompletions)
		assert.Equal(t, day1, *streak.LastCompletionDate)
	})

	t.Run("Same day completion changes nothing", func(t *testing.T) {
		streak := NewStreak(1, StreakHabit, clock)
		streak.RecordCompletion(day1, policy, clock)

		update := streak.RecordCompletion(day1, policy, clock)

		assert.Equal(t, OutcomeUnchanged, update.Outcome)
		assert.Equal(t, 1, streak.CurrentStreak)
		assert.Equal(t, 1, streak.TotalCompletions)
	})

	t.Run("Consecutive days extend the streak", func(t *testing.T) {
		streak := NewStreak(1, StreakHabit, clock)
		for i := 0; i < 5; i++ {
			streak.RecordCompletion(day1.AddDays(i), policy, clock)
		}

		assert.Equal(t, 5, streak.CurrentStreak)
		assert.Equal(t, 5, streak.LongestStreak)
	})

	t.Run("Gap without freeze resets to one and keeps longest", func(t *testing.T) {
		streak := NewStreak(1, StreakHabit, clock)
		for i := 0; i < 4; i++ {
			streak.RecordCompletion(day1.AddDays(i), policy, clock)
		}

		update := streak.RecordCompletion(day1.AddDays(5), policy, clock)

		assert.Equal(t, OutcomeReset, update.Outcome)
		assert.Equal(t, 1, streak.CurrentStreak)
		assert.Equal(t, 4, streak.LongestStreak)
	})

	t.Run("One missed day is bridged by a freeze", func(t *testing.T) {
		streak := NewStreak(1, StreakHabit, clock)
		streak.RecordCompletion(day1, policy, clock)
		streak.RecordCompletion(day1.AddDays(1), policy, clock)
		streak.FreezeCount = 1

		update := streak.RecordCompletion(day1.AddDays(3), policy, clock)

		assert.Equal(t, OutcomeBridged, update.Outcome)
		assert.Equal(t, 3, streak.CurrentStreak)
		assert.Equal(t, 0, streak.FreezeCount)
		require.NotNil(t, streak.LastFreezeDate)
		assert.Equal(t, day1.AddDays(3), *streak.LastFreezeDate)
	})

	t.Run("Gap longer than the freeze window resets even with freezes", func(t *testing.T) {
		streak := NewStreak(1, StreakHabit, clock)
		streak.RecordCompletion(day1, policy, clock)
		streak.FreezeCount = 2

		update := streak.RecordCompletion(day1.AddDays(4), policy, clock)

		assert.Equal(t, OutcomeReset, update.Outcome)
		assert.Equal(t, 1, streak.CurrentStreak)
		assert.Equal(t, 2, streak.FreezeCount)
	})

	t.Run("Longest streak never decreases", func(t *testing.T) {
		streak := NewStreak(1, StreakHabit, clock)
		longest := 0
		days := []int{0, 1, 2, 5, 6, 10, 11, 12, 13}
		for _, d := range days {
			streak.RecordCompletion(day1.AddDays(d), policy, clock)
			assert.GreaterOrEqual(t, streak.LongestStreak, longest)
			assert.GreaterOrEqual(t, streak.LongestStreak, streak.CurrentStreak)
			longest = streak.LongestStreak
		}
		assert.Equal(t, 4, streak.CurrentStreak)
		assert.Equal(t, 4, streak.LongestStreak)
	})

	t.Run("Freezes are earned at the interval up to the cap", func(t *testing.T) {
		earning := StreakPolicy{FreezeWindowDays: 1, FreezeEarnInterval: 2, MaxFreezes: 1}
		streak := NewStreak(1, StreakHabit, clock)

		streak.RecordCompletion(day1, earning, clock)
		update := streak.RecordCompletion(day1.AddDays(1), earning, clock)
		assert.True(t, update.FreezeEarned)

		streak.RecordCompletion(day1.AddDays(2), earning, clock)
		update = streak.RecordCompletion(day1.AddDays(3), earning, clock)
		assert.False(t, update.FreezeEarned)
		assert.Equal(t, 1, streak.FreezeCount)
	})
}

func TestStreakUseFreeze(t *testing.T) {
	clock := fakes.NewClock(time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC))
	today := DateOf(clock.Now())

	t.Run("Consumes a freeze and covers today", func(t *testing.T) {
		streak := NewStreak(1, StreakGoal, clock)
		streak.CurrentStreak = 4
		streak.LongestStreak = 4
		yesterday := today.AddDays(-1)
		streak.LastCompletionDate = &yesterday
		streak.FreezeCount = 2

		require.NoError(t, streak.UseFreeze(today, DefaultStreakPolicy(), clock))

		assert.Equal(t, 1, streak.FreezeCount)
		assert.Equal(t, today, *streak.LastCompletionDate)
		assert.Equal(t, 4, streak.CurrentStreak)
	})

	t.Run("Fails without freezes", func(t *testing.T) {
		streak := NewStreak(1, StreakGoal, clock)

		assert.ErrorIs(t, streak.UseFreeze(today, DefaultStreakPolicy(), clock), errs.ErrNoFreezeAvailable)
		assert.Nil(t, streak.LastCompletionDate)
	})

	tests := []struct {
		name      string
		lastDay   int // days before today, negative for none
		current   int
		wantErr   error
		wantCount int
	}{
		{name: "Bridges the missed day", lastDay: 2, current: 3, wantCount: 0},
		{name: "Already counted today", lastDay: 0, current: 3, wantErr: errs.ErrFreezeNotApplicable, wantCount: 1},
		{name: "Gap past the window", lastDay: 3, current: 3, wantErr: errs.ErrFreezeNotApplicable, wantCount: 1},
		{name: "Long lost streak", lastDay: 7, current: 3, wantErr: errs.ErrFreezeNotApplicable, wantCount: 1},
		{name: "Nothing to preserve", lastDay: -1, wantErr: errs.ErrFreezeNotApplicable, wantCount: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			streak := NewStreak(1, StreakHabit, clock)
			streak.CurrentStreak = tt.current
			streak.FreezeCount = 1
			if tt.lastDay >= 0 {
				last := today.AddDays(-tt.lastDay)
				streak.LastCompletionDate = &last
			}

			err := streak.UseFreeze(today, DefaultStreakPolicy(), clock)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, streak.LastFreezeDate)
			} else {
				require.NoError(t, err)
				assert.Equal(t, today, *streak.LastCompletionDate)
			}
			assert.Equal(t, tt.wantCount, streak.FreezeCount)
		})
	}
}

func TestStreakIsActive(t *testing.T) {
	clock := fakes.NewClock(time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC))
	policy := DefaultStreakPolicy()
	today := DateOf(clock.Now())

	streak := NewStreak(1, StreakCombo, clock)
	assert.False(t, streak.IsActive(today, policy))

	streak.RecordCompletion(today.AddDays(-1), policy, clock)
	assert.True(t, streak.IsActive(today, policy))

	twoAgo := today.AddDays(-2)
	streak.LastCompletionDate = &twoAgo
	assert.False(t, streak.IsActive(today, policy))

	streak.FreezeCount = 1
	assert.True(t, streak.IsActive(today, policy))
}

func TestDateArithmetic(t *testing.T) {
	d, err := ParseDate("2024-02-28")
	require.NoError(t, err)

	assert.Equal(t, "2024-02-29", d.AddDays(1).String())
	assert.Equal(t, "2024-03-01", d.AddDays(2).String())
	assert.Equal(t, 2, d.AddDays(2).DaysSince(d))

	loc, err := time.LoadLocation("Asia/Ho_Chi_Minh")
	require.NoError(t, err)
	lateUTC := time.Date(2024, 2, 28, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-02-29", DateIn(lateUTC, loc).String())
}
