package streak

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/gem-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/gem-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/gem-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/gem-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/gem-ledger/internal/domain/usecase/achievement"
	"github.com/amirhossein-jamali/gem-ledger/internal/domain/usecase/ledger"
	"github.com/amirhossein-jamali/gem-ledger/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/gem-ledger/internal/testutil/fakes"
	"github.com/amirhossein-jamali/gem-ledger/internal/testutil/memstore"
)

const user uint64 = 3

type fixture struct {
	store    *memstore.Store
	clock    *fakes.Clock
	notifier *fakes.Notifier
	tracker  *Tracker
}

func newFixture(t *testing.T, caps persistence.SchemaCapabilities) *fixture {
	t.Helper()

	store := memstore.New()
	store.SeedAccount(user, 100)
	clock := fakes.NewClock(time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC))
	log := logger.NewNoopLogger()
	metrics := fakes.NewMetrics()
	notifier := fakes.NewNotifier(t)
	notifier.On("Notify", mock.Anything, mock.Anything).Return(nil).Maybe()

	gems := ledger.NewEngine(store, caps, clock, log, metrics, ledger.DefaultConfig())
	awards := achievement.NewEngine(store, gems, notifier, caps, clock, log, metrics, achievement.Config{RewardGems: true})

	return &fixture{
		store:    store,
		clock:    clock,
		notifier: notifier,
		tracker:  NewTracker(store, gems, awards, caps, clock, log, DefaultConfig()),
	}
}

func streakOf(t *testing.T, views []usecase.StreakView, streakType entity.StreakType) usecase.StreakView {
	t.Helper()
	for _, v := range views {
		if v.Type == streakType {
			return v
		}
	}
	t.Fatalf("no %s streak", streakType)
	return usecase.StreakView{}
}

func (f *fixture) complete(t *testing.T, categories ...entity.Category) *usecase.CompletionResult {
	t.Helper()
	var last *usecase.CompletionResult
	for _, c := range categories {
		result, err := f.tracker.RecordCompletion(context.Background(), user, c)
		require.NoError(t, err)
		last = result
	}
	return last
}

func TestRecordCompletion_Combo(t *testing.T) {
	f := newFixture(t, persistence.FullCapabilities())

	first := f.complete(t, entity.CategoryAffirmation)
	assert.Equal(t, 1, first.ComboCount)
	assert.True(t, first.Multiplier.Equal(decimal.NewFromInt(1)))
	assert.False(t, first.IsFullCombo)
	require.Len(t, first.Streaks, 1)
	assert.Equal(t, 1, first.Streaks[0].CurrentStreak)

	second := f.complete(t, entity.CategoryHabit)
	assert.Equal(t, 2, second.ComboCount)
	assert.True(t, second.Multiplier.Equal(decimal.NewFromFloat(1.5)))

	third := f.complete(t, entity.CategoryGoal)
	assert.Equal(t, 3, third.ComboCount)
	assert.True(t, third.Multiplier.Equal(decimal.NewFromInt(2)))
	assert.True(t, third.IsFullCombo)
	require.Len(t, third.Streaks, 2)
	assert.Equal(t, entity.StreakCombo, third.Streaks[1].Type)
	require.Len(t, third.NewlyUnlocked, 1)
	assert.Equal(t, "first_combo", third.NewlyUnlocked[0].ID)
	assert.Equal(t, int64(110), f.store.Account(user).Balance)

	t.Run("Repeating a category is a no-op", func(t *testing.T) {
		again := f.complete(t, entity.CategoryGoal)

		assert.Equal(t, 3, again.ComboCount)
		assert.Empty(t, again.Streaks)
		assert.Empty(t, again.NewlyUnlocked)

		views, err := f.tracker.GetStreaks(context.Background(), user)
		require.NoError(t, err)
		assert.Equal(t, 1, streakOf(t, views, entity.StreakGoal).TotalCompletions)
		assert.Equal(t, 1, f.store.UnlockedCount(user))
	})
}

func TestRecordCompletion_Streaks(t *testing.T) {
	ctx := context.Background()

	t.Run("Consecutive days extend and unlock milestones", func(t *testing.T) {
		f := newFixture(t, persistence.FullCapabilities())

		f.complete(t, entity.CategoryHabit)
		f.clock.AddDays(1)
		f.complete(t, entity.CategoryHabit)
		f.clock.AddDays(1)
		result := f.complete(t, entity.CategoryHabit)

		assert.Equal(t, 3, result.Streaks[0].CurrentStreak)
		require.Len(t, result.NewlyUnlocked, 1)
		assert.Equal(t, "streak_3", result.NewlyUnlocked[0].ID)
	})

	t.Run("Missed day without a freeze resets", func(t *testing.T) {
		f := newFixture(t, persistence.FullCapabilities())

		f.complete(t, entity.CategoryHabit)
		f.clock.AddDays(1)
		f.complete(t, entity.CategoryHabit)
		f.clock.AddDays(2)
		result := f.complete(t, entity.CategoryHabit)

		assert.Equal(t, 1, result.Streaks[0].CurrentStreak)
		assert.Equal(t, 2, result.Streaks[0].LongestStreak)
	})

	t.Run("Missed day with a freeze is bridged", func(t *testing.T) {
		f := newFixture(t, persistence.FullCapabilities())
		yesterday := entity.DateOf(f.clock.Now()).AddDays(-2)
		f.store.SeedStreak(entity.Streak{
			UserID: user, Type: entity.StreakHabit, CurrentStreak: 5, LongestStreak: 5,
			TotalCompletions: 5, LastCompletionDate: &yesterday, FreezeCount: 1,
		})

		result := f.complete(t, entity.CategoryHabit)

		streak := result.Streaks[0]
		assert.Equal(t, 6, streak.CurrentStreak)
		assert.Equal(t, 0, streak.FreezeCount)
		require.NotNil(t, streak.LastFreezeDate)
		assert.Equal(t, entity.DateOf(f.clock.Now()), *streak.LastFreezeDate)
	})

	t.Run("Gap wider than the freeze window resets and keeps the freeze", func(t *testing.T) {
		f := newFixture(t, persistence.FullCapabilities())
		last := entity.DateOf(f.clock.Now()).AddDays(-3)
		f.store.SeedStreak(entity.Streak{
			UserID: user, Type: entity.StreakHabit, CurrentStreak: 5, LongestStreak: 5,
			TotalCompletions: 5, LastCompletionDate: &last, FreezeCount: 1,
		})

		result := f.complete(t, entity.CategoryHabit)

		streak := result.Streaks[0]
		assert.Equal(t, 1, streak.CurrentStreak)
		assert.Equal(t, 5, streak.LongestStreak)
		assert.Equal(t, 1, streak.FreezeCount)
		assert.Nil(t, streak.LastFreezeDate)
	})

	t.Run("Seventh day earns a freeze", func(t *testing.T) {
		f := newFixture(t, persistence.FullCapabilities())
		last := entity.DateOf(f.clock.Now()).AddDays(-1)
		f.store.SeedStreak(entity.Streak{
			UserID: user, Type: entity.StreakGoal, CurrentStreak: 6, LongestStreak: 6,
			TotalCompletions: 6, LastCompletionDate: &last,
		})

		result := f.complete(t, entity.CategoryGoal)

		assert.Equal(t, 7, result.Streaks[0].CurrentStreak)
		assert.Equal(t, 1, result.Streaks[0].FreezeCount)
	})

	t.Run("Day boundary follows the configured zone", func(t *testing.T) {
		f := newFixture(t, persistence.FullCapabilities())
		hcm, err := time.LoadLocation("Asia/Ho_Chi_Minh")
		require.NoError(t, err)
		f.clock = fakes.NewClockIn(time.Date(2025, 6, 10, 18, 30, 0, 0, time.UTC), hcm)
		f.tracker.timeProvider = f.clock

		result, err := f.tracker.RecordCompletion(ctx, user, entity.CategoryGoal)

		require.NoError(t, err)
		assert.Equal(t, "2025-06-11", result.Date.String())
	})

	t.Run("Invalid input", func(t *testing.T) {
		f := newFixture(t, persistence.FullCapabilities())

		_, err := f.tracker.RecordCompletion(ctx, user, "meditation")
		assert.ErrorIs(t, err, errs.ErrInvalidCategory)

		_, err = f.tracker.RecordCompletion(ctx, 0, entity.CategoryGoal)
		assert.ErrorIs(t, err, errs.ErrInvalidUserID)
	})
}

func TestStreakFreezes(t *testing.T) {
	ctx := context.Background()

	t.Run("Using a freeze without one fails", func(t *testing.T) {
		f := newFixture(t, persistence.FullCapabilities())

		_, err := f.tracker.UseStreakFreeze(ctx, user, entity.StreakHabit)
		assert.ErrorIs(t, err, errs.ErrNoFreezeAvailable)

		f.complete(t, entity.CategoryHabit)
		_, err = f.tracker.UseStreakFreeze(ctx, user, entity.StreakHabit)
		assert.ErrorIs(t, err, errs.ErrNoFreezeAvailable)
	})

	t.Run("Purchase then use", func(t *testing.T) {
		f := newFixture(t, persistence.FullCapabilities())
		f.complete(t, entity.CategoryHabit)

		bought, err := f.tracker.PurchaseStreakFreeze(ctx, user, entity.StreakHabit)
		require.NoError(t, err)
		assert.Equal(t, 1, bought.RemainingFreezes)
		assert.Equal(t, int64(50), f.store.Account(user).Balance)

		entries := f.store.Entries(user)
		assert.Equal(t, entity.RefTypeStreakFreeze, entries[len(entries)-1].ReferenceType)

		f.clock.AddDays(1)
		used, err := f.tracker.UseStreakFreeze(ctx, user, entity.StreakHabit)
		require.NoError(t, err)
		assert.Equal(t, 0, used.RemainingFreezes)
		assert.Equal(t, 1, used.CurrentStreak)

		f.clock.AddDays(1)
		result := f.complete(t, entity.CategoryHabit)
		assert.Equal(t, 2, result.Streaks[0].CurrentStreak)
	})

	t.Run("A freeze cannot revive a lost streak", func(t *testing.T) {
		f := newFixture(t, persistence.FullCapabilities())
		last := entity.DateOf(f.clock.Now()).AddDays(-6)
		f.store.SeedStreak(entity.Streak{
			UserID: user, Type: entity.StreakHabit, CurrentStreak: 3, LongestStreak: 3,
			TotalCompletions: 3, LastCompletionDate: &last, FreezeCount: 1,
		})

		_, err := f.tracker.UseStreakFreeze(ctx, user, entity.StreakHabit)
		assert.ErrorIs(t, err, errs.ErrFreezeNotApplicable)

		f.clock.AddDays(1)
		result := f.complete(t, entity.CategoryHabit)
		assert.Equal(t, 1, result.Streaks[0].CurrentStreak)
		assert.Equal(t, 1, result.Streaks[0].FreezeCount)
	})

	t.Run("A freeze is not spent on a day already counted", func(t *testing.T) {
		f := newFixture(t, persistence.FullCapabilities())
		f.complete(t, entity.CategoryHabit)
		_, err := f.tracker.PurchaseStreakFreeze(ctx, user, entity.StreakHabit)
		require.NoError(t, err)

		_, err = f.tracker.UseStreakFreeze(ctx, user, entity.StreakHabit)
		assert.ErrorIs(t, err, errs.ErrFreezeNotApplicable)

		views, err := f.tracker.GetStreaks(ctx, user)
		require.NoError(t, err)
		habit := streakOf(t, views, entity.StreakHabit)
		assert.Equal(t, 1, habit.FreezeCount)
		assert.Equal(t, 1, habit.CurrentStreak)
	})

	t.Run("Purchase respects the cap", func(t *testing.T) {
		f := newFixture(t, persistence.FullCapabilities())
		f.store.SeedStreak(entity.Streak{UserID: user, Type: entity.StreakGoal, FreezeCount: 2})

		_, err := f.tracker.PurchaseStreakFreeze(ctx, user, entity.StreakGoal)

		assert.ErrorIs(t, err, errs.ErrMaxFreezesReached)
		assert.Equal(t, int64(100), f.store.Account(user).Balance)
	})

	t.Run("Purchase without gems keeps the streak", func(t *testing.T) {
		f := newFixture(t, persistence.FullCapabilities())
		f.tracker.config.FreezePrice = 500

		_, err := f.tracker.PurchaseStreakFreeze(ctx, user, entity.StreakGoal)

		assert.ErrorIs(t, err, errs.ErrInsufficientFunds)
		views, err := f.tracker.GetStreaks(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, 0, streakOf(t, views, entity.StreakGoal).FreezeCount)
	})
}

func TestQueries(t *testing.T) {
	ctx := context.Background()

	t.Run("Streaks and combo of an active user", func(t *testing.T) {
		f := newFixture(t, persistence.FullCapabilities())
		f.complete(t, entity.CategoryAffirmation, entity.CategoryGoal)

		views, err := f.tracker.GetStreaks(ctx, user)
		require.NoError(t, err)
		require.Len(t, views, len(entity.StreakTypes))
		assert.True(t, streakOf(t, views, entity.StreakAffirmation).Active)
		assert.Equal(t, 0, streakOf(t, views, entity.StreakHabit).CurrentStreak)
		assert.False(t, streakOf(t, views, entity.StreakCombo).Active)

		combo, err := f.tracker.GetTodayCombo(ctx, user)
		require.NoError(t, err)
		assert.True(t, combo.AffirmationDone)
		assert.False(t, combo.HabitDone)
		assert.Equal(t, 2, combo.ComboCount)

		f.clock.AddDays(3)
		views, err = f.tracker.GetStreaks(ctx, user)
		require.NoError(t, err)
		assert.False(t, streakOf(t, views, entity.StreakAffirmation).Active)
	})

	t.Run("Neutral defaults without the streak schema", func(t *testing.T) {
		caps := persistence.FullCapabilities()
		caps.Streaks = false
		f := newFixture(t, caps)

		views, err := f.tracker.GetStreaks(ctx, user)
		require.NoError(t, err)
		for _, v := range views {
			assert.Zero(t, v.CurrentStreak)
		}

		combo, err := f.tracker.GetTodayCombo(ctx, user)
		require.NoError(t, err)
		assert.True(t, combo.Multiplier.Equal(decimal.NewFromInt(1)))

		_, err = f.tracker.RecordCompletion(ctx, user, entity.CategoryGoal)
		assert.ErrorIs(t, err, errs.ErrSchemaNotProvisioned)

		_, err = f.tracker.PurchaseStreakFreeze(ctx, user, entity.StreakGoal)
		assert.ErrorIs(t, err, errs.ErrSchemaNotProvisioned)
	})
}
