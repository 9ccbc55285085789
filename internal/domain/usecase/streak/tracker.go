package streak

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirhossein-jamali/gem-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/gem-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/gem-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/gem-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/gem-ledger/internal/domain/port/usecase"
)

// saveAttempts bounds retries when two requests create the same day's row at once
const saveAttempts = 3

// Config tunes the tracker
type Config struct {
	Policy entity.StreakPolicy
	// FreezePrice is the gem cost of one purchased freeze
	FreezePrice int64
}

// DefaultConfig returns the tracker defaults
func DefaultConfig() Config {
	return Config{Policy: entity.DefaultStreakPolicy(), FreezePrice: 50}
}

// Tracker records daily completions and maintains per-category and combo streaks
type Tracker struct {
	uow          persistence.UnitOfWork
	ledger       usecase.LedgerUseCase
	achievements usecase.AchievementUseCase
	capabilities persistence.SchemaCapabilities
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
	config       Config
}

var _ usecase.StreakUseCase = (*Tracker)(nil)

// NewTracker creates a new streak tracker
func NewTracker(
	uow persistence.UnitOfWork,
	ledger usecase.LedgerUseCase,
	achievements usecase.AchievementUseCase,
	capabilities persistence.SchemaCapabilities,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	config Config,
) *Tracker {
	return &Tracker{
		uow:          uow,
		ledger:       ledger,
		achievements: achievements,
		capabilities: capabilities,
		timeProvider: timeProvider,
		logger:       logger.With(map[string]any{"component": "streak"}),
		config:       config,
	}
}

// today is the calendar day of the clock in the tracker's zone
func (t *Tracker) today() entity.Date {
	return entity.DateIn(t.timeProvider.Now(), t.timeProvider.Location())
}

// RecordCompletion marks a category done today, advances the affected streaks and
// awards achievements, all in one transaction
func (t *Tracker) RecordCompletion(ctx context.Context, userID uint64, category entity.Category) (*usecase.CompletionResult, error) {
	if userID == 0 {
		return nil, errs.ErrInvalidUserID
	}
	if _, err := entity.ParseCategory(string(category)); err != nil {
		return nil, err
	}
	if !t.capabilities.Streaks {
		return nil, errs.ErrSchemaNotProvisioned
	}

	today := t.today()
	var (
		result *usecase.CompletionResult
		err    error
	)
	for attempt := 1; attempt <= saveAttempts; attempt++ {
		result, err = t.recordOnce(ctx, userID, category, today)
		if !errors.Is(err, errs.ErrConcurrentModification) || t.uow.InTransaction(ctx) {
			break
		}
		t.logger.Debug("Completion row raced, retrying", map[string]any{"user_id": userID, "attempt": attempt})
	}
	if err != nil {
		return nil, err
	}

	if !t.uow.InTransaction(ctx) {
		t.achievements.Announce(ctx, userID, result.NewlyUnlocked)
	}

	t.logger.Info("Completion recorded", map[string]any{
		"user_id":     userID,
		"category":    category,
		"date":        today.String(),
		"combo_count": result.ComboCount,
		"unlocked":    len(result.NewlyUnlocked),
	})
	return result, nil
}

func (t *Tracker) recordOnce(ctx context.Context, userID uint64, category entity.Category, today entity.Date) (*usecase.CompletionResult, error) {
	var result *usecase.CompletionResult
	err := t.uow.Within(ctx, func(txCtx context.Context) error {
		repo := t.uow.GetStreakRepository(txCtx)

		completion, err := repo.GetCompletion(txCtx, userID, today)
		if errors.Is(err, errs.ErrCompletionNotFound) {
			completion, err = entity.NewDailyCompletion(userID, today, t.timeProvider), nil
		}
		if err != nil {
			return err
		}

		changed, err := completion.Mark(category, t.timeProvider)
		if err != nil {
			return err
		}

		var touched []*entity.Streak
		if changed {
			if err := repo.SaveCompletion(txCtx, completion); err != nil {
				return err
			}

			streak, err := t.advance(txCtx, userID, entity.StreakTypeFor(category), today)
			if err != nil {
				return err
			}
			touched = append(touched, streak)

			if completion.IsFullCombo() {
				combo, err := t.advance(txCtx, userID, entity.StreakCombo, today)
				if err != nil {
					return err
				}
				touched = append(touched, combo)
			}
		}

		result = &usecase.CompletionResult{
			Date:          today,
			Category:      category,
			ComboCount:    completion.ComboCount,
			Multiplier:    completion.Multiplier,
			IsFullCombo:   completion.IsFullCombo(),
			Streaks:       touched,
			NewlyUnlocked: []entity.Achievement{},
		}

		if !changed || !t.capabilities.Achievements {
			return nil
		}

		snapshot, err := t.snapshot(txCtx, userID, completion)
		if err != nil {
			return err
		}
		result.NewlyUnlocked, err = t.achievements.CheckAndAward(txCtx, userID, snapshot)
		return err
	})
	return result, err
}

// advance applies today's completion to one streak, creating it on first use
func (t *Tracker) advance(ctx context.Context, userID uint64, streakType entity.StreakType, today entity.Date) (*entity.Streak, error) {
	repo := t.uow.GetStreakRepository(ctx)

	streak, err := repo.GetStreak(ctx, userID, streakType)
	if errors.Is(err, errs.ErrStreakNotFound) {
		streak, err = entity.NewStreak(userID, streakType, t.timeProvider), nil
	}
	if err != nil {
		return nil, err
	}

	update := streak.RecordCompletion(today, t.config.Policy, t.timeProvider)
	if update.Outcome == entity.OutcomeUnchanged {
		return streak, nil
	}
	if err := repo.SaveStreak(ctx, streak); err != nil {
		return nil, err
	}

	if update.Outcome == entity.OutcomeBridged || update.FreezeEarned {
		t.logger.Info("Streak freeze changed", map[string]any{
			"user_id":       userID,
			"streak_type":   streakType,
			"outcome":       update.Outcome,
			"freeze_earned": update.FreezeEarned,
			"freeze_count":  streak.FreezeCount,
		})
	}
	return streak, nil
}

// snapshot collects the state achievements are evaluated against
func (t *Tracker) snapshot(ctx context.Context, userID uint64, completion *entity.DailyCompletion) (entity.StreakSnapshot, error) {
	streaks, err := t.uow.GetStreakRepository(ctx).ListStreaks(ctx, userID)
	if err != nil {
		return entity.StreakSnapshot{}, fmt.Errorf("failed to list streaks: %w", err)
	}

	snapshot := entity.StreakSnapshot{
		IsFullCombo: completion.IsFullCombo(),
		ComboCount:  completion.ComboCount,
	}
	for _, s := range streaks {
		if s.Type == entity.StreakCombo {
			snapshot.ComboStreak = s.CurrentStreak
			continue
		}
		if s.CurrentStreak > snapshot.BestStreak {
			snapshot.BestStreak = s.CurrentStreak
		}
	}
	return snapshot, nil
}
