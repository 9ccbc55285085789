package streak

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/amirhossein-jamali/gem-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/gem-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/gem-ledger/internal/domain/port/usecase"
)

// UseStreakFreeze spends a freeze to mark today as covered
func (t *Tracker) UseStreakFreeze(ctx context.Context, userID uint64, streakType entity.StreakType) (*usecase.FreezeResult, error) {
	if userID == 0 {
		return nil, errs.ErrInvalidUserID
	}
	if _, err := entity.ParseStreakType(string(streakType)); err != nil {
		return nil, err
	}
	if !t.capabilities.Streaks {
		return nil, errs.ErrSchemaNotProvisioned
	}

	today := t.today()
	var result *usecase.FreezeResult
	err := t.uow.Within(ctx, func(txCtx context.Context) error {
		repo := t.uow.GetStreakRepository(txCtx)

		streak, err := repo.GetStreak(txCtx, userID, streakType)
		if errors.Is(err, errs.ErrStreakNotFound) {
			return errs.ErrNoFreezeAvailable
		}
		if err != nil {
			return err
		}

		if err := streak.UseFreeze(today, t.config.Policy, t.timeProvider); err != nil {
			return err
		}
		if err := repo.SaveStreak(txCtx, streak); err != nil {
			return err
		}

		result = &usecase.FreezeResult{
			StreakType:       streakType,
			CurrentStreak:    streak.CurrentStreak,
			RemainingFreezes: streak.FreezeCount,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	t.logger.Info("Streak freeze used", map[string]any{
		"user_id":     userID,
		"streak_type": streakType,
		"remaining":   result.RemainingFreezes,
	})
	return result, nil
}

// PurchaseStreakFreeze buys one freeze for the configured gem price
func (t *Tracker) PurchaseStreakFreeze(ctx context.Context, userID uint64, streakType entity.StreakType) (*usecase.FreezeResult, error) {
	if userID == 0 {
		return nil, errs.ErrInvalidUserID
	}
	if _, err := entity.ParseStreakType(string(streakType)); err != nil {
		return nil, err
	}
	if !t.capabilities.Streaks {
		return nil, errs.ErrSchemaNotProvisioned
	}

	var result *usecase.FreezeResult
	err := t.uow.Within(ctx, func(txCtx context.Context) error {
		repo := t.uow.GetStreakRepository(txCtx)

		streak, err := repo.GetStreak(txCtx, userID, streakType)
		if errors.Is(err, errs.ErrStreakNotFound) {
			streak, err = entity.NewStreak(userID, streakType, t.timeProvider), nil
		}
		if err != nil {
			return err
		}

		if !streak.GrantFreeze(t.config.Policy.MaxFreezes) {
			return errs.ErrMaxFreezesReached
		}

		if _, err := t.ledger.Spend(txCtx, userID, t.config.FreezePrice,
			fmt.Sprintf("Streak freeze (%s)", streakType),
			uuid.NewString(), entity.RefTypeStreakFreeze); err != nil {
			return err
		}

		streak.UpdatedAt = t.timeProvider.Now()
		if err := repo.SaveStreak(txCtx, streak); err != nil {
			return err
		}

		result = &usecase.FreezeResult{
			StreakType:       streakType,
			CurrentStreak:    streak.CurrentStreak,
			RemainingFreezes: streak.FreezeCount,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	t.logger.Info("Streak freeze purchased", map[string]any{
		"user_id":     userID,
		"streak_type": streakType,
		"price":       t.config.FreezePrice,
		"freezes":     result.RemainingFreezes,
	})
	return result, nil
}
