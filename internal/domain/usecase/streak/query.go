package streak

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirhossein-jamali/gem-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/gem-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/gem-ledger/internal/domain/port/usecase"
)

// GetStreaks returns every streak type. Types never recorded, or every type when
// the streak schema is missing, come back zeroed.
func (t *Tracker) GetStreaks(ctx context.Context, userID uint64) ([]usecase.StreakView, error) {
	if userID == 0 {
		return nil, errs.ErrInvalidUserID
	}

	byType := map[entity.StreakType]*entity.Streak{}
	if t.capabilities.Streaks {
		streaks, err := t.uow.GetStreakRepository(ctx).ListStreaks(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to list streaks: %w", err)
		}
		for _, s := range streaks {
			byType[s.Type] = s
		}
	}

	today := t.today()
	views := make([]usecase.StreakView, 0, len(entity.StreakTypes))
	for _, streakType := range entity.StreakTypes {
		view := usecase.StreakView{Type: streakType}
		if s, ok := byType[streakType]; ok {
			view.CurrentStreak = s.CurrentStreak
			view.LongestStreak = s.LongestStreak
			view.TotalCompletions = s.TotalCompletions
			view.FreezeCount = s.FreezeCount
			view.LastCompletionDate = s.LastCompletionDate
			view.Active = s.IsActive(today, t.config.Policy)
		}
		views = append(views, view)
	}
	return views, nil
}

// GetTodayCombo returns today's completion flags
func (t *Tracker) GetTodayCombo(ctx context.Context, userID uint64) (*usecase.ComboView, error) {
	if userID == 0 {
		return nil, errs.ErrInvalidUserID
	}

	today := t.today()
	view := &usecase.ComboView{Date: today, Multiplier: entity.ComboMultiplier(0)}
	if !t.capabilities.Streaks {
		return view, nil
	}

	completion, err := t.uow.GetStreakRepository(ctx).GetCompletion(ctx, userID, today)
	if errors.Is(err, errs.ErrCompletionNotFound) {
		return view, nil
	}
	if err != nil {
		return nil, err
	}

	view.AffirmationDone = completion.AffirmationDone
	view.HabitDone = completion.HabitDone
	view.GoalDone = completion.GoalDone
	view.ComboCount = completion.ComboCount
	view.Multiplier = completion.Multiplier
	view.IsFullCombo = completion.IsFullCombo()
	return view, nil
}
