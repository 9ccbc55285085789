package persistence

import (
	"context"

	"github.com/amirhossein-jamali/gem-ledger/internal/domain/entity"
)

// StreakRepository defines methods for daily completions and streaks
type StreakRepository interface {
	// GetCompletion returns the completion row for a user and day, locking it when
	// called inside a transaction
	//
	// Possible errors:
	// - ErrCompletionNotFound: If nothing was completed that day
	GetCompletion(ctx context.Context, userID uint64, date entity.Date) (*entity.DailyCompletion, error)

	// SaveCompletion inserts or updates a completion row. Category flags already true in
	// the store are kept true.
	//
	// Possible errors:
	// - ErrConcurrentModification: If a parallel insert created the row first
	SaveCompletion(ctx context.Context, completion *entity.DailyCompletion) error

	// GetStreak returns a streak, locking it when called inside a transaction
	//
	// Possible errors:
	// - ErrStreakNotFound: If the user has no streak of this type yet
	GetStreak(ctx context.Context, userID uint64, streakType entity.StreakType) (*entity.Streak, error)

	// SaveStreak inserts or updates a streak
	//
	// Possible errors:
	// - ErrConcurrentModification: If a parallel insert created the row first
	SaveStreak(ctx context.Context, streak *entity.Streak) error

	// ListStreaks returns every streak of a user
	ListStreaks(ctx context.Context, userID uint64) ([]*entity.Streak, error)
}
