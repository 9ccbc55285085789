package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/amirhossein-jamali/gem-ledger/internal/domain/entity"
)

// CompletionResult reports the effect of a daily completion
type CompletionResult struct {
	Date          entity.Date
	Category      entity.Category
	ComboCount    int
	Multiplier    decimal.Decimal
	IsFullCombo   bool
	Streaks       []*entity.Streak
	NewlyUnlocked []entity.Achievement
}

// FreezeResult reports a streak after a freeze was used or bought
type FreezeResult struct {
	StreakType       entity.StreakType
	CurrentStreak    int
	RemainingFreezes int
}

// StreakView is the read model of a streak
type StreakView struct {
	Type               entity.StreakType
	CurrentStreak      int
	LongestStreak      int
	TotalCompletions   int
	FreezeCount        int
	LastCompletionDate *entity.Date
	Active             bool
}

// ComboView is the read model of today's completions
type ComboView struct {
	Date            entity.Date
	AffirmationDone bool
	HabitDone       bool
	GoalDone        bool
	ComboCount      int
	Multiplier      decimal.Decimal
	IsFullCombo     bool
}

// StreakUseCase defines streak and combo tracking operations
type StreakUseCase interface {
	// RecordCompletion marks a category done today and updates streaks and achievements
	RecordCompletion(ctx context.Context, userID uint64, category entity.Category) (*CompletionResult, error)

	// UseStreakFreeze spends a freeze to cover today
	UseStreakFreeze(ctx context.Context, userID uint64, streakType entity.StreakType) (*FreezeResult, error)

	// PurchaseStreakFreeze buys a freeze with gems
	PurchaseStreakFreeze(ctx context.Context, userID uint64, streakType entity.StreakType) (*FreezeResult, error)

	// GetStreaks returns every streak type, zeroed when none is recorded
	GetStreaks(ctx context.Context, userID uint64) ([]StreakView, error)

	// GetTodayCombo returns today's completion flags and multiplier
	GetTodayCombo(ctx context.Context, userID uint64) (*ComboView, error)
}
