package usecase

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/gem-ledger/internal/domain/entity"
)

// AchievementView is a catalog entry annotated with the user's progress
type AchievementView struct {
	entity.Achievement
	Unlocked      bool
	UnlockedAt    *time.Time
	PointsAwarded int64
}

// AchievementUseCase defines achievement operations
type AchievementUseCase interface {
	// CheckAndAward unlocks every achievement the snapshot earns and returns only the new ones
	CheckAndAward(ctx context.Context, userID uint64, snapshot entity.StreakSnapshot) ([]entity.Achievement, error)

	// Announce counts and notifies unlocks once their transaction has committed
	Announce(ctx context.Context, userID uint64, achievements []entity.Achievement)

	// ListAchievements returns the catalog with unlock state
	ListAchievements(ctx context.Context, userID uint64) ([]AchievementView, error)
}
