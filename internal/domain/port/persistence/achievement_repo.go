package persistence

import (
	"context"

	"github.com/amirhossein-jamali/gem-ledger/internal/domain/entity"
)

// AchievementRepository defines methods for unlocked achievements
type AchievementRepository interface {
	// Unlock inserts the (user, achievement) pair if absent. created is false when the
	// pair already existed, which is not an error.
	Unlock(ctx context.Context, unlocked *entity.UnlockedAchievement) (created bool, err error)

	// ListUnlocked returns a user's unlocked achievements, oldest first
	ListUnlocked(ctx context.Context, userID uint64) ([]*entity.UnlockedAchievement, error)
}
