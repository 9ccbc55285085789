package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/amirhossein-jamali/gem-ledger/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/gem-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/gem-ledger/internal/infrastructure/adapter/model"
)

// AchievementRepository implements AchievementRepository interface using GORM
type AchievementRepository struct {
	db          *gorm.DB
	logger      coreport.Logger
	errorMapper *ErrorMapper
}

// NewAchievementRepository creates a new AchievementRepository instance
func NewAchievementRepository(db *gorm.DB, logger coreport.Logger) *AchievementRepository {
	return &AchievementRepository{
		db:          db,
		logger:      logger,
		errorMapper: NewErrorMapper(),
	}
}

// Unlock inserts the (user, achievement) pair unless it already exists
func (r *AchievementRepository) Unlock(ctx context.Context, unlocked *entity.UnlockedAchievement) (bool, error) {
	m := model.UnlockedAchievement{
		UserID:        unlocked.UserID,
		AchievementID: unlocked.AchievementID,
		PointsAwarded: unlocked.PointsAwarded,
		UnlockedAt:    unlocked.UnlockedAt,
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&m)
	if result.Error != nil {
		return false, r.errorMapper.MapError(result.Error, EntityAchievement)
	}
	if result.RowsAffected == 0 {
		return false, nil
	}

	unlocked.ID = m.ID
	return true, nil
}

// ListUnlocked returns a user's unlocked achievements, oldest first
func (r *AchievementRepository) ListUnlocked(ctx context.Context, userID uint64) ([]*entity.UnlockedAchievement, error) {
	var models []model.UnlockedAchievement
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("unlocked_at ASC, id ASC").
		Find(&models).Error
	if err != nil {
		return nil, r.errorMapper.MapError(err, EntityAchievement)
	}

	out := make([]*entity.UnlockedAchievement, 0, len(models))
	for _, m := range models {
		out = append(out, &entity.UnlockedAchievement{
			ID:            m.ID,
			UserID:        m.UserID,
			AchievementID: m.AchievementID,
			PointsAwarded: m.PointsAwarded,
			UnlockedAt:    m.UnlockedAt,
		})
	}
	return out, nil
}
