package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/amirhossein-jamali/gem-ledger/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/gem-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/gem-ledger/internal/infrastructure/adapter/model"
)

// StreakRepository implements StreakRepository interface using GORM
type StreakRepository struct {
	db          *gorm.DB
	locking     bool // true when db is a transaction, reads then take row locks
	logger      coreport.Logger
	errorMapper *ErrorMapper
}

// NewStreakRepository creates a new StreakRepository instance
func NewStreakRepository(db *gorm.DB, locking bool, logger coreport.Logger) *StreakRepository {
	return &StreakRepository{
		db:          db,
		locking:     locking,
		logger:      logger,
		errorMapper: NewErrorMapper(),
	}
}

func (r *StreakRepository) query(ctx context.Context) *gorm.DB {
	q := r.db.WithContext(ctx)
	if r.locking {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q
}

func dateOf(t time.Time) entity.Date {
	return entity.DateOf(t.UTC())
}

func datePtr(t *time.Time) *entity.Date {
	if t == nil {
		return nil
	}
	d := dateOf(*t)
	return &d
}

func timePtr(d *entity.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time()
	return &t
}

func completionToEntity(m *model.DailyCompletion) *entity.DailyCompletion {
	return &entity.DailyCompletion{
		ID:              m.ID,
		UserID:          m.UserID,
		Date:            dateOf(m.CompletionDate),
		AffirmationDone: m.AffirmationDone,
		HabitDone:       m.HabitDone,
		GoalDone:        m.GoalDone,
		ComboCount:      m.ComboCount,
		Multiplier:      m.Multiplier,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func streakToEntity(m *model.Streak) *entity.Streak {
	return &entity.Streak{
		ID:                 m.ID,
		UserID:             m.UserID,
		Type:               entity.StreakType(m.StreakType),
		CurrentStreak:      m.CurrentStreak,
		LongestStreak:      m.LongestStreak,
		TotalCompletions:   m.TotalCompletions,
		LastCompletionDate: datePtr(m.LastCompletionDate),
		FreezeCount:        m.FreezeCount,
		LastFreezeDate:     datePtr(m.LastFreezeDate),
		UpdatedAt:          m.UpdatedAt,
	}
}

// GetCompletion returns the completion row for a user and day
func (r *StreakRepository) GetCompletion(ctx context.Context, userID uint64, date entity.Date) (*entity.DailyCompletion, error) {
	var m model.DailyCompletion
	err := r.query(ctx).
		Where("user_id = ? AND completion_date = ?", userID, date.Time()).
		First(&m).Error
	if err != nil {
		return nil, r.errorMapper.MapError(err, EntityCompletion)
	}
	return completionToEntity(&m), nil
}

// SaveCompletion inserts a new completion row or merges flags into an existing one
func (r *StreakRepository) SaveCompletion(ctx context.Context, completion *entity.DailyCompletion) error {
	if completion.ID == 0 {
		m := model.DailyCompletion{
			UserID:          completion.UserID,
			CompletionDate:  completion.Date.Time(),
			AffirmationDone: completion.AffirmationDone,
			HabitDone:       completion.HabitDone,
			GoalDone:        completion.GoalDone,
			ComboCount:      completion.ComboCount,
			Multiplier:      completion.Multiplier,
			CreatedAt:       completion.CreatedAt,
			UpdatedAt:       completion.UpdatedAt,
		}
		if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
			return r.errorMapper.MapError(err, EntityCompletion)
		}
		completion.ID = m.ID
		return nil
	}

	// Flags only ever go from false to true
	err := r.db.WithContext(ctx).Model(&model.DailyCompletion{}).
		Where("id = ?", completion.ID).
		Updates(map[string]any{
			"affirmation_done": gorm.Expr("affirmation_done OR ?", completion.AffirmationDone),
			"habit_done":       gorm.Expr("habit_done OR ?", completion.HabitDone),
			"goal_done":        gorm.Expr("goal_done OR ?", completion.GoalDone),
			"combo_count":      completion.ComboCount,
			"multiplier":       completion.Multiplier,
			"updated_at":       completion.UpdatedAt,
		}).Error
	if err != nil {
		return r.errorMapper.MapError(err, EntityCompletion)
	}
	return nil
}

// GetStreak returns a streak of one type
func (r *StreakRepository) GetStreak(ctx context.Context, userID uint64, streakType entity.StreakType) (*entity.Streak, error) {
	var m model.Streak
	err := r.query(ctx).
		Where("user_id = ? AND streak_type = ?", userID, string(streakType)).
		First(&m).Error
	if err != nil {
		return nil, r.errorMapper.MapError(err, EntityStreak)
	}
	return streakToEntity(&m), nil
}

// SaveStreak inserts or updates a streak
func (r *StreakRepository) SaveStreak(ctx context.Context, streak *entity.Streak) error {
	m := model.Streak{
		ID:                 streak.ID,
		UserID:             streak.UserID,
		StreakType:         string(streak.Type),
		CurrentStreak:      streak.CurrentStreak,
		LongestStreak:      streak.LongestStreak,
		TotalCompletions:   streak.TotalCompletions,
		LastCompletionDate: timePtr(streak.LastCompletionDate),
		FreezeCount:        streak.FreezeCount,
		LastFreezeDate:     timePtr(streak.LastFreezeDate),
		UpdatedAt:          streak.UpdatedAt,
	}

	if streak.ID == 0 {
		if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
			return r.errorMapper.MapError(err, EntityStreak)
		}
		streak.ID = m.ID
		return nil
	}

	err := r.db.WithContext(ctx).Model(&model.Streak{}).
		Where("id = ?", streak.ID).
		Updates(map[string]any{
			"current_streak":       m.CurrentStreak,
			"longest_streak":       m.LongestStreak,
			"total_completions":    m.TotalCompletions,
			"last_completion_date": m.LastCompletionDate,
			"freeze_count":         m.FreezeCount,
			"last_freeze_date":     m.LastFreezeDate,
			"updated_at":           m.UpdatedAt,
		}).Error
	if err != nil {
		return r.errorMapper.MapError(err, EntityStreak)
	}
	return nil
}

// ListStreaks returns every streak of a user
func (r *StreakRepository) ListStreaks(ctx context.Context, userID uint64) ([]*entity.Streak, error) {
	var models []model.Streak
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("streak_type ASC").
		Find(&models).Error
	if err != nil {
		return nil, r.errorMapper.MapError(err, EntityStreak)
	}

	out := make([]*entity.Streak, 0, len(models))
	for i := range models {
		out = append(out, streakToEntity(&models[i]))
	}
	return out, nil
}
