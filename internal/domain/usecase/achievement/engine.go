package achievement

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirhossein-jamali/gem-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/gem-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/gem-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/gem-ledger/internal/domain/port/external"
	"github.com/amirhossein-jamali/gem-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/gem-ledger/internal/domain/port/usecase"
)

// Config tunes the achievement engine
type Config struct {
	// RewardGems credits an achievement's points as bonus gems on unlock
	RewardGems bool
}

// Engine evaluates the achievement catalog against streak state. Every unlock is
// an insert-if-absent keyed on user and achievement, so re-evaluating the same
// state never awards twice.
type Engine struct {
	uow          persistence.UnitOfWork
	ledger       usecase.LedgerUseCase
	notifier     external.Notifier
	capabilities persistence.SchemaCapabilities
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
	metrics      coreport.Metrics
	config       Config
}

var _ usecase.AchievementUseCase = (*Engine)(nil)

// NewEngine creates a new achievement engine
func NewEngine(
	uow persistence.UnitOfWork,
	ledger usecase.LedgerUseCase,
	notifier external.Notifier,
	capabilities persistence.SchemaCapabilities,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	metrics coreport.Metrics,
	config Config,
) *Engine {
	return &Engine{
		uow:          uow,
		ledger:       ledger,
		notifier:     notifier,
		capabilities: capabilities,
		timeProvider: timeProvider,
		logger:       logger.With(map[string]any{"component": "achievement"}),
		metrics:      metrics,
		config:       config,
	}
}

// CheckAndAward unlocks every catalog entry the snapshot earns and returns the
// newly unlocked ones. Inside a caller's transaction the caller announces them
// after its commit.
func (e *Engine) CheckAndAward(ctx context.Context, userID uint64, snapshot entity.StreakSnapshot) ([]entity.Achievement, error) {
	if userID == 0 {
		return nil, errs.ErrInvalidUserID
	}
	if !e.capabilities.Achievements {
		return []entity.Achievement{}, nil
	}

	owned := !e.uow.InTransaction(ctx)
	newly := []entity.Achievement{}
	err := e.uow.Within(ctx, func(txCtx context.Context) error {
		for _, achievement := range entity.AchievementCatalog {
			if !achievement.IsEarned(snapshot) {
				continue
			}

			created, err := e.award(txCtx, userID, achievement)
			if err != nil {
				return err
			}
			if created {
				newly = append(newly, achievement)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if owned {
		e.Announce(ctx, userID, newly)
	}
	return newly, nil
}

// award inserts the unlock row and, when it was actually inserted, credits the points
func (e *Engine) award(ctx context.Context, userID uint64, achievement entity.Achievement) (bool, error) {
	unlocked := &entity.UnlockedAchievement{
		UserID:        userID,
		AchievementID: achievement.ID,
		UnlockedAt:    e.timeProvider.Now(),
	}

	reward := e.config.RewardGems && achievement.Points > 0
	if reward {
		funded, err := e.hasAccount(ctx, userID)
		if err != nil {
			return false, err
		}
		if !funded {
			e.logger.Warn("No gem account for achievement reward", map[string]any{
				"user_id":        userID,
				"achievement_id": achievement.ID,
			})
			reward = false
		}
	}
	if reward {
		unlocked.PointsAwarded = achievement.Points
	}

	created, err := e.uow.GetAchievementRepository(ctx).Unlock(ctx, unlocked)
	if err != nil {
		return false, fmt.Errorf("failed to unlock %s: %w", achievement.ID, err)
	}
	if !created || !reward {
		return created, nil
	}

	_, err = e.ledger.Apply(ctx, usecase.MutationRequest{
		AccountID:     userID,
		Kind:          entity.KindBonus,
		Amount:        achievement.Points,
		Description:   fmt.Sprintf("Achievement unlocked: %s", achievement.Name),
		ReferenceID:   achievement.ID,
		ReferenceType: entity.RefTypeAchievement,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (e *Engine) hasAccount(ctx context.Context, userID uint64) (bool, error) {
	_, err := e.uow.GetAccountRepository(ctx).GetByID(ctx, userID)
	if errors.Is(err, errs.ErrAccountNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Announce records and notifies committed unlocks
func (e *Engine) Announce(ctx context.Context, userID uint64, achievements []entity.Achievement) {
	for _, achievement := range achievements {
		e.metrics.AchievementUnlocked(achievement.ID)
		e.logger.Info("Achievement unlocked", map[string]any{
			"user_id":        userID,
			"achievement_id": achievement.ID,
			"points":         achievement.Points,
		})

		err := e.notifier.Notify(ctx, external.Notification{
			RecipientID: userID,
			Type:        external.NotificationAchievementUnlocked,
			Title:       achievement.Name,
			Body:        achievement.Description,
			Data: map[string]any{
				"achievementId": achievement.ID,
				"points":        achievement.Points,
			},
		})
		if err != nil {
			e.logger.Warn("Achievement notification failed", map[string]any{
				"user_id":        userID,
				"achievement_id": achievement.ID,
				"error":          err.Error(),
			})
		}
	}
}

// ListAchievements returns the catalog with the user's unlock state. Without the
// achievements schema the list is empty.
func (e *Engine) ListAchievements(ctx context.Context, userID uint64) ([]usecase.AchievementView, error) {
	if userID == 0 {
		return nil, errs.ErrInvalidUserID
	}
	if !e.capabilities.Achievements {
		return []usecase.AchievementView{}, nil
	}

	unlocked, err := e.uow.GetAchievementRepository(ctx).ListUnlocked(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}

	byID := make(map[string]*entity.UnlockedAchievement, len(unlocked))
	for _, u := range unlocked {
		byID[u.AchievementID] = u
	}

	views := make([]usecase.AchievementView, 0, len(entity.AchievementCatalog))
	for _, achievement := range entity.AchievementCatalog {
		view := usecase.AchievementView{Achievement: achievement}
		if u, ok := byID[achievement.ID]; ok {
			at := u.UnlockedAt
			view.Unlocked = true
			view.UnlockedAt = &at
			view.PointsAwarded = u.PointsAwarded
		}
		views = append(views, view)
	}
	return views, nil
}
