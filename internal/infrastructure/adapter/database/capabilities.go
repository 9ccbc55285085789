package database

import (
	"context"

	"gorm.io/gorm"

	coreport "github.com/amirhossein-jamali/gem-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/gem-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/gem-ledger/internal/infrastructure/adapter/model"
)

const probeMutationFunctionSQL = "SELECT EXISTS (SELECT 1 FROM pg_proc WHERE proname = 'apply_gem_mutation')"

// ProbeCapabilities inspects the connected schema for the optional components.
// A failed probe reports the component as missing.
func ProbeCapabilities(ctx context.Context, db *gorm.DB, driver string, logger coreport.Logger) persistence.SchemaCapabilities {
	db = db.WithContext(ctx)
	migrator := db.Migrator()

	caps := persistence.SchemaCapabilities{
		Streaks:      migrator.HasTable(&model.DailyCompletion{}) && migrator.HasTable(&model.Streak{}),
		Achievements: migrator.HasTable(&model.UnlockedAchievement{}),
	}

	if driver == DriverPostgres {
		var exists bool
		if err := db.Raw(probeMutationFunctionSQL).Scan(&exists).Error; err != nil {
			logger.Warn("Failed to probe atomic mutation function", map[string]any{"error": err.Error()})
		}
		caps.AtomicMutation = exists
	}

	logger.Info("Schema capabilities resolved", map[string]any{
		"driver":          driver,
		"atomic_mutation": caps.AtomicMutation,
		"streaks":         caps.Streaks,
		"achievements":    caps.Achievements,
	})
	return caps
}
