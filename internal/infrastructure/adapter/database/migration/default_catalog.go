package migration

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	coreport "github.com/amirhossein-jamali/gem-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/gem-ledger/internal/infrastructure/adapter/model"
)

// defaultCatalog is the gift catalog a fresh database starts with
var defaultCatalog = []model.GiftCatalogItem{
	{ID: "rose", Name: "Rose", Icon: "🌹", GemCost: 10, Active: true, Position: 1},
	{ID: "heart", Name: "Heart", Icon: "❤️", GemCost: 50, Active: true, Position: 2},
	{ID: "star", Name: "Star", Icon: "⭐", GemCost: 100, Active: true, Position: 3},
	{ID: "crown", Name: "Crown", Icon: "👑", GemCost: 500, Active: true, Position: 4},
	{ID: "castle", Name: "Castle", Icon: "🏰", GemCost: 1000, Active: true, Position: 5},
	{ID: "rocket", Name: "Rocket", Icon: "🚀", GemCost: 5000, Active: true, Position: 6},
}

// SeedDefaultCatalog inserts the default gifts. Existing items are left untouched.
func SeedDefaultCatalog(ctx context.Context, db *gorm.DB, logger coreport.Logger) error {
	items := make([]model.GiftCatalogItem, len(defaultCatalog))
	copy(items, defaultCatalog)

	result := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&items)
	if result.Error != nil {
		logger.Error("Failed to seed gift catalog", map[string]any{"error": result.Error.Error()})
		return result.Error
	}

	logger.Info("Gift catalog seeded", map[string]any{"inserted": result.RowsAffected})
	return nil
}
