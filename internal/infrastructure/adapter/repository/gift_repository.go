package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/amirhossein-jamali/gem-ledger/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/gem-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/gem-ledger/internal/infrastructure/adapter/model"
)

// GiftRepository implements GiftRepository interface using GORM
type GiftRepository struct {
	db          *gorm.DB
	logger      coreport.Logger
	errorMapper *ErrorMapper
}

// NewGiftRepository creates a new GiftRepository instance
func NewGiftRepository(db *gorm.DB, logger coreport.Logger) *GiftRepository {
	return &GiftRepository{
		db:          db,
		logger:      logger,
		errorMapper: NewErrorMapper(),
	}
}

func catalogItemToEntity(m *model.GiftCatalogItem) *entity.GiftCatalogItem {
	return &entity.GiftCatalogItem{
		ID:       m.ID,
		Name:     m.Name,
		Icon:     m.Icon,
		GemCost:  m.GemCost,
		Active:   m.Active,
		Position: m.Position,
	}
}

// GetCatalogItem returns an active catalog item
func (r *GiftRepository) GetCatalogItem(ctx context.Context, catalogID string) (*entity.GiftCatalogItem, error) {
	var m model.GiftCatalogItem
	err := r.db.WithContext(ctx).
		Where("id = ? AND active = ?", catalogID, true).
		First(&m).Error
	if err != nil {
		return nil, r.errorMapper.MapError(err, EntityCatalogItem)
	}
	return catalogItemToEntity(&m), nil
}

// ListCatalog returns the active catalog in display order
func (r *GiftRepository) ListCatalog(ctx context.Context) ([]*entity.GiftCatalogItem, error) {
	var models []model.GiftCatalogItem
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("position ASC, id ASC").
		Find(&models).Error
	if err != nil {
		return nil, r.errorMapper.MapError(err, EntityCatalogItem)
	}

	out := make([]*entity.GiftCatalogItem, 0, len(models))
	for i := range models {
		out = append(out, catalogItemToEntity(&models[i]))
	}
	return out, nil
}

// Create stores a gift record
func (r *GiftRepository) Create(ctx context.Context, gift *entity.Gift) error {
	m := model.Gift{
		ID:          gift.ID,
		SenderID:    gift.SenderID,
		RecipientID: gift.RecipientID,
		CatalogID:   gift.CatalogID,
		GemAmount:   gift.GemAmount,
		Message:     gift.Message,
		IsAnonymous: gift.IsAnonymous,
		PostID:      gift.PostID,
		StreamID:    gift.StreamID,
		Status:      string(gift.Status),
		CreatedAt:   gift.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&m).Error; err != nil {
		r.logger.Error("Failed to store gift", map[string]any{
			"gift_id":      gift.ID,
			"sender_id":    gift.SenderID,
			"recipient_id": gift.RecipientID,
			"error":        err.Error(),
		})
		return r.errorMapper.MapError(err, EntityGift)
	}
	return nil
}

// GetByID returns a gift record
func (r *GiftRepository) GetByID(ctx context.Context, id string) (*entity.Gift, error) {
	var m model.Gift
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, r.errorMapper.MapError(err, EntityGift)
	}

	return &entity.Gift{
		ID:          m.ID,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		CatalogID:   m.CatalogID,
		GemAmount:   m.GemAmount,
		Message:     m.Message,
		IsAnonymous: m.IsAnonymous,
		PostID:      m.PostID,
		StreamID:    m.StreamID,
		Status:      entity.GiftStatus(m.Status),
		CreatedAt:   m.CreatedAt,
	}, nil
}
