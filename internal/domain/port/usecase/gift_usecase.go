package usecase

import (
	"context"

	"github.com/amirhossein-jamali/gem-ledger/internal/domain/entity"
)

// GiftUseCase defines gift settlement operations
type GiftUseCase interface {
	// SendGift moves the catalog price from sender to recipient in one transaction
	SendGift(ctx context.Context, req entity.GiftRequest) (*entity.Gift, error)

	// ListCatalog returns the active gift catalog
	ListCatalog(ctx context.Context) ([]*entity.GiftCatalogItem, error)
}
