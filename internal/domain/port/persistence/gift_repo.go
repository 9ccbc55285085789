package persistence

import (
	"context"

	"github.com/amirhossein-jamali/gem-ledger/internal/domain/entity"
)

// GiftRepository defines methods for the gift catalog and sent gifts
type GiftRepository interface {
	// GetCatalogItem returns an active catalog item
	//
	// Possible errors:
	// - ErrUnknownGift: If no active item has the given id
	GetCatalogItem(ctx context.Context, catalogID string) (*entity.GiftCatalogItem, error)

	// ListCatalog returns the active catalog in display order
	ListCatalog(ctx context.Context) ([]*entity.GiftCatalogItem, error)

	// Create stores a gift record
	//
	// Possible errors:
	// - ErrAccountNotFound: If sender or recipient doesn't exist
	// - ErrDatabaseConnection: If database connection fails
	Create(ctx context.Context, gift *entity.Gift) error

	// GetByID returns a gift record
	//
	// Possible errors:
	// - ErrGiftNotFound: If the gift doesn't exist
	GetByID(ctx context.Context, id string) (*entity.Gift, error)
}
