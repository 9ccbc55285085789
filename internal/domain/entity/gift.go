package entity

import (
	"time"

	"github.com/google/uuid"

	errs "github.com/amirhossein-jamali/gem-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/gem-ledger/internal/domain/port/core"
)

// GiftCatalogItem is a purchasable gift
type GiftCatalogItem struct {
	ID       string
	Name     string
	Icon     string
	GemCost  int64
	Active   bool
	Position int
}

// GiftStatus tracks settlement of a gift
type GiftStatus string

// Gift statuses
const (
	GiftStatusSettled GiftStatus = "settled"
)

// Gift records one sender-to-recipient gem transfer
type Gift struct {
	ID          string
	SenderID    uint64
	RecipientID uint64
	CatalogID   string
	GemAmount   int64
	Message     string
	IsAnonymous bool
	PostID      string
	StreamID    string
	Status      GiftStatus
	CreatedAt   time.Time
}

// GiftRequest carries the caller-supplied fields of a gift
type GiftRequest struct {
	SenderID    uint64
	RecipientID uint64
	CatalogID   string
	Message     string
	IsAnonymous bool
	PostID      string
	StreamID    string
}

// NewGift builds a gift for a catalog item, rejecting self-gifts
func NewGift(req GiftRequest, item *GiftCatalogItem, timeProvider coreport.TimeProvider) (*Gift, error) {
	if req.SenderID == 0 || req.RecipientID == 0 {
		return nil, errs.ErrInvalidUserID
	}
	if req.SenderID == req.RecipientID {
		return nil, errs.ErrSelfGift
	}
	if item == nil || !item.Active {
		return nil, errs.ErrUnknownGift
	}

	return &Gift{
		ID:          uuid.NewString(),
		SenderID:    req.SenderID,
		RecipientID: req.RecipientID,
		CatalogID:   item.ID,
		GemAmount:   item.GemCost,
		Message:     req.Message,
		IsAnonymous: req.IsAnonymous,
		PostID:      req.PostID,
		StreamID:    req.StreamID,
		Status:      GiftStatusSettled,
		CreatedAt:   timeProvider.Now(),
	}, nil
}
