package dto

import "github.com/amirhossein-jamali/gem-ledger/internal/domain/entity"

// SendGiftRequest is the body of POST /gifts
type SendGiftRequest struct {
	RecipientID uint64 `json:"recipientId" binding:"required,gt=0"`
	CatalogID   string `json:"catalogId" binding:"required,max=64"`
	Message     string `json:"message" binding:"max=500"`
	IsAnonymous bool   `json:"isAnonymous"`
	PostID      string `json:"postId" binding:"max=64"`
	StreamID    string `json:"streamId" binding:"max=64"`
}

// GiftResponse is a settled gift as returned to its sender
type GiftResponse struct {
	ID          string `json:"id"`
	SenderID    uint64 `json:"senderId,omitempty"`
	RecipientID uint64 `json:"recipientId"`
	CatalogID   string `json:"catalogId"`
	GemAmount   int64  `json:"gemAmount"`
	Message     string `json:"message,omitempty"`
	IsAnonymous bool   `json:"isAnonymous"`
	PostID      string `json:"postId,omitempty"`
	StreamID    string `json:"streamId,omitempty"`
	Status      string `json:"status"`
	CreatedAt   string `json:"createdAt"`
}

// NewGiftResponse maps a gift as seen by its sender
func NewGiftResponse(g *entity.Gift) GiftResponse {
	return GiftResponse{
		ID:          g.ID,
		SenderID:    g.SenderID,
		RecipientID: g.RecipientID,
		CatalogID:   g.CatalogID,
		GemAmount:   g.GemAmount,
		Message:     g.Message,
		IsAnonymous: g.IsAnonymous,
		PostID:      g.PostID,
		StreamID:    g.StreamID,
		Status:      string(g.Status),
		CreatedAt:   formatTime(g.CreatedAt),
	}
}

// CatalogItemResponse is one purchasable gift
type CatalogItemResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Icon     string `json:"icon"`
	GemCost  int64  `json:"gemCost"`
	Position int    `json:"position"`
}

// NewCatalogResponse maps the gift catalog
func NewCatalogResponse(items []*entity.GiftCatalogItem) []CatalogItemResponse {
	out := make([]CatalogItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, CatalogItemResponse{
			ID:       item.ID,
			Name:     item.Name,
			Icon:     item.Icon,
			GemCost:  item.GemCost,
			Position: item.Position,
		})
	}
	return out
}
