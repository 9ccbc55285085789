package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amirhossein-jamali/gem-ledger/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/gem-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/gem-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/gem-ledger/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/gem-ledger/internal/infrastructure/adapter/api/middleware"
)

// GiftHandler handles gift requests
type GiftHandler struct {
	gifts  usecase.GiftUseCase
	logger coreport.Logger
}

// NewGiftHandler creates a new gift handler instance
func NewGiftHandler(gifts usecase.GiftUseCase, logger coreport.Logger) *GiftHandler {
	return &GiftHandler{gifts: gifts, logger: logger}
}

// SendGift handles POST /gifts
func (h *GiftHandler) SendGift(c *gin.Context) {
	var req dto.SendGiftRequest
	if !bindJSON(c, &req) {
		return
	}

	senderID := middleware.UserID(c)
	gift, err := h.gifts.SendGift(c.Request.Context(), entity.GiftRequest{
		SenderID:    senderID,
		RecipientID: req.RecipientID,
		CatalogID:   req.CatalogID,
		Message:     req.Message,
		IsAnonymous: req.IsAnonymous,
		PostID:      req.PostID,
		StreamID:    req.StreamID,
	})
	if err != nil {
		respondError(c, h.logger, err, map[string]any{
			"sender_id":    senderID,
			"recipient_id": req.RecipientID,
			"catalog_id":   req.CatalogID,
		})
		return
	}

	c.JSON(http.StatusCreated, dto.NewGiftResponse(gift))
}

// ListCatalog handles GET /gifts/catalog
func (h *GiftHandler) ListCatalog(c *gin.Context) {
	items, err := h.gifts.ListCatalog(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": dto.NewCatalogResponse(items)})
}
