package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amirhossein-jamali/gem-ledger/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/gem-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/gem-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/gem-ledger/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/gem-ledger/internal/infrastructure/adapter/api/middleware"
)

// StreakHandler handles completion, streak and freeze requests
type StreakHandler struct {
	streaks usecase.StreakUseCase
	logger  coreport.Logger
}

// NewStreakHandler creates a new streak handler instance
func NewStreakHandler(streaks usecase.StreakUseCase, logger coreport.Logger) *StreakHandler {
	return &StreakHandler{streaks: streaks, logger: logger}
}

// RecordCompletion handles POST /streaks/completions
func (h *StreakHandler) RecordCompletion(c *gin.Context) {
	var req dto.CompletionRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := entity.ParseCategory(req.Category)
	if err != nil {
		respondError(c, h.logger, err, nil)
		return
	}

	userID := middleware.UserID(c)
	result, err := h.streaks.RecordCompletion(c.Request.Context(), userID, category)
	if err != nil {
		respondError(c, h.logger, err, map[string]any{"user_id": userID, "category": category})
		return
	}

	c.JSON(http.StatusOK, dto.NewCompletionResponse(result))
}

// GetStreaks handles GET /streaks
func (h *StreakHandler) GetStreaks(c *gin.Context) {
	userID := middleware.UserID(c)
	ctx := c.Request.Context()

	views, err := h.streaks.GetStreaks(ctx, userID)
	if err != nil {
		respondError(c, h.logger, err, map[string]any{"user_id": userID})
		return
	}

	combo, err := h.streaks.GetTodayCombo(ctx, userID)
	if err != nil {
		respondError(c, h.logger, err, map[string]any{"user_id": userID})
		return
	}

	c.JSON(http.StatusOK, dto.NewStreaksResponse(views, combo))
}

// UseFreeze handles POST /streaks/:type/freeze
func (h *StreakHandler) UseFreeze(c *gin.Context) {
	h.freeze(c, h.streaks.UseStreakFreeze)
}

// PurchaseFreeze handles POST /streaks/:type/freeze/purchase
func (h *StreakHandler) PurchaseFreeze(c *gin.Context) {
	h.freeze(c, h.streaks.PurchaseStreakFreeze)
}

func (h *StreakHandler) freeze(
	c *gin.Context,
	op func(ctx context.Context, userID uint64, streakType entity.StreakType) (*usecase.FreezeResult, error),
) {
	streakType, err := entity.ParseStreakType(c.Param("type"))
	if err != nil {
		respondError(c, h.logger, err, nil)
		return
	}

	userID := middleware.UserID(c)
	result, err := op(c.Request.Context(), userID, streakType)
	if err != nil {
		respondError(c, h.logger, err, map[string]any{"user_id": userID, "streak_type": streakType})
		return
	}

	c.JSON(http.StatusOK, dto.NewFreezeResponse(result))
}
