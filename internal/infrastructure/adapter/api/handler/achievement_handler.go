package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	coreport "github.com/amirhossein-jamali/gem-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/gem-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/gem-ledger/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/gem-ledger/internal/infrastructure/adapter/api/middleware"
)

// AchievementHandler handles achievement requests
type AchievementHandler struct {
	achievements usecase.AchievementUseCase
	logger       coreport.Logger
}

// NewAchievementHandler creates a new achievement handler instance
func NewAchievementHandler(achievements usecase.AchievementUseCase, logger coreport.Logger) *AchievementHandler {
	return &AchievementHandler{achievements: achievements, logger: logger}
}

// List handles GET /achievements
func (h *AchievementHandler) List(c *gin.Context) {
	userID := middleware.UserID(c)

	views, err := h.achievements.ListAchievements(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, map[string]any{"user_id": userID})
		return
	}

	c.JSON(http.StatusOK, gin.H{"achievements": dto.NewAchievementViews(views)})
}
