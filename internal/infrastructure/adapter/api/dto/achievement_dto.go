package dto

import (
	"github.com/amirhossein-jamali/gem-ledger/internal/domain/entity"
	"github.com/amirhossein-jamali/gem-ledger/internal/domain/port/usecase"
)

// AchievementResponse is a catalog achievement, with unlock state when listed for a user
type AchievementResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Type          string `json:"type"`
	Threshold     int    `json:"threshold"`
	Points        int64  `json:"points"`
	Unlocked      bool   `json:"unlocked"`
	UnlockedAt    string `json:"unlockedAt,omitempty"`
	PointsAwarded int64  `json:"pointsAwarded,omitempty"`
}

func newAchievement(a entity.Achievement) AchievementResponse {
	return AchievementResponse{
		ID:          a.ID,
		Name:        a.Name,
		Description: a.Description,
		Type:        string(a.Type),
		Threshold:   a.Threshold,
		Points:      a.Points,
	}
}

// NewAchievementList maps achievements that were just unlocked
func NewAchievementList(achievements []entity.Achievement) []AchievementResponse {
	out := make([]AchievementResponse, 0, len(achievements))
	for _, a := range achievements {
		r := newAchievement(a)
		r.Unlocked = true
		out = append(out, r)
	}
	return out
}

// NewAchievementViews maps the catalog with a user's unlock state
func NewAchievementViews(views []usecase.AchievementView) []AchievementResponse {
	out := make([]AchievementResponse, 0, len(views))
	for _, v := range views {
		r := newAchievement(v.Achievement)
		r.Unlocked = v.Unlocked
		r.UnlockedAt = formatTimePtr(v.UnlockedAt)
		r.PointsAwarded = v.PointsAwarded
		out = append(out, r)
	}
	return out
}
