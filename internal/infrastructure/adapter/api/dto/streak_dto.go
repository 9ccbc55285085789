package dto

import (
	"github.com/amirhossein-jamali/gem-ledger/internal/domain/entity"
	"github.com/amirhossein-jamali/gem-ledger/internal/domain/port/usecase"
)

// CompletionRequest is the body of POST /streaks/completions
type CompletionRequest struct {
	Category string `json:"category" binding:"required,oneof=affirmation habit goal"`
}

// StreakResponse is one streak
type StreakResponse struct {
	Type               string `json:"type"`
	CurrentStreak      int    `json:"currentStreak"`
	LongestStreak      int    `json:"longestStreak"`
	TotalCompletions   int    `json:"totalCompletions"`
	FreezeCount        int    `json:"freezeCount"`
	LastCompletionDate string `json:"lastCompletionDate,omitempty"`
	Active             bool   `json:"active"`
}

// CompletionResponse reports a recorded completion
type CompletionResponse struct {
	Date          string                `json:"date"`
	Category      string                `json:"category"`
	ComboCount    int                   `json:"comboCount"`
	Multiplier    string                `json:"multiplier"`
	IsFullCombo   bool                  `json:"isFullCombo"`
	Streaks       []StreakResponse      `json:"streaks"`
	NewlyUnlocked []AchievementResponse `json:"newlyUnlocked"`
}

// ComboResponse is today's completion state
type ComboResponse struct {
	Date            string `json:"date"`
	AffirmationDone bool   `json:"affirmationDone"`
	HabitDone       bool   `json:"habitDone"`
	GoalDone        bool   `json:"goalDone"`
	ComboCount      int    `json:"comboCount"`
	Multiplier      string `json:"multiplier"`
	IsFullCombo     bool   `json:"isFullCombo"`
}

// StreaksResponse is the body of GET /streaks
type StreaksResponse struct {
	Streaks []StreakResponse `json:"streaks"`
	Today   ComboResponse    `json:"today"`
}

// FreezeResponse reports a used or bought freeze
type FreezeResponse struct {
	StreakType       string `json:"streakType"`
	CurrentStreak    int    `json:"currentStreak"`
	RemainingFreezes int    `json:"remainingFreezes"`
}

// NewCompletionResponse maps a completion result
func NewCompletionResponse(r *usecase.CompletionResult) CompletionResponse {
	streaks := make([]StreakResponse, 0, len(r.Streaks))
	for _, s := range r.Streaks {
		streaks = append(streaks, StreakResponse{
			Type:               string(s.Type),
			CurrentStreak:      s.CurrentStreak,
			LongestStreak:      s.LongestStreak,
			TotalCompletions:   s.TotalCompletions,
			FreezeCount:        s.FreezeCount,
			LastCompletionDate: formatDate(s.LastCompletionDate),
			Active:             s.CurrentStreak > 0,
		})
	}

	return CompletionResponse{
		Date:          r.Date.String(),
		Category:      string(r.Category),
		ComboCount:    r.ComboCount,
		Multiplier:    r.Multiplier.StringFixed(1),
		IsFullCombo:   r.IsFullCombo,
		Streaks:       streaks,
		NewlyUnlocked: NewAchievementList(r.NewlyUnlocked),
	}
}

// NewStreaksResponse maps streak views and today's combo
func NewStreaksResponse(views []usecase.StreakView, combo *usecase.ComboView) StreaksResponse {
	streaks := make([]StreakResponse, 0, len(views))
	for _, v := range views {
		streaks = append(streaks, StreakResponse{
			Type:               string(v.Type),
			CurrentStreak:      v.CurrentStreak,
			LongestStreak:      v.LongestStreak,
			TotalCompletions:   v.TotalCompletions,
			FreezeCount:        v.FreezeCount,
			LastCompletionDate: formatDate(v.LastCompletionDate),
			Active:             v.Active,
		})
	}

	return StreaksResponse{
		Streaks: streaks,
		Today: ComboResponse{
			Date:            combo.Date.String(),
			AffirmationDone: combo.AffirmationDone,
			HabitDone:       combo.HabitDone,
			GoalDone:        combo.GoalDone,
			ComboCount:      combo.ComboCount,
			Multiplier:      combo.Multiplier.StringFixed(1),
			IsFullCombo:     combo.IsFullCombo,
		},
	}
}

// NewFreezeResponse maps a freeze result
func NewFreezeResponse(r *usecase.FreezeResult) FreezeResponse {
	return FreezeResponse{
		StreakType:       string(r.StreakType),
		CurrentStreak:    r.CurrentStreak,
		RemainingFreezes: r.RemainingFreezes,
	}
}

func formatDate(d *entity.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}
