package entity

import "time"

// AchievementType groups achievements by the state they are evaluated against
type AchievementType string

// Achievement types
const (
	AchievementStreak AchievementType = "streak"
	AchievementCombo  AchievementType = "combo"
)

// AchievementRule selects how an achievement is evaluated
type AchievementRule string

// Achievement rules
const (
	// RuleFirstCombo unlocks on the first full-combo day
	RuleFirstCombo AchievementRule = "first_combo"
	// RuleStreakMilestone unlocks when the best category streak reaches the threshold
	RuleStreakMilestone AchievementRule = "streak_milestone"
	// RuleComboMilestone unlocks when the combo streak reaches the threshold
	RuleComboMilestone AchievementRule = "combo_milestone"
)

// Achievement is a static catalog entry
type Achievement struct {
	ID          string
	Name        string
	Description string
	Type        AchievementType
	Rule        AchievementRule
	Threshold   int
	Points      int64
}

// AchievementCatalog lists every achievement in evaluation order
var AchievementCatalog = []Achievement{
	{ID: "first_combo", Name: "First Combo", Description: "Complete every category in one day", Type: AchievementCombo, Rule: RuleFirstCombo, Threshold: 1, Points: 10},
	{ID: "streak_3", Name: "Warming Up", Description: "Keep a 3 day streak", Type: AchievementStreak, Rule: RuleStreakMilestone, Threshold: 3, Points: 10},
	{ID: "streak_7", Name: "One Week", Description: "Keep a 7 day streak", Type: AchievementStreak, Rule: RuleStreakMilestone, Threshold: 7, Points: 25},
	{ID: "streak_14", Name: "Two Weeks", Description: "Keep a 14 day streak", Type: AchievementStreak, Rule: RuleStreakMilestone, Threshold: 14, Points: 50},
	{ID: "streak_30", Name: "One Month", Description: "Keep a 30 day streak", Type: AchievementStreak, Rule: RuleStreakMilestone, Threshold: 30, Points: 100},
	{ID: "streak_100", Name: "Centurion", Description: "Keep a 100 day streak", Type: AchievementStreak, Rule: RuleStreakMilestone, Threshold: 100, Points: 500},
	{ID: "combo_streak_3", Name: "Combo Trio", Description: "Full combo 3 days in a row", Type: AchievementCombo, Rule: RuleComboMilestone, Threshold: 3, Points: 30},
	{ID: "combo_streak_7", Name: "Combo Week", Description: "Full combo 7 days in a row", Type: AchievementCombo, Rule: RuleComboMilestone, Threshold: 7, Points: 75},
}

// FindAchievement looks up a catalog entry by id
func FindAchievement(id string) (Achievement, bool) {
	for _, a := range AchievementCatalog {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}

// StreakSnapshot is the state achievements are evaluated against
type StreakSnapshot struct {
	IsFullCombo bool
	BestStreak  int // best current streak among the category types
	ComboStreak int
	ComboCount  int
}

// IsEarned reports whether the snapshot satisfies the achievement's rule
func (a Achievement) IsEarned(s StreakSnapshot) bool {
	switch a.Rule {
	case RuleFirstCombo:
		return s.IsFullCombo
	case RuleStreakMilestone:
		return s.BestStreak >= a.Threshold
	case RuleComboMilestone:
		return s.ComboStreak >= a.Threshold
	default:
		return false
	}
}

// UnlockedAchievement records that a user earned an achievement
type UnlockedAchievement struct {
	ID            uint64
	UserID        uint64
	AchievementID string
	PointsAwarded int64
	UnlockedAt    time.Time
}
