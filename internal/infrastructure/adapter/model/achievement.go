package model

import (
	"time"
)

// UnlockedAchievement records an achievement a user earned
type UnlockedAchievement struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement"`
	UserID        uint64    `gorm:"not null;uniqueIndex:uq_unlocked_achievements_user_achievement,priority:1"`
	AchievementID string    `gorm:"type:varchar(64);not null;uniqueIndex:uq_unlocked_achievements_user_achievement,priority:2"`
	PointsAwarded int64     `gorm:"not null;default:0"`
	UnlockedAt    time.Time `gorm:"not null"`
}

// TableName specifies the table name for UnlockedAchievement
func (UnlockedAchievement) TableName() string {
	return "unlocked_achievements"
}
