package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyCompletion records the categories a user finished on one calendar day
type DailyCompletion struct {
	ID              uint64          `gorm:"primaryKey;autoIncrement"`
	UserID          uint64          `gorm:"not null;uniqueIndex:uq_daily_completions_user_date,priority:1"`
	CompletionDate  time.Time       `gorm:"type:date;not null;uniqueIndex:uq_daily_completions_user_date,priority:2"`
	AffirmationDone bool            `gorm:"not null;default:false"`
	HabitDone       bool            `gorm:"not null;default:false"`
	GoalDone        bool            `gorm:"not null;default:false"`
	ComboCount      int             `gorm:"not null;default:0"`
	Multiplier      decimal.Decimal `gorm:"type:numeric(4,2);not null"`
	CreatedAt       time.Time       `gorm:"not null"`
	UpdatedAt       time.Time       `gorm:"not null"`
}

// TableName specifies the table name for DailyCompletion
func (DailyCompletion) TableName() string {
	return "daily_completions"
}

// Streak represents consecutive completion days of one type
type Streak struct {
	ID                 uint64     `gorm:"primaryKey;autoIncrement"`
	UserID             uint64     `gorm:"not null;uniqueIndex:uq_streaks_user_type,priority:1"`
	StreakType         string     `gorm:"type:varchar(16);not null;uniqueIndex:uq_streaks_user_type,priority:2"`
	CurrentStreak      int        `gorm:"not null;default:0"`
	LongestStreak      int        `gorm:"not null;default:0"`
	TotalCompletions   int        `gorm:"not null;default:0"`
	LastCompletionDate *time.Time `gorm:"type:date"`
	FreezeCount        int        `gorm:"not null;default:0;check:chk_streaks_freeze_non_negative,freeze_count >= 0"`
	LastFreezeDate     *time.Time `gorm:"type:date"`
	UpdatedAt          time.Time  `gorm:"not null"`
}

// TableName specifies the table name for Streak
func (Streak) TableName() string {
	return "streaks"
}
