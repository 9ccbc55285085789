package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	errs "github.com/amirhossein-jamali/gem-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/gem-ledger/internal/domain/port/core"
)

// Category is one of the daily tracked activities
type Category string

// Completion categories
const (
	CategoryAffirmation Category = "affirmation"
	CategoryHabit       Category = "habit"
	CategoryGoal        Category = "goal"
)

// Categories lists every tracked category; completing all of them is a full combo
var Categories = []Category{CategoryAffirmation, CategoryHabit, CategoryGoal}

// ParseCategory validates a raw category string
func ParseCategory(raw string) (Category, error) {
	switch c := Category(raw); c {
	case CategoryAffirmation, CategoryHabit, CategoryGoal:
		return c, nil
	default:
		return "", fmt.Errorf("%w: %s", errs.ErrInvalidCategory, raw)
	}
}

var (
	multiplierNone  = decimal.NewFromInt(1)
	multiplierTwo   = decimal.NewFromFloat(1.5)
	multiplierThree = decimal.NewFromInt(2)
)

// ComboMultiplier maps the number of categories completed in a day to a reward multiplier
func ComboMultiplier(comboCount int) decimal.Decimal {
	switch {
	case comboCount >= len(Categories):
		return multiplierThree
	case comboCount == 2:
		return multiplierTwo
	default:
		return multiplierNone
	}
}

// DailyCompletion tracks which categories a user finished on a calendar day
type DailyCompletion struct {
	ID              uint64
	UserID          uint64
	Date            Date
	AffirmationDone bool
	HabitDone       bool
	GoalDone        bool
	ComboCount      int
	Multiplier      decimal.Decimal
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewDailyCompletion creates an empty completion row for a user and day
func NewDailyCompletion(userID uint64, date Date, timeProvider coreport.TimeProvider) *DailyCompletion {
	now := timeProvider.Now()
	return &DailyCompletion{
		UserID:     userID,
		Date:       date,
		Multiplier: multiplierNone,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// IsDone reports whether the category was completed on this day
func (c *DailyCompletion) IsDone(category Category) bool {
	switch category {
	case CategoryAffirmation:
		return c.AffirmationDone
	case CategoryHabit:
		return c.HabitDone
	case CategoryGoal:
		return c.GoalDone
	default:
		return false
	}
}

// Mark sets the category flag. Flags never revert, so marking twice is a no-op
// and changed reports whether this call flipped the flag.
func (c *DailyCompletion) Mark(category Category, timeProvider coreport.TimeProvider) (changed bool, err error) {
	if _, err := ParseCategory(string(category)); err != nil {
		return false, err
	}
	if c.IsDone(category) {
		return false, nil
	}

	switch category {
	case CategoryAffirmation:
		c.AffirmationDone = true
	case CategoryHabit:
		c.HabitDone = true
	case CategoryGoal:
		c.GoalDone = true
	}

	c.Recompute()
	c.UpdatedAt = timeProvider.Now()
	return true, nil
}

// Recompute derives the combo count and multiplier from the flags
func (c *DailyCompletion) Recompute() {
	count := 0
	for _, category := range Categories {
		if c.IsDone(category) {
			count++
		}
	}
	c.ComboCount = count
	c.Multiplier = ComboMultiplier(count)
}

// IsFullCombo reports whether every category was completed on this day
func (c *DailyCompletion) IsFullCombo() bool {
	return c.ComboCount == len(Categories)
}
