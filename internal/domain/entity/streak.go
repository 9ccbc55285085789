package entity

import (
	"fmt"
	"time"

	errs "github.com/amirhossein-jamali/gem-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/gem-ledger/internal/domain/port/core"
)

// StreakType is a completion category or the combo of all of them
type StreakType string

// Streak types
const (
	StreakAffirmation StreakType = "affirmation"
	StreakHabit       StreakType = "habit"
	StreakGoal        StreakType = "goal"
	StreakCombo       StreakType = "combo"
)

// StreakTypes lists every streak type in display order
var StreakTypes = []StreakType{StreakAffirmation, StreakHabit, StreakGoal, StreakCombo}

// ParseStreakType validates a raw streak type string
func ParseStreakType(raw string) (StreakType, error) {
	switch t := StreakType(raw); t {
	case StreakAffirmation, StreakHabit, StreakGoal, StreakCombo:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %s", errs.ErrInvalidStreakType, raw)
	}
}

// StreakTypeFor returns the streak type tracking a completion category
func StreakTypeFor(category Category) StreakType {
	return StreakType(category)
}

// StreakPolicy holds the tunables of streak arithmetic
type StreakPolicy struct {
	// FreezeWindowDays is the number of missed days a single freeze bridges
	FreezeWindowDays int
	// FreezeEarnInterval grants a freeze every N consecutive days; 0 disables earning
	FreezeEarnInterval int
	// MaxFreezes caps the number of freezes held at once
	MaxFreezes int
}

// DefaultStreakPolicy bridges one missed day, earns a freeze weekly and holds at most two
func DefaultStreakPolicy() StreakPolicy {
	return StreakPolicy{FreezeWindowDays: 1, FreezeEarnInterval: 7, MaxFreezes: 2}
}

// StreakOutcome describes what a completion did to a streak
type StreakOutcome string

// Streak outcomes
const (
	OutcomeStarted   StreakOutcome = "started"
	OutcomeUnchanged StreakOutcome = "unchanged"
	OutcomeExtended  StreakOutcome = "extended"
	OutcomeBridged   StreakOutcome = "bridged"
	OutcomeReset     StreakOutcome = "reset"
)

// StreakUpdate is the result of applying a completion to a streak
type StreakUpdate struct {
	Outcome      StreakOutcome
	FreezeEarned bool
}

// Streak tracks consecutive completion days for one user and type
type Streak struct {
	ID                 uint64
	UserID             uint64
	Type               StreakType
	CurrentStreak      int
	LongestStreak      int
	TotalCompletions   int
	LastCompletionDate *Date
	FreezeCount        int
	LastFreezeDate     *Date
	UpdatedAt          time.Time
}

// NewStreak creates an empty streak
func NewStreak(userID uint64, streakType StreakType, timeProvider coreport.TimeProvider) *Streak {
	return &Streak{
		UserID:    userID,
		Type:      streakType,
		UpdatedAt: timeProvider.Now(),
	}
}

// RecordCompletion applies a completion on the given day
func (s *Streak) RecordCompletion(today Date, policy StreakPolicy, timeProvider coreport.TimeProvider) StreakUpdate {
	var update StreakUpdate

	switch {
	case s.LastCompletionDate == nil:
		s.CurrentStreak = 1
		update.Outcome = OutcomeStarted
	default:
		gap := today.DaysSince(*s.LastCompletionDate)
		switch {
		case gap <= 0:
			return StreakUpdate{Outcome: OutcomeUnchanged}
		case gap == 1:
			s.CurrentStreak++
			update.Outcome = OutcomeExtended
		case gap == policy.FreezeWindowDays+1 && s.FreezeCount > 0:
			s.FreezeCount--
			s.LastFreezeDate = &today
			s.CurrentStreak++
			update.Outcome = OutcomeBridged
		default:
			s.CurrentStreak = 1
			update.Outcome = OutcomeReset
		}
	}

	s.LastCompletionDate = &today
	s.TotalCompletions++
	if s.CurrentStreak > s.LongestStreak {
		s.LongestStreak = s.CurrentStreak
	}
	if policy.FreezeEarnInterval > 0 && s.CurrentStreak%policy.FreezeEarnInterval == 0 {
		update.FreezeEarned = s.GrantFreeze(policy.MaxFreezes)
	}
	s.UpdatedAt = timeProvider.Now()
	return update
}

// UseFreeze spends a freeze to mark today as covered without a completion. The
// streak must still be alive: last counted between yesterday and the edge of the
// freeze window.
func (s *Streak) UseFreeze(today Date, policy StreakPolicy, timeProvider coreport.TimeProvider) error {
	if s.FreezeCount <= 0 {
		return errs.ErrNoFreezeAvailable
	}
	if s.LastCompletionDate == nil || s.CurrentStreak == 0 {
		return fmt.Errorf("%w: no streak to preserve", errs.ErrFreezeNotApplicable)
	}

	gap := today.DaysSince(*s.LastCompletionDate)
	if gap <= 0 {
		return fmt.Errorf("%w: already counted today", errs.ErrFreezeNotApplicable)
	}
	if gap > policy.FreezeWindowDays+1 {
		return fmt.Errorf("%w: streak already broken %d days ago", errs.ErrFreezeNotApplicable, gap-1)
	}

	s.FreezeCount--
	s.LastFreezeDate = &today
	s.LastCompletionDate = &today
	s.UpdatedAt = timeProvider.Now()
	return nil
}

// GrantFreeze adds a freeze unless the cap is reached
func (s *Streak) GrantFreeze(maxFreezes int) bool {
	if maxFreezes > 0 && s.FreezeCount >= maxFreezes {
		return false
	}
	s.FreezeCount++
	return true
}

// IsActive reports whether the streak can still be continued on the given day
func (s *Streak) IsActive(today Date, policy StreakPolicy) bool {
	if s.LastCompletionDate == nil || s.CurrentStreak == 0 {
		return false
	}
	gap := today.DaysSince(*s.LastCompletionDate)
	if gap <= 1 {
		return true
	}
	return gap == policy.FreezeWindowDays+1 && s.FreezeCount > 0
}
