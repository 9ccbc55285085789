package fakes

import (
	"sync"
)

// Metrics counts core.Metrics calls
type Metrics struct {
	mu                 sync.Mutex
	Mutations          map[string]int // "kind/path" -> count
	Fallbacks          int
	CASConflicts       int
	PartialFailures    int
	Achievements       map[string]int
	WithdrawalStatuses map[string]int
}

// NewMetrics returns an empty recorder
func NewMetrics() *Metrics {
	return &Metrics{
		Mutations:          map[string]int{},
		Achievements:       map[string]int{},
		WithdrawalStatuses: map[string]int{},
	}
}

func (m *Metrics) MutationApplied(kind, path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Mutations[kind+"/"+path]++
}

func (m *Metrics) FallbackUsed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Fallbacks++
}

func (m *Metrics) CASConflict() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CASConflicts++
}

func (m *Metrics) PartialTransferFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PartialFailures++
}

func (m *Metrics) AchievementUnlocked(achievementID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Achievements[achievementID]++
}

func (m *Metrics) WithdrawalTransition(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WithdrawalStatuses[status]++
}

// Count returns the number of mutations recorded for a kind and path
func (m *Metrics) Count(kind, path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Mutations[kind+"/"+path]
}
