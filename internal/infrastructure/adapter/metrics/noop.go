package metrics

import coreport "github.com/amirhossein-jamali/gem-ledger/internal/domain/port/core"

// NoopMetrics discards every measurement
type NoopMetrics struct{}

var _ coreport.Metrics = NoopMetrics{}

func (NoopMetrics) MutationApplied(string, string) {}
func (NoopMetrics) FallbackUsed()                  {}
func (NoopMetrics) CASConflict()                   {}
func (NoopMetrics) PartialTransferFailure()        {}
func (NoopMetrics) AchievementUnlocked(string)     {}
func (NoopMetrics) WithdrawalTransition(string)    {}
