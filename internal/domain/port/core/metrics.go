package core

// Metrics records ledger and workflow counters
type Metrics interface {
	// MutationApplied counts a committed balance mutation by ledger kind and execution path
	MutationApplied(kind, path string)
	// FallbackUsed counts a mutation that ran without the atomic primitive
	FallbackUsed()
	// CASConflict counts a lost compare-and-swap on an account row
	CASConflict()
	// PartialTransferFailure counts a transfer whose outcome could not be settled
	PartialTransferFailure()
	// AchievementUnlocked counts a newly inserted achievement
	AchievementUnlocked(achievementID string)
	// WithdrawalTransition counts a withdrawal moving into a status
	WithdrawalTransition(status string)
}
