package entity

import (
	"fmt"
	"math"

	errs "github.com/amirhossein-jamali/gem-ledger/internal/domain/error"
)

// Gem amounts are whole, non-negative integers. Ledger rows carry a signed
// amount, every other amount in the system is a magnitude.

// ValidateAmount checks that a mutation amount is a strictly positive number of gems
func ValidateAmount(amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: got %d", errs.ErrInvalidAmount, amount)
	}
	return nil
}

// AddGems adds two non-negative gem counts, failing instead of wrapping around
func AddGems(a, b int64) (int64, error) {
	if b > 0 && a > math.MaxInt64-b {
		return 0, errs.ErrAmountOverflow
	}
	return a + b, nil
}

// SignedAmount returns the ledger representation of a magnitude for the given kind:
// negative for spend, positive for every credit kind
func SignedAmount(kind EntryKind, amount int64) int64 {
	if kind.IsDebit() {
		return -amount
	}
	return amount
}
