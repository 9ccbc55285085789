package entity

import (
	"time"

	errs "github.com/amirhossein-jamali/gem-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/gem-ledger/internal/domain/port/core"
)

// Account is a user's gem wallet
type Account struct {
	ID             uint64    // Owning user id
	Balance        int64     // Current gems, never negative
	HeldBalance    int64     // Gems reserved by pending withdrawals, never above Balance
	LifetimeEarned int64     // Sum of all credits ever applied
	LifetimeSpent  int64     // Sum of all debits ever applied
	Version        int64     // Incremented on every write, used for compare-and-swap
	CreatedAt      time.Time // When the account was opened
	UpdatedAt      time.Time // When the account was last mutated
}

// NewAccount opens an empty account for the given user
func NewAccount(id uint64, timeProvider coreport.TimeProvider) (*Account, error) {
	if id == 0 {
		return nil, errs.ErrInvalidUserID
	}

	now := timeProvider.Now()
	return &Account{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Available returns the gems that may still be spent or withdrawn
func (a *Account) Available() int64 {
	return a.Balance - a.HeldBalance
}

// CanSpend reports whether the available balance covers the amount
func (a *Account) CanSpend(amount int64) bool {
	return a.Available() >= amount
}

// IsConsistent reports whether the cached balance matches the lifetime counters
func (a *Account) IsConsistent() bool {
	return a.Balance == a.LifetimeEarned-a.LifetimeSpent
}

// ApplyCredit adds gems to the balance and lifetime earned counter
func (a *Account) ApplyCredit(amount int64, timeProvider coreport.TimeProvider) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}

	balance, err := AddGems(a.Balance, amount)
	if err != nil {
		return err
	}
	earned, err := AddGems(a.LifetimeEarned, amount)
	if err != nil {
		return err
	}

	a.Balance = balance
	a.LifetimeEarned = earned
	a.touch(timeProvider)
	return nil
}

// ApplyDebit removes gems from the balance if the available balance covers them
func (a *Account) ApplyDebit(amount int64, timeProvider coreport.TimeProvider) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	if !a.CanSpend(amount) {
		return errs.NewInsufficientFundsError(a.ID, amount, a.Available())
	}

	spent, err := AddGems(a.LifetimeSpent, amount)
	if err != nil {
		return err
	}

	a.Balance -= amount
	a.LifetimeSpent = spent
	a.touch(timeProvider)
	return nil
}

// ApplyMutation dispatches a ledger kind to the matching balance change
func (a *Account) ApplyMutation(kind EntryKind, amount int64, timeProvider coreport.TimeProvider) error {
	if kind.IsDebit() {
		return a.ApplyDebit(amount, timeProvider)
	}
	return a.ApplyCredit(amount, timeProvider)
}

// PlaceHold reserves gems so they can no longer be spent
func (a *Account) PlaceHold(amount int64, timeProvider coreport.TimeProvider) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	if !a.CanSpend(amount) {
		return errs.NewInsufficientFundsError(a.ID, amount, a.Available())
	}

	a.HeldBalance += amount
	a.touch(timeProvider)
	return nil
}

// ReleaseHold returns previously reserved gems to the available balance
func (a *Account) ReleaseHold(amount int64, timeProvider coreport.TimeProvider) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	if amount > a.HeldBalance {
		return errs.ErrConstraintViolation
	}

	a.HeldBalance -= amount
	a.touch(timeProvider)
	return nil
}

func (a *Account) touch(timeProvider coreport.TimeProvider) {
	a.Version++
	a.UpdatedAt = timeProvider.Now()
}
