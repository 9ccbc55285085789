package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	errs "github.com/amirhossein-jamali/gem-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/gem-ledger/internal/domain/port/core"
)

// WithdrawalStatus is a state of the payout workflow
type WithdrawalStatus string

// Withdrawal statuses
const (
	WithdrawalPending    WithdrawalStatus = "pending"
	WithdrawalApproved   WithdrawalStatus = "approved"
	WithdrawalProcessing WithdrawalStatus = "processing"
	WithdrawalCompleted  WithdrawalStatus = "completed"
	WithdrawalRejected   WithdrawalStatus = "rejected"
)

var withdrawalTransitions = map[WithdrawalStatus][]WithdrawalStatus{
	WithdrawalPending:    {WithdrawalApproved, WithdrawalRejected},
	WithdrawalApproved:   {WithdrawalProcessing, WithdrawalCompleted, WithdrawalRejected},
	WithdrawalProcessing: {WithdrawalCompleted, WithdrawalRejected},
}

// IsTerminal reports whether no further transition is possible
func (s WithdrawalStatus) IsTerminal() bool {
	return s == WithdrawalCompleted || s == WithdrawalRejected
}

// CanTransitionTo reports whether the workflow allows moving to next
func (s WithdrawalStatus) CanTransitionTo(next WithdrawalStatus) bool {
	for _, allowed := range withdrawalTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// HoldsFunds reports whether a request in this status still reserves gems
func (s WithdrawalStatus) HoldsFunds() bool {
	return !s.IsTerminal()
}

// BankInfo is the payout destination
type BankInfo struct {
	BankName      string
	AccountNumber string
	AccountHolder string
}

// Validate checks that every destination field is present
func (b BankInfo) Validate() error {
	if strings.TrimSpace(b.BankName) == "" ||
		strings.TrimSpace(b.AccountNumber) == "" ||
		strings.TrimSpace(b.AccountHolder) == "" {
		return errs.ErrInvalidBankInfo
	}
	return nil
}

// WithdrawalPolicy holds conversion and eligibility settings
type WithdrawalPolicy struct {
	GemToVNDRate    decimal.Decimal
	PlatformFeeRate decimal.Decimal
	MinBalance      int64
	MinAmount       int64
}

// DefaultWithdrawalPolicy converts 1 gem to 200 VND and keeps a 30% platform fee
func DefaultWithdrawalPolicy() WithdrawalPolicy {
	return WithdrawalPolicy{
		GemToVNDRate:    decimal.NewFromInt(200),
		PlatformFeeRate: decimal.NewFromFloat(0.30),
		MinBalance:      1000,
		MinAmount:       1000,
	}
}

// WithdrawalQuote is the money split of a withdrawal
type WithdrawalQuote struct {
	VNDAmount     int64
	PlatformFee   int64
	AuthorReceive int64
}

// Quote converts a gem amount into VND and splits off the platform fee, rounding the fee down
func (p WithdrawalPolicy) Quote(amount int64) WithdrawalQuote {
	vnd := decimal.NewFromInt(amount).Mul(p.GemToVNDRate).Floor()
	fee := vnd.Mul(p.PlatformFeeRate).Floor()
	return WithdrawalQuote{
		VNDAmount:     vnd.IntPart(),
		PlatformFee:   fee.IntPart(),
		AuthorReceive: vnd.Sub(fee).IntPart(),
	}
}

// CheckEligibility validates the minimums for a request against an account
func (p WithdrawalPolicy) CheckEligibility(account *Account, amount int64) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	if account.Available() < p.MinBalance {
		return fmt.Errorf("%w: available %d, minimum %d", errs.ErrBelowMinimumBalance, account.Available(), p.MinBalance)
	}
	if amount < p.MinAmount {
		return fmt.Errorf("%w: requested %d, minimum %d", errs.ErrBelowMinimumAmount, amount, p.MinAmount)
	}
	if !account.CanSpend(amount) {
		return errs.NewInsufficientFundsError(account.ID, amount, account.Available())
	}
	return nil
}

// WithdrawalRequest is one payout ask moving through the approval workflow
type WithdrawalRequest struct {
	ID                        string
	PartnerID                 uint64
	Amount                    int64
	AvailableBalanceAtRequest int64
	VNDAmount                 int64
	PlatformFee               int64
	AuthorReceive             int64
	Bank                      BankInfo
	Status                    WithdrawalStatus
	ProcessedBy               *uint64 // admin who made the latest transition
	RejectionReason           string
	TransactionReference      string
	CreatedAt                 time.Time
	ApprovedAt                *time.Time
	ProcessingAt              *time.Time
	RejectedAt                *time.Time
	CompletedAt               *time.Time
	UpdatedAt                 time.Time
}

// NewWithdrawalRequest validates eligibility and prices a pending request
func NewWithdrawalRequest(
	account *Account,
	amount int64,
	bank BankInfo,
	policy WithdrawalPolicy,
	timeProvider coreport.TimeProvider,
) (*WithdrawalRequest, error) {
	if err := bank.Validate(); err != nil {
		return nil, err
	}
	if err := policy.CheckEligibility(account, amount); err != nil {
		return nil, err
	}

	quote := policy.Quote(amount)
	now := timeProvider.Now()
	return &WithdrawalRequest{
		ID:                        uuid.NewString(),
		PartnerID:                 account.ID,
		Amount:                    amount,
		AvailableBalanceAtRequest: account.Available(),
		VNDAmount:                 quote.VNDAmount,
		PlatformFee:               quote.PlatformFee,
		AuthorReceive:             quote.AuthorReceive,
		Bank:                      bank,
		Status:                    WithdrawalPending,
		CreatedAt:                 now,
		UpdatedAt:                 now,
	}, nil
}

// Approve moves a pending request to approved
func (w *WithdrawalRequest) Approve(adminID uint64, timeProvider coreport.TimeProvider) error {
	at, err := w.transition(WithdrawalApproved, adminID, timeProvider)
	if err != nil {
		return err
	}
	w.ApprovedAt = &at
	return nil
}

// StartProcessing marks an approved request as handed to the bank
func (w *WithdrawalRequest) StartProcessing(adminID uint64, timeProvider coreport.TimeProvider) error {
	at, err := w.transition(WithdrawalProcessing, adminID, timeProvider)
	if err != nil {
		return err
	}
	w.ProcessingAt = &at
	return nil
}

// Reject ends the request without paying out
func (w *WithdrawalRequest) Reject(adminID uint64, reason string, timeProvider coreport.TimeProvider) error {
	at, err := w.transition(WithdrawalRejected, adminID, timeProvider)
	if err != nil {
		return err
	}
	w.RejectionReason = reason
	w.RejectedAt = &at
	return nil
}

// Complete records the bank transfer reference and ends the request
func (w *WithdrawalRequest) Complete(adminID uint64, transactionReference string, timeProvider coreport.TimeProvider) error {
	at, err := w.transition(WithdrawalCompleted, adminID, timeProvider)
	if err != nil {
		return err
	}
	w.TransactionReference = transactionReference
	w.CompletedAt = &at
	return nil
}

func (w *WithdrawalRequest) transition(next WithdrawalStatus, adminID uint64, timeProvider coreport.TimeProvider) (time.Time, error) {
	if adminID == 0 {
		return time.Time{}, errs.ErrInvalidUserID
	}
	if !w.Status.CanTransitionTo(next) {
		return time.Time{}, errs.NewWithdrawalTransitionError(w.ID, string(w.Status), string(next))
	}

	now := timeProvider.Now()
	w.Status = next
	w.ProcessedBy = &adminID
	w.UpdatedAt = now
	return now, nil
}
