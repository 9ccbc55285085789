package error

import (
	"errors"
	"fmt"
)

// Error codes for standardized API responses
const (
	// 4xxx - Client errors
	CodeInsufficientFunds       = 4001
	CodeInvalidAmount           = 4002
	CodeInvalidUserID           = 4003
	CodeDuplicateMutation       = 4004
	CodeConstraintViolation     = 4005
	CodeAmountOverflow          = 4006
	CodeSelfGift                = 4007
	CodeInvalidCategory         = 4008
	CodeInvalidEntryKind        = 4009
	CodeUnauthorized            = 4010
	CodeBelowMinimumBalance     = 4011
	CodeBelowMinimumAmount      = 4012
	CodeInvalidBankInfo         = 4013
	CodeNoFreezeAvailable       = 4014
	CodeForbidden               = 4030
	CodeAccountNotFound         = 4040
	CodeUnknownGift             = 4041
	CodeWithdrawalNotFound      = 4042
	CodeStreakNotFound          = 4043
	CodeDuplicateAccount        = 4090
	CodePendingWithdrawalExists = 4091
	CodeInvalidTransition       = 4092
	CodeConcurrentModification  = 4093

	// 5xxx - Server errors
	CodeInternalServer         = 5000
	CodePartialTransferFailure = 5001
	CodeSchemaNotProvisioned   = 5030
)

// Base error types
var (
	// ErrInsufficientFunds is returned when an account's available balance cannot cover a debit
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidAmount is returned when an amount is not a positive integer
	ErrInvalidAmount = errors.New("amount must be a positive integer")

	// ErrInvalidUserID is returned when the user ID is not a positive integer
	ErrInvalidUserID = errors.New("user ID must be positive")

	// ErrAmountOverflow is returned when a mutation would overflow a counter
	ErrAmountOverflow = errors.New("amount is too large and would cause overflow")

	// ErrInvalidEntryKind is returned for ledger kinds outside spend|receive|purchase|bonus|refund
	ErrInvalidEntryKind = errors.New("invalid ledger entry kind")

	// ErrInvalidReference is returned when a mutation has no reference id or type
	ErrInvalidReference = errors.New("reference id and type are required")

	// ErrDuplicateMutation is returned when a mutation with the same reference was already applied
	ErrDuplicateMutation = errors.New("mutation with this reference already applied")

	// ErrAccountNotFound is returned when the requested gem account doesn't exist
	ErrAccountNotFound = errors.New("account not found")

	// ErrDuplicateAccount is returned when trying to open an account that already exists
	ErrDuplicateAccount = errors.New("account already exists")

	// ErrLedgerEntryNotFound is returned when no ledger entry matches a lookup
	ErrLedgerEntryNotFound = errors.New("ledger entry not found")

	// ErrConcurrentModification is returned when a version check fails on a write
	ErrConcurrentModification = errors.New("concurrent modification detected")

	// ErrTransactionAborted is returned when the database aborts a transaction to
	// resolve a conflict; the whole transaction may be run again
	ErrTransactionAborted = errors.New("transaction aborted by the database")

	// ErrPartialTransferFailure is returned when a transfer debited the sender but could not be undone
	ErrPartialTransferFailure = errors.New("partial transfer failure")

	// ErrRollbackFailed is returned when a unit of work could not be rolled back
	ErrRollbackFailed = errors.New("rollback failed")

	// ErrCommitFailed is returned when a commit failed and the transaction may
	// or may not have been applied
	ErrCommitFailed = errors.New("commit outcome unknown")

	// ErrSchemaNotProvisioned is returned when an optional schema component is missing
	ErrSchemaNotProvisioned = errors.New("schema not provisioned")

	// ErrSelfGift is returned when a sender tries to gift themselves
	ErrSelfGift = errors.New("cannot send a gift to yourself")

	// ErrUnknownGift is returned when the catalog has no active item with the given id
	ErrUnknownGift = errors.New("unknown gift")

	// ErrGiftNotFound is returned when a gift record doesn't exist
	ErrGiftNotFound = errors.New("gift not found")

	// ErrInvalidCategory is returned for completion categories outside affirmation|habit|goal
	ErrInvalidCategory = errors.New("invalid completion category")

	// ErrInvalidStreakType is returned for streak types outside affirmation|habit|goal|combo
	ErrInvalidStreakType = errors.New("invalid streak type")

	// ErrCompletionNotFound is returned when no daily completion exists for a user and date
	ErrCompletionNotFound = errors.New("daily completion not found")

	// ErrStreakNotFound is returned when a user has no streak of the requested type
	ErrStreakNotFound = errors.New("streak not found")

	// ErrNoFreezeAvailable is returned when a streak has no freeze to consume
	ErrNoFreezeAvailable = errors.New("no streak freeze available")

	// ErrFreezeNotApplicable is returned when today is already counted or the streak is past saving
	ErrFreezeNotApplicable = errors.New("streak freeze cannot be applied today")

	// ErrMaxFreezesReached is returned when a streak already holds the maximum number of freezes
	ErrMaxFreezesReached = errors.New("maximum number of streak freezes reached")

	// ErrUnknownAchievement is returned for achievement ids outside the catalog
	ErrUnknownAchievement = errors.New("unknown achievement")

	// ErrPendingWithdrawalExists is returned when a partner already has a pending withdrawal
	ErrPendingWithdrawalExists = errors.New("a pending withdrawal already exists")

	// ErrBelowMinimumBalance is returned when the available balance is under the withdrawal minimum
	ErrBelowMinimumBalance = errors.New("available balance is below the withdrawal minimum")

	// ErrBelowMinimumAmount is returned when the requested withdrawal is under the minimum amount
	ErrBelowMinimumAmount = errors.New("withdrawal amount is below the minimum")

	// ErrInvalidBankInfo is returned when withdrawal bank details are incomplete
	ErrInvalidBankInfo = errors.New("bank name, account number and account holder are required")

	// ErrWithdrawalNotFound is returned when the requested withdrawal doesn't exist
	ErrWithdrawalNotFound = errors.New("withdrawal not found")

	// ErrInvalidTransition is returned when a withdrawal cannot move to the requested status
	ErrInvalidTransition = errors.New("invalid withdrawal status transition")

	// ErrInvalidRequest is returned when the request format is invalid
	ErrInvalidRequest = errors.New("invalid request")

	// ErrUnauthorized is returned when a request carries no valid credentials
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when the caller lacks the required role
	ErrForbidden = errors.New("forbidden")

	// ErrInternalServer is returned for unexpected server-side errors
	ErrInternalServer = errors.New("internal server error")

	// ErrDatabaseConnection is returned when there's a problem connecting to the database
	ErrDatabaseConnection = errors.New("database connection error")

	// ErrConstraintViolation is returned when a database constraint is violated
	ErrConstraintViolation = errors.New("database constraint violation")

	// ErrNotFound is returned when a generic resource is not found
	ErrNotFound = errors.New("resource not found")
)

// ErrorCode returns standardized error codes for known errors
func ErrorCode(err error) int {
	switch {
	case errors.Is(err, ErrPartialTransferFailure):
		return CodePartialTransferFailure
	case errors.Is(err, ErrInsufficientFunds):
		return CodeInsufficientFunds
	case errors.Is(err, ErrInvalidAmount):
		return CodeInvalidAmount
	case errors.Is(err, ErrInvalidUserID):
		return CodeInvalidUserID
	case errors.Is(err, ErrDuplicateMutation):
		return CodeDuplicateMutation
	case errors.Is(err, ErrAmountOverflow):
		return CodeAmountOverflow
	case errors.Is(err, ErrSelfGift):
		return CodeSelfGift
	case errors.Is(err, ErrInvalidCategory), errors.Is(err, ErrInvalidStreakType):
		return CodeInvalidCategory
	case errors.Is(err, ErrInvalidEntryKind), errors.Is(err, ErrInvalidReference):
		return CodeInvalidEntryKind
	case errors.Is(err, ErrNoFreezeAvailable), errors.Is(err, ErrMaxFreezesReached),
		errors.Is(err, ErrFreezeNotApplicable):
		return CodeNoFreezeAvailable
	case errors.Is(err, ErrBelowMinimumBalance):
		return CodeBelowMinimumBalance
	case errors.Is(err, ErrBelowMinimumAmount):
		return CodeBelowMinimumAmount
	case errors.Is(err, ErrInvalidBankInfo):
		return CodeInvalidBankInfo
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	case errors.Is(err, ErrForbidden):
		return CodeForbidden
	case errors.Is(err, ErrAccountNotFound):
		return CodeAccountNotFound
	case errors.Is(err, ErrUnknownGift):
		return CodeUnknownGift
	case errors.Is(err, ErrWithdrawalNotFound):
		return CodeWithdrawalNotFound
	case errors.Is(err, ErrStreakNotFound):
		return CodeStreakNotFound
	case errors.Is(err, ErrDuplicateAccount):
		return CodeDuplicateAccount
	case errors.Is(err, ErrPendingWithdrawalExists):
		return CodePendingWithdrawalExists
	case errors.Is(err, ErrInvalidTransition):
		return CodeInvalidTransition
	case errors.Is(err, ErrConcurrentModification), errors.Is(err, ErrTransactionAborted):
		return CodeConcurrentModification
	case errors.Is(err, ErrSchemaNotProvisioned):
		return CodeSchemaNotProvisioned
	case errors.Is(err, ErrConstraintViolation):
		return CodeConstraintViolation
	default:
		return CodeInternalServer
	}
}

// InsufficientFundsError provides detailed error information for a rejected debit
type InsufficientFundsError struct {
	AccountID uint64
	Amount    int64
	Available int64
}

// Error implements the error interface
func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds for account %d: required %d, available %d",
		e.AccountID, e.Amount, e.Available)
}

// Is checks if the target error is an ErrInsufficientFunds
func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// LogFields returns a map of fields for structured logging
func (e *InsufficientFundsError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "insufficient_funds",
		"account_id": e.AccountID,
		"amount":     e.Amount,
		"available":  e.Available,
		"error_code": CodeInsufficientFunds,
	}
}

// NewInsufficientFundsError creates a new detailed insufficient funds error
func NewInsufficientFundsError(accountID uint64, amount, available int64) error {
	return &InsufficientFundsError{
		AccountID: accountID,
		Amount:    amount,
		Available: available,
	}
}

// MutationError represents a failed ledger mutation
type MutationError struct {
	AccountID     uint64
	Kind          string
	Amount        int64
	ReferenceID   string
	ReferenceType string
	Err           error
}

// Error implements the error interface for MutationError
func (e *MutationError) Error() string {
	return fmt.Sprintf("%s of %d on account %d (ref %s/%s) failed: %v",
		e.Kind, e.Amount, e.AccountID, e.ReferenceType, e.ReferenceID, e.Err)
}

// Unwrap returns the underlying error
func (e *MutationError) Unwrap() error {
	return e.Err
}

// LogFields returns a map of fields for structured logging
func (e *MutationError) LogFields() map[string]any {
	return map[string]any{
		"error_type":     "mutation_error",
		"account_id":     e.AccountID,
		"kind":           e.Kind,
		"amount":         e.Amount,
		"reference_id":   e.ReferenceID,
		"reference_type": e.ReferenceType,
		"error":          e.Err.Error(),
		"error_code":     ErrorCode(e.Err),
	}
}

// NewMutationError creates a detailed mutation error
func NewMutationError(accountID uint64, kind string, amount int64, referenceID, referenceType string, err error) error {
	return &MutationError{
		AccountID:     accountID,
		Kind:          kind,
		Amount:        amount,
		ReferenceID:   referenceID,
		ReferenceType: referenceType,
		Err:           err,
	}
}

// PartialTransferError reports a transfer whose debit was applied but whose credit
// failed and could not be compensated
type PartialTransferError struct {
	SenderID    uint64
	RecipientID uint64
	Amount      int64
	ReferenceID string
	Cause       error
}

// Error implements the error interface
func (e *PartialTransferError) Error() string {
	return fmt.Sprintf("partial transfer failure: %d gems debited from %d but not credited to %d (ref %s): %v",
		e.Amount, e.SenderID, e.RecipientID, e.ReferenceID, e.Cause)
}

// Is checks if the target error is an ErrPartialTransferFailure
func (e *PartialTransferError) Is(target error) bool {
	return target == ErrPartialTransferFailure
}

// Unwrap returns the underlying error
func (e *PartialTransferError) Unwrap() error {
	return e.Cause
}

// LogFields returns a map of fields for structured logging
func (e *PartialTransferError) LogFields() map[string]any {
	return map[string]any{
		"error_type":   "partial_transfer_failure",
		"sender_id":    e.SenderID,
		"recipient_id": e.RecipientID,
		"amount":       e.Amount,
		"reference_id": e.ReferenceID,
		"error":        e.Cause.Error(),
		"error_code":   CodePartialTransferFailure,
	}
}

// NewPartialTransferError creates a new partial transfer error
func NewPartialTransferError(senderID, recipientID uint64, amount int64, referenceID string, cause error) error {
	return &PartialTransferError{
		SenderID:    senderID,
		RecipientID: recipientID,
		Amount:      amount,
		ReferenceID: referenceID,
		Cause:       cause,
	}
}

// RollbackError wraps the error that aborted a unit of work together with the
// error returned by the rollback itself
type RollbackError struct {
	Err         error
	RollbackErr error
}

// Error implements the error interface
func (e *RollbackError) Error() string {
	return fmt.Sprintf("%v (rollback failed: %v)", e.Err, e.RollbackErr)
}

// Is checks if the target error is an ErrRollbackFailed
func (e *RollbackError) Is(target error) bool {
	return target == ErrRollbackFailed
}

// Unwrap returns the error that aborted the unit of work
func (e *RollbackError) Unwrap() error {
	return e.Err
}

// WithdrawalTransitionError reports a rejected withdrawal status change
type WithdrawalTransitionError struct {
	WithdrawalID string
	From         string
	To           string
}

// Error implements the error interface
func (e *WithdrawalTransitionError) Error() string {
	return fmt.Sprintf("withdrawal %s cannot move from %s to %s", e.WithdrawalID, e.From, e.To)
}

// Is checks if the target error is an ErrInvalidTransition
func (e *WithdrawalTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// LogFields returns a map of fields for structured logging
func (e *WithdrawalTransitionError) LogFields() map[string]any {
	return map[string]any{
		"error_type":    "invalid_transition",
		"withdrawal_id": e.WithdrawalID,
		"from":          e.From,
		"to":            e.To,
		"error_code":    CodeInvalidTransition,
	}
}

// NewWithdrawalTransitionError creates a new transition error
func NewWithdrawalTransitionError(withdrawalID, from, to string) error {
	return &WithdrawalTransitionError{WithdrawalID: withdrawalID, From: from, To: to}
}

// IsInsufficientFundsError checks if the error is related to insufficient funds
func IsInsufficientFundsError(err error) bool {
	return errors.Is(err, ErrInsufficientFunds)
}

// IsDuplicateMutationError checks if the error is a replayed mutation
func IsDuplicateMutationError(err error) bool {
	return errors.Is(err, ErrDuplicateMutation)
}

// IsNotFoundError checks if the error is any "not found" type of error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrLedgerEntryNotFound) ||
		errors.Is(err, ErrGiftNotFound) ||
		errors.Is(err, ErrUnknownGift) ||
		errors.Is(err, ErrCompletionNotFound) ||
		errors.Is(err, ErrStreakNotFound) ||
		errors.Is(err, ErrWithdrawalNotFound)
}

// IsTransientError checks if the error may succeed on retry
func IsTransientError(err error) bool {
	return errors.Is(err, ErrConcurrentModification) ||
		errors.Is(err, ErrTransactionAborted) ||
		errors.Is(err, ErrDatabaseConnection)
}
