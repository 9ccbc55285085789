package ledger

import (
	"fmt"
	"strings"

	"github.com/amirhossein-jamali/gem-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/gem-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/gem-ledger/internal/domain/port/usecase"
)

const maxReferenceLength = 128

// MutationValidator provides validation for mutation requests
type MutationValidator struct{}

// NewMutationValidator creates a new MutationValidator
func NewMutationValidator() *MutationValidator {
	return &MutationValidator{}
}

// Validate checks every field of a mutation request
func (v *MutationValidator) Validate(req usecase.MutationRequest) error {
	if req.AccountID == 0 {
		return errs.ErrInvalidUserID
	}

	if _, err := entity.ParseEntryKind(string(req.Kind)); err != nil {
		return err
	}

	if err := entity.ValidateAmount(req.Amount); err != nil {
		return err
	}

	return v.validateReference(req.ReferenceID, req.ReferenceType)
}

// validateReference checks the idempotency key of a mutation
func (v *MutationValidator) validateReference(referenceID, referenceType string) error {
	if strings.TrimSpace(referenceID) == "" || strings.TrimSpace(referenceType) == "" {
		return errs.ErrInvalidReference
	}
	if len(referenceID) > maxReferenceLength || len(referenceType) > maxReferenceLength {
		return fmt.Errorf("%w: reference longer than %d characters", errs.ErrInvalidReference, maxReferenceLength)
	}
	return nil
}
