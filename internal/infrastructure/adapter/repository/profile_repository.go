package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	coreport "github.com/amirhossein-jamali/gem-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/gem-ledger/internal/domain/port/external"
	"github.com/amirhossein-jamali/gem-ledger/internal/infrastructure/adapter/model"
)

// ProfileRepository reads display names from the identity store's profiles table
type ProfileRepository struct {
	db          *gorm.DB
	logger      coreport.Logger
	errorMapper *ErrorMapper
}

var _ external.ProfileReader = (*ProfileRepository)(nil)

// NewProfileRepository creates a new ProfileRepository instance
func NewProfileRepository(db *gorm.DB, logger coreport.Logger) *ProfileRepository {
	return &ProfileRepository{
		db:          db,
		logger:      logger,
		errorMapper: NewErrorMapper(),
	}
}

// DisplayName returns the user's display name, or the anonymous name when the
// profile is missing or blank
func (r *ProfileRepository) DisplayName(ctx context.Context, userID uint64) (string, error) {
	var m model.Profile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return external.AnonymousName, nil
	}
	if err != nil {
		return external.AnonymousName, r.errorMapper.MapError(err, EntityProfile)
	}

	if m.DisplayName == "" {
		return external.AnonymousName, nil
	}
	return m.DisplayName, nil
}
