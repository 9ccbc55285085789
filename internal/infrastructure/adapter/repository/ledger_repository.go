package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/amirhossein-jamali/gem-ledger/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/gem-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/gem-ledger/internal/infrastructure/adapter/model"
)

// LedgerRepository implements LedgerRepository interface using GORM
type LedgerRepository struct {
	db          *gorm.DB
	logger      coreport.Logger
	errorMapper *ErrorMapper
}

// NewLedgerRepository creates a new LedgerRepository instance
func NewLedgerRepository(db *gorm.DB, logger coreport.Logger) *LedgerRepository {
	return &LedgerRepository{
		db:          db,
		logger:      logger,
		errorMapper: NewErrorMapper(),
	}
}

func ledgerEntryToModel(e *entity.LedgerEntry) model.LedgerEntry {
	return model.LedgerEntry{
		ID:            e.ID,
		AccountID:     e.AccountID,
		Kind:          string(e.Kind),
		Amount:        e.Amount,
		BalanceAfter:  e.BalanceAfter,
		Description:   e.Description,
		ReferenceType: e.ReferenceType,
		ReferenceID:   e.ReferenceID,
		CreatedAt:     e.CreatedAt,
	}
}

func ledgerEntryToEntity(m *model.LedgerEntry) *entity.LedgerEntry {
	return &entity.LedgerEntry{
		ID:            m.ID,
		AccountID:     m.AccountID,
		Kind:          entity.EntryKind(m.Kind),
		Amount:        m.Amount,
		BalanceAfter:  m.BalanceAfter,
		Description:   m.Description,
		ReferenceID:   m.ReferenceID,
		ReferenceType: m.ReferenceType,
		CreatedAt:     m.CreatedAt,
	}
}

func ledgerEntriesToEntities(models []model.LedgerEntry) []*entity.LedgerEntry {
	out := make([]*entity.LedgerEntry, 0, len(models))
	for i := range models {
		out = append(out, ledgerEntryToEntity(&models[i]))
	}
	return out
}

// Append stores a new ledger entry
func (r *LedgerRepository) Append(ctx context.Context, entry *entity.LedgerEntry) error {
	m := ledgerEntryToModel(entry)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&m).Error; err != nil {
		mapped := r.errorMapper.MapError(err, EntityLedgerEntry)
		r.logger.Error("Failed to append ledger entry", map[string]any{
			"account_id":     entry.AccountID,
			"kind":           entry.Kind,
			"reference_id":   entry.ReferenceID,
			"reference_type": entry.ReferenceType,
			"error":          err.Error(),
		})
		return mapped
	}
	return nil
}

// FindForReference returns the entry an account received for a reference
func (r *LedgerRepository) FindForReference(
	ctx context.Context,
	accountID uint64,
	kind entity.EntryKind,
	referenceID, referenceType string,
) (*entity.LedgerEntry, error) {
	var m model.LedgerEntry
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND kind = ? AND reference_type = ? AND reference_id = ?",
			accountID, string(kind), referenceType, referenceID).
		First(&m).Error
	if err != nil {
		return nil, r.errorMapper.MapError(err, EntityLedgerEntry)
	}
	return ledgerEntryToEntity(&m), nil
}

// FindByReference returns every entry written for a reference, oldest first
func (r *LedgerRepository) FindByReference(ctx context.Context, referenceID, referenceType string) ([]*entity.LedgerEntry, error) {
	var models []model.LedgerEntry
	err := r.db.WithContext(ctx).
		Where("reference_type = ? AND reference_id = ?", referenceType, referenceID).
		Order("created_at ASC, id ASC").
		Find(&models).Error
	if err != nil {
		return nil, r.errorMapper.MapError(err, EntityLedgerEntry)
	}
	return ledgerEntriesToEntities(models), nil
}

// ListByAccount returns the most recent entries of an account, newest first
func (r *LedgerRepository) ListByAccount(ctx context.Context, accountID uint64, limit int) ([]*entity.LedgerEntry, error) {
	var models []model.LedgerEntry
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, r.errorMapper.MapError(err, EntityLedgerEntry)
	}
	return ledgerEntriesToEntities(models), nil
}

// SumByAccount returns the sum of signed amounts of an account's entries
func (r *LedgerRepository) SumByAccount(ctx context.Context, accountID uint64) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).Model(&model.LedgerEntry{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("account_id = ?", accountID).
		Scan(&sum).Error
	if err != nil {
		return 0, r.errorMapper.MapError(err, EntityLedgerEntry)
	}
	return sum, nil
}
