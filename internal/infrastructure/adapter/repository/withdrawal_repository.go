package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/amirhossein-jamali/gem-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/gem-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/gem-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/gem-ledger/internal/infrastructure/adapter/model"
)

// WithdrawalRepository implements WithdrawalRepository interface using GORM
type WithdrawalRepository struct {
	db          *gorm.DB
	logger      coreport.Logger
	errorMapper *ErrorMapper
}

// NewWithdrawalRepository creates a new WithdrawalRepository instance
func NewWithdrawalRepository(db *gorm.DB, logger coreport.Logger) *WithdrawalRepository {
	return &WithdrawalRepository{
		db:          db,
		logger:      logger,
		errorMapper: NewErrorMapper(),
	}
}

func withdrawalToModel(w *entity.WithdrawalRequest) model.WithdrawalRequest {
	return model.WithdrawalRequest{
		ID:                        w.ID,
		PartnerID:                 w.PartnerID,
		Amount:                    w.Amount,
		AvailableBalanceAtRequest: w.AvailableBalanceAtRequest,
		VNDAmount:                 w.VNDAmount,
		PlatformFee:               w.PlatformFee,
		AuthorReceive:             w.AuthorReceive,
		BankName:                  w.Bank.BankName,
		BankAccountNumber:         w.Bank.AccountNumber,
		BankAccountHolder:         w.Bank.AccountHolder,
		Status:                    string(w.Status),
		ProcessedBy:               w.ProcessedBy,
		RejectionReason:           w.RejectionReason,
		TransactionReference:      w.TransactionReference,
		CreatedAt:                 w.CreatedAt,
		ApprovedAt:                w.ApprovedAt,
		ProcessingAt:              w.ProcessingAt,
		RejectedAt:                w.RejectedAt,
		CompletedAt:               w.CompletedAt,
		UpdatedAt:                 w.UpdatedAt,
	}
}

func withdrawalToEntity(m *model.WithdrawalRequest) *entity.WithdrawalRequest {
	return &entity.WithdrawalRequest{
		ID:                        m.ID,
		PartnerID:                 m.PartnerID,
		Amount:                    m.Amount,
		AvailableBalanceAtRequest: m.AvailableBalanceAtRequest,
		VNDAmount:                 m.VNDAmount,
		PlatformFee:               m.PlatformFee,
		AuthorReceive:             m.AuthorReceive,
		Bank: entity.BankInfo{
			BankName:      m.BankName,
			AccountNumber: m.BankAccountNumber,
			AccountHolder: m.BankAccountHolder,
		},
		Status:               entity.WithdrawalStatus(m.Status),
		ProcessedBy:          m.ProcessedBy,
		RejectionReason:      m.RejectionReason,
		TransactionReference: m.TransactionReference,
		CreatedAt:            m.CreatedAt,
		ApprovedAt:           m.ApprovedAt,
		ProcessingAt:         m.ProcessingAt,
		RejectedAt:           m.RejectedAt,
		CompletedAt:          m.CompletedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}

// Create stores a new pending request
func (r *WithdrawalRepository) Create(ctx context.Context, request *entity.WithdrawalRequest) error {
	m := withdrawalToModel(request)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&m).Error; err != nil {
		mapped := r.errorMapper.MapError(err, EntityWithdrawal)
		r.logger.Warn("Failed to store withdrawal request", map[string]any{
			"withdrawal_id": request.ID,
			"partner_id":    request.PartnerID,
			"error":         err.Error(),
		})
		return mapped
	}
	return nil
}

// GetForUpdate returns a request and locks it until the surrounding transaction ends
func (r *WithdrawalRepository) GetForUpdate(ctx context.Context, id string) (*entity.WithdrawalRequest, error) {
	var m model.WithdrawalRequest
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&m).Error
	if err != nil {
		return nil, r.errorMapper.MapError(err, EntityWithdrawal)
	}
	return withdrawalToEntity(&m), nil
}

// HasPending reports whether the partner has a pending request
func (r *WithdrawalRepository) HasPending(ctx context.Context, partnerID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.WithdrawalRequest{}).
		Where("partner_id = ? AND status = ?", partnerID, string(entity.WithdrawalPending)).
		Count(&count).Error
	if err != nil {
		return false, r.errorMapper.MapError(err, EntityWithdrawal)
	}
	return count > 0, nil
}

// Update writes a transition only if the stored status still equals expectedStatus
func (r *WithdrawalRepository) Update(
	ctx context.Context,
	request *entity.WithdrawalRequest,
	expectedStatus entity.WithdrawalStatus,
) error {
	result := r.db.WithContext(ctx).Model(&model.WithdrawalRequest{}).
		Where("id = ? AND status = ?", request.ID, string(expectedStatus)).
		Updates(map[string]any{
			"status":                string(request.Status),
			"processed_by":          request.ProcessedBy,
			"rejection_reason":      request.RejectionReason,
			"transaction_reference": request.TransactionReference,
			"approved_at":           request.ApprovedAt,
			"processing_at":         request.ProcessingAt,
			"rejected_at":           request.RejectedAt,
			"completed_at":          request.CompletedAt,
			"updated_at":            request.UpdatedAt,
		})
	if result.Error != nil {
		return r.errorMapper.MapError(result.Error, EntityWithdrawal)
	}

	if result.RowsAffected == 0 {
		r.logger.Warn("Withdrawal status moved during transition", map[string]any{
			"withdrawal_id":   request.ID,
			"expected_status": expectedStatus,
			"target_status":   request.Status,
		})
		return errs.ErrConcurrentModification
	}
	return nil
}

// ListByPartner returns a partner's requests, newest first
func (r *WithdrawalRepository) ListByPartner(ctx context.Context, partnerID uint64, limit int) ([]*entity.WithdrawalRequest, error) {
	var models []model.WithdrawalRequest
	err := r.db.WithContext(ctx).
		Where("partner_id = ?", partnerID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, r.errorMapper.MapError(err, EntityWithdrawal)
	}

	out := make([]*entity.WithdrawalRequest, 0, len(models))
	for i := range models {
		out = append(out, withdrawalToEntity(&models[i]))
	}
	return out, nil
}
