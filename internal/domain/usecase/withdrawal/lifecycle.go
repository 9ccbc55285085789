package withdrawal

import (
	"context"
	"fmt"

	"github.com/amirhossein-jamali/gem-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/gem-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/gem-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/gem-ledger/internal/domain/port/external"
	"github.com/amirhossein-jamali/gem-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/gem-ledger/internal/domain/port/usecase"
)

// Config tunes the lifecycle
type Config struct {
	Policy           entity.WithdrawalPolicy
	DefaultListLimit int
}

// Lifecycle moves withdrawal requests through approval. Gems are held from
// creation until the request is rejected or completed.
type Lifecycle struct {
	uow          persistence.UnitOfWork
	ledger       usecase.LedgerUseCase
	notifier     external.Notifier
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
	metrics      coreport.Metrics
	config       Config
}

var _ usecase.WithdrawalUseCase = (*Lifecycle)(nil)

// NewLifecycle creates a new withdrawal lifecycle use case
func NewLifecycle(
	uow persistence.UnitOfWork,
	ledger usecase.LedgerUseCase,
	notifier external.Notifier,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	metrics coreport.Metrics,
	config Config,
) *Lifecycle {
	if config.DefaultListLimit <= 0 {
		config.DefaultListLimit = 20
	}
	return &Lifecycle{
		uow:          uow,
		ledger:       ledger,
		notifier:     notifier,
		timeProvider: timeProvider,
		logger:       logger.With(map[string]any{"component": "withdrawal"}),
		metrics:      metrics,
		config:       config,
	}
}

// CreateWithdrawal validates eligibility, places a hold and stores a pending request
func (l *Lifecycle) CreateWithdrawal(ctx context.Context, req usecase.CreateWithdrawalRequest) (*entity.WithdrawalRequest, error) {
	if req.PartnerID == 0 {
		return nil, errs.ErrInvalidUserID
	}

	var request *entity.WithdrawalRequest
	err := l.uow.Within(ctx, func(txCtx context.Context) error {
		accounts := l.uow.GetAccountRepository(txCtx)
		withdrawals := l.uow.GetWithdrawalRepository(txCtx)

		account, err := accounts.GetForUpdate(txCtx, req.PartnerID)
		if err != nil {
			return err
		}

		pending, err := withdrawals.HasPending(txCtx, req.PartnerID)
		if err != nil {
			return fmt.Errorf("failed to check pending withdrawals: %w", err)
		}
		if pending {
			return errs.ErrPendingWithdrawalExists
		}

		request, err = entity.NewWithdrawalRequest(account, req.Amount, req.Bank, l.config.Policy, l.timeProvider)
		if err != nil {
			return err
		}

		if err := l.hold(txCtx, account, request.Amount); err != nil {
			return err
		}
		return withdrawals.Create(txCtx, request)
	})
	if err != nil {
		l.logger.Warn("Withdrawal request refused", map[string]any{
			"partner_id": req.PartnerID,
			"amount":     req.Amount,
			"error":      err.Error(),
		})
		return nil, err
	}

	l.metrics.WithdrawalTransition(string(entity.WithdrawalPending))
	l.logger.Info("Withdrawal requested", map[string]any{
		"withdrawal_id":  request.ID,
		"partner_id":     request.PartnerID,
		"amount":         request.Amount,
		"vnd_amount":     request.VNDAmount,
		"platform_fee":   request.PlatformFee,
		"author_receive": request.AuthorReceive,
	})
	return request, nil
}

// ApproveWithdrawal moves a pending request to approved after rechecking the balance
func (l *Lifecycle) ApproveWithdrawal(ctx context.Context, id string, adminID uint64) (*entity.WithdrawalRequest, error) {
	return l.transition(ctx, id, func(txCtx context.Context, request *entity.WithdrawalRequest) error {
		account, err := l.uow.GetAccountRepository(txCtx).GetForUpdate(txCtx, request.PartnerID)
		if err != nil {
			return err
		}
		if account.Balance < request.Amount || account.HeldBalance < request.Amount {
			return errs.NewInsufficientFundsError(account.ID, request.Amount, account.Balance)
		}
		return request.Approve(adminID, l.timeProvider)
	})
}

// StartProcessingWithdrawal marks an approved request as handed to the bank
func (l *Lifecycle) StartProcessingWithdrawal(ctx context.Context, id string, adminID uint64) (*entity.WithdrawalRequest, error) {
	return l.transition(ctx, id, func(_ context.Context, request *entity.WithdrawalRequest) error {
		return request.StartProcessing(adminID, l.timeProvider)
	})
}

// RejectWithdrawal ends a request and releases its hold
func (l *Lifecycle) RejectWithdrawal(ctx context.Context, id string, adminID uint64, reason string) (*entity.WithdrawalRequest, error) {
	return l.transition(ctx, id, func(txCtx context.Context, request *entity.WithdrawalRequest) error {
		held := request.Status.HoldsFunds()
		if err := request.Reject(adminID, reason, l.timeProvider); err != nil {
			return err
		}
		if !held {
			return nil
		}
		return l.release(txCtx, request.PartnerID, request.Amount)
	})
}

// CompleteWithdrawal releases the hold and debits the gems in one transaction
func (l *Lifecycle) CompleteWithdrawal(ctx context.Context, id string, adminID uint64, transactionReference string) (*entity.WithdrawalRequest, error) {
	return l.transition(ctx, id, func(txCtx context.Context, request *entity.WithdrawalRequest) error {
		if err := request.Complete(adminID, transactionReference, l.timeProvider); err != nil {
			return err
		}
		if err := l.release(txCtx, request.PartnerID, request.Amount); err != nil {
			return err
		}

		_, err := l.ledger.Spend(txCtx, request.PartnerID, request.Amount,
			fmt.Sprintf("Withdrawal of %d VND", request.AuthorReceive),
			request.ID, entity.RefTypeWithdrawal)
		return err
	})
}

// ListWithdrawals returns a partner's requests, newest first
func (l *Lifecycle) ListWithdrawals(ctx context.Context, partnerID uint64, limit int) ([]*entity.WithdrawalRequest, error) {
	if partnerID == 0 {
		return nil, errs.ErrInvalidUserID
	}
	if limit <= 0 {
		limit = l.config.DefaultListLimit
	}

	requests, err := l.uow.GetWithdrawalRepository(ctx).ListByPartner(ctx, partnerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list withdrawals: %w", err)
	}
	if requests == nil {
		requests = []*entity.WithdrawalRequest{}
	}
	return requests, nil
}

// transition loads and locks a request, applies step and stores the result,
// guarded by the status it was loaded with
func (l *Lifecycle) transition(
	ctx context.Context,
	id string,
	step func(txCtx context.Context, request *entity.WithdrawalRequest) error,
) (*entity.WithdrawalRequest, error) {
	if id == "" {
		return nil, errs.ErrWithdrawalNotFound
	}

	var (
		request *entity.WithdrawalRequest
		from    entity.WithdrawalStatus
	)
	err := l.uow.Within(ctx, func(txCtx context.Context) error {
		withdrawals := l.uow.GetWithdrawalRepository(txCtx)

		var err error
		request, err = withdrawals.GetForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		from = request.Status

		if err := step(txCtx, request); err != nil {
			return err
		}
		return withdrawals.Update(txCtx, request, from)
	})
	if err != nil {
		fields := map[string]any{"withdrawal_id": id, "error": err.Error()}
		if request != nil {
			fields["from"] = from
		}
		l.logger.Warn("Withdrawal transition refused", fields)
		return nil, err
	}

	l.metrics.WithdrawalTransition(string(request.Status))
	fields := map[string]any{
		"withdrawal_id": request.ID,
		"partner_id":    request.PartnerID,
		"from":          from,
		"to":            request.Status,
	}
	if request.ProcessedBy != nil {
		fields["admin_id"] = *request.ProcessedBy
	}
	l.logger.Info("Withdrawal transitioned", fields)

	l.notifyPartner(ctx, request)
	return request, nil
}

// hold reserves gems on a locked account
func (l *Lifecycle) hold(ctx context.Context, account *entity.Account, amount int64) error {
	expected := account.Version
	if err := account.PlaceHold(amount, l.timeProvider); err != nil {
		return err
	}
	return l.uow.GetAccountRepository(ctx).UpdateIfVersion(ctx, account, expected)
}

// release returns held gems to the partner's available balance
func (l *Lifecycle) release(ctx context.Context, partnerID uint64, amount int64) error {
	accounts := l.uow.GetAccountRepository(ctx)

	account, err := accounts.GetForUpdate(ctx, partnerID)
	if err != nil {
		return err
	}

	expected := account.Version
	if err := account.ReleaseHold(amount, l.timeProvider); err != nil {
		return fmt.Errorf("failed to release hold of %d on account %d: %w", amount, partnerID, err)
	}
	return accounts.UpdateIfVersion(ctx, account, expected)
}

func (l *Lifecycle) notifyPartner(ctx context.Context, request *entity.WithdrawalRequest) {
	body := fmt.Sprintf("Your withdrawal of %d gems is %s", request.Amount, request.Status)
	if request.Status == entity.WithdrawalRejected && request.RejectionReason != "" {
		body += ": " + request.RejectionReason
	}

	err := l.notifier.Notify(ctx, external.Notification{
		RecipientID: request.PartnerID,
		Type:        external.NotificationWithdrawalUpdated,
		Title:       "Withdrawal update",
		Body:        body,
		Data: map[string]any{
			"withdrawalId": request.ID,
			"status":       string(request.Status),
		},
	})
	if err != nil {
		l.logger.Warn("Withdrawal notification failed", map[string]any{
			"withdrawal_id": request.ID,
			"error":         err.Error(),
		})
	}
}
