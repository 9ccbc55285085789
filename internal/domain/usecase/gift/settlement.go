package gift

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirhossein-jamali/gem-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/gem-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/gem-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/gem-ledger/internal/domain/port/external"
	"github.com/amirhossein-jamali/gem-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/gem-ledger/internal/domain/port/usecase"
)

// Settlement sends gifts. The sender debit, the gift record and the recipient
// credit commit together or not at all.
type Settlement struct {
	uow          persistence.UnitOfWork
	ledger       usecase.LedgerUseCase
	profiles     external.ProfileReader
	notifier     external.Notifier
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
	metrics      coreport.Metrics
}

var _ usecase.GiftUseCase = (*Settlement)(nil)

// NewSettlement creates a new gift settlement use case
func NewSettlement(
	uow persistence.UnitOfWork,
	ledger usecase.LedgerUseCase,
	profiles external.ProfileReader,
	notifier external.Notifier,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	metrics coreport.Metrics,
) *Settlement {
	return &Settlement{
		uow:          uow,
		ledger:       ledger,
		profiles:     profiles,
		notifier:     notifier,
		timeProvider: timeProvider,
		logger:       logger.With(map[string]any{"component": "gift"}),
		metrics:      metrics,
	}
}

// ListCatalog returns the active gift catalog
func (s *Settlement) ListCatalog(ctx context.Context) ([]*entity.GiftCatalogItem, error) {
	items, err := s.uow.GetGiftRepository(ctx).ListCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list gift catalog: %w", err)
	}
	if items == nil {
		items = []*entity.GiftCatalogItem{}
	}
	return items, nil
}

// SendGift moves the catalog price from sender to recipient
func (s *Settlement) SendGift(ctx context.Context, req entity.GiftRequest) (*entity.Gift, error) {
	if req.SenderID == 0 || req.RecipientID == 0 {
		return nil, errs.ErrInvalidUserID
	}
	if req.SenderID == req.RecipientID {
		return nil, errs.ErrSelfGift
	}

	senderName := s.displayName(ctx, req.SenderID)
	recipientName := s.displayName(ctx, req.RecipientID)

	var gift *entity.Gift
	err := s.uow.Within(ctx, func(txCtx context.Context) error {
		item, err := s.uow.GetGiftRepository(txCtx).GetCatalogItem(txCtx, req.CatalogID)
		if err != nil {
			return err
		}

		gift, err = entity.NewGift(req, item, s.timeProvider)
		if err != nil {
			return err
		}

		if _, err := s.ledger.Spend(txCtx, gift.SenderID, gift.GemAmount,
			fmt.Sprintf("Gift %s to %s", item.Name, recipientName),
			gift.ID, entity.RefTypeGift); err != nil {
			return err
		}

		if err := s.uow.GetGiftRepository(txCtx).Create(txCtx, gift); err != nil {
			return fmt.Errorf("failed to record gift: %w", err)
		}

		fromName := senderName
		if gift.IsAnonymous {
			fromName = external.AnonymousName
		}
		if _, err := s.ledger.Receive(txCtx, gift.RecipientID, gift.GemAmount,
			fmt.Sprintf("Gift %s from %s", item.Name, fromName),
			gift.ID, entity.RefTypeGift); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, s.failed(req, gift, err)
	}

	s.logger.Info("Gift settled", map[string]any{
		"gift_id":      gift.ID,
		"sender_id":    gift.SenderID,
		"recipient_id": gift.RecipientID,
		"catalog_id":   gift.CatalogID,
		"amount":       gift.GemAmount,
	})

	s.notifyRecipient(ctx, gift, senderName)
	return gift, nil
}

// failed turns an unknown transaction outcome into a PartialTransferError
func (s *Settlement) failed(req entity.GiftRequest, gift *entity.Gift, err error) error {
	unknown := errors.Is(err, errs.ErrRollbackFailed) || errors.Is(err, errs.ErrCommitFailed)
	if !unknown || gift == nil {
		return err
	}

	partial := errs.NewPartialTransferError(req.SenderID, req.RecipientID, gift.GemAmount, gift.ID, err)
	var pe *errs.PartialTransferError
	if errors.As(partial, &pe) {
		s.logger.Error("Gift settlement outcome unknown, reconcile by gift id", pe.LogFields())
	}
	s.metrics.PartialTransferFailure()
	return partial
}

func (s *Settlement) displayName(ctx context.Context, userID uint64) string {
	name, err := s.profiles.DisplayName(ctx, userID)
	if err != nil || name == "" {
		if err != nil {
			s.logger.Warn("Profile lookup failed", map[string]any{"user_id": userID, "error": err.Error()})
		}
		return external.AnonymousName
	}
	return name
}

// notifyRecipient is best effort; a failed dispatch never undoes the gift
func (s *Settlement) notifyRecipient(ctx context.Context, gift *entity.Gift, senderName string) {
	from := senderName
	data := map[string]any{
		"giftId":    gift.ID,
		"catalogId": gift.CatalogID,
		"amount":    gift.GemAmount,
	}
	if gift.IsAnonymous {
		from = external.AnonymousName
	} else {
		data["senderId"] = gift.SenderID
	}
	if gift.Message != "" {
		data["message"] = gift.Message
	}

	err := s.notifier.Notify(ctx, external.Notification{
		RecipientID: gift.RecipientID,
		Type:        external.NotificationGiftReceived,
		Title:       "You received a gift",
		Body:        fmt.Sprintf("%s sent you %d gems", from, gift.GemAmount),
		Data:        data,
	})
	if err != nil {
		s.logger.Warn("Gift notification failed", map[string]any{
			"gift_id":      gift.ID,
			"recipient_id": gift.RecipientID,
			"error":        err.Error(),
		})
	}
}
