package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amirhossein-jamali/gem-ledger/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/gem-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/gem-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/gem-ledger/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/gem-ledger/internal/infrastructure/adapter/api/middleware"
)

// AccountHandler handles balance and ledger requests
type AccountHandler struct {
	ledger usecase.LedgerUseCase
	logger coreport.Logger
}

// NewAccountHandler creates a new account handler instance
func NewAccountHandler(ledger usecase.LedgerUseCase, logger coreport.Logger) *AccountHandler {
	return &AccountHandler{ledger: ledger, logger: logger}
}

// GetBalance handles GET /accounts/me/balance
func (h *AccountHandler) GetBalance(c *gin.Context) {
	userID := middleware.UserID(c)

	balance, err := h.ledger.GetBalance(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, map[string]any{"user_id": userID})
		return
	}

	c.JSON(http.StatusOK, dto.NewBalanceResponse(balance))
}

// ListLedger handles GET /accounts/me/ledger?limit=
func (h *AccountHandler) ListLedger(c *gin.Context) {
	userID := middleware.UserID(c)
	limit, ok := limitQuery(c)
	if !ok {
		return
	}

	entries, err := h.ledger.ListLedger(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, h.logger, err, map[string]any{"user_id": userID})
		return
	}

	c.JSON(http.StatusOK, dto.LedgerResponse{AccountID: userID, Entries: dto.NewLedgerEntries(entries)})
}

// Reconcile handles GET /ledger/reconcile?referenceId=&referenceType=. Only the
// caller's own entries are returned.
func (h *AccountHandler) Reconcile(c *gin.Context) {
	userID := middleware.UserID(c)
	referenceID := c.Query("referenceId")
	referenceType := c.Query("referenceType")
	if referenceID == "" || referenceType == "" {
		badRequest(c, "referenceId and referenceType are required")
		return
	}

	result, err := h.ledger.Reconcile(c.Request.Context(), referenceID, referenceType)
	if err != nil {
		respondError(c, h.logger, err, map[string]any{
			"reference_id":   referenceID,
			"reference_type": referenceType,
		})
		return
	}

	own := make([]*entity.LedgerEntry, 0, len(result.Entries))
	for _, e := range result.Entries {
		if e.AccountID == userID {
			own = append(own, e)
		}
	}
	result.Entries = own
	result.Applied = len(own) > 0

	c.JSON(http.StatusOK, dto.NewReconcileResponse(result))
}

// OpenAccount handles POST /admin/accounts/:userId
func (h *AccountHandler) OpenAccount(c *gin.Context) {
	userID, ok := uintParam(c, "userId")
	if !ok {
		return
	}

	account, err := h.ledger.OpenAccount(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, map[string]any{"user_id": userID})
		return
	}

	c.JSON(http.StatusCreated, dto.NewAccountResponse(account))
}

// Credit handles POST /admin/accounts/:userId/credit
func (h *AccountHandler) Credit(c *gin.Context) {
	userID, ok := uintParam(c, "userId")
	if !ok {
		return
	}

	var req dto.CreditRequest
	if !bindJSON(c, &req) {
		return
	}

	kind, err := entity.ParseEntryKind(req.Kind)
	if err != nil {
		respondError(c, h.logger, err, nil)
		return
	}

	referenceType := entity.RefTypeAdmin
	if kind == entity.KindPurchase {
		referenceType = entity.RefTypePurchase
	}

	result, err := h.ledger.Apply(c.Request.Context(), usecase.MutationRequest{
		AccountID:     userID,
		Kind:          kind,
		Amount:        req.Amount,
		Description:   req.Description,
		ReferenceID:   req.ReferenceID,
		ReferenceType: referenceType,
	})
	if err != nil {
		respondError(c, h.logger, err, map[string]any{
			"user_id":      userID,
			"admin_id":     middleware.UserID(c),
			"reference_id": req.ReferenceID,
		})
		return
	}

	h.logger.Info("Account credited by admin", map[string]any{
		"user_id":      userID,
		"admin_id":     middleware.UserID(c),
		"kind":         kind,
		"amount":       req.Amount,
		"reference_id": req.ReferenceID,
		"replayed":     result.Replayed,
	})
	c.JSON(http.StatusOK, dto.NewMutationResponse(result))
}

// Audit handles GET /admin/accounts/:userId/audit
func (h *AccountHandler) Audit(c *gin.Context) {
	userID, ok := uintParam(c, "userId")
	if !ok {
		return
	}

	report, err := h.ledger.AuditAccount(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, map[string]any{"user_id": userID})
		return
	}

	c.JSON(http.StatusOK, dto.NewAuditResponse(report))
}
