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

// WithdrawalHandler handles partner payouts and their admin review
type WithdrawalHandler struct {
	withdrawals usecase.WithdrawalUseCase
	logger      coreport.Logger
}

// NewWithdrawalHandler creates a new withdrawal handler instance
func NewWithdrawalHandler(withdrawals usecase.WithdrawalUseCase, logger coreport.Logger) *WithdrawalHandler {
	return &WithdrawalHandler{withdrawals: withdrawals, logger: logger}
}

// Create handles POST /withdrawals
func (h *WithdrawalHandler) Create(c *gin.Context) {
	var req dto.CreateWithdrawalRequest
	if !bindJSON(c, &req) {
		return
	}

	partnerID := middleware.UserID(c)
	request, err := h.withdrawals.CreateWithdrawal(c.Request.Context(), usecase.CreateWithdrawalRequest{
		PartnerID: partnerID,
		Amount:    req.Amount,
		Bank: entity.BankInfo{
			BankName:      req.BankName,
			AccountNumber: req.AccountNumber,
			AccountHolder: req.AccountHolder,
		},
	})
	if err != nil {
		respondError(c, h.logger, err, map[string]any{"partner_id": partnerID, "amount": req.Amount})
		return
	}

	c.JSON(http.StatusCreated, dto.NewWithdrawalResponse(request))
}

// List handles GET /withdrawals?limit=
func (h *WithdrawalHandler) List(c *gin.Context) {
	limit, ok := limitQuery(c)
	if !ok {
		return
	}

	partnerID := middleware.UserID(c)
	requests, err := h.withdrawals.ListWithdrawals(c.Request.Context(), partnerID, limit)
	if err != nil {
		respondError(c, h.logger, err, map[string]any{"partner_id": partnerID})
		return
	}

	c.JSON(http.StatusOK, gin.H{"withdrawals": dto.NewWithdrawalList(requests)})
}

// Approve handles POST /admin/withdrawals/:id/approve
func (h *WithdrawalHandler) Approve(c *gin.Context) {
	request, err := h.withdrawals.ApproveWithdrawal(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	h.transitioned(c, request, err)
}

// Process handles POST /admin/withdrawals/:id/process
func (h *WithdrawalHandler) Process(c *gin.Context) {
	request, err := h.withdrawals.StartProcessingWithdrawal(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	h.transitioned(c, request, err)
}

// Reject handles POST /admin/withdrawals/:id/reject
func (h *WithdrawalHandler) Reject(c *gin.Context) {
	var req dto.RejectWithdrawalRequest
	if !bindJSON(c, &req) {
		return
	}

	request, err := h.withdrawals.RejectWithdrawal(c.Request.Context(), c.Param("id"), middleware.UserID(c), req.Reason)
	h.transitioned(c, request, err)
}

// Complete handles POST /admin/withdrawals/:id/complete
func (h *WithdrawalHandler) Complete(c *gin.Context) {
	var req dto.CompleteWithdrawalRequest
	if !bindJSON(c, &req) {
		return
	}

	request, err := h.withdrawals.CompleteWithdrawal(c.Request.Context(), c.Param("id"), middleware.UserID(c), req.TransactionReference)
	h.transitioned(c, request, err)
}

func (h *WithdrawalHandler) transitioned(c *gin.Context, request *entity.WithdrawalRequest, err error) {
	if err != nil {
		respondError(c, h.logger, err, map[string]any{
			"withdrawal_id": c.Param("id"),
			"admin_id":      middleware.UserID(c),
		})
		return
	}

	c.JSON(http.StatusOK, dto.NewWithdrawalResponse(request))
}
