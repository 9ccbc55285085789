package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainerr "github.com/amirhossein-jamali/gem-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/gem-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/gem-ledger/internal/infrastructure/adapter/api/dto"
)

// genericFailureMessage hides infrastructure details from callers
const genericFailureMessage = "Something went wrong, please try again"

// clientErrors are the domain errors whose message is safe to show, most specific first
var clientErrors = []error{
	domainerr.ErrInsufficientFunds,
	domainerr.ErrSelfGift,
	domainerr.ErrUnknownGift,
	domainerr.ErrNoFreezeAvailable,
	domainerr.ErrMaxFreezesReached,
	domainerr.ErrFreezeNotApplicable,
	domainerr.ErrPendingWithdrawalExists,
	domainerr.ErrBelowMinimumBalance,
	domainerr.ErrBelowMinimumAmount,
	domainerr.ErrInvalidBankInfo,
	domainerr.ErrInvalidTransition,
	domainerr.ErrWithdrawalNotFound,
	domainerr.ErrAccountNotFound,
	domainerr.ErrDuplicateAccount,
	domainerr.ErrDuplicateMutation,
	domainerr.ErrStreakNotFound,
	domainerr.ErrInvalidCategory,
	domainerr.ErrInvalidStreakType,
	domainerr.ErrInvalidEntryKind,
	domainerr.ErrInvalidReference,
	domainerr.ErrInvalidAmount,
	domainerr.ErrAmountOverflow,
	domainerr.ErrInvalidUserID,
	domainerr.ErrConcurrentModification,
	domainerr.ErrTransactionAborted,
}

// statusFor maps an error code to an HTTP status
func statusFor(code int) int {
	switch code {
	case domainerr.CodeUnauthorized:
		return http.StatusUnauthorized
	case domainerr.CodeForbidden:
		return http.StatusForbidden
	case domainerr.CodeAccountNotFound, domainerr.CodeUnknownGift,
		domainerr.CodeWithdrawalNotFound, domainerr.CodeStreakNotFound:
		return http.StatusNotFound
	case domainerr.CodeDuplicateAccount, domainerr.CodePendingWithdrawalExists,
		domainerr.CodeInvalidTransition, domainerr.CodeConcurrentModification,
		domainerr.CodeDuplicateMutation:
		return http.StatusConflict
	case domainerr.CodeInsufficientFunds, domainerr.CodeBelowMinimumBalance,
		domainerr.CodeNoFreezeAvailable, domainerr.CodeSelfGift:
		return http.StatusUnprocessableEntity
	case domainerr.CodeSchemaNotProvisioned:
		return http.StatusServiceUnavailable
	}

	switch {
	case code >= 4000 && code < 5000:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage returns the text shown to the caller for err
func publicMessage(err error, status int) string {
	if status >= http.StatusInternalServerError {
		return genericFailureMessage
	}
	for _, known := range clientErrors {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return http.StatusText(status)
}

// respondError writes the error response for err and logs it. Server errors are
// logged with the full cause; client errors at debug level.
func respondError(c *gin.Context, logger coreport.Logger, err error, fields map[string]any) {
	code := domainerr.ErrorCode(err)
	status := statusFor(code)
	requestID := coreport.RequestIDFromContext(c.Request.Context())

	if fields == nil {
		fields = map[string]any{}
	}
	fields["error"] = err.Error()
	fields["error_code"] = code
	fields["request_id"] = requestID
	fields["path"] = c.FullPath()

	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", fields)
	} else {
		logger.Debug("Request rejected", fields)
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, dto.ErrorResponse{
		Code:      code,
		Message:   publicMessage(err, status),
		RequestID: requestID,
	})
}

// badRequest rejects a malformed request
func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{
		Code:      domainerr.ErrorCode(domainerr.ErrInvalidRequest),
		Message:   message,
		RequestID: coreport.RequestIDFromContext(c.Request.Context()),
	})
}

// bindJSON decodes the body into req, answering 400 on failure
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		badRequest(c, "Invalid request format: "+err.Error())
		return false
	}
	return true
}

// uintParam parses a positive integer path parameter
func uintParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:      domainerr.ErrorCode(domainerr.ErrInvalidUserID),
			Message:   "Invalid " + name + " format",
			RequestID: coreport.RequestIDFromContext(c.Request.Context()),
		})
		return 0, false
	}
	return id, true
}

// limitQuery parses the optional limit query parameter; 0 means the default
func limitQuery(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		badRequest(c, "limit must be a non-negative integer")
		return 0, false
	}
	return limit, true
}
