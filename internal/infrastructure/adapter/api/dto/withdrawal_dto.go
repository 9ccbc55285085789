package dto

import "github.com/amirhossein-jamali/gem-ledger/internal/domain/entity"

// CreateWithdrawalRequest is the body of POST /withdrawals
type CreateWithdrawalRequest struct {
	Amount        int64  `json:"amount" binding:"required,gt=0"`
	BankName      string `json:"bankName" binding:"required,max=100"`
	AccountNumber string `json:"accountNumber" binding:"required,max=50"`
	AccountHolder string `json:"accountHolder" binding:"required,max=100"`
}

// RejectWithdrawalRequest is the body of the admin reject action
type RejectWithdrawalRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// CompleteWithdrawalRequest is the body of the admin complete action
type CompleteWithdrawalRequest struct {
	TransactionReference string `json:"transactionReference" binding:"required,max=100"`
}

// WithdrawalResponse is one withdrawal request
type WithdrawalResponse struct {
	ID                        string `json:"id"`
	PartnerID                 uint64 `json:"partnerId"`
	Amount                    int64  `json:"amount"`
	AvailableBalanceAtRequest int64  `json:"availableBalanceAtRequest"`
	VNDAmount                 int64  `json:"vndAmount"`
	PlatformFee               int64  `json:"platformFee"`
	AuthorReceive             int64  `json:"authorReceive"`
	BankName                  string `json:"bankName"`
	AccountNumber             string `json:"accountNumber"`
	AccountHolder             string `json:"accountHolder"`
	Status                    string `json:"status"`
	RejectionReason           string `json:"rejectionReason,omitempty"`
	TransactionReference      string `json:"transactionReference,omitempty"`
	CreatedAt                 string `json:"createdAt"`
	ApprovedAt                string `json:"approvedAt,omitempty"`
	ProcessingAt              string `json:"processingAt,omitempty"`
	RejectedAt                string `json:"rejectedAt,omitempty"`
	CompletedAt               string `json:"completedAt,omitempty"`
}

// NewWithdrawalResponse maps a withdrawal request
func NewWithdrawalResponse(w *entity.WithdrawalRequest) WithdrawalResponse {
	return WithdrawalResponse{
		ID:                        w.ID,
		PartnerID:                 w.PartnerID,
		Amount:                    w.Amount,
		AvailableBalanceAtRequest: w.AvailableBalanceAtRequest,
		VNDAmount:                 w.VNDAmount,
		PlatformFee:               w.PlatformFee,
		AuthorReceive:             w.AuthorReceive,
		BankName:                  w.Bank.BankName,
		AccountNumber:             w.Bank.AccountNumber,
		AccountHolder:             w.Bank.AccountHolder,
		Status:                    string(w.Status),
		RejectionReason:           w.RejectionReason,
		TransactionReference:      w.TransactionReference,
		CreatedAt:                 formatTime(w.CreatedAt),
		ApprovedAt:                formatTimePtr(w.ApprovedAt),
		ProcessingAt:              formatTimePtr(w.ProcessingAt),
		RejectedAt:                formatTimePtr(w.RejectedAt),
		CompletedAt:               formatTimePtr(w.CompletedAt),
	}
}

// NewWithdrawalList maps withdrawal requests
func NewWithdrawalList(requests []*entity.WithdrawalRequest) []WithdrawalResponse {
	out := make([]WithdrawalResponse, 0, len(requests))
	for _, w := range requests {
		out = append(out, NewWithdrawalResponse(w))
	}
	return out
}
