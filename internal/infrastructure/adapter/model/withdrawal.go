package model

import (
	"time"
)

// WithdrawalRequest represents the database model for payout requests
type WithdrawalRequest struct {
	ID                        string `gorm:"primaryKey;type:varchar(36)"`
	PartnerID                 uint64 `gorm:"not null;index:idx_withdrawal_requests_partner_created,priority:1"`
	Amount                    int64  `gorm:"not null;check:chk_withdrawal_requests_amount_positive,amount > 0"`
	AvailableBalanceAtRequest int64  `gorm:"not null"`
	VNDAmount                 int64  `gorm:"column:vnd_amount;not null"`
	PlatformFee               int64  `gorm:"not null"`
	AuthorReceive             int64  `gorm:"not null"`
	BankName                  string `gorm:"type:varchar(100);not null"`
	BankAccountNumber         string `gorm:"type:varchar(50);not null"`
	BankAccountHolder         string `gorm:"type:varchar(100);not null"`
	Status                    string `gorm:"type:varchar(16);not null;index"`
	ProcessedBy               *uint64
	RejectionReason           string    `gorm:"type:text"`
	TransactionReference      string    `gorm:"type:varchar(128)"`
	CreatedAt                 time.Time `gorm:"not null;index:idx_withdrawal_requests_partner_created,priority:2"`
	ApprovedAt                *time.Time
	ProcessingAt              *time.Time
	RejectedAt                *time.Time
	CompletedAt               *time.Time
	UpdatedAt                 time.Time `gorm:"not null"`

	// Define relationships
	Partner Account `gorm:"foreignKey:PartnerID;references:ID;constraint:OnDelete:RESTRICT"`
}

// TableName specifies the table name for WithdrawalRequest
func (WithdrawalRequest) TableName() string {
	return "withdrawal_requests"
}
