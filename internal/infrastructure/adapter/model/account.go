package model

import (
	"time"
)

// Account represents the database model for gem accounts
type Account struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement:false"`
	Balance        int64     `gorm:"not null;default:0;check:chk_accounts_balance_non_negative,balance >= 0"`
	HeldBalance    int64     `gorm:"not null;default:0;check:chk_accounts_held_within_balance,held_balance >= 0 AND held_balance <= balance"`
	LifetimeEarned int64     `gorm:"not null;default:0"`
	LifetimeSpent  int64     `gorm:"not null;default:0"`
	Version        int64     `gorm:"not null;default:0"`
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

// TableName specifies the table name for Account
func (Account) TableName() string {
	return "accounts"
}
