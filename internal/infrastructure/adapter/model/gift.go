package model

import (
	"time"
)

// GiftCatalogItem represents a purchasable gift
type GiftCatalogItem struct {
	ID       string `gorm:"primaryKey;type:varchar(64)"`
	Name     string `gorm:"type:varchar(100);not null"`
	Icon     string `gorm:"type:varchar(255);not null;default:''"`
	GemCost  int64  `gorm:"not null;check:chk_gift_catalog_cost_positive,gem_cost > 0"`
	Active   bool   `gorm:"not null;default:true"`
	Position int    `gorm:"not null;default:0"`
}

// TableName specifies the table name for GiftCatalogItem
func (GiftCatalogItem) TableName() string {
	return "gift_catalog"
}

// Gift represents the database model for sent gifts
type Gift struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)"`
	SenderID    uint64    `gorm:"not null;index"`
	RecipientID uint64    `gorm:"not null;index"`
	CatalogID   string    `gorm:"type:varchar(64);not null"`
	GemAmount   int64     `gorm:"not null"`
	Message     string    `gorm:"type:text"`
	IsAnonymous bool      `gorm:"not null;default:false"`
	PostID      string    `gorm:"type:varchar(64);index"`
	StreamID    string    `gorm:"type:varchar(64);index"`
	Status      string    `gorm:"type:varchar(16);not null"`
	CreatedAt   time.Time `gorm:"not null"`

	// Define relationships
	Sender      Account         `gorm:"foreignKey:SenderID;references:ID;constraint:OnDelete:RESTRICT"`
	Recipient   Account         `gorm:"foreignKey:RecipientID;references:ID;constraint:OnDelete:RESTRICT"`
	CatalogItem GiftCatalogItem `gorm:"foreignKey:CatalogID;references:ID;constraint:OnDelete:RESTRICT"`
}

// TableName specifies the table name for Gift
func (Gift) TableName() string {
	return "gifts"
}
