package model

// Profile is the identity store's public view of a user. The ledger only reads it.
type Profile struct {
	UserID      uint64 `gorm:"primaryKey;autoIncrement:false"`
	DisplayName string `gorm:"type:varchar(100);not null"`
}

// TableName specifies the table name for Profile
func (Profile) TableName() string {
	return "profiles"
}
