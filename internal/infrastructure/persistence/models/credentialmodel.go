package models

import "time"

// CredentialModel is the GORM model for the credentials table.
type CredentialModel struct {
	UserID   int64  `gorm:"column:user_id;primaryKey;autoIncrement:false"`
	RemoteID int    `gorm:"column:remote_id;not null"`
	Username string `gorm:"column:username;type:varchar(100)"`
	Role     string `gorm:"column:role;type:varchar(20);index"`

	Secret string `gorm:"column:secret;type:varchar(200)"`
	Token  string `gorm:"column:token"`
	ChatID int64  `gorm:"column:chat_id"`

	Region      string `gorm:"column:region;type:varchar(100)"`
	Location    string `gorm:"column:location;type:varchar(100)"`
	FullAddress string `gorm:"column:full_address"`
	AddressID   *int   `gorm:"column:address_id"`

	TokenUpdatedAt time.Time `gorm:"column:token_updated_at"`
	LinkedAt       time.Time `gorm:"column:linked_at;autoCreateTime"`
}

// TableName returns the table name for GORM
func (CredentialModel) TableName() string {
	return "credentials"
}
