package models

import "time"

// SessionModel is the GORM model for the sessions table (ephemeral dialog
// state, TTL-expired by the cleanup worker).
type SessionModel struct {
	UserID    int64     `gorm:"column:user_id;primaryKey;autoIncrement:false"`
	State     string    `gorm:"column:state;type:varchar(100);not null"`
	Data      []byte    `gorm:"column:data_json"`
	UpdatedAt time.Time `gorm:"column:updated_at;index;autoUpdateTime"`
}

// TableName returns the table name for GORM
func (SessionModel) TableName() string {
	return "sessions"
}

// KVModel is the GORM model for the app_kv table, an opaque key/value store
// for small operational markers such as cleanup bookkeeping.
type KVModel struct {
	Key       string    `gorm:"column:k;primaryKey;type:varchar(200)"`
	Value     string    `gorm:"column:v;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the table name for GORM
func (KVModel) TableName() string {
	return "app_kv"
}
