package models

import "time"

// TicketActiveModel is the GORM model for the tickets_active table.
// LastNotifiedStatus is seeded on insert and excluded from refresh updates;
// only the acknowledge path writes it afterwards.
type TicketActiveModel struct {
	UserID     int64  `gorm:"column:user_id;primaryKey;autoIncrement:false"`
	TicketID   int    `gorm:"column:ticket_id;primaryKey;autoIncrement:false"`
	Viewpoint  string `gorm:"column:viewpoint;type:varchar(20);index"`
	ExecutorID *int   `gorm:"column:executor_id"`

	Status      string `gorm:"column:status;type:varchar(40)"`
	SLA         string `gorm:"column:sla;type:varchar(100)"`
	Title       string `gorm:"column:title"`
	Description string `gorm:"column:description"`

	CreatedTS     *int64 `gorm:"column:created_ts"`
	EstimatedTS   *int64 `gorm:"column:estimated_ts"`
	ClosedTS      *int64 `gorm:"column:closed_ts"`
	LastUpdatedTS *int64 `gorm:"column:last_updated_ts"`

	ExecutorName string `gorm:"column:executor_name;type:varchar(200)"`
	AuthorName   string `gorm:"column:author_name;type:varchar(200)"`
	Address      string `gorm:"column:address"`
	Category     string `gorm:"column:category;type:varchar(200)"`
	Service      string `gorm:"column:service;type:varchar(200)"`

	Raw []byte `gorm:"column:raw_json"`

	LastNotifiedStatus string `gorm:"column:last_notified_status;type:varchar(40)"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the table name for GORM
func (TicketActiveModel) TableName() string {
	return "tickets_active"
}
