package models

import "time"

// TicketArchivedModel is the GORM model for the tickets_archived table. Rows
// arrive here exactly once, when a ticket is first observed in a terminal
// status; there is no last_notified_status column on purpose.
type TicketArchivedModel struct {
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

	ArchivedAt time.Time `gorm:"column:archived_at;index"`
}

// TableName returns the table name for GORM
func (TicketArchivedModel) TableName() string {
	return "tickets_archived"
}
