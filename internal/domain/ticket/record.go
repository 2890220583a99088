package ticket

import "time"

// Record is one cached ticket observation for one user. The composite key is
// (UserID, TicketID); a key lives in the active table or the archived table,
// never both. LastNotifiedStatus is only meaningful for active records: it is
// set once on insert and advanced solely by acknowledging a sent
// notification, never by a routine field refresh.
type Record struct {
	UserID   int64
	TicketID int

	Viewpoint  Viewpoint
	ExecutorID *int

	Status      Status
	SLA         string
	Title       string
	Description string

	CreatedTS     *int64
	EstimatedTS   *int64
	ClosedTS      *int64
	LastUpdatedTS *int64

	ExecutorName string
	AuthorName   string
	Address      string
	Category     string
	Service      string

	// Raw is the full remote payload, kept for detail views and for the
	// full-object resend required by status updates.
	Raw []byte

	LastNotifiedStatus Status

	UpdatedAt  time.Time
	ArchivedAt time.Time
}

// Key identifies a record within either table.
type Key struct {
	UserID   int64
	TicketID int
}

// WatchPair is one (user, ticket) pair tracked by the single-ticket watcher,
// together with the last status the user was notified about. Viewpoint is
// carried so a watcher refresh preserves the tag the row was cached under.
type WatchPair struct {
	UserID             int64
	TicketID           int
	Viewpoint          Viewpoint
	LastNotifiedStatus Status
}
