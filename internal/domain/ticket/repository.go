package ticket

import (
	"context"
	"time"
)

// Cache is the two-table ticket store: active records and archived records,
// disjoint by key. Implementations must keep each operation a single atomic
// unit; multi-row invariants (disjointness, idempotent archive) are enforced
// by the operations themselves, not by callers holding locks.
type Cache interface {
	// UpsertActive inserts or refreshes an active record. On insert,
	// LastNotifiedStatus is seeded with the record's current status so a
	// freshly observed ticket does not immediately look changed. On update,
	// every field is refreshed except LastNotifiedStatus.
	UpsertActive(ctx context.Context, rec *Record) error

	// Exists reports whether an active record exists for the key.
	Exists(ctx context.Context, userID int64, ticketID int) (bool, error)

	// AcknowledgeNotified sets LastNotifiedStatus after a notification send.
	AcknowledgeNotified(ctx context.Context, userID int64, ticketID int, status Status) error

	// Archive copies the active record into the archived table (replacing any
	// prior archived row for the key) and deletes the active row. Archiving a
	// key with no active record is a no-op.
	Archive(ctx context.Context, userID int64, ticketID int) error

	// PruneActiveNotIn deletes every active record for (userID, viewpoint)
	// whose ticket id is not in keepIDs. An empty keepIDs deletes all active
	// records for that (userID, viewpoint).
	PruneActiveNotIn(ctx context.Context, userID int64, viewpoint Viewpoint, keepIDs []int) (int64, error)

	// ListActive returns the active records for display, most recently
	// refreshed first.
	ListActive(ctx context.Context, userID int64, viewpoint Viewpoint) ([]*Record, error)

	// ListArchived returns the archived records for display, most recently
	// archived first.
	ListArchived(ctx context.Context, userID int64, viewpoint Viewpoint) ([]*Record, error)

	// GetActive returns the active record for the key, or a not found error.
	GetActive(ctx context.Context, userID int64, ticketID int) (*Record, error)

	// WatchPairs returns every tracked (user, ticket) pair across all users.
	WatchPairs(ctx context.Context) ([]WatchPair, error)

	// DeleteArchivedBefore deletes archived records archived before cutoff
	// and returns the number of rows removed.
	DeleteArchivedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
