package session

import (
	"context"
	"time"
)

// Session is ephemeral dialog state for one chat user. Sessions are
// TTL-expired by the cleanup worker; nothing in the sync core reads them.
type Session struct {
	UserID    int64
	State     string
	Data      []byte // opaque JSON owned by the dialog layer
	UpdatedAt time.Time
}

// Repository stores dialog sessions keyed by user id.
type Repository interface {
	Upsert(ctx context.Context, s *Session) error
	Get(ctx context.Context, userID int64) (*Session, error)
	Delete(ctx context.Context, userID int64) error

	// DeleteExpired removes sessions not updated within ttl and returns the
	// number of rows removed.
	DeleteExpired(ctx context.Context, ttl time.Duration) (int64, error)
}
