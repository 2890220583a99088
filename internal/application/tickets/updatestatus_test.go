package tickets

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sdbridge/internal/domain/credential"
	"sdbridge/internal/domain/ticket"
	"sdbridge/internal/infrastructure/servicedesk"
	"sdbridge/internal/shared/errors"
	"sdbridge/internal/shared/logger"
)

// nopLogger is a no-op logger for testing.
type nopLogger struct{}

func newNopLogger() logger.Interface { return &nopLogger{} }

func (l *nopLogger) Debug(msg string, args ...any)                   {}
func (l *nopLogger) Info(msg string, args ...any)                    {}
func (l *nopLogger) Warn(msg string, args ...any)                    {}
func (l *nopLogger) Error(msg string, args ...any)                   {}
func (l *nopLogger) With(args ...any) logger.Interface               { return l }
func (l *nopLogger) Named(name string) logger.Interface              { return l }
func (l *nopLogger) Debugw(msg string, keysAndValues ...interface{}) {}
func (l *nopLogger) Infow(msg string, keysAndValues ...interface{})  {}
func (l *nopLogger) Warnw(msg string, keysAndValues ...interface{})  {}
func (l *nopLogger) Errorw(msg string, keysAndValues ...interface{}) {}

// memCache is a minimal in-memory ticket.Cache for use case tests.
type memCache struct {
	active   map[ticket.Key]*ticket.Record
	archived map[ticket.Key]*ticket.Record
}

func newMemCache() *memCache {
	return &memCache{
		active:   make(map[ticket.Key]*ticket.Record),
		archived: make(map[ticket.Key]*ticket.Record),
	}
}

func (c *memCache) UpsertActive(_ context.Context, rec *ticket.Record) error {
	key := ticket.Key{UserID: rec.UserID, TicketID: rec.TicketID}
	cp := *rec
	if prev, ok := c.active[key]; ok {
		cp.LastNotifiedStatus = prev.LastNotifiedStatus
	} else {
		cp.LastNotifiedStatus = rec.Status
	}
	c.active[key] = &cp
	return nil
}

func (c *memCache) Exists(_ context.Context, userID int64, ticketID int) (bool, error) {
	_, ok := c.active[ticket.Key{UserID: userID, TicketID: ticketID}]
	return ok, nil
}

func (c *memCache) AcknowledgeNotified(_ context.Context, userID int64, ticketID int, status ticket.Status) error {
	rec, ok := c.active[ticket.Key{UserID: userID, TicketID: ticketID}]
	if !ok {
		return ticket.ErrRecordNotFound
	}
	rec.LastNotifiedStatus = status
	return nil
}

func (c *memCache) Archive(_ context.Context, userID int64, ticketID int) error {
	key := ticket.Key{UserID: userID, TicketID: ticketID}
	rec, ok := c.active[key]
	if !ok {
		return nil
	}
	cp := *rec
	cp.ArchivedAt = time.Now()
	c.archived[key] = &cp
	delete(c.active, key)
	return nil
}

func (c *memCache) PruneActiveNotIn(context.Context, int64, ticket.Viewpoint, []int) (int64, error) {
	return 0, nil
}

func (c *memCache) ListActive(_ context.Context, userID int64, viewpoint ticket.Viewpoint) ([]*ticket.Record, error) {
	var out []*ticket.Record
	for key, rec := range c.active {
		if key.UserID == userID && rec.Viewpoint == viewpoint {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (c *memCache) ListArchived(_ context.Context, userID int64, viewpoint ticket.Viewpoint) ([]*ticket.Record, error) {
	var out []*ticket.Record
	for key, rec := range c.archived {
		if key.UserID == userID && rec.Viewpoint == viewpoint {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (c *memCache) GetActive(_ context.Context, userID int64, ticketID int) (*ticket.Record, error) {
	rec, ok := c.active[ticket.Key{UserID: userID, TicketID: ticketID}]
	if !ok {
		return nil, ticket.ErrRecordNotFound
	}
	cp := *rec
	return &cp, nil
}

func (c *memCache) WatchPairs(context.Context) ([]ticket.WatchPair, error) { return nil, nil }

func (c *memCache) DeleteArchivedBefore(context.Context, time.Time) (int64, error) { return 0, nil }

// memCredGetter serves one credential.
type memCredGetter struct {
	cred *credential.Credential
}

func (r *memCredGetter) Upsert(context.Context, *credential.Credential) error { return nil }
func (r *memCredGetter) Get(_ context.Context, userID int64) (*credential.Credential, error) {
	if r.cred == nil || r.cred.UserID != userID {
		return nil, credential.ErrCredentialNotFound
	}
	cp := *r.cred
	return &cp, nil
}
func (r *memCredGetter) UpdateToken(context.Context, int64, string) error { return nil }
func (r *memCredGetter) ClearToken(context.Context, int64) error          { return nil }
func (r *memCredGetter) ClearSecret(context.Context, int64) error         { return nil }
func (r *memCredGetter) SetChatID(context.Context, int64, int64) error    { return nil }
func (r *memCredGetter) SetLocation(context.Context, int64, string, string, string, *int) error {
	return nil
}
func (r *memCredGetter) ListEligibleByRole(context.Context, credential.Role) ([]*credential.Credential, error) {
	return nil, nil
}
func (r *memCredGetter) ListWithSecret(context.Context) ([]*credential.Credential, error) {
	return nil, nil
}

// fakeTicketSource is a Source with function fields.
type fakeTicketSource struct {
	getTicketFunc    func(ctx context.Context, token string, ticketID int) (*servicedesk.Ticket, error)
	updateStatusFunc func(ctx context.Context, token string, ticketID int, payload json.RawMessage) error
}

func (s *fakeTicketSource) GetTicket(ctx context.Context, token string, ticketID int) (*servicedesk.Ticket, error) {
	if s.getTicketFunc == nil {
		return nil, fmt.Errorf("unexpected GetTicket call")
	}
	return s.getTicketFunc(ctx, token, ticketID)
}

func (s *fakeTicketSource) UpdateTicketStatus(ctx context.Context, token string, ticketID int, payload json.RawMessage) error {
	if s.updateStatusFunc == nil {
		return fmt.Errorf("unexpected UpdateTicketStatus call")
	}
	return s.updateStatusFunc(ctx, token, ticketID, payload)
}

const remoteTicketJSON = `{
	"id": 10,
	"status": "In progress",
	"title": "broken printer",
	"customField": {"nested": true},
	"executor": {"id": 42, "fio": "Exec Utor"}
}`

func remoteTicket(t *testing.T) *servicedesk.Ticket {
	t.Helper()
	var tk servicedesk.Ticket
	require.NoError(t, tk.UnmarshalJSON([]byte(remoteTicketJSON)))
	return &tk
}

func seededCache(t *testing.T) *memCache {
	t.Helper()
	cache := newMemCache()
	rec := remoteTicket(t).Record(1, ticket.ViewpointExecutor)
	require.NoError(t, cache.UpsertActive(context.Background(), rec))
	return cache
}

func executorCred() *memCredGetter {
	return &memCredGetter{cred: &credential.Credential{
		UserID: 1, RemoteID: 42, Username: "exec",
		Role: credential.RoleExecutor, Token: "tok", ChatID: 100,
	}}
}

func TestUpdateStatus_ResendsFullPayload(t *testing.T) {
	ctx := context.Background()
	cache := seededCache(t)

	var sent json.RawMessage
	source := &fakeTicketSource{
		getTicketFunc: func(_ context.Context, _ string, _ int) (*servicedesk.Ticket, error) {
			return remoteTicket(t), nil
		},
		updateStatusFunc: func(_ context.Context, _ string, _ int, payload json.RawMessage) error {
			sent = payload
			return nil
		},
	}

	uc := NewUpdateStatusUseCase(cache, executorCred(), source, newNopLogger())
	rec, err := uc.Execute(ctx, 1, 10, ticket.StatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, ticket.StatusAccepted, rec.Status)

	// The PUT body is the full remote object with only the status swapped.
	var obj map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(sent, &obj))
	assert.JSONEq(t, `"ACCEPTED"`, string(obj["status"]))
	assert.JSONEq(t, `{"nested": true}`, string(obj["customField"]),
		"fields the bridge does not model must be resent untouched")
	assert.JSONEq(t, `"broken printer"`, string(obj["title"]))

	// The cache reflects the change and will not re-notify it.
	cached, err := cache.GetActive(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, ticket.StatusAccepted, cached.Status)
	assert.Equal(t, ticket.StatusAccepted, cached.LastNotifiedStatus)
	assert.Equal(t, ticket.ViewpointExecutor, cached.Viewpoint)
}

func TestUpdateStatus_TerminalArchives(t *testing.T) {
	ctx := context.Background()
	cache := seededCache(t)
	source := &fakeTicketSource{
		getTicketFunc: func(_ context.Context, _ string, _ int) (*servicedesk.Ticket, error) {
			return remoteTicket(t), nil
		},
		updateStatusFunc: func(context.Context, string, int, json.RawMessage) error { return nil },
	}

	uc := NewUpdateStatusUseCase(cache, executorCred(), source, newNopLogger())
	_, err := uc.Execute(ctx, 1, 10, ticket.StatusCompleted)
	require.NoError(t, err)

	_, err = cache.GetActive(ctx, 1, 10)
	assert.ErrorIs(t, err, ticket.ErrRecordNotFound)

	archived, err := cache.ListArchived(ctx, 1, ticket.ViewpointExecutor)
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.Equal(t, ticket.StatusCompleted, archived[0].Status)
}

func TestUpdateStatus_RemoteRejectionLeavesCacheAlone(t *testing.T) {
	ctx := context.Background()
	cache := seededCache(t)
	source := &fakeTicketSource{
		getTicketFunc: func(_ context.Context, _ string, _ int) (*servicedesk.Ticket, error) {
			return remoteTicket(t), nil
		},
		updateStatusFunc: func(context.Context, string, int, json.RawMessage) error {
			return &servicedesk.UnauthorizedError{StatusCode: 401}
		},
	}

	uc := NewUpdateStatusUseCase(cache, executorCred(), source, newNopLogger())
	_, err := uc.Execute(ctx, 1, 10, ticket.StatusAccepted)
	require.Error(t, err)
	assert.True(t, errors.IsUnauthorized(err))

	cached, err := cache.GetActive(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, ticket.StatusInProgress, cached.Status, "a failed update must not touch the cache")
}

func TestUpdateStatus_UntrackedTicket(t *testing.T) {
	uc := NewUpdateStatusUseCase(newMemCache(), executorCred(), &fakeTicketSource{}, newNopLogger())

	_, err := uc.Execute(context.Background(), 1, 99, ticket.StatusAccepted)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestGetTicket_RefreshFoldsRemoteIntoCache(t *testing.T) {
	ctx := context.Background()
	cache := seededCache(t)

	updated := `{"id": 10, "status": "Accepted", "title": "broken printer", "executor": {"id": 42}}`
	source := &fakeTicketSource{
		getTicketFunc: func(_ context.Context, _ string, _ int) (*servicedesk.Ticket, error) {
			var tk servicedesk.Ticket
			require.NoError(t, tk.UnmarshalJSON([]byte(updated)))
			return &tk, nil
		},
	}

	uc := NewGetTicketUseCase(cache, executorCred(), source, newNopLogger())
	rec, err := uc.Execute(ctx, 1, 10, true)
	require.NoError(t, err)
	assert.Equal(t, ticket.StatusAccepted, rec.Status)
	assert.Equal(t, ticket.StatusInProgress, rec.LastNotifiedStatus,
		"an interactive refresh must not swallow a pending notification")

	cached, err := cache.GetActive(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, ticket.StatusAccepted, cached.Status)
}

func TestGetTicket_RemoteFailureServesCache(t *testing.T) {
	ctx := context.Background()
	cache := seededCache(t)
	source := &fakeTicketSource{
		getTicketFunc: func(context.Context, string, int) (*servicedesk.Ticket, error) {
			return nil, fmt.Errorf("connection refused")
		},
	}

	uc := NewGetTicketUseCase(cache, executorCred(), source, newNopLogger())
	rec, err := uc.Execute(ctx, 1, 10, true)
	require.NoError(t, err)
	assert.Equal(t, ticket.StatusInProgress, rec.Status)
}

func TestListTickets(t *testing.T) {
	ctx := context.Background()
	cache := seededCache(t)
	require.NoError(t, cache.Archive(ctx, 1, 10))

	uc := NewListTicketsUseCase(cache, newNopLogger())

	active, err := uc.Execute(ctx, 1, ticket.ViewpointExecutor, false)
	require.NoError(t, err)
	assert.Empty(t, active)

	archived, err := uc.Execute(ctx, 1, ticket.ViewpointExecutor, true)
	require.NoError(t, err)
	assert.Len(t, archived, 1)
}
