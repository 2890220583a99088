package sync

import (
	"context"
	"fmt"
	"sort"
	"time"

	"sdbridge/internal/domain/credential"
	"sdbridge/internal/domain/ticket"
	"sdbridge/internal/infrastructure/servicedesk"
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

// fakeCache is an in-memory ticket.Cache with the same invariants as the
// real repository: disjoint tables, seeded LastNotifiedStatus, idempotent
// archive.
type fakeCache struct {
	active   map[ticket.Key]*ticket.Record
	archived map[ticket.Key]*ticket.Record
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		active:   make(map[ticket.Key]*ticket.Record),
		archived: make(map[ticket.Key]*ticket.Record),
	}
}

func (c *fakeCache) UpsertActive(_ context.Context, rec *ticket.Record) error {
	key := ticket.Key{UserID: rec.UserID, TicketID: rec.TicketID}
	cp := *rec
	if prev, ok := c.active[key]; ok {
		cp.LastNotifiedStatus = prev.LastNotifiedStatus
	} else {
		cp.LastNotifiedStatus = rec.Status
	}
	cp.UpdatedAt = time.Now()
	c.active[key] = &cp
	return nil
}

func (c *fakeCache) Exists(_ context.Context, userID int64, ticketID int) (bool, error) {
	_, ok := c.active[ticket.Key{UserID: userID, TicketID: ticketID}]
	return ok, nil
}

func (c *fakeCache) AcknowledgeNotified(_ context.Context, userID int64, ticketID int, status ticket.Status) error {
	rec, ok := c.active[ticket.Key{UserID: userID, TicketID: ticketID}]
	if !ok {
		return ticket.ErrRecordNotFound
	}
	rec.LastNotifiedStatus = status
	return nil
}

func (c *fakeCache) Archive(_ context.Context, userID int64, ticketID int) error {
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

func (c *fakeCache) PruneActiveNotIn(_ context.Context, userID int64, viewpoint ticket.Viewpoint, keepIDs []int) (int64, error) {
	keep := make(map[int]bool, len(keepIDs))
	for _, id := range keepIDs {
		keep[id] = true
	}
	var pruned int64
	for key, rec := range c.active {
		if key.UserID != userID || rec.Viewpoint != viewpoint {
			continue
		}
		if !keep[key.TicketID] {
			delete(c.active, key)
			pruned++
		}
	}
	return pruned, nil
}

func (c *fakeCache) ListActive(_ context.Context, userID int64, viewpoint ticket.Viewpoint) ([]*ticket.Record, error) {
	var out []*ticket.Record
	for key, rec := range c.active {
		if key.UserID == userID && rec.Viewpoint == viewpoint {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TicketID < out[j].TicketID })
	return out, nil
}

func (c *fakeCache) ListArchived(_ context.Context, userID int64, viewpoint ticket.Viewpoint) ([]*ticket.Record, error) {
	var out []*ticket.Record
	for key, rec := range c.archived {
		if key.UserID == userID && rec.Viewpoint == viewpoint {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TicketID < out[j].TicketID })
	return out, nil
}

func (c *fakeCache) GetActive(_ context.Context, userID int64, ticketID int) (*ticket.Record, error) {
	rec, ok := c.active[ticket.Key{UserID: userID, TicketID: ticketID}]
	if !ok {
		return nil, ticket.ErrRecordNotFound
	}
	cp := *rec
	return &cp, nil
}

func (c *fakeCache) WatchPairs(_ context.Context) ([]ticket.WatchPair, error) {
	var out []ticket.WatchPair
	for key, rec := range c.active {
		out = append(out, ticket.WatchPair{
			UserID:             key.UserID,
			TicketID:           key.TicketID,
			Viewpoint:          rec.Viewpoint,
			LastNotifiedStatus: rec.LastNotifiedStatus,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		return out[i].TicketID < out[j].TicketID
	})
	return out, nil
}

func (c *fakeCache) DeleteArchivedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	var removed int64
	for key, rec := range c.archived {
		if rec.ArchivedAt.Before(cutoff) {
			delete(c.archived, key)
			removed++
		}
	}
	return removed, nil
}

// fakeCredRepo is an in-memory credential.Repository.
type fakeCredRepo struct {
	creds map[int64]*credential.Credential
}

func newFakeCredRepo(creds ...*credential.Credential) *fakeCredRepo {
	r := &fakeCredRepo{creds: make(map[int64]*credential.Credential)}
	for _, c := range creds {
		cp := *c
		r.creds[c.UserID] = &cp
	}
	return r
}

func (r *fakeCredRepo) Upsert(_ context.Context, cred *credential.Credential) error {
	cp := *cred
	if prev, ok := r.creds[cred.UserID]; ok && cp.Secret == "" {
		cp.Secret = prev.Secret
	}
	r.creds[cred.UserID] = &cp
	return nil
}

func (r *fakeCredRepo) Get(_ context.Context, userID int64) (*credential.Credential, error) {
	cred, ok := r.creds[userID]
	if !ok {
		return nil, credential.ErrCredentialNotFound
	}
	cp := *cred
	return &cp, nil
}

func (r *fakeCredRepo) UpdateToken(_ context.Context, userID int64, token string) error {
	cred, ok := r.creds[userID]
	if !ok {
		return credential.ErrCredentialNotFound
	}
	cred.Token = token
	cred.TokenUpdatedAt = time.Now()
	return nil
}

func (r *fakeCredRepo) ClearToken(_ context.Context, userID int64) error {
	cred, ok := r.creds[userID]
	if !ok {
		return credential.ErrCredentialNotFound
	}
	cred.Token = ""
	return nil
}

func (r *fakeCredRepo) ClearSecret(_ context.Context, userID int64) error {
	cred, ok := r.creds[userID]
	if !ok {
		return credential.ErrCredentialNotFound
	}
	cred.Secret = ""
	cred.Token = ""
	return nil
}

func (r *fakeCredRepo) SetChatID(_ context.Context, userID int64, chatID int64) error {
	cred, ok := r.creds[userID]
	if !ok {
		return credential.ErrCredentialNotFound
	}
	cred.ChatID = chatID
	return nil
}

func (r *fakeCredRepo) SetLocation(_ context.Context, userID int64, region, location, fullAddress string, addressID *int) error {
	cred, ok := r.creds[userID]
	if !ok {
		return credential.ErrCredentialNotFound
	}
	cred.Region = region
	cred.Location = location
	cred.FullAddress = fullAddress
	cred.AddressID = addressID
	return nil
}

func (r *fakeCredRepo) ListEligibleByRole(_ context.Context, role credential.Role) ([]*credential.Credential, error) {
	var out []*credential.Credential
	for _, cred := range r.creds {
		if cred.Role == role && cred.Eligible() {
			cp := *cred
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (r *fakeCredRepo) ListWithSecret(_ context.Context) ([]*credential.Credential, error) {
	var out []*credential.Credential
	for _, cred := range r.creds {
		if cred.Username != "" && cred.Secret != "" && cred.ChatID != 0 {
			cp := *cred
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// fakeSource is a TicketSource with function fields.
type fakeSource struct {
	authenticateFunc func(ctx context.Context, username, password string) (*servicedesk.AuthResult, error)
	listTicketsFunc  func(ctx context.Context, token string, page, size int) (*servicedesk.TicketPage, error)
	getTicketFunc    func(ctx context.Context, token string, ticketID int) (*servicedesk.Ticket, error)
	getUserFunc      func(ctx context.Context, token string, userID int) (*servicedesk.UserProfile, error)
}

func (s *fakeSource) Authenticate(ctx context.Context, username, password string) (*servicedesk.AuthResult, error) {
	if s.authenticateFunc == nil {
		return nil, fmt.Errorf("unexpected Authenticate call")
	}
	return s.authenticateFunc(ctx, username, password)
}

func (s *fakeSource) ListTickets(ctx context.Context, token string, page, size int, _, _ string, _ bool) (*servicedesk.TicketPage, error) {
	if s.listTicketsFunc == nil {
		return nil, fmt.Errorf("unexpected ListTickets call")
	}
	return s.listTicketsFunc(ctx, token, page, size)
}

func (s *fakeSource) GetTicket(ctx context.Context, token string, ticketID int) (*servicedesk.Ticket, error) {
	if s.getTicketFunc == nil {
		return nil, fmt.Errorf("unexpected GetTicket call")
	}
	return s.getTicketFunc(ctx, token, ticketID)
}

func (s *fakeSource) GetUser(ctx context.Context, token string, userID int) (*servicedesk.UserProfile, error) {
	if s.getUserFunc == nil {
		return nil, fmt.Errorf("unexpected GetUser call")
	}
	return s.getUserFunc(ctx, token, userID)
}

// sentMessage is one delivery recorded by fakeNotifier.
type sentMessage struct {
	ChatID int64
	Text   string
}

// fakeNotifier records sends; chat ids in failFor reject delivery.
type fakeNotifier struct {
	sent    []sentMessage
	failFor map[int64]bool
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{failFor: make(map[int64]bool)}
}

func (n *fakeNotifier) Send(_ context.Context, chatID int64, text string) error {
	if n.failFor[chatID] {
		return fmt.Errorf("delivery failed for chat %d", chatID)
	}
	n.sent = append(n.sent, sentMessage{ChatID: chatID, Text: text})
	return nil
}

func (n *fakeNotifier) sentTo(chatID int64) []string {
	var out []string
	for _, msg := range n.sent {
		if msg.ChatID == chatID {
			out = append(out, msg.Text)
		}
	}
	return out
}

// mustTicket builds a servicedesk ticket from JSON, the same way the client
// decodes it, so Raw is populated.
func mustTicket(data string) servicedesk.Ticket {
	var t servicedesk.Ticket
	if err := t.UnmarshalJSON([]byte(data)); err != nil {
		panic(err)
	}
	return t
}

func ticketJSON(id int, status string, executorID int, region, location string) string {
	return fmt.Sprintf(`{
		"id": %d,
		"status": %q,
		"title": "Ticket %d",
		"executor": {"id": %d, "fio": "Exec Utor"},
		"author": {"fio": "Aut Hor"},
		"address": {"id": 7, "fullAddress": "Main st. 1", "region": %q, "location": %q}
	}`, id, status, id, executorID, region, location)
}
