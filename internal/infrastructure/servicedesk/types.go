package servicedesk

import (
	"encoding/json"
	"strings"

	"sdbridge/internal/domain/ticket"
)

// Person is a ServiceDesk user reference embedded in tickets.
type Person struct {
	ID        *int   `json:"id"`
	FIO       string `json:"fio"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Username  string `json:"username"`
}

// DisplayName returns the best available human readable name.
func (p *Person) DisplayName() string {
	if p == nil {
		return ""
	}
	if fio := strings.TrimSpace(p.FIO); fio != "" {
		return fio
	}
	name := strings.TrimSpace(strings.TrimSpace(p.Firstname) + " " + strings.TrimSpace(p.Lastname))
	if name != "" {
		return name
	}
	return strings.TrimSpace(p.Username)
}

// Address is a ServiceDesk address reference.
type Address struct {
	ID          *int   `json:"id"`
	FullAddress string `json:"fullAddress"`
	Region      string `json:"region"`
	Location    string `json:"location"`
}

// Named is a minimal id+name reference (category, service).
type Named struct {
	ID   *int   `json:"id"`
	Name string `json:"name"`
}

// Ticket is a raw ticket object from the ServiceDesk API. Raw preserves the
// exact payload: detail views render from it and status updates must resend
// the full object.
type Ticket struct {
	ID          int    `json:"id"`
	Status      string `json:"status"`
	SLA         string `json:"sla"`
	Title       string `json:"title"`
	Description string `json:"description"`

	CreatedTimestamp     *int64 `json:"createdTimestamp"`
	EstimatedTimestamp   *int64 `json:"estimatedTimestamp"`
	ClosedTimestamp      *int64 `json:"closedTimestamp"`
	LastUpdatedTimestamp *int64 `json:"lastUpdatedTimestamp"`

	Executor *Person  `json:"executor"`
	Author   *Person  `json:"author"`
	Address  *Address `json:"address"`
	Category *Named   `json:"category"`
	Service  *Named   `json:"service"`

	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the ticket and keeps a copy of the original payload.
func (t *Ticket) UnmarshalJSON(data []byte) error {
	type alias Ticket
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*t = Ticket(a)
	t.Raw = append([]byte(nil), data...)
	return nil
}

// NormalizedStatus returns the ticket status as a normalized domain status.
func (t *Ticket) NormalizedStatus() ticket.Status {
	return ticket.NormalizeStatus(t.Status)
}

// ExecutorID returns the assigned executor's id, if any.
func (t *Ticket) ExecutorID() (int, bool) {
	if t.Executor == nil || t.Executor.ID == nil {
		return 0, false
	}
	return *t.Executor.ID, true
}

// Region and Location of the ticket's address, trimmed; empty when absent.
func (t *Ticket) RegionLocation() (string, string) {
	if t.Address == nil {
		return "", ""
	}
	return strings.TrimSpace(t.Address.Region), strings.TrimSpace(t.Address.Location)
}

// Record converts the raw ticket into a cache record for one user and
// viewpoint.
func (t *Ticket) Record(userID int64, viewpoint ticket.Viewpoint) *ticket.Record {
	rec := &ticket.Record{
		UserID:        userID,
		TicketID:      t.ID,
		Viewpoint:     viewpoint,
		Status:        t.NormalizedStatus(),
		SLA:           t.SLA,
		Title:         t.Title,
		Description:   t.Description,
		CreatedTS:     t.CreatedTimestamp,
		EstimatedTS:   t.EstimatedTimestamp,
		ClosedTS:      t.ClosedTimestamp,
		LastUpdatedTS: t.LastUpdatedTimestamp,
		ExecutorName:  t.Executor.DisplayName(),
		AuthorName:    t.Author.DisplayName(),
		Category:      namedName(t.Category),
		Service:       namedName(t.Service),
		Raw:           t.Raw,
	}
	if t.Address != nil {
		rec.Address = strings.TrimSpace(t.Address.FullAddress)
	}
	if id, ok := t.ExecutorID(); ok {
		rec.ExecutorID = &id
	}
	return rec
}

func namedName(n *Named) string {
	if n == nil {
		return ""
	}
	return n.Name
}

// TicketPage is one page of the ticket listing.
type TicketPage struct {
	Tickets    []Ticket `json:"tickets"`
	TotalPages int      `json:"totalPages"`
}

// AuthResult is a successful authentication response.
type AuthResult struct {
	UserID   int
	Username string
	Role     string
	Token    string
}

// UserProfile is a ServiceDesk user profile.
type UserProfile struct {
	ID       int      `json:"id"`
	Username string   `json:"username"`
	Role     string   `json:"role"`
	Address  *Address `json:"address"`
}
