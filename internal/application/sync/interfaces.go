package sync

import (
	"context"

	"sdbridge/internal/infrastructure/servicedesk"
)

// TicketSource is the remote ticket backend as the sync workers see it.
// Implementations must surface 401/403 as servicedesk.ErrUnauthorized so the
// credential-failure protocol can distinguish expiry from outages.
type TicketSource interface {
	Authenticate(ctx context.Context, username, password string) (*servicedesk.AuthResult, error)
	ListTickets(ctx context.Context, token string, page, size int, ticketType, sortField string, asc bool) (*servicedesk.TicketPage, error)
	GetTicket(ctx context.Context, token string, ticketID int) (*servicedesk.Ticket, error)
	GetUser(ctx context.Context, token string, userID int) (*servicedesk.UserProfile, error)
}

// Notifier delivers fire-and-forget text to a user's chat channel.
type Notifier interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// Compactor reclaims storage after bulk deletes; optional for cleanup.
type Compactor interface {
	Compact(ctx context.Context) error
}

// ticket listing parameters shared by both scoped engines.
const (
	listTicketType = "VS"
	listSortField  = "id"
	listAscending  = false
)
