package tickets

import (
	"context"
	"encoding/json"

	"sdbridge/internal/infrastructure/servicedesk"
)

// Source is the slice of the remote API the interactive ticket operations
// use.
type Source interface {
	GetTicket(ctx context.Context, token string, ticketID int) (*servicedesk.Ticket, error)
	UpdateTicketStatus(ctx context.Context, token string, ticketID int, payload json.RawMessage) error
}
