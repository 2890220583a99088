package sync

import (
	"fmt"
	"strings"

	"sdbridge/internal/domain/ticket"
	"sdbridge/internal/infrastructure/servicedesk"
)

// Notification wording. Terminal outcomes get distinct messages per code;
// anything unexpected falls back to a generic "finished" line.

func assignedTicketMessage(t *servicedesk.Ticket) string {
	status := t.NormalizedStatus()
	if status.IsZero() {
		status = ticket.StatusOpened
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🆕 Ticket #%d assigned to you · %s", t.ID, status.Label())
	if title := strings.TrimSpace(t.Title); title != "" {
		b.WriteString("\n" + title)
	}
	if author := t.Author.DisplayName(); author != "" {
		b.WriteString("\nAuthor: " + author)
	}
	if t.Address != nil {
		if addr := strings.TrimSpace(t.Address.FullAddress); addr != "" {
			b.WriteString("\nAddress: " + addr)
		}
	}
	return b.String()
}

func locationTicketMessage(t *servicedesk.Ticket) string {
	status := t.NormalizedStatus()
	if status.IsZero() {
		status = ticket.StatusOpened
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🆕 New ticket in your area #%d · %s", t.ID, status.Label())
	if title := strings.TrimSpace(t.Title); title != "" {
		b.WriteString("\n" + title)
	}
	return b.String()
}

func statusChangedMessage(ticketID int, status ticket.Status) string {
	return fmt.Sprintf("Ticket #%d: status changed → %s", ticketID, status.Label())
}

func terminalMessage(ticketID int, status ticket.Status) string {
	switch status {
	case ticket.StatusClosed:
		return fmt.Sprintf("Ticket #%d has been closed ✅", ticketID)
	case ticket.StatusCompleted:
		return fmt.Sprintf("Ticket #%d has been completed ✅", ticketID)
	case ticket.StatusCanceled:
		return fmt.Sprintf("Ticket #%d has been canceled ❌", ticketID)
	default:
		return fmt.Sprintf("Ticket #%d has been finished (%s)", ticketID, status.Label())
	}
}

func sessionExpiredMessage() string {
	return "⚠️ Your ServiceDesk session has expired or was reset.\nPlease sign in again: /link"
}

func credentialInvalidMessage() string {
	return "⚠️ Your ServiceDesk session is no longer valid.\nPlease sign in again: /link"
}

func reauthTransientMessage() string {
	return "⚠️ Could not refresh your ServiceDesk session (temporary error). Will retry later."
}
