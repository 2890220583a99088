package ticket

import "strings"

// Status is a normalized (upper-case, trimmed) ServiceDesk ticket status code.
type Status string

const (
	StatusOpened     Status = "OPENED"
	StatusInProgress Status = "INPROGRESS"
	StatusAccepted   Status = "ACCEPTED"
	StatusRepair     Status = "REPAIR"
	StatusPostponed  Status = "POSTPONED"
	StatusCompleted  Status = "COMPLETED"
	StatusClosed     Status = "CLOSED"
	StatusCanceled   Status = "CANCELED"
)

// terminalStatuses is the set of codes after which a ticket is archived.
var terminalStatuses = map[Status]bool{
	StatusClosed:    true,
	StatusCompleted: true,
	StatusCanceled:  true,
}

var statusLabels = map[Status]string{
	StatusOpened:     "open",
	StatusInProgress: "in progress",
	StatusAccepted:   "accepted",
	StatusRepair:     "under repair",
	StatusPostponed:  "postponed",
	StatusCompleted:  "completed",
	StatusClosed:     "closed",
	StatusCanceled:   "canceled",
}

// NormalizeStatus converts an arbitrary remote status value into a Status.
// Case, surrounding whitespace and inner separators are ignored, so
// "In progress", "IN_PROGRESS" and "INPROGRESS" all map to the same code.
func NormalizeStatus(raw string) Status {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s)
	return Status(s)
}

// IsTerminal reports whether the status represents a closed outcome.
func (s Status) IsTerminal() bool {
	return terminalStatuses[s]
}

// IsZero reports whether the status is empty.
func (s Status) IsZero() bool {
	return s == ""
}

// Label returns a human readable label for the status. Unknown codes are
// returned as-is so that new remote statuses still render something useful.
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	if s == "" {
		return "?"
	}
	return string(s)
}

func (s Status) String() string {
	return string(s)
}
