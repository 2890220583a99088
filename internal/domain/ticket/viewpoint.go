package ticket

import "strings"

// Viewpoint is the role-relationship under which a ticket is cached for a
// user: personally created (USER, the default), assigned to the user
// (EXECUTOR), or in the user's location (DISPATCHER).
type Viewpoint string

const (
	ViewpointUser       Viewpoint = "USER"
	ViewpointExecutor   Viewpoint = "EXECUTOR"
	ViewpointDispatcher Viewpoint = "DISPATCHER"
)

// NormalizeViewpoint maps a stored tag onto a Viewpoint. A blank or unknown
// tag is treated as USER, matching rows written before tagging existed.
func NormalizeViewpoint(raw string) Viewpoint {
	switch Viewpoint(strings.ToUpper(strings.TrimSpace(raw))) {
	case ViewpointExecutor:
		return ViewpointExecutor
	case ViewpointDispatcher:
		return ViewpointDispatcher
	default:
		return ViewpointUser
	}
}

func (v Viewpoint) String() string {
	return string(v)
}
