package credential

import (
	"strings"
	"time"
)

// Role is the ServiceDesk role attached to a linked account.
type Role string

const (
	RoleUser       Role = "USER"
	RoleExecutor   Role = "EXECUTOR"
	RoleDispatcher Role = "DISPATCHER"
	RoleAdmin      Role = "ADMIN"
)

// NormalizeRole maps a stored role string onto a Role; blank means USER.
func NormalizeRole(raw string) Role {
	r := Role(strings.ToUpper(strings.TrimSpace(raw)))
	switch r {
	case RoleExecutor, RoleDispatcher, RoleAdmin:
		return r
	default:
		return RoleUser
	}
}

func (r Role) String() string {
	return string(r)
}

// Credential links a chat user to a ServiceDesk identity. Token is the
// current session token and is cleared whenever the remote rejects it; the
// saved Secret survives token expiry and only an explicit unlink removes it,
// so a silent refresh can restore the session without user interaction.
type Credential struct {
	UserID   int64 // chat platform user id
	RemoteID int   // ServiceDesk user id
	Username string
	Role     Role

	// Secret is the saved ServiceDesk password; empty disables silent refresh.
	Secret string
	Token  string
	ChatID int64

	// Location fields are resolved lazily from the remote profile the first
	// time the dispatcher scope needs them, then reused.
	Region      string
	Location    string
	FullAddress string
	AddressID   *int

	TokenUpdatedAt time.Time
	LinkedAt       time.Time
}

// HasToken reports whether the credential holds a non-empty session token.
func (c *Credential) HasToken() bool {
	return c.Token != ""
}

// CanSilentRefresh reports whether a silent re-authentication is possible.
func (c *Credential) CanSilentRefresh() bool {
	return c.Username != "" && c.Secret != ""
}

// Eligible reports whether background workers may act for this credential:
// it must hold a session token and a chat channel to notify.
func (c *Credential) Eligible() bool {
	return c.HasToken() && c.ChatID != 0
}

// HasLocation reports whether both region and location are known.
func (c *Credential) HasLocation() bool {
	return c.Region != "" && c.Location != ""
}
