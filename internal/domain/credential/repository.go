package credential

import "context"

// Repository is the per-user credential store. Every write is a single-row
// operation; workers read it each tick and only the reauth path and the
// credential-failure protocol write to it.
type Repository interface {
	// Upsert creates or replaces the credential for cred.UserID. An empty
	// Secret on update keeps the previously saved secret.
	Upsert(ctx context.Context, cred *Credential) error

	// Get returns the credential for the user, or a not found error.
	Get(ctx context.Context, userID int64) (*Credential, error)

	// UpdateToken overwrites the session token.
	UpdateToken(ctx context.Context, userID int64, token string) error

	// ClearToken empties the session token, leaving the saved secret intact.
	ClearToken(ctx context.Context, userID int64) error

	// ClearSecret removes the saved secret and token (explicit unlink).
	ClearSecret(ctx context.Context, userID int64) error

	// SetChatID records the chat channel used for notifications.
	SetChatID(ctx context.Context, userID int64, chatID int64) error

	// SetLocation stores the lazily resolved region/location/address.
	SetLocation(ctx context.Context, userID int64, region, location, fullAddress string, addressID *int) error

	// ListEligibleByRole returns credentials with the given role holding a
	// non-empty token and a chat id.
	ListEligibleByRole(ctx context.Context, role Role) ([]*Credential, error)

	// ListWithSecret returns credentials with both a saved username and
	// secret and a chat id, regardless of token state.
	ListWithSecret(ctx context.Context) ([]*Credential, error)
}
