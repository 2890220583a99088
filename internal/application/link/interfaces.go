package link

import (
	"context"

	"sdbridge/internal/infrastructure/servicedesk"
)

// Authenticator is the slice of the remote API the account linking flows
// need.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*servicedesk.AuthResult, error)
}
