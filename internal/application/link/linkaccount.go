package link

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"sdbridge/internal/domain/credential"
	"sdbridge/internal/infrastructure/servicedesk"
	"sdbridge/internal/shared/errors"
	"sdbridge/internal/shared/logger"
)

// LinkAccountUseCase signs a chat user into ServiceDesk and stores the
// resulting credential.
type LinkAccountUseCase struct {
	creds credential.Repository
	auth  Authenticator
	log   logger.Interface
}

func NewLinkAccountUseCase(creds credential.Repository, auth Authenticator, log logger.Interface) *LinkAccountUseCase {
	return &LinkAccountUseCase{creds: creds, auth: auth, log: log}
}

// Execute authenticates against the remote and upserts the credential.
// saveSecret controls whether the password is kept for silent refresh; when
// false only the session token is stored and the user will have to re-link
// once it expires.
func (uc *LinkAccountUseCase) Execute(ctx context.Context, userID, chatID int64, username, password string, saveSecret bool) (*credential.Credential, error) {
	if username == "" || password == "" {
		return nil, errors.NewValidationError("username and password are required")
	}

	auth, err := uc.auth.Authenticate(ctx, username, password)
	if err != nil {
		if stderrors.Is(err, servicedesk.ErrUnauthorized) {
			return nil, errors.NewUnauthorizedError("invalid username or password")
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	now := time.Now()
	cred := &credential.Credential{
		UserID:         userID,
		RemoteID:       auth.UserID,
		Username:       auth.Username,
		Role:           credential.NormalizeRole(auth.Role),
		Token:          auth.Token,
		ChatID:         chatID,
		TokenUpdatedAt: now,
		LinkedAt:       now,
	}
	if saveSecret {
		cred.Secret = password
	}

	if err := uc.creds.Upsert(ctx, cred); err != nil {
		return nil, fmt.Errorf("store credential: %w", err)
	}

	uc.log.Infow("account linked",
		"user_id", userID,
		"username", cred.Username,
		"role", cred.Role.String(),
		"secret_saved", saveSecret,
	)
	return cred, nil
}
