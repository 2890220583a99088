package link

import (
	"context"
	stderrors "errors"
	"fmt"

	"sdbridge/internal/domain/credential"
	"sdbridge/internal/infrastructure/servicedesk"
	"sdbridge/internal/shared/errors"
	"sdbridge/internal/shared/logger"
)

// SilentRefreshUseCase re-authenticates one user from their saved secret,
// on demand, e.g. when an interactive command hits an expired token.
type SilentRefreshUseCase struct {
	creds credential.Repository
	auth  Authenticator
	log   logger.Interface
}

func NewSilentRefreshUseCase(creds credential.Repository, auth Authenticator, log logger.Interface) *SilentRefreshUseCase {
	return &SilentRefreshUseCase{creds: creds, auth: auth, log: log}
}

// Execute refreshes the user's token and returns the updated credential.
// It fails with an unauthorized error when no secret is saved or the saved
// secret was rejected; the caller should then send the user to re-link.
func (uc *SilentRefreshUseCase) Execute(ctx context.Context, userID int64) (*credential.Credential, error) {
	cred, err := uc.creds.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load credential: %w", err)
	}
	if !cred.CanSilentRefresh() {
		return nil, errors.NewUnauthorizedError("no saved secret for silent refresh")
	}

	auth, err := uc.auth.Authenticate(ctx, cred.Username, cred.Secret)
	if err != nil {
		if stderrors.Is(err, servicedesk.ErrUnauthorized) {
			if clearErr := uc.creds.ClearToken(ctx, userID); clearErr != nil {
				uc.log.Errorw("failed to clear token after rejected secret",
					"user_id", userID,
					"error", clearErr,
				)
			}
			return nil, errors.NewUnauthorizedError("saved secret was rejected")
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if err := uc.creds.UpdateToken(ctx, userID, auth.Token); err != nil {
		return nil, fmt.Errorf("store refreshed token: %w", err)
	}

	cred.Token = auth.Token
	uc.log.Infow("session refreshed silently", "user_id", userID)
	return cred, nil
}
