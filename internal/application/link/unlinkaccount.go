package link

import (
	"context"
	stderrors "errors"
	"fmt"

	"sdbridge/internal/domain/credential"
	"sdbridge/internal/domain/session"
	"sdbridge/internal/shared/logger"
)

// UnlinkAccountUseCase is the explicit opt-out: it drops the saved secret
// and session token and discards any dialog state. Cached tickets are left
// in place; with no token the workers stop touching them and retention
// eventually sweeps the archive.
type UnlinkAccountUseCase struct {
	creds    credential.Repository
	sessions session.Repository
	log      logger.Interface
}

func NewUnlinkAccountUseCase(creds credential.Repository, sessions session.Repository, log logger.Interface) *UnlinkAccountUseCase {
	return &UnlinkAccountUseCase{creds: creds, sessions: sessions, log: log}
}

func (uc *UnlinkAccountUseCase) Execute(ctx context.Context, userID int64) error {
	if err := uc.creds.ClearSecret(ctx, userID); err != nil {
		if stderrors.Is(err, credential.ErrCredentialNotFound) {
			return nil
		}
		return fmt.Errorf("clear credential: %w", err)
	}

	if err := uc.sessions.Delete(ctx, userID); err != nil && !stderrors.Is(err, session.ErrSessionNotFound) {
		uc.log.Warnw("failed to drop dialog session on unlink",
			"user_id", userID,
			"error", err,
		)
	}

	uc.log.Infow("account unlinked", "user_id", userID)
	return nil
}
