package sync

import (
	"context"

	"sdbridge/internal/domain/credential"
	"sdbridge/internal/shared/logger"
)

// credentialGuard applies the credential-failure protocol: when the remote
// rejects a user's token, the user is told once and the token is cleared so
// the workers stop acting for them. The saved secret is left intact so the
// reauth scheduler can restore the session without user interaction.
type credentialGuard struct {
	creds    credential.Repository
	notifier Notifier
	log      logger.Interface
}

func newCredentialGuard(creds credential.Repository, notifier Notifier, log logger.Interface) *credentialGuard {
	return &credentialGuard{creds: creds, notifier: notifier, log: log}
}

// Invalidate notifies the user and clears their token. The notification is
// best effort: clearing the token is what actually stops the workers, and it
// happens regardless of delivery.
func (g *credentialGuard) Invalidate(ctx context.Context, cred *credential.Credential) {
	if cred.ChatID != 0 {
		if err := g.notifier.Send(ctx, cred.ChatID, sessionExpiredMessage()); err != nil {
			g.log.Warnw("failed to notify user about expired session",
				"user_id", cred.UserID,
				"error", err,
			)
		}
	}

	if err := g.creds.ClearToken(ctx, cred.UserID); err != nil {
		g.log.Errorw("failed to clear rejected token",
			"user_id", cred.UserID,
			"error", err,
		)
		return
	}

	g.log.Infow("token cleared after remote rejection",
		"user_id", cred.UserID,
		"username", cred.Username,
	)
}
