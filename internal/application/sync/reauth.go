package sync

import (
	"context"
	"errors"
	"fmt"

	"sdbridge/internal/domain/credential"
	"sdbridge/internal/infrastructure/servicedesk"
	"sdbridge/internal/shared/logger"
)

// ReauthService re-authenticates every user with a saved secret, replacing
// their session token. The scheduler drives it once per day at a configured
// time and optionally at startup.
type ReauthService struct {
	creds    credential.Repository
	source   TicketSource
	notifier Notifier

	log logger.Interface
}

func NewReauthService(
	creds credential.Repository,
	source TicketSource,
	notifier Notifier,
	log logger.Interface,
) *ReauthService {
	return &ReauthService{
		creds:    creds,
		source:   source,
		notifier: notifier,
		log:      log,
	}
}

// RunOnce refreshes every refreshable credential. One user's failure never
// stops the run for the others. notifyTransient controls whether users hear
// about temporary errors; rejected secrets always produce a notification.
func (s *ReauthService) RunOnce(ctx context.Context, notifyTransient bool) error {
	creds, err := s.creds.ListWithSecret(ctx)
	if err != nil {
		return fmt.Errorf("list refreshable credentials: %w", err)
	}

	var refreshed, failed int
	for _, cred := range creds {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := s.refreshUser(ctx, cred, notifyTransient); err != nil {
			failed++
			s.log.Errorw("credential refresh failed",
				"user_id", cred.UserID,
				"username", cred.Username,
				"error", err,
			)
			continue
		}
		refreshed++
	}

	s.log.Infow("credential refresh pass finished",
		"refreshed", refreshed,
		"failed", failed,
	)
	return nil
}

func (s *ReauthService) refreshUser(ctx context.Context, cred *credential.Credential, notifyTransient bool) error {
	auth, err := s.source.Authenticate(ctx, cred.Username, cred.Secret)
	if err != nil {
		if errors.Is(err, servicedesk.ErrUnauthorized) {
			// The saved secret itself no longer works. Tell the user and
			// drop the token; the secret stays so a later password rollback
			// on the remote side recovers without a re-link.
			if cred.ChatID != 0 {
				if sendErr := s.notifier.Send(ctx, cred.ChatID, credentialInvalidMessage()); sendErr != nil {
					s.log.Warnw("failed to notify user about rejected secret",
						"user_id", cred.UserID,
						"error", sendErr,
					)
				}
			}
			if clearErr := s.creds.ClearToken(ctx, cred.UserID); clearErr != nil {
				return fmt.Errorf("clear token after rejected secret: %w", clearErr)
			}
			return err
		}

		if notifyTransient && cred.ChatID != 0 {
			if sendErr := s.notifier.Send(ctx, cred.ChatID, reauthTransientMessage()); sendErr != nil {
				s.log.Warnw("failed to notify user about transient refresh error",
					"user_id", cred.UserID,
					"error", sendErr,
				)
			}
		}
		return err
	}

	if err := s.creds.UpdateToken(ctx, cred.UserID, auth.Token); err != nil {
		return fmt.Errorf("store refreshed token: %w", err)
	}

	s.log.Debugw("session token refreshed",
		"user_id", cred.UserID,
		"username", cred.Username,
	)
	return nil
}
