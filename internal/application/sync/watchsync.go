package sync

import (
	"context"
	"errors"
	"fmt"

	"sdbridge/internal/domain/credential"
	"sdbridge/internal/domain/ticket"
	"sdbridge/internal/infrastructure/servicedesk"
	"sdbridge/internal/shared/logger"
)

// WatchSyncService polls every tracked (user, ticket) pair individually and
// notifies on status transitions. It is the only path that advances
// LastNotifiedStatus for live tickets, and it only does so after a
// notification was actually delivered, so a failed send retries next tick.
type WatchSyncService struct {
	cache    ticket.Cache
	creds    credential.Repository
	source   TicketSource
	notifier Notifier
	guard    *credentialGuard

	log logger.Interface
}

func NewWatchSyncService(
	cache ticket.Cache,
	creds credential.Repository,
	source TicketSource,
	notifier Notifier,
	log logger.Interface,
) *WatchSyncService {
	return &WatchSyncService{
		cache:    cache,
		creds:    creds,
		source:   source,
		notifier: notifier,
		guard:    newCredentialGuard(creds, notifier, log),
		log:      log,
	}
}

// Sync runs one watcher pass over the whole active table. Once a user's
// token is rejected their remaining pairs are skipped for the rest of the
// pass; other users are unaffected.
func (s *WatchSyncService) Sync(ctx context.Context) error {
	pairs, err := s.cache.WatchPairs(ctx)
	if err != nil {
		return fmt.Errorf("list watch pairs: %w", err)
	}

	credCache := make(map[int64]*credential.Credential)
	skip := make(map[int64]bool)

	for _, pair := range pairs {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if skip[pair.UserID] {
			continue
		}

		cred, ok := credCache[pair.UserID]
		if !ok {
			cred, err = s.creds.Get(ctx, pair.UserID)
			if err != nil {
				if !errors.Is(err, credential.ErrCredentialNotFound) {
					s.log.Errorw("failed to load credential",
						"user_id", pair.UserID,
						"error", err,
					)
				}
				skip[pair.UserID] = true
				continue
			}
			credCache[pair.UserID] = cred
		}
		if !cred.Eligible() {
			skip[pair.UserID] = true
			continue
		}

		if err := s.watchPair(ctx, cred, pair); err != nil {
			if errors.Is(err, servicedesk.ErrUnauthorized) {
				s.guard.Invalidate(ctx, cred)
				skip[pair.UserID] = true
				continue
			}
			s.log.Errorw("failed to refresh tracked ticket",
				"user_id", pair.UserID,
				"ticket_id", pair.TicketID,
				"error", err,
			)
		}
	}
	return nil
}

func (s *WatchSyncService) watchPair(ctx context.Context, cred *credential.Credential, pair ticket.WatchPair) error {
	t, err := s.source.GetTicket(ctx, cred.Token, pair.TicketID)
	if err != nil {
		return fmt.Errorf("fetch ticket: %w", err)
	}

	// The refresh keeps the viewpoint the row was cached under.
	if err := s.cache.UpsertActive(ctx, t.Record(pair.UserID, pair.Viewpoint)); err != nil {
		return fmt.Errorf("refresh record: %w", err)
	}

	status := t.NormalizedStatus()
	if status.IsTerminal() {
		return s.finishPair(ctx, cred, pair, status)
	}

	if status == pair.LastNotifiedStatus {
		return nil
	}

	if err := s.notifier.Send(ctx, cred.ChatID, statusChangedMessage(pair.TicketID, status)); err != nil {
		return fmt.Errorf("send status notification: %w", err)
	}
	if err := s.cache.AcknowledgeNotified(ctx, pair.UserID, pair.TicketID, status); err != nil {
		return fmt.Errorf("acknowledge notification: %w", err)
	}
	return nil
}

// finishPair notifies the terminal outcome and moves the record to the
// archive. Delivery is best-effort; the record is archived either way so a
// finished ticket leaves the active table exactly once.
func (s *WatchSyncService) finishPair(ctx context.Context, cred *credential.Credential, pair ticket.WatchPair, status ticket.Status) error {
	if pair.LastNotifiedStatus != status {
		if err := s.notifier.Send(ctx, cred.ChatID, terminalMessage(pair.TicketID, status)); err != nil {
			s.log.Warnw("failed to send terminal notification",
				"user_id", pair.UserID,
				"ticket_id", pair.TicketID,
				"error", err,
			)
		}
	}

	if err := s.cache.Archive(ctx, pair.UserID, pair.TicketID); err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	return nil
}
