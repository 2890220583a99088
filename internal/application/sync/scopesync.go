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

// ScopeSyncService reconciles the active cache of every eligible user of one
// scope against the remote listing. One tick per user: bind the scope, page
// through the listing, upsert and notify what is in scope, archive what ended,
// prune what silently left.
type ScopeSyncService struct {
	cache    ticket.Cache
	creds    credential.Repository
	source   TicketSource
	notifier Notifier
	scope    Scope
	guard    *credentialGuard

	pageSize int
	maxPages int

	log logger.Interface
}

func NewScopeSyncService(
	cache ticket.Cache,
	creds credential.Repository,
	source TicketSource,
	notifier Notifier,
	scope Scope,
	pageSize int,
	maxPages int,
	log logger.Interface,
) *ScopeSyncService {
	if pageSize <= 0 {
		pageSize = 25
	}
	if maxPages <= 0 {
		maxPages = 5
	}
	return &ScopeSyncService{
		cache:    cache,
		creds:    creds,
		source:   source,
		notifier: notifier,
		scope:    scope,
		guard:    newCredentialGuard(creds, notifier, log),
		pageSize: pageSize,
		maxPages: maxPages,
		log:      log.With("scope", string(scope.Viewpoint())),
	}
}

// Sync runs one reconciliation pass. A failure for one user never stops the
// pass for the others.
func (s *ScopeSyncService) Sync(ctx context.Context) error {
	creds, err := s.creds.ListEligibleByRole(ctx, s.scope.Role())
	if err != nil {
		return fmt.Errorf("list eligible credentials: %w", err)
	}

	for _, cred := range creds {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := s.syncUser(ctx, cred); err != nil {
			s.log.Errorw("scope sync failed for user",
				"user_id", cred.UserID,
				"error", err,
			)
		}
	}
	return nil
}

func (s *ScopeSyncService) syncUser(ctx context.Context, cred *credential.Credential) error {
	pred, err := s.scope.Bind(ctx, cred)
	if err != nil {
		if errors.Is(err, servicedesk.ErrUnauthorized) {
			s.guard.Invalidate(ctx, cred)
			return nil
		}
		return fmt.Errorf("bind scope: %w", err)
	}

	active, terminal, err := s.collect(ctx, cred.Token, pred)
	if err != nil {
		if errors.Is(err, servicedesk.ErrUnauthorized) {
			s.guard.Invalidate(ctx, cred)
			return nil
		}
		return err
	}

	keep := make([]int, 0, len(active))
	for i := range active {
		t := &active[i]
		keep = append(keep, t.ID)
		if err := s.applyActive(ctx, cred, t); err != nil {
			s.log.Errorw("failed to apply active ticket",
				"user_id", cred.UserID,
				"ticket_id", t.ID,
				"error", err,
			)
		}
	}

	for i := range terminal {
		t := &terminal[i]
		if err := s.applyTerminal(ctx, cred, t); err != nil {
			s.log.Errorw("failed to apply terminal ticket",
				"user_id", cred.UserID,
				"ticket_id", t.ID,
				"error", err,
			)
		}
	}

	pruned, err := s.cache.PruneActiveNotIn(ctx, cred.UserID, s.scope.Viewpoint(), keep)
	if err != nil {
		return fmt.Errorf("prune stale records: %w", err)
	}
	if pruned > 0 {
		s.log.Infow("pruned records that left scope",
			"user_id", cred.UserID,
			"count", pruned,
		)
	}
	return nil
}

// collect pages through the remote listing and partitions the in-scope
// tickets by terminality. Paging stops at the remote's page count or the
// configured cap, whichever comes first.
func (s *ScopeSyncService) collect(ctx context.Context, token string, pred Predicate) (active, terminal []servicedesk.Ticket, err error) {
	for page := 0; page < s.maxPages; page++ {
		result, err := s.source.ListTickets(ctx, token, page, s.pageSize, listTicketType, listSortField, listAscending)
		if err != nil {
			return nil, nil, fmt.Errorf("list tickets page %d: %w", page, err)
		}

		for _, t := range result.Tickets {
			if !pred(&t) {
				continue
			}
			if t.NormalizedStatus().IsTerminal() {
				terminal = append(terminal, t)
			} else {
				active = append(active, t)
			}
		}

		if page+1 >= result.TotalPages {
			break
		}
	}
	return active, terminal, nil
}

// applyActive refreshes the cache for an in-scope non-terminal ticket and
// notifies the user when it is new to them. A new row is seeded with its
// current status as already notified, so the next status poll stays quiet
// until the status actually moves.
func (s *ScopeSyncService) applyActive(ctx context.Context, cred *credential.Credential, t *servicedesk.Ticket) error {
	existed, err := s.cache.Exists(ctx, cred.UserID, t.ID)
	if err != nil {
		return fmt.Errorf("check existence: %w", err)
	}

	if err := s.cache.UpsertActive(ctx, t.Record(cred.UserID, s.scope.Viewpoint())); err != nil {
		return fmt.Errorf("upsert: %w", err)
	}

	if !existed {
		if err := s.notifier.Send(ctx, cred.ChatID, s.scope.NewTicketMessage(t)); err != nil {
			s.log.Warnw("failed to send new ticket notification",
				"user_id", cred.UserID,
				"ticket_id", t.ID,
				"error", err,
			)
		}
	}
	return nil
}

// applyTerminal retires a ticket that the listing reports as finished. Every
// terminal in-scope ticket ends up in the archived table, whether or not the
// user was tracking it; only previously tracked tickets produce a
// notification, and delivery is best-effort since the row moves to the
// archive either way.
func (s *ScopeSyncService) applyTerminal(ctx context.Context, cred *credential.Credential, t *servicedesk.Ticket) error {
	status := t.NormalizedStatus()

	rec, err := s.cache.GetActive(ctx, cred.UserID, t.ID)
	tracked := err == nil
	if err != nil && !errors.Is(err, ticket.ErrRecordNotFound) {
		return fmt.Errorf("load active record: %w", err)
	}

	viewpoint := s.scope.Viewpoint()
	if tracked {
		viewpoint = rec.Viewpoint
	}
	if err := s.cache.UpsertActive(ctx, t.Record(cred.UserID, viewpoint)); err != nil {
		return fmt.Errorf("refresh before archive: %w", err)
	}

	if tracked && rec.LastNotifiedStatus != status {
		if err := s.notifier.Send(ctx, cred.ChatID, terminalMessage(t.ID, status)); err != nil {
			s.log.Warnw("failed to send terminal notification",
				"user_id", cred.UserID,
				"ticket_id", t.ID,
				"error", err,
			)
		}
	}

	if err := s.cache.Archive(ctx, cred.UserID, t.ID); err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	return nil
}
