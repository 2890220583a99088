package tickets

import (
	"context"
	stderrors "errors"
	"fmt"

	"sdbridge/internal/domain/credential"
	"sdbridge/internal/domain/ticket"
	"sdbridge/internal/shared/errors"
	"sdbridge/internal/shared/logger"
)

// GetTicketUseCase returns one ticket for display. The cached record is the
// default; a refresh fetches the remote copy and folds it back into the
// cache first.
type GetTicketUseCase struct {
	cache  ticket.Cache
	creds  credential.Repository
	source Source
	log    logger.Interface
}

func NewGetTicketUseCase(cache ticket.Cache, creds credential.Repository, source Source, log logger.Interface) *GetTicketUseCase {
	return &GetTicketUseCase{cache: cache, creds: creds, source: source, log: log}
}

func (uc *GetTicketUseCase) Execute(ctx context.Context, userID int64, ticketID int, refresh bool) (*ticket.Record, error) {
	rec, err := uc.cache.GetActive(ctx, userID, ticketID)
	if err != nil {
		if stderrors.Is(err, ticket.ErrRecordNotFound) {
			return nil, errors.NewNotFoundError("ticket is not tracked")
		}
		return nil, fmt.Errorf("load cached ticket: %w", err)
	}
	if !refresh {
		return rec, nil
	}

	cred, err := uc.creds.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load credential: %w", err)
	}
	if !cred.HasToken() {
		return nil, errors.NewUnauthorizedError("no active session")
	}

	remote, err := uc.source.GetTicket(ctx, cred.Token, ticketID)
	if err != nil {
		// The cached copy still serves; staleness beats an error screen.
		uc.log.Warnw("remote refresh failed, serving cached ticket",
			"user_id", userID,
			"ticket_id", ticketID,
			"error", err,
		)
		return rec, nil
	}

	fresh := remote.Record(userID, rec.Viewpoint)
	if err := uc.cache.UpsertActive(ctx, fresh); err != nil {
		return nil, fmt.Errorf("refresh cached ticket: %w", err)
	}
	fresh.LastNotifiedStatus = rec.LastNotifiedStatus
	return fresh, nil
}
