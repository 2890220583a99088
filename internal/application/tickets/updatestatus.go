package tickets

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"sdbridge/internal/domain/credential"
	"sdbridge/internal/domain/ticket"
	"sdbridge/internal/infrastructure/servicedesk"
	"sdbridge/internal/shared/errors"
	"sdbridge/internal/shared/logger"
)

// UpdateStatusUseCase moves a ticket to a new status on behalf of the user.
// The remote API wants the full ticket object back with the status swapped,
// so the use case fetches the current remote copy, rewrites only the status
// field inside the raw payload, and resends the whole thing.
type UpdateStatusUseCase struct {
	cache  ticket.Cache
	creds  credential.Repository
	source Source
	log    logger.Interface
}

func NewUpdateStatusUseCase(cache ticket.Cache, creds credential.Repository, source Source, log logger.Interface) *UpdateStatusUseCase {
	return &UpdateStatusUseCase{cache: cache, creds: creds, source: source, log: log}
}

func (uc *UpdateStatusUseCase) Execute(ctx context.Context, userID int64, ticketID int, newStatus ticket.Status) (*ticket.Record, error) {
	if newStatus.IsZero() {
		return nil, errors.NewValidationError("unknown target status")
	}

	cred, err := uc.creds.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load credential: %w", err)
	}
	if !cred.HasToken() {
		return nil, errors.NewUnauthorizedError("no active session")
	}

	cached, err := uc.cache.GetActive(ctx, userID, ticketID)
	if err != nil {
		if stderrors.Is(err, ticket.ErrRecordNotFound) {
			return nil, errors.NewNotFoundError("ticket is not tracked")
		}
		return nil, fmt.Errorf("load cached ticket: %w", err)
	}

	remote, err := uc.source.GetTicket(ctx, cred.Token, ticketID)
	if err != nil {
		if stderrors.Is(err, servicedesk.ErrUnauthorized) {
			return nil, errors.NewUnauthorizedError("session rejected by remote")
		}
		return nil, fmt.Errorf("fetch ticket before update: %w", err)
	}

	payload, err := rewriteStatus(remote.Raw, newStatus)
	if err != nil {
		return nil, err
	}

	if err := uc.source.UpdateTicketStatus(ctx, cred.Token, ticketID, payload); err != nil {
		if stderrors.Is(err, servicedesk.ErrUnauthorized) {
			return nil, errors.NewUnauthorizedError("session rejected by remote")
		}
		return nil, fmt.Errorf("update remote status: %w", err)
	}

	// Fold the change into the cache right away and mark it as seen, so the
	// watcher does not echo the user's own action back at them.
	remote.Status = string(newStatus)
	rec := remote.Record(userID, cached.Viewpoint)
	rec.Raw = payload
	if err := uc.cache.UpsertActive(ctx, rec); err != nil {
		return nil, fmt.Errorf("refresh cached ticket: %w", err)
	}
	if err := uc.cache.AcknowledgeNotified(ctx, userID, ticketID, newStatus); err != nil {
		uc.log.Warnw("failed to mark status as seen",
			"user_id", userID,
			"ticket_id", ticketID,
			"error", err,
		)
	}
	if newStatus.IsTerminal() {
		if err := uc.cache.Archive(ctx, userID, ticketID); err != nil {
			return nil, fmt.Errorf("archive finished ticket: %w", err)
		}
	}

	uc.log.Infow("ticket status updated",
		"user_id", userID,
		"ticket_id", ticketID,
		"status", string(newStatus),
	)
	rec.LastNotifiedStatus = newStatus
	return rec, nil
}

// rewriteStatus swaps the status field inside the raw remote payload without
// disturbing any other field, known or not.
func rewriteStatus(raw json.RawMessage, status ticket.Status) (json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("decode ticket payload: %w", err)
	}
	encoded, err := json.Marshal(string(status))
	if err != nil {
		return nil, fmt.Errorf("encode status: %w", err)
	}
	obj["status"] = encoded
	payload, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("encode ticket payload: %w", err)
	}
	return payload, nil
}
