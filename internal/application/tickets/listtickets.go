package tickets

import (
	"context"
	"fmt"

	"sdbridge/internal/domain/ticket"
	"sdbridge/internal/shared/logger"
)

// ListTicketsUseCase serves ticket listings to the dialog layer straight
// from the cache; the background workers keep the cache fresh, so an
// interactive listing never waits on the remote.
type ListTicketsUseCase struct {
	cache ticket.Cache
	log   logger.Interface
}

func NewListTicketsUseCase(cache ticket.Cache, log logger.Interface) *ListTicketsUseCase {
	return &ListTicketsUseCase{cache: cache, log: log}
}

// Execute returns the user's cached tickets for one viewpoint, active or
// archived.
func (uc *ListTicketsUseCase) Execute(ctx context.Context, userID int64, viewpoint ticket.Viewpoint, archived bool) ([]*ticket.Record, error) {
	if archived {
		records, err := uc.cache.ListArchived(ctx, userID, viewpoint)
		if err != nil {
			return nil, fmt.Errorf("list archived tickets: %w", err)
		}
		return records, nil
	}

	records, err := uc.cache.ListActive(ctx, userID, viewpoint)
	if err != nil {
		return nil, fmt.Errorf("list active tickets: %w", err)
	}
	return records, nil
}
