package sync

import (
	"context"
	"strings"

	"sdbridge/internal/domain/credential"
	"sdbridge/internal/domain/ticket"
	"sdbridge/internal/infrastructure/servicedesk"
	"sdbridge/internal/shared/errors"
	"sdbridge/internal/shared/logger"
)

// Predicate reports whether a ticket belongs to a user's scope.
type Predicate func(t *servicedesk.Ticket) bool

// Scope is one viewpoint of the scoped reconciliation engine. Bind resolves
// whatever per-user context the scope needs (may call the remote) and returns
// the membership predicate for that user's tickets.
type Scope interface {
	Role() credential.Role
	Viewpoint() ticket.Viewpoint
	Bind(ctx context.Context, cred *credential.Credential) (Predicate, error)
	NewTicketMessage(t *servicedesk.Ticket) string
}

// ExecutorScope matches tickets assigned to the user as executor.
type ExecutorScope struct{}

func NewExecutorScope() *ExecutorScope {
	return &ExecutorScope{}
}

func (s *ExecutorScope) Role() credential.Role {
	return credential.RoleExecutor
}

func (s *ExecutorScope) Viewpoint() ticket.Viewpoint {
	return ticket.ViewpointExecutor
}

func (s *ExecutorScope) Bind(_ context.Context, cred *credential.Credential) (Predicate, error) {
	remoteID := cred.RemoteID
	if remoteID == 0 {
		return nil, errors.NewValidationError("credential has no remote id")
	}
	return func(t *servicedesk.Ticket) bool {
		id, ok := t.ExecutorID()
		return ok && id == remoteID
	}, nil
}

func (s *ExecutorScope) NewTicketMessage(t *servicedesk.Ticket) string {
	return assignedTicketMessage(t)
}

// DispatcherScope matches tickets whose address falls in the dispatcher's
// region and location. The pair is resolved lazily from the remote profile
// the first time it is needed, then persisted on the credential.
type DispatcherScope struct {
	source TicketSource
	creds  credential.Repository
	log    logger.Interface
}

func NewDispatcherScope(source TicketSource, creds credential.Repository, log logger.Interface) *DispatcherScope {
	return &DispatcherScope{source: source, creds: creds, log: log}
}

func (s *DispatcherScope) Role() credential.Role {
	return credential.RoleDispatcher
}

func (s *DispatcherScope) Viewpoint() ticket.Viewpoint {
	return ticket.ViewpointDispatcher
}

func (s *DispatcherScope) Bind(ctx context.Context, cred *credential.Credential) (Predicate, error) {
	region, location := cred.Region, cred.Location
	if !cred.HasLocation() {
		var err error
		region, location, err = s.resolveLocation(ctx, cred)
		if err != nil {
			return nil, err
		}
	}
	return func(t *servicedesk.Ticket) bool {
		tr, tl := t.RegionLocation()
		return strings.EqualFold(tr, region) && strings.EqualFold(tl, location)
	}, nil
}

func (s *DispatcherScope) resolveLocation(ctx context.Context, cred *credential.Credential) (string, string, error) {
	profile, err := s.source.GetUser(ctx, cred.Token, cred.RemoteID)
	if err != nil {
		return "", "", err
	}
	if profile.Address == nil {
		return "", "", errors.NewValidationError("dispatcher profile has no address")
	}
	region := strings.TrimSpace(profile.Address.Region)
	location := strings.TrimSpace(profile.Address.Location)
	if region == "" || location == "" {
		return "", "", errors.NewValidationError("dispatcher profile address has no region/location")
	}

	if err := s.creds.SetLocation(ctx, cred.UserID, region, location,
		strings.TrimSpace(profile.Address.FullAddress), profile.Address.ID); err != nil {
		// Persisting is an optimization; the resolved pair still serves this tick.
		s.log.Warnw("failed to persist resolved dispatcher location",
			"user_id", cred.UserID,
			"error", err,
		)
	}

	s.log.Infow("resolved dispatcher location",
		"user_id", cred.UserID,
		"region", region,
		"location", location,
	)
	return region, location, nil
}

func (s *DispatcherScope) NewTicketMessage(t *servicedesk.Ticket) string {
	return locationTicketMessage(t)
}
