package servicedesk

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is the distinguished condition for HTTP 401/403 from the
// ServiceDesk API. Workers match it with errors.Is to run the
// credential-failure protocol instead of treating the failure as transient.
var ErrUnauthorized = errors.New("servicedesk: unauthorized")

// UnauthorizedError carries the rejecting response details.
type UnauthorizedError struct {
	StatusCode int
	Body       string
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("servicedesk: unauthorized: %d %s", e.StatusCode, e.Body)
}

// Is makes errors.Is(err, ErrUnauthorized) match.
func (e *UnauthorizedError) Is(target error) bool {
	return target == ErrUnauthorized
}
