package ticket

import "errors"

// ErrRecordNotFound is returned when no record exists for a key.
var ErrRecordNotFound = errors.New("ticket record not found")
