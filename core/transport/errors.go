package transport

import (
	"errors"
	"fmt"
)

// ErrMissingAuth is returned before any network call when no bearer token
// is available.
var ErrMissingAuth = errors.New("no bearer token available")

// Error is a turn-fatal transport failure: a failed request, a non-OK
// status, or a broken stream body. Malformed individual lines are not
// transport errors; they are skipped.
type Error struct {
	Op     string
	Status int
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("transport %s: status %d: %v", e.Op, e.Status, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("transport %s: status %d", e.Op, e.Status)
	default:
		return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}
