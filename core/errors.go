package transcript

import "errors"

var (
	// ErrTurnInProgress is returned by Send while another turn is open on
	// the same session. Await completion or cancel first.
	ErrTurnInProgress = errors.New("a turn is already in progress")

	// ErrNoTransport is returned by Send when the session was built
	// without a transport.
	ErrNoTransport = errors.New("no transport configured")
)
