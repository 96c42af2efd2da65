package nav

import "errors"

// ErrNotFound reports a target absent under the active filter after all
// fallbacks were exhausted. Surfaced as a non-fatal notification unless the
// request preserves filters.
var ErrNotFound = errors.New("group not found under the active filter")

// TransientError wraps a network or API failure during a position lookup.
// The view stays where it is; the raw message surfaces once, non-fatally.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *TransientError) Unwrap() error { return e.Err }
