package events

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means no event exists with the given id.
	ErrNotFound = errors.New("event not found")

	// ErrNotEligible means the event exists but its current status made the
	// transition a no-op (zero rows affected). Reported distinctly from
	// ErrNotFound so callers can tell "doesn't exist" from "wrong state".
	ErrNotEligible = errors.New("event not eligible for this transition")

	// ErrForbidden means the requester is not authorized for the mutation.
	ErrForbidden = errors.New("requester not authorized for this event")

	// ErrInvalidState means the event can no longer be edited: it is approved
	// or has expired.
	ErrInvalidState = errors.New("event is not editable in its current state")
)

// ValidationError reports malformed input on a single field. Always
// recoverable by the caller and surfaced verbatim.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}
