package events

import "context"

// Repository is the single persistence boundary for events. Transition
// methods are conditional single-statement updates keyed on the current
// status and return the affected-row count; callers decide between
// ErrNotFound and ErrNotEligible from that count, never from exceptions.
type Repository interface {
	Create(ctx context.Context, event Event) error
	GetByID(ctx context.Context, id string) (*Event, error)

	// ApproveIfPending sets status=approved and clears rejected_reason for a
	// pending event, returning rows affected.
	ApproveIfPending(ctx context.Context, id string) (int64, error)

	// RejectIfPending sets status=rejected with the given reason for a
	// pending event, returning rows affected.
	RejectIfPending(ctx context.Context, id string, reason string) (int64, error)

	// UpdateIfEditable overwrites the mutable fields of an owner's event and
	// resets it to pending, provided it is still pending or rejected and not
	// expired. Returns rows affected.
	UpdateIfEditable(ctx context.Context, id string, ownerID string, params UpdateParams) (int64, error)

	// Delete removes the event row, returning rows affected.
	Delete(ctx context.Context, id string) (int64, error)

	// MarkExpired flips expired=false rows whose deadline has passed relative
	// to the supplied local date (YYYY-MM-DD) and time (HH:MM:SS), returning
	// the number of rows transitioned. The time comparison is inclusive: an
	// event expires at the exact instant of its start time.
	MarkExpired(ctx context.Context, date string, tm string) (int64, error)

	// ListPublic returns approved, non-expired events, soonest first.
	ListPublic(ctx context.Context) ([]Event, error)

	// ListPending returns the moderation queue, oldest-created first.
	ListPending(ctx context.Context) ([]Event, error)

	// ListByOwner returns all of one owner's events, newest-created first.
	ListByOwner(ctx context.Context, ownerID string) ([]Event, error)

	// ListAll returns every event ordered pending, approved, rejected, ties
	// broken newest-created first.
	ListAll(ctx context.Context) ([]Event, error)
}
