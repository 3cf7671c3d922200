package events

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/udayana-events/server/internal/domain/ids"
)

// ImageStore removes stored event images. Removal is a best-effort side
// effect of deletion; a missing file is not an error.
type ImageStore interface {
	Remove(ref string) error
}

// Service is the single authority for all status-affecting operations. Every
// transition goes through one code path here, backed by a conditional
// single-statement update in the repository.
type Service struct {
	repo    Repository
	sweeper *Sweeper
	images  ImageStore
	logger  zerolog.Logger
}

func NewService(repo Repository, sweeper *Sweeper, images ImageStore, logger zerolog.Logger) *Service {
	return &Service{repo: repo, sweeper: sweeper, images: images, logger: logger}
}

// Create validates and inserts a new submission. Initial state is always
// pending and not expired; no other initial state is legal.
func (s *Service) Create(ctx context.Context, ownerID string, params CreateParams) (*Event, error) {
	category, date, tm, err := validateEventFields(params.Category, params.ScheduledDate, params.ScheduledTime, params.Capacity)
	if err != nil {
		return nil, err
	}

	// Only the date is checked against the calendar at creation; an event
	// later today is accepted even if its time has already passed.
	today := s.sweeper.now().In(s.sweeper.loc).Format("2006-01-02")
	if date < today {
		return nil, ValidationError{Field: "scheduled_date", Message: "must not be in the past"}
	}

	id, err := ids.NewULID()
	if err != nil {
		return nil, err
	}

	event := Event{
		ID:            id,
		OwnerID:       ownerID,
		Title:         params.Title,
		Description:   params.Description,
		Location:      params.Location,
		Organizer:     params.Organizer,
		Category:      category,
		Faculty:       params.Faculty,
		StudyProgram:  params.StudyProgram,
		ImageRef:      params.ImageRef,
		ScheduledDate: date,
		ScheduledTime: tm,
		Capacity:      params.Capacity,
		Status:        StatusPending,
		Expired:       false,
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, err
	}
	return &event, nil
}

// Approve moves a pending event to approved and clears any rejected reason.
// Approving from rejected is disallowed; the owner must resubmit first.
func (s *Service) Approve(ctx context.Context, id string) error {
	affected, err := s.repo.ApproveIfPending(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return s.explainZeroRows(ctx, id)
	}
	return nil
}

// Reject moves a pending event to rejected with a non-empty reason.
func (s *Service) Reject(ctx context.Context, id string, reason string) error {
	if reason == "" {
		return ValidationError{Field: "reason", Message: "must not be empty"}
	}
	affected, err := s.repo.RejectIfPending(ctx, id, reason)
	if err != nil {
		return err
	}
	if affected == 0 {
		return s.explainZeroRows(ctx, id)
	}
	return nil
}

// Update overwrites the mutable fields of the requester's own event. A
// rejected event resets to pending with its reason cleared, forcing
// re-review; a pending event stays pending. Approved or expired events are
// no longer editable.
func (s *Service) Update(ctx context.Context, id string, requester Requester, params UpdateParams) (*Event, error) {
	category, date, tm, err := validateEventFields(params.Category, params.ScheduledDate, params.ScheduledTime, params.Capacity)
	if err != nil {
		return nil, err
	}
	params.Category = string(category)
	params.ScheduledDate = date
	params.ScheduledTime = tm

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.OwnerID != requester.UserID {
		return nil, ErrForbidden
	}
	if !existing.Editable() {
		return nil, ErrInvalidState
	}

	// The update itself is still keyed on the editable state so that a
	// racing approve and edit cannot both win.
	affected, err := s.repo.UpdateIfEditable(ctx, id, requester.UserID, params)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrNotEligible
	}
	return s.repo.GetByID(ctx, id)
}

// Delete permanently removes an event. Owners may delete while their event is
// still editable; administrators may delete at any time. The row deletion is
// authoritative; image cleanup afterwards is best effort and never reverses
// it.
func (s *Service) Delete(ctx context.Context, id string, requester Requester) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !requester.Admin {
		if existing.OwnerID != requester.UserID {
			return ErrForbidden
		}
		if !existing.Editable() {
			return ErrInvalidState
		}
	}

	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	if existing.ImageRef != "" && s.images != nil {
		if err := s.images.Remove(existing.ImageRef); err != nil {
			s.logger.Warn().Err(err).Str("event_id", id).Str("image_ref", existing.ImageRef).
				Msg("event image cleanup failed")
		}
	}
	return nil
}

// Sweep runs the expiration sweep on demand and reports the number of events
// transitioned.
func (s *Service) Sweep(ctx context.Context) (int64, error) {
	return s.sweeper.Sweep(ctx)
}

// Get returns a single event after a sweep, so the expired flag is current.
// Visibility matches the public feed: anyone sees an approved, non-expired
// event, while pending, rejected, and expired ones exist only for their owner
// and for administrators. Everyone else gets ErrNotFound, not ErrForbidden,
// so the response does not confirm the id.
func (s *Service) Get(ctx context.Context, id string, requester Requester) (*Event, error) {
	if _, err := s.sweeper.Sweep(ctx); err != nil {
		return nil, err
	}
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !event.PubliclyVisible() && !requester.Admin && event.OwnerID != requester.UserID {
		return nil, ErrNotFound
	}
	return event, nil
}

// PublicFeed lists approved, non-expired events, soonest first.
func (s *Service) PublicFeed(ctx context.Context) ([]Event, error) {
	if _, err := s.sweeper.Sweep(ctx); err != nil {
		return nil, err
	}
	return s.repo.ListPublic(ctx)
}

// ModerationQueue lists pending events, oldest submission first.
func (s *Service) ModerationQueue(ctx context.Context) ([]Event, error) {
	if _, err := s.sweeper.Sweep(ctx); err != nil {
		return nil, err
	}
	return s.repo.ListPending(ctx)
}

// OwnerEvents lists all of one owner's events regardless of status, newest
// first.
func (s *Service) OwnerEvents(ctx context.Context, ownerID string) ([]Event, error) {
	if _, err := s.sweeper.Sweep(ctx); err != nil {
		return nil, err
	}
	return s.repo.ListByOwner(ctx, ownerID)
}

// AdminView lists every event, pending first so the queue surfaces at the
// top of the admin dashboard.
func (s *Service) AdminView(ctx context.Context) ([]Event, error) {
	if _, err := s.sweeper.Sweep(ctx); err != nil {
		return nil, err
	}
	return s.repo.ListAll(ctx)
}

// explainZeroRows distinguishes a missing event from one in the wrong state
// after a conditional update touched nothing.
func (s *Service) explainZeroRows(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return ErrNotEligible
}

func validateEventFields(category, date, tm string, capacity int) (Category, string, string, error) {
	parsed, ok := ParseCategory(category)
	if !ok {
		return "", "", "", ValidationError{Field: "category", Message: "unknown category"}
	}
	if capacity < 1 {
		return "", "", "", ValidationError{Field: "capacity", Message: "must be at least 1"}
	}

	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "", "", "", ValidationError{Field: "scheduled_date", Message: "must be a YYYY-MM-DD date"}
	}

	clock, err := time.Parse("15:04:05", tm)
	if err != nil {
		// HTML time inputs submit HH:MM.
		clock, err = time.Parse("15:04", tm)
		if err != nil {
			return "", "", "", ValidationError{Field: "scheduled_time", Message: "must be a HH:MM or HH:MM:SS time"}
		}
	}

	return parsed, day.Format("2006-01-02"), clock.Format("15:04:05"), nil
}
