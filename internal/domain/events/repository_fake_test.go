package events

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// fakeRepository is an in-memory Repository used across the domain tests. It
// mirrors the conditional-update semantics of the SQL implementation: every
// transition is keyed on the current state and reports affected rows.
type fakeRepository struct {
	mu     sync.Mutex
	items  map[string]Event
	clock  time.Time
	sweeps int

	failMarkExpired error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		items: make(map[string]Event),
		clock: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
	}
}

func (f *fakeRepository) tick() time.Time {
	f.clock = f.clock.Add(time.Minute)
	return f.clock
}

func (f *fakeRepository) Create(_ context.Context, event Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[event.ID]; ok {
		return errors.New("duplicate id")
	}
	event.CreatedAt = f.tick()
	event.UpdatedAt = event.CreatedAt
	f.items[event.ID] = event
	return nil
}

func (f *fakeRepository) GetByID(_ context.Context, id string) (*Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	event, ok := f.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &event, nil
}

func (f *fakeRepository) ApproveIfPending(_ context.Context, id string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	event, ok := f.items[id]
	if !ok || event.Status != StatusPending {
		return 0, nil
	}
	event.Status = StatusApproved
	event.RejectedReason = ""
	event.UpdatedAt = f.tick()
	f.items[id] = event
	return 1, nil
}

func (f *fakeRepository) RejectIfPending(_ context.Context, id string, reason string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	event, ok := f.items[id]
	if !ok || event.Status != StatusPending {
		return 0, nil
	}
	event.Status = StatusRejected
	event.RejectedReason = reason
	event.UpdatedAt = f.tick()
	f.items[id] = event
	return 1, nil
}

func (f *fakeRepository) UpdateIfEditable(_ context.Context, id string, ownerID string, params UpdateParams) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	event, ok := f.items[id]
	if !ok || event.OwnerID != ownerID || !event.Editable() {
		return 0, nil
	}
	event.Title = params.Title
	event.Description = params.Description
	event.Location = params.Location
	event.Organizer = params.Organizer
	event.Category = Category(params.Category)
	event.Faculty = params.Faculty
	event.StudyProgram = params.StudyProgram
	event.ImageRef = params.ImageRef
	event.ScheduledDate = params.ScheduledDate
	event.ScheduledTime = params.ScheduledTime
	event.Capacity = params.Capacity
	event.Status = StatusPending
	event.RejectedReason = ""
	event.UpdatedAt = f.tick()
	f.items[id] = event
	return 1, nil
}

func (f *fakeRepository) Delete(_ context.Context, id string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return 0, nil
	}
	delete(f.items, id)
	return 1, nil
}

func (f *fakeRepository) MarkExpired(_ context.Context, date string, tm string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sweeps++
	if f.failMarkExpired != nil {
		return 0, f.failMarkExpired
	}
	var count int64
	for id, event := range f.items {
		if event.Expired {
			continue
		}
		if event.ScheduledDate < date || (event.ScheduledDate == date && event.ScheduledTime <= tm) {
			event.Expired = true
			f.items[id] = event
			count++
		}
	}
	return count, nil
}

func (f *fakeRepository) ListPublic(_ context.Context) ([]Event, error) {
	items := f.snapshot(func(e Event) bool { return e.PubliclyVisible() })
	sort.Slice(items, func(i, j int) bool {
		if items[i].ScheduledDate != items[j].ScheduledDate {
			return items[i].ScheduledDate < items[j].ScheduledDate
		}
		return items[i].ScheduledTime < items[j].ScheduledTime
	})
	return items, nil
}

func (f *fakeRepository) ListPending(_ context.Context) ([]Event, error) {
	items := f.snapshot(func(e Event) bool { return e.Status == StatusPending })
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (f *fakeRepository) ListByOwner(_ context.Context, ownerID string) ([]Event, error) {
	items := f.snapshot(func(e Event) bool { return e.OwnerID == ownerID })
	sort.Slice(items, func(i, j int) bool {
		return items[j].CreatedAt.Before(items[i].CreatedAt)
	})
	return items, nil
}

func (f *fakeRepository) ListAll(_ context.Context) ([]Event, error) {
	items := f.snapshot(func(Event) bool { return true })
	rank := map[Status]int{StatusPending: 1, StatusApproved: 2, StatusRejected: 3}
	sort.Slice(items, func(i, j int) bool {
		if rank[items[i].Status] != rank[items[j].Status] {
			return rank[items[i].Status] < rank[items[j].Status]
		}
		return items[j].CreatedAt.Before(items[i].CreatedAt)
	})
	return items, nil
}

func (f *fakeRepository) snapshot(keep func(Event) bool) []Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	items := make([]Event, 0, len(f.items))
	for _, event := range f.items {
		if keep(event) {
			items = append(items, event)
		}
	}
	return items
}

var _ Repository = (*fakeRepository)(nil)
