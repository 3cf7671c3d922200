package events

import (
	"context"
	"fmt"
	"time"
)

// Sweeper keeps the expired flag consistent with wall-clock time. It holds no
// state beyond its configuration: each Sweep captures "now" once, in the
// configured zone, and issues one bulk conditional update. Running it zero,
// one, or N times against the same data yields the same final flags, so it is
// safe to call before every read and from any number of callers at once.
type Sweeper struct {
	repo Repository
	loc  *time.Location
	now  func() time.Time
}

func NewSweeper(repo Repository, loc *time.Location) *Sweeper {
	if loc == nil {
		loc = time.UTC
	}
	return &Sweeper{repo: repo, loc: loc, now: time.Now}
}

// WithClock overrides the time source. Tests only.
func (s *Sweeper) WithClock(now func() time.Time) *Sweeper {
	s.now = now
	return s
}

// Location returns the zone scheduled dates and times are interpreted in.
func (s *Sweeper) Location() *time.Location {
	return s.loc
}

// Sweep marks every not-yet-expired event whose scheduled instant has passed
// and returns the number of rows transitioned. A second sweep at the same
// instant performs zero updates.
func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	now := s.now().In(s.loc)
	count, err := s.repo.MarkExpired(ctx, now.Format("2006-01-02"), now.Format("15:04:05"))
	if err != nil {
		return 0, fmt.Errorf("sweep expired events: %w", err)
	}
	return count, nil
}
