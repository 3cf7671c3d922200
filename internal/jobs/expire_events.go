package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/riverqueue/river"

	"github.com/udayana-events/server/internal/domain/events"
	"github.com/udayana-events/server/internal/metrics"
)

// ExpireEventsArgs defines the periodic expiration sweep job.
type ExpireEventsArgs struct{}

func (ExpireEventsArgs) Kind() string { return JobKindExpireEvents }

// ExpireEventsWorker runs the expiration sweep out of band. The sweep is
// idempotent, so overlapping with the inline per-request sweeps is harmless.
type ExpireEventsWorker struct {
	river.WorkerDefaults[ExpireEventsArgs]
	Sweeper *events.Sweeper
	Logger  *slog.Logger
}

func (ExpireEventsWorker) Kind() string { return JobKindExpireEvents }

func (w ExpireEventsWorker) Work(ctx context.Context, job *river.Job[ExpireEventsArgs]) error {
	if w.Sweeper == nil {
		return fmt.Errorf("sweeper not configured")
	}

	logger := w.Logger
	if logger == nil {
		logger = slog.Default()
	}

	start := time.Now()
	count, err := w.Sweeper.Sweep(ctx)
	metrics.SweepDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.SweepErrors.Inc()
		logger.Error("expiration sweep failed",
			"attempt", job.Attempt,
			"error", err,
		)
		return err
	}

	metrics.EventsExpiredTotal.Add(float64(count))
	logger.Info("expiration sweep finished",
		"expired_count", count,
		"attempt", job.Attempt,
	)
	return nil
}
