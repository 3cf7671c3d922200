package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/udayana-events/server/internal/config"
	"github.com/udayana-events/server/internal/domain/events"
	"github.com/udayana-events/server/internal/storage/postgres"
)

// sweepCmd runs one expiration sweep and exits. Useful from cron or for
// operators verifying the expired flags by hand; the server also sweeps
// before every read, so this is never required for correctness.
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Mark past events as expired and print the count",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}

		logger := config.NewLogger(cfg.Logging)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		pool, err := pgxpool.New(ctx, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		defer pool.Close()

		repo, err := postgres.NewRepository(pool)
		if err != nil {
			return err
		}

		count, err := events.NewSweeper(repo.Events(), cfg.Sweep.Location).Sweep(ctx)
		if err != nil {
			return err
		}

		logger.Info().Int64("expired_count", count).Msg("sweep finished")
		fmt.Printf("marked %d event(s) expired\n", count)
		return nil
	},
}
