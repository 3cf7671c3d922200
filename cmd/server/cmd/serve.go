package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/udayana-events/server/internal/api"
	"github.com/udayana-events/server/internal/config"
	"github.com/udayana-events/server/internal/domain/events"
	"github.com/udayana-events/server/internal/domain/users"
	"github.com/udayana-events/server/internal/jobs"
	"github.com/udayana-events/server/internal/metrics"
	"github.com/udayana-events/server/internal/storage/postgres"
)

var (
	// Server flags (override config/env)
	serverHost string
	serverPort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the campus events HTTP server",
	Long: `Start the HTTP server and begin accepting API requests.

The server will:
- Load configuration from environment variables (and a local .env in development)
- Bootstrap the admin user if ADMIN_* env vars are set
- Start the periodic expiration sweep worker
- Handle graceful shutdown on SIGINT/SIGTERM`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host address (default: 0.0.0.0)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "server port (default: 8080)")
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if serverHost != "" {
		cfg.Server.Host = serverHost
	}
	if serverPort != 0 {
		cfg.Server.Port = serverPort
	}

	logger := config.NewLogger(cfg.Logging)
	logger.Info().Str("timezone", cfg.Sweep.Timezone).Msg("starting campus events server")

	metrics.Init(Version, GitCommit, BuildDate)

	poolCtx, poolCancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := pgxpool.New(poolCtx, cfg.Database.URL)
	poolCancel()
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer pool.Close()

	bootstrapCtx, bootstrapCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := bootstrapAdminUser(bootstrapCtx, pool, cfg, logger); err != nil {
		logger.Error().Err(err).Msg("admin bootstrap failed")
	}
	bootstrapCancel()

	handler, err := api.NewRouter(cfg, logger, pool)
	if err != nil {
		return fmt.Errorf("router init: %w", err)
	}

	riverClient, err := newSweepClient(pool, cfg)
	if err != nil {
		return fmt.Errorf("sweep worker init: %w", err)
	}

	riverCtx, riverCancel := context.WithCancel(context.Background())
	defer riverCancel()
	if err := riverClient.Start(riverCtx); err != nil {
		return fmt.Errorf("sweep worker failed to start: %w", err)
	}
	logger.Info().Dur("interval", cfg.Sweep.Interval).Msg("periodic sweep worker started")
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer stopCancel()
		if err := riverClient.Stop(stopCtx); err != nil {
			logger.Error().Err(err).Msg("sweep worker stop error")
		}
	}()

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
		}
	}()
	logger.Info().Str("addr", server.Addr).Msg("listening")

	shutdown(server, logger)
	return nil
}

func newSweepClient(pool *pgxpool.Pool, cfg config.Config) (*river.Client[pgx.Tx], error) {
	repo, err := postgres.NewRepository(pool)
	if err != nil {
		return nil, err
	}

	slogLogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	worker := &jobs.ExpireEventsWorker{
		Sweeper: events.NewSweeper(repo.Events(), cfg.Sweep.Location),
		Logger:  slogLogger,
	}
	workers, err := jobs.NewWorkers(worker)
	if err != nil {
		return nil, err
	}
	return jobs.NewClient(pool, workers, slogLogger, jobs.NewPeriodicJobs(cfg.Sweep.Interval))
}

// bootstrapAdminUser ensures the admin account from ADMIN_* env vars exists.
// The existence check and insert run in one transaction so concurrent server
// starts cannot race past each other.
func bootstrapAdminUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config, logger zerolog.Logger) error {
	bootstrap := cfg.AdminBootstrap
	if bootstrap.Username == "" || bootstrap.Password == "" || bootstrap.Email == "" {
		logger.Warn().Msg("admin bootstrap env vars not fully set; skipping")
		return nil
	}

	repo, err := postgres.NewRepository(pool)
	if err != nil {
		return err
	}

	return repo.WithTx(ctx, func(ctx context.Context, tx *postgres.Repository) error {
		created, err := users.NewService(tx.Users()).EnsureAdmin(ctx, bootstrap.Username, bootstrap.Email, bootstrap.Password)
		if err != nil {
			return fmt.Errorf("bootstrap admin user: %w", err)
		}
		if created {
			logger.Info().Str("email", bootstrap.Email).Msg("bootstrapped admin user")
		}
		return nil
	})
}

func shutdown(server *http.Server, logger zerolog.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
	}
}
