package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/udayana-events/server/internal/api/handlers"
	"github.com/udayana-events/server/internal/api/middleware"
	"github.com/udayana-events/server/internal/audit"
	"github.com/udayana-events/server/internal/auth"
	"github.com/udayana-events/server/internal/config"
	"github.com/udayana-events/server/internal/domain/events"
	"github.com/udayana-events/server/internal/domain/users"
	"github.com/udayana-events/server/internal/images"
	"github.com/udayana-events/server/internal/metrics"
	"github.com/udayana-events/server/internal/storage/postgres"
)

// NewRouter wires repositories, domain services and handlers onto the HTTP
// mux. All admin routes sit behind the verified-role middleware chain.
func NewRouter(cfg config.Config, logger zerolog.Logger, pool *pgxpool.Pool) (http.Handler, error) {
	repo, err := postgres.NewRepository(pool)
	if err != nil {
		return nil, fmt.Errorf("repository init: %w", err)
	}

	imageStore, err := images.NewStore(cfg.Images.Dir)
	if err != nil {
		return nil, err
	}

	sweeper := events.NewSweeper(repo.Events(), cfg.Sweep.Location)
	eventsService := events.NewService(repo.Events(), sweeper, imageStore, logger)
	usersService := users.NewService(repo.Users())
	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, cfg.Auth.Issuer)
	auditLogger := audit.NewLogger(logger)

	eventsHandler := handlers.NewEventsHandler(eventsService, cfg.Environment)
	adminHandler := handlers.NewAdminHandler(eventsService, auditLogger, cfg.Environment)
	authHandler := handlers.NewAuthHandler(usersService, jwtManager, cfg.Environment)
	imagesHandler := handlers.NewImagesHandler(imageStore, cfg.Environment)

	requireUser := middleware.RequireUser(jwtManager, cfg.Environment)
	requireAdmin := middleware.RequireAdmin(cfg.Environment)
	optionalUser := middleware.OptionalUser(jwtManager)

	mux := http.NewServeMux()
	route := func(pattern string, handler http.Handler, wrap ...func(http.Handler) http.Handler) {
		for i := len(wrap) - 1; i >= 0; i-- {
			handler = wrap[i](handler)
		}
		mux.Handle(pattern, middleware.Metrics(routeLabel(pattern), handler))
	}

	route("GET /healthz", handlers.Healthz())
	route("GET /readyz", handlers.Readyz(pool))
	route("GET /metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	route("POST /api/v1/auth/register", http.HandlerFunc(authHandler.Register))
	route("POST /api/v1/auth/login", http.HandlerFunc(authHandler.Login))

	route("GET /api/v1/events", http.HandlerFunc(eventsHandler.List))
	route("GET /api/v1/events/mine", http.HandlerFunc(eventsHandler.Mine), requireUser)
	route("GET /api/v1/events/{id}", http.HandlerFunc(eventsHandler.Get), optionalUser)
	route("POST /api/v1/events", http.HandlerFunc(eventsHandler.Create), requireUser)
	route("PUT /api/v1/events/{id}", http.HandlerFunc(eventsHandler.Update), requireUser)
	route("DELETE /api/v1/events/{id}", http.HandlerFunc(eventsHandler.Delete), requireUser)

	route("POST /api/v1/images", http.HandlerFunc(imagesHandler.Upload), requireUser)
	route("GET /api/v1/images/{ref}", http.HandlerFunc(imagesHandler.Serve))

	route("GET /api/v1/admin/events", http.HandlerFunc(adminHandler.All), requireUser, requireAdmin)
	route("GET /api/v1/admin/events/pending", http.HandlerFunc(adminHandler.Pending), requireUser, requireAdmin)
	route("POST /api/v1/admin/events/{id}/approve", http.HandlerFunc(adminHandler.Approve), requireUser, requireAdmin)
	route("POST /api/v1/admin/events/{id}/reject", http.HandlerFunc(adminHandler.Reject), requireUser, requireAdmin)
	route("POST /api/v1/admin/events/sweep", http.HandlerFunc(adminHandler.Sweep), requireUser, requireAdmin)

	return middleware.RequestLogging(logger)(mux), nil
}

// routeLabel strips the method prefix from a mux pattern for use as a
// bounded-cardinality metrics label.
func routeLabel(pattern string) string {
	if idx := strings.Index(pattern, " "); idx >= 0 {
		return pattern[idx+1:]
	}
	return pattern
}
