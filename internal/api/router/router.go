package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/tradepulse/backend/internal/api/handlers"
	"github.com/tradepulse/backend/internal/api/middleware"
	"github.com/tradepulse/backend/internal/config"
	"github.com/tradepulse/backend/internal/pkg/logger"
	"github.com/tradepulse/backend/internal/pkg/metrics"
)

// Handlers bundles the handlers wired into the router
type Handlers struct {
	Health         *handlers.HealthHandler
	Reconciliation *handlers.ReconciliationHandler
	Runs           *handlers.RunHandler
}

// New builds the admin API router
func New(cfg *config.Config, log *logger.Logger, h *Handlers) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))
	r.Use(middleware.DefaultCORS(cfg.Server.ConsoleURL))
	r.Use(middleware.RateLimit(100, 200)) // 100 req/sec, burst of 200
	r.Use(metrics.Middleware)

	// Probes and metrics
	r.Get("/healthz", h.Health.Healthz)
	r.Get("/readyz", h.Health.Readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// Admin console API
	r.Route("/api/v1/reconciliation", func(r chi.Router) {
		r.Get("/expired", h.Reconciliation.Expired)
		r.Get("/renewals", h.Reconciliation.Renewals)
		if h.Runs != nil {
			r.Get("/runs", h.Runs.List)
			r.Get("/runs/latest", h.Runs.Latest)
		}
	})

	return r
}
