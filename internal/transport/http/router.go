// Package httptransport assembles the HTTP surface: middleware chain, token
// endpoint, and the per-module case routes.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"recouvro/internal/platform/middleware"
	"recouvro/pkg/platform/middleware/metadata"
	"recouvro/pkg/platform/middleware/requesttime"
)

// Registrar mounts a module's routes on a router group.
type Registrar interface {
	Register(r chi.Router)
}

// Health reports readiness of an infrastructure dependency.
type Health interface {
	Health(ctx context.Context) error
}

// Config bundles the router dependencies.
type Config struct {
	Logger    *slog.Logger
	Validator middleware.JWTValidator

	// Auth serves POST /auth/token and is mounted outside the authenticated
	// group.
	Auth http.HandlerFunc

	// Modules are mounted behind authentication.
	Modules []Registrar

	// HealthChecks run on /healthz; a nil slice reports healthy.
	HealthChecks []Health

	RequestTimeout time.Duration
}

// NewRouter wires the full middleware chain and all case routes.
func NewRouter(cfg Config) http.Handler {
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.ContentTypeJSON)

	r.Get("/healthz", healthHandler(cfg.HealthChecks))
	r.Handle("/metrics", promhttp.Handler())
	if cfg.Auth != nil {
		r.Post("/auth/token", cfg.Auth)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(cfg.Validator, cfg.Logger))
		for _, module := range cfg.Modules {
			module.Register(r)
		}
	})

	return r
}

func healthHandler(checks []Health) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, check := range checks {
			if err := check.Health(r.Context()); err != nil {
				http.Error(w, "unhealthy: "+err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
