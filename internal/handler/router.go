package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/promptforge/generation-api/internal/middleware"
	"github.com/promptforge/generation-api/pkg/logger"
)

// RouterConfig wires the handlers into a router.
type RouterConfig struct {
	Generate *GenerateHandler
	Health   *HealthHandler
	Logger   *logger.Logger

	JWTSecret           string
	IPRateLimitRequests int
	IPRateLimitWindow   time.Duration
}

// NewRouter builds the HTTP routes.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Recover(cfg.Logger))
	r.Use(middleware.CORS())

	// Health endpoints (no auth required)
	r.Get("/health", cfg.Health.Health)
	r.Get("/ready", cfg.Health.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// API routes with authentication
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.IPRateLimitRequests > 0 {
			r.Use(middleware.IPRateLimit(cfg.IPRateLimitRequests, cfg.IPRateLimitWindow))
		}
		r.Use(middleware.Auth(cfg.JWTSecret))

		r.Post("/generate", cfg.Generate.Generate)
	})

	return r
}
