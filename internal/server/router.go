package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sqlarena/sqlarena/internal/config"
	"github.com/sqlarena/sqlarena/internal/handler"
	"github.com/sqlarena/sqlarena/internal/metrics"
	"github.com/sqlarena/sqlarena/internal/middleware"
	"github.com/sqlarena/sqlarena/internal/ratelimit"
	"github.com/sqlarena/sqlarena/internal/response"
)

// RouterDeps is everything the HTTP surface is built from.
type RouterDeps struct {
	Config   *config.Config
	Logger   *slog.Logger
	Reporter *response.Reporter
	Limiter  *ratelimit.Limiter
	Metrics  metrics.Recorder

	Auth          *handler.AuthHandler
	Health        *handler.HealthHandler
	MetricsExport *handler.MetricsHandler
}

// NewRouter configures the chi router with all routes and middleware.
func NewRouter(d RouterDeps) http.Handler {
	h := handler.New()
	r := chi.NewRouter()

	// Global middleware
	if d.Config.TrustProxy {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Recoverer(d.Logger, d.Reporter))
	r.Use(middleware.Security(middleware.SecurityConfig{EnableHSTS: d.Config.IsProduction()}))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(d.Config.GetCORSAllowedOrigins())))
	r.Use(middleware.MaxBodySize(d.Config.MaxRequestBodySize))

	r.Get("/", h.Root)
	r.Get("/healthz", d.Health.Healthz)
	r.Get("/metrics", d.MetricsExport.Metrics)

	rl := middleware.RateLimitConfig{
		Logger:  d.Logger,
		Limiter: d.Limiter,
		Metrics: d.Metrics,
	}
	authTier := middleware.RateLimit(rl, ratelimit.TierAuth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", d.Health.Health)

		// Tiers run cheapest first and before any body is read.
		r.Route("/users", func(r chi.Router) {
			r.With(authTier, middleware.RateLimit(rl, ratelimit.TierRegister)).
				Post("/register", d.Auth.Register)
			r.With(authTier, middleware.RateLimit(rl, ratelimit.TierLogin)).
				Post("/login", d.Auth.Login)
		})
	})

	// 404 and 405 handlers
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}
