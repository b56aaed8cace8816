// Package main is the entrypoint for the SQL-Arena API server.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sqlarena/sqlarena/internal/auth"
	"github.com/sqlarena/sqlarena/internal/cache"
	"github.com/sqlarena/sqlarena/internal/config"
	"github.com/sqlarena/sqlarena/internal/handler"
	"github.com/sqlarena/sqlarena/internal/logging"
	"github.com/sqlarena/sqlarena/internal/metrics"
	"github.com/sqlarena/sqlarena/internal/ratelimit"
	"github.com/sqlarena/sqlarena/internal/repository"
	"github.com/sqlarena/sqlarena/internal/response"
	"github.com/sqlarena/sqlarena/internal/server"
	"github.com/sqlarena/sqlarena/internal/service"
	"github.com/sqlarena/sqlarena/internal/validation"
)

// sweepInterval is how often expired in-memory rate-limit windows are dropped.
const sweepInterval = time.Minute

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	secret, err := auth.ResolveSigningSecret(cfg.JWTSecret, cfg.AppEnv, logger)
	if err != nil {
		logger.Error("refusing to start", "error", err)
		os.Exit(1)
	}

	// Initialize database
	dsn := cfg.DSN()
	repo, err := repository.New(ctx, dsn, repository.Options{
		MaxConns:       cfg.DBMaxConns,
		AcquireTimeout: cfg.DBAcquireTimeout,
		IdleTimeout:    cfg.DBIdleTimeout,
		Logger:         logger,
	})
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", logging.SanitizeError(err, dsn)),
			slog.String("database_url", logging.RedactURL(dsn)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	// Initialize cache, optional
	var cacheClient *cache.Cache
	if cfg.RedisURL != "" {
		cacheClient, err = cache.New(ctx, cfg.RedisURL, cache.Options{})
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", logging.SanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", logging.RedactURL(cfg.RedisURL)),
			)
			repo.Close()
			os.Exit(1)
		}
		logger.Info("connected to Redis")
	}

	// Rate limiting
	var store ratelimit.Store
	if cfg.RateLimitStore == config.RateLimitStoreRedis {
		store = cache.NewRateLimitStore(cacheClient)
	} else {
		memStore := ratelimit.NewMemoryStore()
		go memStore.Run(ctx, sweepInterval)
		store = memStore
	}
	limiter := ratelimit.New(store, cfg.AppEnv)
	if !limiter.Enabled() {
		logger.Info("rate limiting disabled", "env", cfg.AppEnv)
	}

	// Initialize services
	hasher, err := auth.NewPasswordHasher(
		auth.WithAlgorithm(cfg.PasswordHashAlgorithm),
		auth.WithBcryptCost(cfg.BcryptCost),
	)
	if err != nil {
		logger.Error("invalid password hashing settings", "error", err)
		os.Exit(1)
	}

	tokens, err := auth.NewTokenIssuer(secret)
	if err != nil {
		logger.Error("failed to create token issuer", "error", err)
		os.Exit(1)
	}

	metricsRecorder := metrics.NewInMemory()
	authService := service.NewAuthService(repo, hasher, tokens, metricsRecorder, logger)

	// Initialize handlers
	reporter := response.NewReporter(logger, cfg.AppEnv)

	var cacheChecker handler.HealthChecker
	if cacheClient != nil {
		cacheChecker = cacheClient
	}

	router := server.NewRouter(server.RouterDeps{
		Config:        cfg,
		Logger:        logger,
		Reporter:      reporter,
		Limiter:       limiter,
		Metrics:       metricsRecorder,
		Auth:          handler.NewAuthHandler(authService, validation.New(), reporter),
		Health:        handler.NewHealthHandler(repo, cacheChecker, cfg.AppEnv),
		MetricsExport: handler.NewMetricsHandler(metricsRecorder),
	})

	// Create and run server
	srv := server.New(router, server.Options{
		Port:            cfg.Port,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	srv.OnShutdown("database", func(context.Context) error {
		repo.Close()
		return nil
	})
	if cacheClient != nil {
		srv.OnShutdown("redis", func(context.Context) error {
			return cacheClient.Close()
		})
	}

	logger.Info("starting server",
		"port", cfg.Port,
		"env", cfg.AppEnv,
		"rate_limit_store", cfg.RateLimitStore,
		"password_hash", hasher.Algorithm(),
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
