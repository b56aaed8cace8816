// Package repository provides the PostgreSQL access layer.
package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
)

// Pool defaults.
const (
	DefaultMaxConns       int32 = 20
	DefaultAcquireTimeout       = 2 * time.Second
	DefaultIdleTimeout          = 30 * time.Second
)

// ErrStoreUnavailable means no connection could be obtained in time.
var ErrStoreUnavailable = errors.New("user store unavailable")

// Options tunes the connection pool.
type Options struct {
	MaxConns       int32
	AcquireTimeout time.Duration
	IdleTimeout    time.Duration
	// Logger receives query traces at debug level. Nil disables tracing.
	Logger *slog.Logger
}

func (o *Options) setDefaults() {
	if o.MaxConns <= 0 {
		o.MaxConns = DefaultMaxConns
	}
	if o.AcquireTimeout <= 0 {
		o.AcquireTimeout = DefaultAcquireTimeout
	}
	if o.IdleTimeout <= 0 {
		o.IdleTimeout = DefaultIdleTimeout
	}
}

// Repository provides database access methods.
type Repository struct {
	pool           *pgxpool.Pool
	acquireTimeout time.Duration
}

// New creates a Repository with a bounded connection pool and verifies
// connectivity.
func New(ctx context.Context, databaseURL string, opts Options) (*Repository, error) {
	opts.setDefaults()

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	config.MaxConns = opts.MaxConns
	config.MaxConnIdleTime = opts.IdleTimeout
	config.ConnConfig.ConnectTimeout = opts.AcquireTimeout

	if opts.Logger != nil {
		config.ConnConfig.Tracer = &tracelog.TraceLog{
			Logger:   slogAdapter(opts.Logger),
			LogLevel: tracelog.LogLevelDebug,
		}
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	r := &Repository{pool: pool, acquireTimeout: opts.AcquireTimeout}

	if err := r.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return r, nil
}

// Ping checks database connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	conn, err := r.acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	return conn.Ping(ctx)
}

// Close closes the database connection pool.
func (r *Repository) Close() {
	r.pool.Close()
}

// acquire takes a pooled connection, giving up after the acquire timeout.
func (r *Repository) acquire(ctx context.Context) (*pgxpool.Conn, error) {
	actx, cancel := context.WithTimeout(ctx, r.acquireTimeout)
	defer cancel()

	conn, err := r.pool.Acquire(actx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return conn, nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// slogAdapter forwards pgx trace events to logger.
func slogAdapter(logger *slog.Logger) tracelog.Logger {
	return tracelog.LoggerFunc(func(ctx context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
		attrs := make([]slog.Attr, 0, len(data))
		for k, v := range data {
			attrs = append(attrs, slog.Any(k, v))
		}
		logger.LogAttrs(ctx, traceLevel(level), "pgx: "+msg, attrs...)
	})
}

func traceLevel(level tracelog.LogLevel) slog.Level {
	switch level {
	case tracelog.LogLevelError:
		return slog.LevelError
	case tracelog.LogLevelWarn:
		return slog.LevelWarn
	case tracelog.LogLevelInfo:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
