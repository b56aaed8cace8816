// Package cache provides the Redis access layer.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Pool defaults. Rate-limit checks sit in front of every auth request, so
// commands time out quickly and the limiter fails open instead of stalling.
const (
	DefaultPoolSize       = 10
	DefaultCommandTimeout = 500 * time.Millisecond
	DefaultDialTimeout    = 2 * time.Second
)

// Options tunes the Redis client. Zero values take the defaults.
type Options struct {
	PoolSize       int
	CommandTimeout time.Duration
	DialTimeout    time.Duration
}

func (o *Options) setDefaults() {
	if o.PoolSize <= 0 {
		o.PoolSize = DefaultPoolSize
	}
	if o.CommandTimeout <= 0 {
		o.CommandTimeout = DefaultCommandTimeout
	}
	if o.DialTimeout <= 0 {
		o.DialTimeout = DefaultDialTimeout
	}
}

// Cache wraps a Redis client.
type Cache struct {
	client *redis.Client
}

// New connects to redisURL and verifies the connection.
func New(ctx context.Context, redisURL string, opts Options) (*Cache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opts.setDefaults()
	opt.PoolSize = opts.PoolSize
	opt.MinIdleConns = 2
	opt.DialTimeout = opts.DialTimeout
	opt.ReadTimeout = opts.CommandTimeout
	opt.WriteTimeout = opts.CommandTimeout
	opt.PoolTimeout = opts.CommandTimeout + time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opt)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return &Cache{client: client}, nil
}

// NewWithClient wraps an existing client without pinging it.
func NewWithClient(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Ping checks Redis connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Client returns the underlying Redis client.
func (c *Cache) Client() *redis.Client {
	return c.client
}

// Close closes the Redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}
