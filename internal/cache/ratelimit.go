package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sqlarena/sqlarena/internal/ratelimit"
)

// rateLimitPrefix is the Redis key prefix for fixed-window counters.
const rateLimitPrefix = "ratelimit:"

// fixedWindowScript increments a counter and starts its window on first use.
// It returns the new count and the milliseconds left in the window.
var fixedWindowScript = redis.NewScript(`
	local count = redis.call('INCR', KEYS[1])
	if count == 1 then
		redis.call('PEXPIRE', KEYS[1], ARGV[1])
	end

	local ttl = redis.call('PTTL', KEYS[1])
	if ttl < 0 then
		-- counter lost its expiry; start a fresh window
		redis.call('PEXPIRE', KEYS[1], ARGV[1])
		ttl = tonumber(ARGV[1])
	end

	return {count, ttl}
`)

// RateLimitStore keeps rate limit windows in Redis so that every API
// instance shares one budget per client.
type RateLimitStore struct {
	cache *Cache
	now   func() time.Time
}

var _ ratelimit.Store = (*RateLimitStore)(nil)

// NewRateLimitStore creates a Redis-backed rate limit store.
func NewRateLimitStore(c *Cache) *RateLimitStore {
	return &RateLimitStore{cache: c, now: time.Now}
}

// Allow counts a request from clientID against tier.
func (s *RateLimitStore) Allow(ctx context.Context, clientID string, tier ratelimit.Tier) (ratelimit.Result, error) {
	key := rateLimitPrefix + tier.Name + ":" + hashClient(clientID)

	vals, err := fixedWindowScript.Run(ctx, s.cache.client,
		[]string{key},
		tier.Window.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return ratelimit.Result{}, fmt.Errorf("run fixed window script: %w", err)
	}
	if len(vals) != 2 {
		return ratelimit.Result{}, fmt.Errorf("fixed window script returned %d values", len(vals))
	}

	count, ttl := int(vals[0]), time.Duration(vals[1])*time.Millisecond

	return ratelimit.Result{
		Allowed:   count <= tier.Max,
		Limit:     tier.Max,
		Remaining: max(tier.Max-count, 0),
		ResetAt:   s.now().Add(ttl),
	}, nil
}

// hashClient creates a truncated SHA256 hash of a client identifier
// so raw IP addresses are never stored.
func hashClient(id string) string {
	hash := sha256.Sum256([]byte(id))
	return hex.EncodeToString(hash[:8]) // 16 hex chars
}
