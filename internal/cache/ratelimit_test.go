package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/sqlarena/sqlarena/internal/ratelimit"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewWithClient(client), mr
}

func TestRateLimitStore_FixedWindow(t *testing.T) {
	c, _ := newTestCache(t)
	store := NewRateLimitStore(c)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		res, err := store.Allow(ctx, "203.0.113.7", ratelimit.TierRegister)
		if err != nil {
			t.Fatalf("Allow() error = %v", err)
		}
		if !res.Allowed {
			t.Fatalf("request %d rejected", i)
		}
		if res.Remaining != 5-i {
			t.Errorf("request %d remaining = %d, want %d", i, res.Remaining, 5-i)
		}
	}

	res, err := store.Allow(ctx, "203.0.113.7", ratelimit.TierRegister)
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if res.Allowed {
		t.Error("6th request should be rejected")
	}
	if res.Limit != 5 {
		t.Errorf("limit = %d, want 5", res.Limit)
	}
}

func TestRateLimitStore_WindowExpires(t *testing.T) {
	c, mr := newTestCache(t)
	store := NewRateLimitStore(c)
	ctx := context.Background()

	for range 11 {
		_, _ = store.Allow(ctx, "203.0.113.7", ratelimit.TierLogin)
	}

	mr.FastForward(15 * time.Minute)

	res, err := store.Allow(ctx, "203.0.113.7", ratelimit.TierLogin)
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if !res.Allowed {
		t.Error("request should be allowed in a new window")
	}
	if res.Remaining != 9 {
		t.Errorf("remaining = %d, want 9", res.Remaining)
	}
}

func TestRateLimitStore_KeyHashesClient(t *testing.T) {
	c, mr := newTestCache(t)
	store := NewRateLimitStore(c)

	if _, err := store.Allow(context.Background(), "203.0.113.7", ratelimit.TierAuth); err != nil {
		t.Fatalf("Allow() error = %v", err)
	}

	key := rateLimitPrefix + "auth:" + hashClient("203.0.113.7")
	if !mr.Exists(key) {
		t.Fatalf("expected key %q, have %v", key, mr.Keys())
	}
	if ttl := mr.TTL(key); ttl <= 0 || ttl > time.Minute {
		t.Errorf("TTL = %v, want within (0, 1m]", ttl)
	}
	for _, k := range mr.Keys() {
		if k == rateLimitPrefix+"auth:203.0.113.7" {
			t.Error("raw client address stored in key")
		}
	}
}

func TestRateLimitStore_ResetAt(t *testing.T) {
	c, _ := newTestCache(t)
	store := NewRateLimitStore(c)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	res, err := store.Allow(context.Background(), "203.0.113.7", ratelimit.TierAuth)
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if !res.ResetAt.Equal(now.Add(time.Minute)) {
		t.Errorf("ResetAt = %v, want %v", res.ResetAt, now.Add(time.Minute))
	}
}

func TestRateLimitStore_RedisDown(t *testing.T) {
	c, mr := newTestCache(t)
	store := NewRateLimitStore(c)
	mr.Close()

	if _, err := store.Allow(context.Background(), "203.0.113.7", ratelimit.TierAuth); err == nil {
		t.Error("expected error when Redis is unreachable")
	}
}

func TestHashClient(t *testing.T) {
	a := hashClient("192.168.1.1")
	if len(a) != 16 {
		t.Errorf("hash length = %d, want 16", len(a))
	}
	if a != hashClient("192.168.1.1") {
		t.Error("hash should be deterministic")
	}
	if a == hashClient("192.168.1.2") {
		t.Error("different clients should hash differently")
	}
}
