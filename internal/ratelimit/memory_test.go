package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sqlarena/sqlarena/internal/config"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestStore() (*MemoryStore, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	s := NewMemoryStore()
	s.now = clock.Now
	return s, clock
}

func TestMemoryStore_RegisterTierAllowsFive(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		res, err := s.Allow(ctx, "10.0.0.1", TierRegister)
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

	res, err := s.Allow(ctx, "10.0.0.1", TierRegister)
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if res.Allowed {
		t.Error("6th registration attempt should be rejected")
	}
	if res.Remaining != 0 {
		t.Errorf("remaining = %d, want 0", res.Remaining)
	}
	if res.Limit != 5 {
		t.Errorf("limit = %d, want 5", res.Limit)
	}
}

func TestMemoryStore_WindowResets(t *testing.T) {
	s, clock := newTestStore()
	ctx := context.Background()

	for range 11 {
		_, _ = s.Allow(ctx, "10.0.0.1", TierLogin)
	}
	res, _ := s.Allow(ctx, "10.0.0.1", TierLogin)
	if res.Allowed {
		t.Fatal("login should be limited after 10 attempts")
	}

	clock.Advance(15 * time.Minute)

	res, _ = s.Allow(ctx, "10.0.0.1", TierLogin)
	if !res.Allowed {
		t.Error("login should be allowed after the window resets")
	}
	if res.Remaining != 9 {
		t.Errorf("remaining = %d, want 9", res.Remaining)
	}
}

func TestMemoryStore_KeysAreIndependent(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	for range 5 {
		_, _ = s.Allow(ctx, "10.0.0.1", TierRegister)
	}

	res, _ := s.Allow(ctx, "10.0.0.2", TierRegister)
	if !res.Allowed {
		t.Error("another client should have its own budget")
	}

	res, _ = s.Allow(ctx, "10.0.0.1", TierLogin)
	if !res.Allowed {
		t.Error("another tier should have its own budget")
	}
}

func TestMemoryStore_ResetAtIsWindowEnd(t *testing.T) {
	s, clock := newTestStore()
	start := clock.Now()

	res, _ := s.Allow(context.Background(), "10.0.0.1", TierAuth)
	if !res.ResetAt.Equal(start.Add(time.Minute)) {
		t.Errorf("ResetAt = %v, want %v", res.ResetAt, start.Add(time.Minute))
	}

	clock.Advance(20 * time.Second)
	res, _ = s.Allow(context.Background(), "10.0.0.1", TierAuth)
	if !res.ResetAt.Equal(start.Add(time.Minute)) {
		t.Error("ResetAt should not move within a window")
	}
	if got := res.RetryAfter(clock.Now()); got != 40*time.Second {
		t.Errorf("RetryAfter = %v, want 40s", got)
	}
}

func TestMemoryStore_ConcurrentCountsAreExact(t *testing.T) {
	s, _ := newTestStore()
	tier := Tier{Name: "burst", Window: time.Minute, Max: 50}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for range 200 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, _ := s.Allow(context.Background(), "10.0.0.1", tier)
			if res.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != 50 {
		t.Errorf("allowed = %d, want 50", allowed)
	}
}

func TestMemoryStore_Sweep(t *testing.T) {
	s, clock := newTestStore()
	ctx := context.Background()

	_, _ = s.Allow(ctx, "10.0.0.1", TierAuth)
	_, _ = s.Allow(ctx, "10.0.0.1", TierRegister)

	clock.Advance(2 * time.Minute)

	if removed := s.Sweep(); removed != 1 {
		t.Errorf("Sweep() removed %d, want 1", removed)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestResult_RetryAfterRoundsUp(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		reset time.Duration
		want  time.Duration
	}{
		{reset: 0, want: 0},
		{reset: -time.Second, want: 0},
		{reset: 1500 * time.Millisecond, want: 2 * time.Second},
		{reset: 3 * time.Second, want: 3 * time.Second},
	}

	for _, tt := range tests {
		res := Result{ResetAt: now.Add(tt.reset)}
		if got := res.RetryAfter(now); got != tt.want {
			t.Errorf("RetryAfter(%v) = %v, want %v", tt.reset, got, tt.want)
		}
	}
}

type countingStore struct {
	calls int
}

func (c *countingStore) Allow(_ context.Context, _ string, tier Tier) (Result, error) {
	c.calls++
	return Result{Allowed: false, Limit: tier.Max}, nil
}

func TestLimiter_TestPostureBypasses(t *testing.T) {
	store := &countingStore{}
	l := New(store, config.PostureTest)

	for range 10 {
		res, err := l.Check(context.Background(), TierRegister, "10.0.0.1")
		if err != nil {
			t.Fatalf("Check() error = %v", err)
		}
		if !res.Allowed {
			t.Fatal("test posture should never limit")
		}
	}
	if store.calls != 0 {
		t.Errorf("store called %d times, want 0", store.calls)
	}
	if l.Enabled() {
		t.Error("Enabled() = true under test posture")
	}
}

func TestLimiter_CountsOutsideTest(t *testing.T) {
	for _, posture := range []config.Posture{config.PostureDevelopment, config.PostureProduction} {
		store := &countingStore{}
		l := New(store, posture)

		res, err := l.Check(context.Background(), TierLogin, "10.0.0.1")
		if err != nil {
			t.Fatalf("Check() error = %v", err)
		}
		if res.Allowed {
			t.Errorf("%s: store verdict should be returned", posture)
		}
		if store.calls != 1 {
			t.Errorf("%s: store calls = %d, want 1", posture, store.calls)
		}
	}
}
