// Package ratelimit implements fixed-window request budgets per client and tier.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/sqlarena/sqlarena/internal/config"
)

// Tier is a named request budget.
type Tier struct {
	Name    string
	Window  time.Duration
	Max     int
	Message string
}

// Tiers protecting the auth endpoints. Registration passes Auth then
// Register; login passes Auth then Login.
var (
	TierAuth = Tier{
		Name:    "auth",
		Window:  time.Minute,
		Max:     20,
		Message: "Too many requests, please try again later",
	}
	TierRegister = Tier{
		Name:    "register",
		Window:  time.Hour,
		Max:     5,
		Message: "Too many registration attempts, please try again in 1 hour",
	}
	TierLogin = Tier{
		Name:    "login",
		Window:  15 * time.Minute,
		Max:     10,
		Message: "Too many login attempts, please try again in 15 minutes",
	}
)

// Result describes the state of a window after counting a request.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter returns how long until the window resets, rounded up to whole seconds.
func (r Result) RetryAfter(now time.Time) time.Duration {
	d := r.ResetAt.Sub(now)
	if d <= 0 {
		return 0
	}
	if rem := d % time.Second; rem != 0 {
		d += time.Second - rem
	}
	return d
}

// Store counts requests per client and tier.
// Allow must increment atomically: concurrent calls for one key never undercount.
type Store interface {
	Allow(ctx context.Context, clientID string, tier Tier) (Result, error)
}

// Limiter applies tiers to clients using a Store.
type Limiter struct {
	store   Store
	enabled bool
}

// New creates a Limiter. The test posture disables limiting entirely so
// test suites can issue requests back to back.
func New(store Store, posture config.Posture) *Limiter {
	return &Limiter{
		store:   store,
		enabled: posture != config.PostureTest,
	}
}

// Enabled reports whether requests are being counted.
func (l *Limiter) Enabled() bool {
	return l.enabled
}

// Check counts one request from clientID against tier.
func (l *Limiter) Check(ctx context.Context, tier Tier, clientID string) (Result, error) {
	if !l.enabled {
		return Result{Allowed: true, Limit: tier.Max, Remaining: tier.Max}, nil
	}

	res, err := l.store.Allow(ctx, clientID, tier)
	if err != nil {
		return Result{}, fmt.Errorf("rate limit %s: %w", tier.Name, err)
	}
	return res, nil
}
