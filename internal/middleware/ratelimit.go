package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/sqlarena/sqlarena/internal/metrics"
	"github.com/sqlarena/sqlarena/internal/ratelimit"
	"github.com/sqlarena/sqlarena/internal/response"
)

// RateLimitConfig holds configuration for rate limiting middleware.
type RateLimitConfig struct {
	Logger  *slog.Logger
	Limiter *ratelimit.Limiter
	Metrics metrics.Recorder
	// Now overrides the clock used for reset headers, for tests.
	Now func() time.Time
}

// RateLimit returns middleware enforcing tier per client IP. Chain several
// to apply tiers in order; the first exhausted tier answers 429.
// Store failures are logged and the request is let through.
func RateLimit(cfg RateLimitConfig, tier ratelimit.Tier) func(http.Handler) http.Handler {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Limiter.Enabled() {
				next.ServeHTTP(w, r)
				return
			}

			ip := clientIP(r)

			result, err := cfg.Limiter.Check(r.Context(), tier, ip)
			if err != nil {
				cfg.Logger.Error("rate limit check failed",
					slog.String("error", err.Error()),
					slog.String("tier", tier.Name),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				next.ServeHTTP(w, r)
				return
			}

			retryAfter := result.RetryAfter(now())
			setRateLimitHeaders(w, result, retryAfter)

			if !result.Allowed {
				recorder.IncRateLimited(tier.Name)
				cfg.Logger.Warn("rate limit exceeded",
					slog.String("tier", tier.Name),
					slog.String("ip", ip),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.Int64("retry_after_seconds", int64(retryAfter.Seconds())),
					slog.String("request_id", GetRequestID(r.Context())),
				)

				w.Header().Set("Retry-After", strconv.FormatInt(int64(retryAfter.Seconds()), 10))
				response.Error(w, http.StatusTooManyRequests, tier.Message)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// setRateLimitHeaders sets the RateLimit-* headers. Later tiers overwrite
// earlier ones, so a response reports the innermost tier that ran.
func setRateLimitHeaders(w http.ResponseWriter, result ratelimit.Result, reset time.Duration) {
	w.Header().Set("RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("RateLimit-Reset", strconv.FormatInt(int64(reset.Seconds()), 10))
}

// clientIP returns the caller address without port. RemoteAddr is the socket
// peer unless chi's RealIP ran, which happens only when TRUST_PROXY is set.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
