// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Outcome labels for auth attempts.
const (
	OutcomeSuccess  = "success"
	OutcomeConflict = "conflict"
	OutcomeInvalid  = "invalid_credentials"
	OutcomeError    = "error"
)

// Recorder captures metric events for the application.
type Recorder interface {
	IncRegistration(outcome string)
	IncLogin(outcome string)
	IncRateLimited(tier string)
	ObservePasswordHash(duration time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
