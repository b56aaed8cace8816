package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncRegistration is a no-op.
func (n *NoopRecorder) IncRegistration(string) {}

// IncLogin is a no-op.
func (n *NoopRecorder) IncLogin(string) {}

// IncRateLimited is a no-op.
func (n *NoopRecorder) IncRateLimited(string) {}

// ObservePasswordHash is a no-op.
func (n *NoopRecorder) ObservePasswordHash(time.Duration) {}
