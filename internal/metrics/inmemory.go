package metrics

import (
	"maps"
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	Registrations       map[string]uint64
	Logins              map[string]uint64
	RateLimited         map[string]uint64
	PasswordHashCount   uint64
	PasswordHashTotalNs int64
}

// InMemoryRecorder keeps counters in process memory.
type InMemoryRecorder struct {
	mu            sync.Mutex
	registrations map[string]uint64
	logins        map[string]uint64
	rateLimited   map[string]uint64

	passwordHashCount   uint64
	passwordHashTotalNs int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		registrations: make(map[string]uint64),
		logins:        make(map[string]uint64),
		rateLimited:   make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		Registrations:       maps.Clone(m.registrations),
		Logins:              maps.Clone(m.logins),
		RateLimited:         maps.Clone(m.rateLimited),
		PasswordHashCount:   atomic.LoadUint64(&m.passwordHashCount),
		PasswordHashTotalNs: atomic.LoadInt64(&m.passwordHashTotalNs),
	}
}

// IncRegistration counts a registration attempt by outcome.
func (m *InMemoryRecorder) IncRegistration(outcome string) {
	m.mu.Lock()
	m.registrations[outcome]++
	m.mu.Unlock()
}

// IncLogin counts a login attempt by outcome.
func (m *InMemoryRecorder) IncLogin(outcome string) {
	m.mu.Lock()
	m.logins[outcome]++
	m.mu.Unlock()
}

// IncRateLimited counts a rejected request by tier.
func (m *InMemoryRecorder) IncRateLimited(tier string) {
	m.mu.Lock()
	m.rateLimited[tier]++
	m.mu.Unlock()
}

// ObservePasswordHash records the duration of a password hash or verify.
func (m *InMemoryRecorder) ObservePasswordHash(duration time.Duration) {
	atomic.AddUint64(&m.passwordHashCount, 1)
	atomic.AddInt64(&m.passwordHashTotalNs, duration.Nanoseconds())
}
