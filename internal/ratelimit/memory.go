package ratelimit

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count   int
	resetAt time.Time
}

// MemoryStore keeps windows in process memory. Counters are lost on restart.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// Allow counts a request and reports whether it fits the tier's budget.
// Requests over budget are still counted, like every other request in the window.
func (s *MemoryStore) Allow(_ context.Context, clientID string, tier Tier) (Result, error) {
	key := tier.Name + ":" + clientID
	now := s.now()

	s.mu.Lock()
	w, ok := s.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(tier.Window)}
		s.windows[key] = w
	}
	w.count++
	count, resetAt := w.count, w.resetAt
	s.mu.Unlock()

	return Result{
		Allowed:   count <= tier.Max,
		Limit:     tier.Max,
		Remaining: max(tier.Max-count, 0),
		ResetAt:   resetAt,
	}, nil
}

// Sweep drops windows that have already reset.
func (s *MemoryStore) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, w := range s.windows {
		if !now.Before(w.resetAt) {
			delete(s.windows, key)
			removed++
		}
	}
	return removed
}

// Run sweeps expired windows every interval until ctx is cancelled.
func (s *MemoryStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Len returns the number of live windows.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}
