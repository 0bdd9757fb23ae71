package repository

import (
	"context"
	"sync"
	"time"
)

// sweepThreshold bounds the counter map: once it grows past this many keys,
// Hit opportunistically drops every expired window.
const sweepThreshold = 4096

type rateWindow struct {
	count     int64
	expiresAt time.Time
}

// MemoryRateLimitStore implements domain.RateLimitStore with an in-process
// fixed-window counter map. Used when Valkey is disabled; counters are then
// per-node, which is fine for single-server deployments.
type MemoryRateLimitStore struct {
	mu      sync.Mutex
	windows map[string]*rateWindow
	now     func() time.Time // overridable in tests
}

func NewMemoryRateLimitStore() *MemoryRateLimitStore {
	return &MemoryRateLimitStore{
		windows: make(map[string]*rateWindow),
		now:     time.Now,
	}
}

// Hit increments the counter for key under a single lock, so the
// read-check-increment sequence is atomic with respect to concurrent calls.
func (s *MemoryRateLimitStore) Hit(_ context.Context, key string, window time.Duration) (int64, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok || now.After(w.expiresAt) {
		w = &rateWindow{expiresAt: now.Add(window)}
		s.windows[key] = w
	}
	w.count++

	if len(s.windows) > sweepThreshold {
		for k, v := range s.windows {
			if now.After(v.expiresAt) {
				delete(s.windows, k)
			}
		}
	}

	return w.count, nil
}
