package quota

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store for single-instance deployments
// and tests.
type MemoryStore struct {
	mu       sync.Mutex
	cfg      Config
	counters map[string]*memoryCounter

	// now is swappable for tests.
	now func() time.Time
}

type memoryCounter struct {
	windowStart time.Time
	used        int
}

// NewMemoryStore creates an in-memory quota store.
func NewMemoryStore(cfg Config) *MemoryStore {
	return &MemoryStore{
		cfg:      cfg.withDefaults(),
		counters: make(map[string]*memoryCounter),
		now:      time.Now,
	}
}

// Check reports current usage without consuming budget.
func (s *MemoryStore) Check(ctx context.Context, userID string) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	c := s.counter(userID, now)
	return s.cfg.status(c.used, now), nil
}

// Increment consumes one unit of budget.
func (s *MemoryStore) Increment(ctx context.Context, userID string) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	c := s.counter(userID, now)
	if c.used >= s.cfg.Limit {
		return s.cfg.status(c.used, now), ErrExceeded
	}
	c.used++
	return s.cfg.status(c.used, now), nil
}

// Reset clears the user's counter for the current window.
func (s *MemoryStore) Reset(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.counters, userID)
	return nil
}

// counter returns the live counter for userID, rolling the window
// forward if the stored one has expired. Must be called with lock held.
func (s *MemoryStore) counter(userID string, now time.Time) *memoryCounter {
	start := s.cfg.windowStart(now)
	c, ok := s.counters[userID]
	if !ok || c.windowStart.Before(start) {
		c = &memoryCounter{windowStart: start}
		s.counters[userID] = c
	}
	return c
}

// Verify interface
var _ Store = (*MemoryStore)(nil)
