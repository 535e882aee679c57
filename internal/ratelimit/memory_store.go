package ratelimit

import (
	"context"
	"strings"
	"sync"
	"time"
)

// sweepInterval is how often expired counters are evicted to bound
// memory on long-running processes.
const sweepInterval = 5 * time.Minute

type entry struct {
	count   int
	resetAt time.Time
}

// MemoryStore keeps counters in a process-local map. Quota accuracy is
// per-instance, not fleet-wide — an accepted degradation when Redis is
// not configured. The map is shared mutable state across concurrently
// handled requests; every read-then-write runs under one mutex so
// check-and-increment stays a single logical step.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*entry
	nowFunc func() time.Time
	stop    chan struct{}
	once    sync.Once
}

// NewMemoryStore creates the store and starts the background sweep
// goroutine. Call Close on shutdown to stop it.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]*entry),
		nowFunc: time.Now,
		stop:    make(chan struct{}),
	}

	go s.sweepLoop()

	return s
}

func (s *MemoryStore) Incr(_ context.Context, key string, window time.Duration) (int, time.Time, error) {
	now := s.nowFunc()

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || !now.Before(e.resetAt) {
		// First request for the key, or the window has elapsed.
		e = &entry{count: 1, resetAt: now.Add(window)}
		s.entries[key] = e
		return e.count, e.resetAt, nil
	}

	e.count++
	return e.count, e.resetAt, nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (int, time.Time, error) {
	now := s.nowFunc()

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || !now.Before(e.resetAt) {
		return 0, time.Time{}, nil
	}
	return e.count, e.resetAt, nil
}

// Clear drops one key. The in-process store has nothing persistent
// beyond the map itself, so this only short-circuits normal expiry.
func (s *MemoryStore) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *MemoryStore) ClearPrefix(_ context.Context, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.entries {
		if strings.HasPrefix(k, prefix) {
			delete(s.entries, k)
		}
	}
	return nil
}

// Close stops the sweep goroutine. Safe to call more than once.
func (s *MemoryStore) Close() {
	s.once.Do(func() { close(s.stop) })
}

// sweepLoop evicts expired entries on a recurring timer for the
// lifetime of the process. It never blocks request handling beyond the
// shared mutex.
func (s *MemoryStore) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stop:
			return
		}
	}
}

func (s *MemoryStore) sweep() {
	now := s.nowFunc()

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, e := range s.entries {
		if !now.Before(e.resetAt) {
			delete(s.entries, k)
		}
	}
}
