package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps rate limit windows in process memory. Good for a single
// instance; deployments behind a load balancer use the redis store instead.
type MemoryStore struct {
	mu      sync.RWMutex
	windows map[string]*window
	done    chan struct{}
	once    sync.Once
}

type window struct {
	count   int
	resetAt time.Time
}

// NewMemoryStore creates an in-memory store that evicts expired windows
// every cleanupInterval.
func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	s := &MemoryStore{
		windows: make(map[string]*window),
		done:    make(chan struct{}),
	}
	go s.evictLoop(cleanupInterval)
	return s
}

func (s *MemoryStore) evictLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			s.mu.Lock()
			for key, w := range s.windows {
				if now.After(w.resetAt) {
					delete(s.windows, key)
				}
			}
			s.mu.Unlock()
		}
	}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (int, time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.windows[key]
	if !ok || time.Now().After(w.resetAt) {
		return 0, time.Now(), nil
	}
	return w.count, w.resetAt, nil
}

func (s *MemoryStore) Increment(ctx context.Context, key string, resetTime time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok || time.Now().After(w.resetAt) {
		s.windows[key] = &window{count: 1, resetAt: resetTime}
		return 1, nil
	}
	w.count++
	return w.count, nil
}

func (s *MemoryStore) Reset(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.windows, key)
	return nil
}

// Close stops the eviction goroutine. The window map stays allocated so
// requests still in flight keep working.
func (s *MemoryStore) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}
