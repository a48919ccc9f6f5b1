package ratelimit

import (
	"sync"
	"time"
)

// sweepInterval bounds how long a dead window can linger before the
// janitor drops it.
const sweepInterval = time.Minute

type Store interface {
	Get(key string) (count int, resetTime time.Time, exists bool)
	Set(key string, count int, resetTime time.Time)
	Increment(key string, resetTime time.Time) (count int)
	Reset(key string)
}

// MemoryStore keeps fixed-window counters in process memory, one window
// per key. A window whose reset time has passed is treated as absent.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]window
}

type window struct {
	count   int
	resetAt time.Time
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		windows: make(map[string]window),
	}

	go s.sweep()

	return s
}

func (s *MemoryStore) Get(key string) (int, time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok || !time.Now().Before(w.resetAt) {
		return 0, time.Time{}, false
	}

	return w.count, w.resetAt, true
}

func (s *MemoryStore) Set(key string, count int, resetTime time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.windows[key] = window{count: count, resetAt: resetTime}
}

// Increment bumps the key's counter, starting a fresh window at resetTime
// when none is live.
func (s *MemoryStore) Increment(key string, resetTime time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok || !time.Now().Before(w.resetAt) {
		w = window{resetAt: resetTime}
	}
	w.count++
	s.windows[key] = w

	return w.count
}

func (s *MemoryStore) Reset(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.windows, key)
}

func (s *MemoryStore) sweep() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for now := range ticker.C {
		s.mu.Lock()
		for key, w := range s.windows {
			if now.After(w.resetAt) {
				delete(s.windows, key)
			}
		}
		s.mu.Unlock()
	}
}
