package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/sentiscope/internal/domain"
)

// StoreObserver receives store gauges. Implemented by the metrics adapter.
type StoreObserver interface {
	SessionsEvicted(n int)
	SessionsActive(n int)
}

type noopObserver struct{}

func (noopObserver) SessionsEvicted(int) {}
func (noopObserver) SessionsActive(int)  {}

// MemoryStore keeps session state in-process. Entries idle longer than ttl are
// treated as absent and removed by the eviction timer.
type MemoryStore struct {
	mu       sync.Mutex
	entries  map[uuid.UUID]*memoryEntry
	ttl      time.Duration
	clock    clockwork.Clock
	observer StoreObserver
}

type memoryEntry struct {
	state     domain.SessionState
	expiresAt time.Time
}

var _ domain.SessionRepository = (*MemoryStore)(nil)

func NewMemoryStore(ttl time.Duration, clock clockwork.Clock, observer StoreObserver) *MemoryStore {
	if observer == nil {
		observer = noopObserver{}
	}
	return &MemoryStore{
		entries:  make(map[uuid.UUID]*memoryEntry),
		ttl:      ttl,
		clock:    clock,
		observer: observer,
	}
}

func (s *MemoryStore) Get(_ context.Context, sessionID uuid.UUID) (domain.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.lookup(sessionID)
	if !ok {
		return domain.SessionState{}, nil
	}
	return Clone(entry.state), nil
}

func (s *MemoryStore) Update(_ context.Context, sessionID uuid.UUID, fn domain.UpdateFunc) (domain.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var current domain.SessionState
	if entry, ok := s.lookup(sessionID); ok {
		current = Clone(entry.state)
	}

	next, err := fn(current)
	if err != nil {
		return domain.SessionState{}, err
	}

	s.entries[sessionID] = &memoryEntry{
		state:     Clone(next),
		expiresAt: s.clock.Now().Add(s.ttl),
	}
	return next, nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionID)
	return nil
}

// Size returns the number of stored sessions, including expired ones not yet evicted.
func (s *MemoryStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// EvictExpired removes expired sessions and returns how many were removed.
func (s *MemoryStore) EvictExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	evicted := 0
	for id, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, id)
			evicted++
		}
	}
	return evicted
}

// StartEvictionTimer evicts expired sessions every interval until the returned stop function is called.
func (s *MemoryStore) StartEvictionTimer(interval time.Duration) func() {
	ticker := s.clock.NewTicker(interval)
	done := make(chan struct{})
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)
		for {
			select {
			case <-ticker.Chan():
				evicted := s.EvictExpired()
				remaining := s.Size()
				if evicted > 0 {
					slog.Debug("Evicted expired sessions", "count", evicted, "remaining", remaining)
					s.observer.SessionsEvicted(evicted)
				}
				s.observer.SessionsActive(remaining)

			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			<-stopped
		})
	}
}

// lookup must be called with mu held.
func (s *MemoryStore) lookup(sessionID uuid.UUID) (*memoryEntry, bool) {
	entry, ok := s.entries[sessionID]
	if !ok {
		return nil, false
	}
	if s.clock.Now().After(entry.expiresAt) {
		delete(s.entries, sessionID)
		return nil, false
	}
	return entry, true
}
