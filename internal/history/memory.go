package history

import (
	"context"
	"sync"
)

// MemoryStore is the in-process history store: a mutex-guarded map of
// session key to entry slice. State is scoped to the process lifetime.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]Entry
	cap      int
}

func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultCap
	}
	return &MemoryStore{
		sessions: make(map[string][]Entry),
		cap:      capacity,
	}
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.sessions[sessionID]
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out, nil
}

func (s *MemoryStore) Append(_ context.Context, sessionID string, entries ...Entry) error {
	if len(entries) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	merged := append(s.sessions[sessionID], entries...)
	if over := len(merged) - s.cap; over > 0 {
		merged = merged[over:]
	}
	s.sessions[sessionID] = merged
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, sessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	return ok, nil
}
