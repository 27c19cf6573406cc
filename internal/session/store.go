// internal/session/store.go
package session

import (
	"context"
	"sync"

	"github.com/newthinker/scribe/internal/core"
)

// Store defines the interface for session persistence. The store is
// responsible for durability only; it never interprets session contents.
type Store interface {
	// Load retrieves a session by id.
	Load(ctx context.Context, id string) (*Session, error)

	// Save persists a session, overwriting any prior version.
	Save(ctx context.Context, s *Session) error

	// List returns all sessions, newest first.
	List(ctx context.Context) ([]Session, error)
}

// MemoryStore is an in-memory session store.
type MemoryStore struct {
	sessions map[string]*Session
	order    []string // insertion order for eviction
	maxSize  int
	mu       sync.RWMutex
}

// NewMemoryStore creates a new in-memory store with max capacity.
func NewMemoryStore(maxSize int) *MemoryStore {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &MemoryStore{
		sessions: make(map[string]*Session),
		order:    make([]string, 0, maxSize),
		maxSize:  maxSize,
	}
}

// Load retrieves a session by id.
func (m *MemoryStore) Load(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, core.ErrSessionNotFound
	}
	return s.Clone(), nil
}

// Save persists a session copy. The oldest session is evicted at capacity.
func (m *MemoryStore) Save(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[s.ID]; !exists {
		if len(m.sessions) >= m.maxSize && len(m.order) > 0 {
			oldest := m.order[0]
			delete(m.sessions, oldest)
			m.order = m.order[1:]
		}
		m.order = append(m.order, s.ID)
	}

	m.sessions[s.ID] = s.Clone()
	return nil
}

// List returns all sessions, newest first.
func (m *MemoryStore) List(ctx context.Context) ([]Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Session, 0, len(m.sessions))
	for i := len(m.order) - 1; i >= 0; i-- {
		if s, ok := m.sessions[m.order[i]]; ok {
			result = append(result, *s.Clone())
		}
	}
	return result, nil
}
