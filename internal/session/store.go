package session

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned when a session ID has never been stored.
var ErrNotFound = errors.New("session: not found")

// Store persists sessions between conversation turns. Entries are never
// evicted; a session lives until the backing store does.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Put(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

// InMemoryStore keeps sessions in a process-local map. Used in tests and
// as the default backend when Redis is not configured.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]*Session)}
}

// Get returns a copy of the stored session.
func (s *InMemoryStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return sess.Clone(), nil
}

// Put stores a copy of the session, replacing any previous state.
func (s *InMemoryStore) Put(_ context.Context, sess *Session) error {
	if sess == nil || sess.ID == "" {
		return errors.New("session: cannot store session without an id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess.Clone()
	return nil
}

// Delete removes a session. Deleting an unknown ID is a no-op.
func (s *InMemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}
