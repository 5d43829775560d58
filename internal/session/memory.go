package session

import (
	"context"
	"sync"
	"time"

	"github.com/akorchev/notesafe/internal/errs"
)

type memEntry struct {
	sess      Session
	expiresAt time.Time
}

// MemoryStore is an in-process session store with TTL, used in tests
// and single-node development runs.
type MemoryStore struct {
	mu  sync.RWMutex
	ttl time.Duration
	m   map[string]memEntry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, m: map[string]memEntry{}}
}

// Get returns a copy of the stored session.
func (s *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.m[id]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, errs.ErrNotFound
	}
	sess := e.sess
	return &sess, nil
}

// Save stores a copy of the session, refreshing its TTL.
func (s *MemoryStore) Save(_ context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[sess.ID] = memEntry{sess: *sess, expiresAt: time.Now().Add(s.ttl)}
	return nil
}

// Delete removes a session if present.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, id)
	return nil
}
