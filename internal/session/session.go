// Package session provides the server-side session record and its stores.
// A session with no user id is unauthenticated; authentication operations
// are the only writers, resource operations only ever read it.
package session

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/akorchev/notesafe/internal/crypto"
)

// Session is the store-backed record referenced by request context.
type Session struct {
	ID       string     `json:"sessionId"`
	UserID   *uuid.UUID `json:"userId"` // nil means unauthenticated
	IssuedAt time.Time  `json:"issuedAt"`
}

// Store persists sessions keyed by their opaque identifier.
type Store interface {
	// Get loads a session; errs.ErrNotFound if absent or expired.
	Get(ctx context.Context, id string) (*Session, error)
	// Save writes a session, refreshing its TTL.
	Save(ctx context.Context, s *Session) error
	// Delete destroys a session. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error
}

// New creates an unauthenticated session with a fresh random identifier.
func New() (*Session, error) {
	id, err := crypto.RandToken(32)
	if err != nil {
		return nil, err
	}
	return &Session{ID: id, IssuedAt: time.Now().UTC()}, nil
}
