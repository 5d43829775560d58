// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Priority levels shared by todos and password entries.
type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

// ValidPriority reports whether p is one of the known levels.
func ValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// User represents an account. Email and username are unique
// case-insensitively. Users are never soft-deleted.
type User struct {
	ID        uuid.UUID
	Username  string
	Email     string
	PwdHash   []byte // Argon2id(password, SaltAuth)
	SaltAuth  []byte // per-user auth salt
	CreatedAt time.Time
}

// Base carries the lifecycle columns shared by every resource kind.
// Invariant: IsDeleted == true iff DeletedAt != nil.
type Base struct {
	ID        uuid.UUID
	UserID    uuid.UUID // owner, immutable after creation
	IsDeleted bool
	DeletedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ResourceID returns the immutable resource id.
func (b Base) ResourceID() uuid.UUID { return b.ID }

// ResourceOwner returns the owning user id.
func (b Base) ResourceOwner() uuid.UUID { return b.UserID }

// SoftDeleted returns the soft-delete state pair.
func (b Base) SoftDeleted() (bool, *time.Time) { return b.IsDeleted, b.DeletedAt }

// Note is a titled free-text record.
type Note struct {
	Base
	Title string // unique within the owner's notes
	Body  string
}

// ResourceName returns the owner-scoped name field.
func (n Note) ResourceName() string { return n.Title }

// NoteInput is the payload for creating a note.
type NoteInput struct {
	Title string
	Body  string
}

// NotePatch is a partial note update; nil fields keep stored values.
type NotePatch struct {
	Title *string
	Body  *string
}

// Todo is a prioritized task with a due date.
type Todo struct {
	Base
	Title    string // unique within the owner's todos
	Body     string
	Priority Priority
	DueDate  time.Time
}

// ResourceName returns the owner-scoped name field.
func (t Todo) ResourceName() string { return t.Title }

// TodoInput is the payload for creating a todo.
type TodoInput struct {
	Title    string
	Body     string
	Priority Priority
	DueDate  time.Time
}

// TodoPatch is a partial todo update; nil fields keep stored values.
type TodoPatch struct {
	Title    *string
	Body     *string
	Priority *Priority
	DueDate  *time.Time
}

// PasswordEntry stores a credential for some external service.
// Secret holds the credential value and must never appear in logs
// or error metadata.
type PasswordEntry struct {
	Base
	Fieldname string // unique within the owner's entries
	Email     string
	Username  string
	Secret    string
	Priority  Priority
}

// ResourceName returns the owner-scoped name field.
func (p PasswordEntry) ResourceName() string { return p.Fieldname }

// PasswordInput is the payload for creating a password entry.
type PasswordInput struct {
	Fieldname string
	Email     string
	Username  string
	Secret    string
	Priority  Priority
}

// PasswordPatch is a partial entry update; nil fields keep stored values.
type PasswordPatch struct {
	Fieldname *string
	Email     *string
	Username  *string
	Secret    *string
	Priority  *Priority
}
