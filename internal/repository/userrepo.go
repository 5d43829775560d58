// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/akorchev/notesafe/internal/model"
)

// UserRepository provides CRUD access for user accounts.
type UserRepository interface {
	// Create inserts a new user; errs.ErrAlreadyExists when the email or
	// username is taken (case-insensitively).
	Create(ctx context.Context, u *model.User) error
	// GetByID loads a user by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// GetByUsername loads a user by username, case-insensitively.
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// UpdatePassword replaces the stored hash and salt.
	UpdatePassword(ctx context.Context, id uuid.UUID, pwdHash, saltAuth []byte) error
	// Delete removes the account and, via cascade, its resources.
	Delete(ctx context.Context, id uuid.UUID) error
}
