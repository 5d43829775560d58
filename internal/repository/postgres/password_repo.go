package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/akorchev/notesafe/internal/errs"
	"github.com/akorchev/notesafe/internal/model"
)

const passwordCols = `id, user_id, fieldname, email, username, secret, priority, is_deleted, deleted_at, created_at, updated_at`

// PasswordRepo implements the lifecycle store contract for password entries.
type PasswordRepo struct{ db *DB }

// NewPasswordRepo constructs a password-entry repository.
func NewPasswordRepo(db *DB) *PasswordRepo { return &PasswordRepo{db: db} }

// FindByID returns the entry or errs.ErrNotFound.
func (r *PasswordRepo) FindByID(ctx context.Context, owner, id uuid.UUID) (model.PasswordEntry, error) {
	const q = `SELECT ` + passwordCols + ` FROM passwords WHERE user_id=$1 AND id=$2`
	return scanPassword(r.db.Pool.QueryRow(ctx, q, owner, id))
}

// List returns all of the owner's entries ordered by fieldname.
func (r *PasswordRepo) List(ctx context.Context, owner uuid.UUID) ([]model.PasswordEntry, error) {
	const q = `SELECT ` + passwordCols + ` FROM passwords WHERE user_id=$1 ORDER BY fieldname ASC`
	rows, err := r.db.Pool.Query(ctx, q, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PasswordEntry
	for rows.Next() {
		p, err := scanPassword(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// NameTaken reports whether a fieldname is in use within the owner scope.
func (r *PasswordRepo) NameTaken(ctx context.Context, owner uuid.UUID, name string) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM passwords WHERE user_id=$1 AND fieldname=$2)`
	var taken bool
	if err := r.db.Pool.QueryRow(ctx, q, owner, name).Scan(&taken); err != nil {
		return false, err
	}
	return taken, nil
}

// Insert creates an active entry.
func (r *PasswordRepo) Insert(ctx context.Context, owner uuid.UUID, name string, in model.PasswordInput) (model.PasswordEntry, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return model.PasswordEntry{}, err
	}
	const q = `
INSERT INTO passwords (id, user_id, fieldname, email, username, secret, priority)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + passwordCols
	p, err := scanPassword(r.db.Pool.QueryRow(ctx, q, id, owner, name, in.Email, in.Username, in.Secret, in.Priority))
	if isUniqueViolation(err) {
		return model.PasswordEntry{}, errs.ErrAlreadyExists
	}
	return p, err
}

// Patch applies a partial update; nil fields keep stored values.
func (r *PasswordRepo) Patch(ctx context.Context, owner, id uuid.UUID, p model.PasswordPatch) (model.PasswordEntry, error) {
	const q = `
UPDATE passwords
SET fieldname=COALESCE($3, fieldname),
    email=COALESCE($4, email),
    username=COALESCE($5, username),
    secret=COALESCE($6, secret),
    priority=COALESCE($7, priority),
    updated_at=now()
WHERE user_id=$1 AND id=$2
RETURNING ` + passwordCols
	e, err := scanPassword(r.db.Pool.QueryRow(ctx, q, owner, id, p.Fieldname, p.Email, p.Username, p.Secret, p.Priority))
	if isUniqueViolation(err) {
		return model.PasswordEntry{}, errs.ErrAlreadyExists
	}
	return e, err
}

// SetDeleted writes the soft-delete state pair.
func (r *PasswordRepo) SetDeleted(ctx context.Context, owner, id uuid.UUID, deleted bool, deletedAt *time.Time) (model.PasswordEntry, error) {
	const q = `
UPDATE passwords
SET is_deleted=$3, deleted_at=$4, updated_at=now()
WHERE user_id=$1 AND id=$2
RETURNING ` + passwordCols
	return scanPassword(r.db.Pool.QueryRow(ctx, q, owner, id, deleted, deletedAt))
}

// Remove permanently deletes the entry.
func (r *PasswordRepo) Remove(ctx context.Context, owner, id uuid.UUID) error {
	const q = `DELETE FROM passwords WHERE user_id=$1 AND id=$2`
	tag, err := r.db.Pool.Exec(ctx, q, owner, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func scanPassword(row pgx.Row) (model.PasswordEntry, error) {
	var p model.PasswordEntry
	err := row.Scan(&p.ID, &p.UserID, &p.Fieldname, &p.Email, &p.Username, &p.Secret, &p.Priority,
		&p.IsDeleted, &p.DeletedAt, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.PasswordEntry{}, errs.ErrNotFound
	}
	return p, err
}
