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

const noteCols = `id, user_id, title, body, is_deleted, deleted_at, created_at, updated_at`

// NoteRepo implements the lifecycle store contract for notes.
type NoteRepo struct{ db *DB }

// NewNoteRepo constructs a note repository.
func NewNoteRepo(db *DB) *NoteRepo { return &NoteRepo{db: db} }

// FindByID returns the note or errs.ErrNotFound. Lookups are owner-scoped,
// so a foreign-owned id behaves like a missing one.
func (r *NoteRepo) FindByID(ctx context.Context, owner, id uuid.UUID) (model.Note, error) {
	const q = `SELECT ` + noteCols + ` FROM notes WHERE user_id=$1 AND id=$2`
	return scanNote(r.db.Pool.QueryRow(ctx, q, owner, id))
}

// List returns all of the owner's notes, newest first.
func (r *NoteRepo) List(ctx context.Context, owner uuid.UUID) ([]model.Note, error) {
	const q = `SELECT ` + noteCols + ` FROM notes WHERE user_id=$1 ORDER BY updated_at DESC`
	rows, err := r.db.Pool.Query(ctx, q, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// NameTaken reports whether a title is in use within the owner scope.
func (r *NoteRepo) NameTaken(ctx context.Context, owner uuid.UUID, name string) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM notes WHERE user_id=$1 AND title=$2)`
	var taken bool
	if err := r.db.Pool.QueryRow(ctx, q, owner, name).Scan(&taken); err != nil {
		return false, err
	}
	return taken, nil
}

// Insert creates an active note. The (user_id, title) unique constraint
// is the authoritative guard behind the allocator.
func (r *NoteRepo) Insert(ctx context.Context, owner uuid.UUID, name string, in model.NoteInput) (model.Note, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return model.Note{}, err
	}
	const q = `
INSERT INTO notes (id, user_id, title, body)
VALUES ($1, $2, $3, $4)
RETURNING ` + noteCols
	n, err := scanNote(r.db.Pool.QueryRow(ctx, q, id, owner, name, in.Body))
	if isUniqueViolation(err) {
		return model.Note{}, errs.ErrAlreadyExists
	}
	return n, err
}

// Patch applies a partial update; nil fields keep stored values.
func (r *NoteRepo) Patch(ctx context.Context, owner, id uuid.UUID, p model.NotePatch) (model.Note, error) {
	const q = `
UPDATE notes
SET title=COALESCE($3, title), body=COALESCE($4, body), updated_at=now()
WHERE user_id=$1 AND id=$2
RETURNING ` + noteCols
	n, err := scanNote(r.db.Pool.QueryRow(ctx, q, owner, id, p.Title, p.Body))
	if isUniqueViolation(err) {
		return model.Note{}, errs.ErrAlreadyExists
	}
	return n, err
}

// SetDeleted writes the soft-delete state pair.
func (r *NoteRepo) SetDeleted(ctx context.Context, owner, id uuid.UUID, deleted bool, deletedAt *time.Time) (model.Note, error) {
	const q = `
UPDATE notes
SET is_deleted=$3, deleted_at=$4, updated_at=now()
WHERE user_id=$1 AND id=$2
RETURNING ` + noteCols
	return scanNote(r.db.Pool.QueryRow(ctx, q, owner, id, deleted, deletedAt))
}

// Remove permanently deletes the note.
func (r *NoteRepo) Remove(ctx context.Context, owner, id uuid.UUID) error {
	const q = `DELETE FROM notes WHERE user_id=$1 AND id=$2`
	tag, err := r.db.Pool.Exec(ctx, q, owner, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func scanNote(row pgx.Row) (model.Note, error) {
	var n model.Note
	err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Body, &n.IsDeleted, &n.DeletedAt, &n.CreatedAt, &n.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Note{}, errs.ErrNotFound
	}
	return n, err
}
