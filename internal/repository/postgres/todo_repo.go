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

const todoCols = `id, user_id, title, body, priority, due_date, is_deleted, deleted_at, created_at, updated_at`

// TodoRepo implements the lifecycle store contract for todos.
type TodoRepo struct{ db *DB }

// NewTodoRepo constructs a todo repository.
func NewTodoRepo(db *DB) *TodoRepo { return &TodoRepo{db: db} }

// FindByID returns the todo or errs.ErrNotFound.
func (r *TodoRepo) FindByID(ctx context.Context, owner, id uuid.UUID) (model.Todo, error) {
	const q = `SELECT ` + todoCols + ` FROM todos WHERE user_id=$1 AND id=$2`
	return scanTodo(r.db.Pool.QueryRow(ctx, q, owner, id))
}

// List returns all of the owner's todos ordered by due date.
func (r *TodoRepo) List(ctx context.Context, owner uuid.UUID) ([]model.Todo, error) {
	const q = `SELECT ` + todoCols + ` FROM todos WHERE user_id=$1 ORDER BY due_date ASC`
	rows, err := r.db.Pool.Query(ctx, q, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Todo
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// NameTaken reports whether a title is in use within the owner scope.
func (r *TodoRepo) NameTaken(ctx context.Context, owner uuid.UUID, name string) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM todos WHERE user_id=$1 AND title=$2)`
	var taken bool
	if err := r.db.Pool.QueryRow(ctx, q, owner, name).Scan(&taken); err != nil {
		return false, err
	}
	return taken, nil
}

// Insert creates an active todo.
func (r *TodoRepo) Insert(ctx context.Context, owner uuid.UUID, name string, in model.TodoInput) (model.Todo, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return model.Todo{}, err
	}
	const q = `
INSERT INTO todos (id, user_id, title, body, priority, due_date)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + todoCols
	t, err := scanTodo(r.db.Pool.QueryRow(ctx, q, id, owner, name, in.Body, in.Priority, in.DueDate))
	if isUniqueViolation(err) {
		return model.Todo{}, errs.ErrAlreadyExists
	}
	return t, err
}

// Patch applies a partial update; nil fields keep stored values.
func (r *TodoRepo) Patch(ctx context.Context, owner, id uuid.UUID, p model.TodoPatch) (model.Todo, error) {
	const q = `
UPDATE todos
SET title=COALESCE($3, title),
    body=COALESCE($4, body),
    priority=COALESCE($5, priority),
    due_date=COALESCE($6, due_date),
    updated_at=now()
WHERE user_id=$1 AND id=$2
RETURNING ` + todoCols
	t, err := scanTodo(r.db.Pool.QueryRow(ctx, q, owner, id, p.Title, p.Body, p.Priority, p.DueDate))
	if isUniqueViolation(err) {
		return model.Todo{}, errs.ErrAlreadyExists
	}
	return t, err
}

// SetDeleted writes the soft-delete state pair.
func (r *TodoRepo) SetDeleted(ctx context.Context, owner, id uuid.UUID, deleted bool, deletedAt *time.Time) (model.Todo, error) {
	const q = `
UPDATE todos
SET is_deleted=$3, deleted_at=$4, updated_at=now()
WHERE user_id=$1 AND id=$2
RETURNING ` + todoCols
	return scanTodo(r.db.Pool.QueryRow(ctx, q, owner, id, deleted, deletedAt))
}

// Remove permanently deletes the todo.
func (r *TodoRepo) Remove(ctx context.Context, owner, id uuid.UUID) error {
	const q = `DELETE FROM todos WHERE user_id=$1 AND id=$2`
	tag, err := r.db.Pool.Exec(ctx, q, owner, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func scanTodo(row pgx.Row) (model.Todo, error) {
	var t model.Todo
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Body, &t.Priority, &t.DueDate,
		&t.IsDeleted, &t.DeletedAt, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Todo{}, errs.ErrNotFound
	}
	return t, err
}
