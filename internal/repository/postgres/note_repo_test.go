package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/akorchev/notesafe/internal/errs"
	"github.com/akorchev/notesafe/internal/model"
)

func newDB(t *testing.T) (*DB, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return &DB{Pool: mock}, mock
}

var noteColNames = []string{"id", "user_id", "title", "body", "is_deleted", "deleted_at", "created_at", "updated_at"}

func noteRow(id, owner uuid.UUID, title, body string, ts time.Time) *pgxmock.Rows {
	return pgxmock.NewRows(noteColNames).
		AddRow(id, owner, title, body, false, (*time.Time)(nil), ts, ts)
}

func TestNoteRepo_FindByID_OK_And_NotFound(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewNoteRepo(db)

	ctx := context.Background()
	owner := uuid.Must(uuid.NewV4())
	id := uuid.Must(uuid.NewV4())
	ts := time.Now().UTC()

	mock.ExpectQuery(`SELECT .+ FROM notes WHERE user_id=\$1 AND id=\$2`).
		WithArgs(owner, id).
		WillReturnRows(noteRow(id, owner, "Trip", "packing list", ts))
	n, err := r.FindByID(ctx, owner, id)
	require.NoError(t, err)
	require.Equal(t, id, n.ID)
	require.Equal(t, "Trip", n.Title)
	require.False(t, n.IsDeleted)
	require.Nil(t, n.DeletedAt)

	mock.ExpectQuery(`SELECT .+ FROM notes WHERE user_id=\$1 AND id=\$2`).
		WithArgs(owner, id).
		WillReturnError(pgx.ErrNoRows)
	_, err = r.FindByID(ctx, owner, id)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestNoteRepo_List(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewNoteRepo(db)

	ctx := context.Background()
	owner := uuid.Must(uuid.NewV4())
	ts := time.Now().UTC()
	id1 := uuid.Must(uuid.NewV4())
	id2 := uuid.Must(uuid.NewV4())
	at := ts.Add(-time.Hour)

	rows := pgxmock.NewRows(noteColNames).
		AddRow(id1, owner, "Trip", "a", false, (*time.Time)(nil), ts, ts).
		AddRow(id2, owner, "Old", "b", true, &at, ts, ts)

	mock.ExpectQuery(`SELECT .+ FROM notes WHERE user_id=\$1 ORDER BY updated_at DESC`).
		WithArgs(owner).
		WillReturnRows(rows)

	out, err := r.List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.False(t, out[0].IsDeleted)
	require.True(t, out[1].IsDeleted)
	require.NotNil(t, out[1].DeletedAt)
}

func TestNoteRepo_NameTaken(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewNoteRepo(db)

	ctx := context.Background()
	owner := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM notes WHERE user_id=\$1 AND title=\$2\)`).
		WithArgs(owner, "Trip").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	taken, err := r.NameTaken(ctx, owner, "Trip")
	require.NoError(t, err)
	require.True(t, taken)
}

func TestNoteRepo_Insert_OK(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewNoteRepo(db)

	ctx := context.Background()
	owner := uuid.Must(uuid.NewV4())
	ts := time.Now().UTC()

	mock.ExpectQuery(`INSERT INTO notes \(id, user_id, title, body\)`).
		WithArgs(pgxmock.AnyArg(), owner, "Trip_1", "body").
		WillReturnRows(noteRow(uuid.Must(uuid.NewV4()), owner, "Trip_1", "body", ts))

	n, err := r.Insert(ctx, owner, "Trip_1", model.NoteInput{Title: "Trip", Body: "body"})
	require.NoError(t, err)
	require.Equal(t, "Trip_1", n.Title)
	require.Equal(t, owner, n.UserID)
}

func TestNoteRepo_Insert_UniqueViolation(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewNoteRepo(db)

	ctx := context.Background()
	owner := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`INSERT INTO notes \(id, user_id, title, body\)`).
		WithArgs(pgxmock.AnyArg(), owner, "Trip", "").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := r.Insert(ctx, owner, "Trip", model.NoteInput{Title: "Trip"})
	require.ErrorIs(t, err, errs.ErrAlreadyExists)
}

func TestNoteRepo_Patch(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewNoteRepo(db)

	ctx := context.Background()
	owner := uuid.Must(uuid.NewV4())
	id := uuid.Must(uuid.NewV4())
	ts := time.Now().UTC()
	title := "Trip v2"

	mock.ExpectQuery(`UPDATE notes\s+SET title=COALESCE\(\$3, title\), body=COALESCE\(\$4, body\), updated_at=now\(\)`).
		WithArgs(owner, id, &title, (*string)(nil)).
		WillReturnRows(noteRow(id, owner, "Trip v2", "kept", ts))

	n, err := r.Patch(ctx, owner, id, model.NotePatch{Title: &title})
	require.NoError(t, err)
	require.Equal(t, "Trip v2", n.Title)
	require.Equal(t, "kept", n.Body)
}

func TestNoteRepo_Patch_RenameConflict(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewNoteRepo(db)

	ctx := context.Background()
	owner := uuid.Must(uuid.NewV4())
	id := uuid.Must(uuid.NewV4())
	title := "Taken"

	mock.ExpectQuery(`UPDATE notes\s+SET title=COALESCE`).
		WithArgs(owner, id, &title, (*string)(nil)).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := r.Patch(ctx, owner, id, model.NotePatch{Title: &title})
	require.ErrorIs(t, err, errs.ErrAlreadyExists)
}

func TestNoteRepo_SetDeleted(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewNoteRepo(db)

	ctx := context.Background()
	owner := uuid.Must(uuid.NewV4())
	id := uuid.Must(uuid.NewV4())
	ts := time.Now().UTC()
	at := ts

	rows := pgxmock.NewRows(noteColNames).
		AddRow(id, owner, "Trip", "b", true, &at, ts, ts)

	mock.ExpectQuery(`UPDATE notes\s+SET is_deleted=\$3, deleted_at=\$4, updated_at=now\(\)`).
		WithArgs(owner, id, true, &at).
		WillReturnRows(rows)

	n, err := r.SetDeleted(ctx, owner, id, true, &at)
	require.NoError(t, err)
	require.True(t, n.IsDeleted)
	require.NotNil(t, n.DeletedAt)
}

func TestNoteRepo_Remove_OK_And_NotFound(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewNoteRepo(db)

	ctx := context.Background()
	owner := uuid.Must(uuid.NewV4())
	id := uuid.Must(uuid.NewV4())

	mock.ExpectExec(`DELETE FROM notes WHERE user_id=\$1 AND id=\$2`).
		WithArgs(owner, id).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	require.NoError(t, r.Remove(ctx, owner, id))

	mock.ExpectExec(`DELETE FROM notes WHERE user_id=\$1 AND id=\$2`).
		WithArgs(owner, id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	require.ErrorIs(t, r.Remove(ctx, owner, id), errs.ErrNotFound)
}

func TestNoteRepo_List_QueryErr(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewNoteRepo(db)

	mock.ExpectQuery(`SELECT .+ FROM notes WHERE user_id=\$1 ORDER BY updated_at DESC`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnError(errors.New("q-fail"))

	_, err := r.List(context.Background(), uuid.Must(uuid.NewV4()))
	require.Error(t, err)
}
