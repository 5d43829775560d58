package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/akorchev/notesafe/internal/errs"
)

func TestMemoryStore_SaveGetDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)

	sess, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if sess.UserID != nil {
		t.Fatalf("fresh session must be unauthenticated")
	}

	uid := uuid.Must(uuid.NewV4())
	sess.UserID = &uid
	if err := store.Save(ctx, sess); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.UserID == nil || *got.UserID != uid {
		t.Fatalf("want userId %s, got %v", uid, got.UserID)
	}

	if err := store.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, sess.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("want ErrNotFound after delete, got %v", err)
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(-time.Second) // everything already expired

	if err := store.Save(ctx, &Session{ID: "gone"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := store.Get(ctx, "gone"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("want ErrNotFound for expired session, got %v", err)
	}
}

func TestMemoryStore_DeleteUnknownID(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	if err := store.Delete(context.Background(), "never-existed"); err != nil {
		t.Fatalf("Delete unknown id: %v", err)
	}
}

func TestNew_UniqueIDs(t *testing.T) {
	a, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if a.ID == b.ID {
		t.Fatalf("session ids must be unique")
	}
}
