// Package lifecycle orchestrates create/update/soft-delete/restore/
// hard-delete transitions for any resource kind. The same engine serves
// notes, todos and password entries; each kind plugs in via a Store and
// a handful of typed hooks, so the "same algorithm, different payload"
// shape needs no dynamic typing.
package lifecycle

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/akorchev/notesafe/internal/auth"
	"github.com/akorchev/notesafe/internal/errs"
	"github.com/akorchev/notesafe/internal/naming"
	"github.com/akorchev/notesafe/internal/session"
)

// Resource is the minimal view the engine needs of a stored record.
type Resource interface {
	ResourceID() uuid.UUID
	ResourceOwner() uuid.UUID
	ResourceName() string
	SoftDeleted() (bool, *time.Time)
}

// Store is the per-kind persistence contract. Every lookup and mutation
// is scoped to the owner; a foreign-owned id behaves exactly like a
// missing one (errs.ErrNotFound). Each method performs a single atomic
// store operation.
type Store[T Resource, I any, P any] interface {
	// FindByID returns the resource or errs.ErrNotFound.
	FindByID(ctx context.Context, owner, id uuid.UUID) (T, error)
	// List returns all of the owner's resources of this kind.
	List(ctx context.Context, owner uuid.UUID) ([]T, error)
	// NameTaken reports whether a name is in use within the owner scope.
	NameTaken(ctx context.Context, owner uuid.UUID, name string) (bool, error)
	// Insert creates an active resource; errs.ErrAlreadyExists on a
	// storage-level uniqueness violation.
	Insert(ctx context.Context, owner uuid.UUID, name string, in I) (T, error)
	// Patch applies a partial update; unset fields keep stored values.
	Patch(ctx context.Context, owner, id uuid.UUID, p P) (T, error)
	// SetDeleted writes the soft-delete state pair.
	SetDeleted(ctx context.Context, owner, id uuid.UUID, deleted bool, deletedAt *time.Time) (T, error)
	// Remove permanently deletes the resource.
	Remove(ctx context.Context, owner, id uuid.UUID) error
}

// Config assembles an engine for one resource kind.
type Config[T Resource, I any, P any] struct {
	// Kind names the resource in logs ("note", "todo", "password").
	Kind string

	Store Store[T, I, P]

	// ValidateCreate and ValidatePatch return a taxonomy ValidationError
	// on bad payloads.
	ValidateCreate func(I) error
	ValidatePatch  func(P) error

	// DesiredName extracts the requested name from a create input.
	DesiredName func(I) string
	// PatchedName extracts the new name from a patch, nil if unchanged.
	PatchedName func(P) *string

	// RecheckRename makes Update refuse a rename that collides within
	// the owner scope. Off by default: historical behavior allows the
	// collision and relies on the storage constraint.
	RecheckRename bool

	// MaxNameAttempts bounds the allocator; zero means the default.
	MaxNameAttempts int

	Logger *zap.Logger
}

// Engine exposes the five lifecycle operations plus read access for one
// resource kind.
type Engine[T Resource, I any, P any] struct {
	cfg   Config[T, I, P]
	alloc *naming.Allocator
	log   *zap.Logger
}

// New constructs an engine from its per-kind configuration.
func New[T Resource, I any, P any](cfg Config[T, I, P]) *Engine[T, I, P] {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine[T, I, P]{
		cfg:   cfg,
		alloc: naming.New(cfg.Store.NameTaken, cfg.MaxNameAttempts),
		log:   log,
	}
}

// Create validates the payload, allocates a collision-free name and
// inserts a new active resource owned by the caller.
func (e *Engine[T, I, P]) Create(ctx context.Context, sess *session.Session, in I) (T, error) {
	var zero T
	uid, err := auth.Authorize(sess)
	if err != nil {
		return zero, e.fail("create", uid, err)
	}
	if err := e.cfg.ValidateCreate(in); err != nil {
		return zero, e.fail("create", uid, err)
	}
	name, err := e.alloc.Allocate(ctx, uid, e.cfg.DesiredName(in))
	if err != nil {
		return zero, e.fail("create", uid, err)
	}
	res, err := e.cfg.Store.Insert(ctx, uid, name, in)
	if err != nil {
		// A concurrent create can win the allocator's race window; the
		// storage constraint reports it as a uniqueness violation.
		return zero, e.fail("create", uid, err)
	}
	e.ok("create", uid, res.ResourceID())
	return res, nil
}

// Update merges a partial patch into the stored resource. Fields not
// supplied keep their current values; the owner is never reassigned.
func (e *Engine[T, I, P]) Update(ctx context.Context, sess *session.Session, id uuid.UUID, p P) (T, error) {
	var zero T
	uid, err := auth.Authorize(sess)
	if err != nil {
		return zero, e.fail("update", uid, err)
	}
	if err := e.cfg.ValidatePatch(p); err != nil {
		return zero, e.fail("update", uid, err)
	}
	cur, err := e.cfg.Store.FindByID(ctx, uid, id)
	if err != nil {
		return zero, e.fail("update", uid, err)
	}
	if e.cfg.RecheckRename && e.cfg.PatchedName != nil {
		if newName := e.cfg.PatchedName(p); newName != nil && *newName != cur.ResourceName() {
			taken, err := e.cfg.Store.NameTaken(ctx, uid, *newName)
			if err != nil {
				return zero, e.fail("update", uid, err)
			}
			if taken {
				return zero, e.fail("update", uid, errs.Conflict("name already taken"))
			}
		}
	}
	res, err := e.cfg.Store.Patch(ctx, uid, id, p)
	if err != nil {
		return zero, e.fail("update", uid, err)
	}
	e.ok("update", uid, res.ResourceID())
	return res, nil
}

// SoftDelete marks the resource logically deleted. Already soft-deleted
// resources are returned unchanged without touching the store.
func (e *Engine[T, I, P]) SoftDelete(ctx context.Context, sess *session.Session, id uuid.UUID) (T, error) {
	var zero T
	uid, err := auth.Authorize(sess)
	if err != nil {
		return zero, e.fail("softDelete", uid, err)
	}
	cur, err := e.cfg.Store.FindByID(ctx, uid, id)
	if err != nil {
		return zero, e.fail("softDelete", uid, err)
	}
	if deleted, at := cur.SoftDeleted(); deleted && at != nil {
		e.ok("softDelete", uid, cur.ResourceID())
		return cur, nil
	}
	now := time.Now().UTC()
	res, err := e.cfg.Store.SetDeleted(ctx, uid, id, true, &now)
	if err != nil {
		return zero, e.fail("softDelete", uid, err)
	}
	e.ok("softDelete", uid, res.ResourceID())
	return res, nil
}

// Restore clears the soft-delete state. A resource observed in the mixed
// state (IsDeleted false but DeletedAt set) is returned unchanged with
// no write; every other state takes the write path.
func (e *Engine[T, I, P]) Restore(ctx context.Context, sess *session.Session, id uuid.UUID) (T, error) {
	var zero T
	uid, err := auth.Authorize(sess)
	if err != nil {
		return zero, e.fail("restore", uid, err)
	}
	cur, err := e.cfg.Store.FindByID(ctx, uid, id)
	if err != nil {
		return zero, e.fail("restore", uid, err)
	}
	if deleted, at := cur.SoftDeleted(); !deleted && at != nil {
		e.ok("restore", uid, cur.ResourceID())
		return cur, nil
	}
	res, err := e.cfg.Store.SetDeleted(ctx, uid, id, false, nil)
	if err != nil {
		return zero, e.fail("restore", uid, err)
	}
	e.ok("restore", uid, res.ResourceID())
	return res, nil
}

// HardDelete removes the resource permanently and returns its pre-delete
// snapshot; the row no longer exists, so nothing can be re-fetched.
func (e *Engine[T, I, P]) HardDelete(ctx context.Context, sess *session.Session, id uuid.UUID) (T, error) {
	var zero T
	uid, err := auth.Authorize(sess)
	if err != nil {
		return zero, e.fail("hardDelete", uid, err)
	}
	snapshot, err := e.cfg.Store.FindByID(ctx, uid, id)
	if err != nil {
		return zero, e.fail("hardDelete", uid, err)
	}
	if err := e.cfg.Store.Remove(ctx, uid, id); err != nil {
		return zero, e.fail("hardDelete", uid, err)
	}
	e.ok("hardDelete", uid, snapshot.ResourceID())
	return snapshot, nil
}

// Get returns a single resource owned by the caller.
func (e *Engine[T, I, P]) Get(ctx context.Context, sess *session.Session, id uuid.UUID) (T, error) {
	var zero T
	uid, err := auth.Authorize(sess)
	if err != nil {
		return zero, e.fail("get", uid, err)
	}
	res, err := e.cfg.Store.FindByID(ctx, uid, id)
	if err != nil {
		return zero, e.fail("get", uid, err)
	}
	return res, nil
}

// List returns every resource of this kind owned by the caller.
func (e *Engine[T, I, P]) List(ctx context.Context, sess *session.Session) ([]T, error) {
	uid, err := auth.Authorize(sess)
	if err != nil {
		return nil, e.fail("list", uid, err)
	}
	out, err := e.cfg.Store.List(ctx, uid)
	if err != nil {
		return nil, e.fail("list", uid, err)
	}
	return out, nil
}

// fail classifies err into the taxonomy, logs it with the operation name
// and best-known caller identity, and returns the classified error.
// Nothing unclassified crosses the engine boundary.
func (e *Engine[T, I, P]) fail(op string, uid uuid.UUID, err error) error {
	te := errs.Classify(err)
	fields := []zap.Field{
		zap.String("operation", e.cfg.Kind+"."+op),
		zap.String("errorKind", string(te.Kind)),
		zap.Int("status", te.Status),
		zap.Bool("operational", te.Operational),
	}
	if uid != uuid.Nil {
		fields = append(fields, zap.String("userId", uid.String()))
	}
	if len(te.Meta) > 0 {
		fields = append(fields, zap.Any("meta", te.Meta))
	}
	e.log.Error("operation failed", fields...)
	return te
}

// ok emits the informational log required on every successful mutation.
func (e *Engine[T, I, P]) ok(op string, uid uuid.UUID, id uuid.UUID) {
	e.log.Info("operation ok",
		zap.String("operation", e.cfg.Kind+"."+op),
		zap.String("userId", uid.String()),
		zap.String("resourceId", id.String()),
	)
}
