// Package service wires validation and storage into the per-kind resource
// engines and implements account authentication.
package service

import (
	"go.uber.org/zap"

	"github.com/akorchev/notesafe/internal/lifecycle"
	"github.com/akorchev/notesafe/internal/model"
)

// NoteEngine and friends fix the engine's type parameters per kind.
type (
	NoteEngine     = lifecycle.Engine[model.Note, model.NoteInput, model.NotePatch]
	TodoEngine     = lifecycle.Engine[model.Todo, model.TodoInput, model.TodoPatch]
	PasswordEngine = lifecycle.Engine[model.PasswordEntry, model.PasswordInput, model.PasswordPatch]
)

// Stores collects the per-kind persistence backends.
type Stores struct {
	Notes     lifecycle.Store[model.Note, model.NoteInput, model.NotePatch]
	Todos     lifecycle.Store[model.Todo, model.TodoInput, model.TodoPatch]
	Passwords lifecycle.Store[model.PasswordEntry, model.PasswordInput, model.PasswordPatch]
}

// Resources bundles the three configured lifecycle engines.
type Resources struct {
	Notes     *NoteEngine
	Todos     *TodoEngine
	Passwords *PasswordEngine
}

// Options tune engine behavior shared across kinds.
type Options struct {
	// RecheckRename makes updates refuse colliding renames. Off by
	// default, matching the historical laxness.
	RecheckRename bool
}

// NewResources builds the three engines over the given stores.
func NewResources(st Stores, opts Options, log *zap.Logger) *Resources {
	return &Resources{
		Notes: lifecycle.New(lifecycle.Config[model.Note, model.NoteInput, model.NotePatch]{
			Kind:           "note",
			Store:          st.Notes,
			ValidateCreate: validateNoteInput,
			ValidatePatch:  validateNotePatch,
			DesiredName:    func(in model.NoteInput) string { return in.Title },
			PatchedName:    func(p model.NotePatch) *string { return p.Title },
			RecheckRename:  opts.RecheckRename,
			Logger:         log,
		}),
		Todos: lifecycle.New(lifecycle.Config[model.Todo, model.TodoInput, model.TodoPatch]{
			Kind:           "todo",
			Store:          st.Todos,
			ValidateCreate: validateTodoInput,
			ValidatePatch:  validateTodoPatch,
			DesiredName:    func(in model.TodoInput) string { return in.Title },
			PatchedName:    func(p model.TodoPatch) *string { return p.Title },
			RecheckRename:  opts.RecheckRename,
			Logger:         log,
		}),
		Passwords: lifecycle.New(lifecycle.Config[model.PasswordEntry, model.PasswordInput, model.PasswordPatch]{
			Kind:           "password",
			Store:          st.Passwords,
			ValidateCreate: validatePasswordInput,
			ValidatePatch:  validatePasswordPatch,
			DesiredName:    func(in model.PasswordInput) string { return in.Fieldname },
			PatchedName:    func(p model.PasswordPatch) *string { return p.Fieldname },
			RecheckRename:  opts.RecheckRename,
			Logger:         log,
		}),
	}
}
