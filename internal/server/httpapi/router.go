package httpapi

import (
	"net/http"

	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/akorchev/notesafe/internal/model"
	"github.com/akorchev/notesafe/internal/service"
	"github.com/akorchev/notesafe/internal/session"
)

// Deps collects everything the router needs.
type Deps struct {
	Auth        *AuthHandler
	Resources   *service.Resources
	Sessions    session.Store
	Logger      *zap.Logger
	CORSOrigins []string
}

// NewRouter assembles the full handler chain: recovery, request logging,
// CORS, session loading, then the API mux.
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mount := func(prefix string, h http.Handler) {
		mux.Handle(prefix+"/", http.StripPrefix(prefix, h))
	}

	mount("/api/v1/auth", d.Auth.routes())

	mount("/api/v1/notes", resourceAPI[model.Note, model.NoteInput, model.NotePatch]{
		eng:          d.Resources.Notes,
		decodeCreate: decodeNoteCreate,
		decodePatch:  decodeNotePatch,
		render:       renderNote,
	}.routes())

	mount("/api/v1/todos", resourceAPI[model.Todo, model.TodoInput, model.TodoPatch]{
		eng:          d.Resources.Todos,
		decodeCreate: decodeTodoCreate,
		decodePatch:  decodeTodoPatch,
		render:       renderTodo,
	}.routes())

	mount("/api/v1/passwords", resourceAPI[model.PasswordEntry, model.PasswordInput, model.PasswordPatch]{
		eng:          d.Resources.Passwords,
		decodeCreate: decodePasswordCreate,
		decodePatch:  decodePasswordPatch,
		render:       renderPassword,
	}.routes())

	c := cors.New(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowCredentials: true,
	})

	var h http.Handler = mux
	h = LoadSession(d.Sessions)(h)
	h = c.Handler(h)
	h = RequestLogger(d.Logger)(h)
	h = Recover(d.Logger)(h)
	return h
}
