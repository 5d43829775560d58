package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/akorchev/notesafe/internal/errs"
	"github.com/akorchev/notesafe/internal/lifecycle"
	"github.com/akorchev/notesafe/internal/model"
	"github.com/akorchev/notesafe/internal/service"
	"github.com/akorchev/notesafe/internal/session"
)

// fakeStore is an in-memory lifecycle store; build and applyPatch supply
// the per-kind pieces the generic code cannot.
type fakeStore[T lifecycle.Resource, I any, P any] struct {
	items      map[uuid.UUID]T
	build      func(id, owner uuid.UUID, name string, in I) T
	applyPatch func(T, P) T
	setState   func(T, bool, *time.Time) T
}

func (s *fakeStore[T, I, P]) FindByID(_ context.Context, owner, id uuid.UUID) (T, error) {
	var zero T
	it, ok := s.items[id]
	if !ok || it.ResourceOwner() != owner {
		return zero, errs.ErrNotFound
	}
	return it, nil
}

func (s *fakeStore[T, I, P]) List(_ context.Context, owner uuid.UUID) ([]T, error) {
	var out []T
	for _, it := range s.items {
		if it.ResourceOwner() == owner {
			out = append(out, it)
		}
	}
	return out, nil
}

func (s *fakeStore[T, I, P]) NameTaken(_ context.Context, owner uuid.UUID, name string) (bool, error) {
	for _, it := range s.items {
		if it.ResourceOwner() == owner && it.ResourceName() == name {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore[T, I, P]) Insert(_ context.Context, owner uuid.UUID, name string, in I) (T, error) {
	it := s.build(uuid.Must(uuid.NewV4()), owner, name, in)
	s.items[it.ResourceID()] = it
	return it, nil
}

func (s *fakeStore[T, I, P]) Patch(_ context.Context, owner, id uuid.UUID, p P) (T, error) {
	it, err := s.FindByID(context.Background(), owner, id)
	if err != nil {
		return it, err
	}
	it = s.applyPatch(it, p)
	s.items[id] = it
	return it, nil
}

func (s *fakeStore[T, I, P]) SetDeleted(_ context.Context, owner, id uuid.UUID, deleted bool, deletedAt *time.Time) (T, error) {
	it, err := s.FindByID(context.Background(), owner, id)
	if err != nil {
		return it, err
	}
	it = s.setState(it, deleted, deletedAt)
	s.items[id] = it
	return it, nil
}

func (s *fakeStore[T, I, P]) Remove(_ context.Context, owner, id uuid.UUID) error {
	if _, err := s.FindByID(context.Background(), owner, id); err != nil {
		return err
	}
	delete(s.items, id)
	return nil
}

func newFakeStores() service.Stores {
	return service.Stores{
		Notes: &fakeStore[model.Note, model.NoteInput, model.NotePatch]{
			items: map[uuid.UUID]model.Note{},
			build: func(id, owner uuid.UUID, name string, in model.NoteInput) model.Note {
				return model.Note{Base: model.Base{ID: id, UserID: owner}, Title: name, Body: in.Body}
			},
			applyPatch: func(n model.Note, p model.NotePatch) model.Note {
				if p.Title != nil {
					n.Title = *p.Title
				}
				if p.Body != nil {
					n.Body = *p.Body
				}
				return n
			},
			setState: func(n model.Note, d bool, at *time.Time) model.Note {
				n.IsDeleted, n.DeletedAt = d, at
				return n
			},
		},
		Todos: &fakeStore[model.Todo, model.TodoInput, model.TodoPatch]{
			items: map[uuid.UUID]model.Todo{},
			build: func(id, owner uuid.UUID, name string, in model.TodoInput) model.Todo {
				return model.Todo{Base: model.Base{ID: id, UserID: owner}, Title: name, Body: in.Body, Priority: in.Priority, DueDate: in.DueDate}
			},
			applyPatch: func(t model.Todo, p model.TodoPatch) model.Todo {
				if p.Title != nil {
					t.Title = *p.Title
				}
				if p.Priority != nil {
					t.Priority = *p.Priority
				}
				return t
			},
			setState: func(t model.Todo, d bool, at *time.Time) model.Todo {
				t.IsDeleted, t.DeletedAt = d, at
				return t
			},
		},
		Passwords: &fakeStore[model.PasswordEntry, model.PasswordInput, model.PasswordPatch]{
			items: map[uuid.UUID]model.PasswordEntry{},
			build: func(id, owner uuid.UUID, name string, in model.PasswordInput) model.PasswordEntry {
				return model.PasswordEntry{Base: model.Base{ID: id, UserID: owner}, Fieldname: name, Email: in.Email, Username: in.Username, Secret: in.Secret, Priority: in.Priority}
			},
			applyPatch: func(e model.PasswordEntry, p model.PasswordPatch) model.PasswordEntry {
				if p.Fieldname != nil {
					e.Fieldname = *p.Fieldname
				}
				if p.Secret != nil {
					e.Secret = *p.Secret
				}
				return e
			},
			setState: func(e model.PasswordEntry, d bool, at *time.Time) model.PasswordEntry {
				e.IsDeleted, e.DeletedAt = d, at
				return e
			},
		},
	}
}

type routerUsers struct{ byName map[string]*model.User }

func (f *routerUsers) Create(_ context.Context, u *model.User) error {
	key := strings.ToLower(u.Username)
	if _, ok := f.byName[key]; ok {
		return errs.ErrAlreadyExists
	}
	f.byName[key] = u
	return nil
}

func (f *routerUsers) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	for _, u := range f.byName {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *routerUsers) GetByUsername(_ context.Context, username string) (*model.User, error) {
	u, ok := f.byName[strings.ToLower(username)]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return u, nil
}

func (f *routerUsers) UpdatePassword(_ context.Context, id uuid.UUID, pwdHash, saltAuth []byte) error {
	u, err := f.GetByID(context.Background(), id)
	if err != nil {
		return err
	}
	u.PwdHash, u.SaltAuth = pwdHash, saltAuth
	return nil
}

func (f *routerUsers) Delete(_ context.Context, id uuid.UUID) error {
	for k, u := range f.byName {
		if u.ID == id {
			delete(f.byName, k)
			return nil
		}
	}
	return errs.ErrNotFound
}

type openLimiter struct{}

func (openLimiter) Allow(context.Context, string, []byte) (bool, time.Duration, error) {
	return true, 0, nil
}
func (openLimiter) Success(context.Context, string, []byte) error { return nil }
func (openLimiter) Failure(context.Context, string, []byte) (bool, time.Duration, error) {
	return false, 0, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	sessions := session.NewMemoryStore(time.Hour)
	authSvc := service.NewAuthService(&routerUsers{byName: map[string]*model.User{}}, sessions, openLimiter{}, nil)
	resources := service.NewResources(newFakeStores(), service.Options{}, zap.NewNop())

	srv := httptest.NewServer(NewRouter(Deps{
		Auth:        NewAuthHandler(authSvc, false),
		Resources:   resources,
		Sessions:    sessions,
		Logger:      zap.NewNop(),
		CORSOrigins: []string{"*"},
	}))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any) (*http.Response, payload) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var p payload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&p))
	return resp, p
}

func newCookieClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func loggedInClient(t *testing.T, srv *httptest.Server) *http.Client {
	t.Helper()
	jar := newCookieClient(t)

	resp, p := doJSON(t, jar, http.MethodPost, srv.URL+"/api/v1/auth/register",
		map[string]string{"username": "alice", "email": "alice@example.com", "password": "secret1"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "register: %+v", p)

	resp, p = doJSON(t, jar, http.MethodPost, srv.URL+"/api/v1/auth/login",
		map[string]string{"username": "alice", "password": "secret1"})
	require.Equal(t, http.StatusOK, resp.StatusCode, "login: %+v", p)
	return jar
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNotes_RequireAuthentication(t *testing.T) {
	srv := newTestServer(t)

	resp, p := doJSON(t, http.DefaultClient, http.MethodPost, srv.URL+"/api/v1/notes/",
		map[string]string{"title": "Trip"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "AUTHENTICATION_ERROR", p.Code)
}

func TestNotes_FullLifecycle(t *testing.T) {
	srv := newTestServer(t)
	client := loggedInClient(t, srv)
	base := srv.URL + "/api/v1/notes"

	resp, p := doJSON(t, client, http.MethodPost, base+"/", map[string]string{"title": "Trip", "body": "packing"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "create: %+v", p)
	note := p.Data.(map[string]any)
	require.Equal(t, "Trip", note["title"])
	id := note["id"].(string)

	// duplicate title gets a suffix
	resp, p = doJSON(t, client, http.MethodPost, base+"/", map[string]string{"title": "Trip"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, "Trip_1", p.Data.(map[string]any)["title"])

	// partial update keeps unset fields
	resp, p = doJSON(t, client, http.MethodPatch, fmt.Sprintf("%s/%s", base, id), map[string]string{"title": "Journey"})
	require.Equal(t, http.StatusOK, resp.StatusCode, "patch: %+v", p)
	patched := p.Data.(map[string]any)
	require.Equal(t, "Journey", patched["title"])
	require.Equal(t, "packing", patched["body"])

	// soft delete, then restore
	resp, p = doJSON(t, client, http.MethodDelete, fmt.Sprintf("%s/%s", base, id), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, true, p.Data.(map[string]any)["isDeleted"])

	resp, p = doJSON(t, client, http.MethodPost, fmt.Sprintf("%s/%s/restore", base, id), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, false, p.Data.(map[string]any)["isDeleted"])
	require.Nil(t, p.Data.(map[string]any)["deletedAt"])

	// purge, then the id is gone
	resp, _ = doJSON(t, client, http.MethodDelete, fmt.Sprintf("%s/%s/purge", base, id), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, p = doJSON(t, client, http.MethodGet, fmt.Sprintf("%s/%s", base, id), nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "NOT_FOUND", p.Code)
}

func TestNotes_ValidationAndBadID(t *testing.T) {
	srv := newTestServer(t)
	client := loggedInClient(t, srv)
	base := srv.URL + "/api/v1/notes"

	resp, p := doJSON(t, client, http.MethodPost, base+"/", map[string]string{"title": ""})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "VALIDATION_ERROR", p.Code)
	require.NotNil(t, p.Issues)

	resp, p = doJSON(t, client, http.MethodGet, base+"/not-a-uuid", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "VALIDATION_ERROR", p.Code)
}

func TestTodos_DefaultsApplied(t *testing.T) {
	srv := newTestServer(t)
	client := loggedInClient(t, srv)

	resp, p := doJSON(t, client, http.MethodPost, srv.URL+"/api/v1/todos/",
		map[string]string{"title": "Taxes"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "create: %+v", p)
	todo := p.Data.(map[string]any)
	require.Equal(t, "LOW", todo["priority"])
	require.NotEmpty(t, todo["dueDate"])
}

func TestLogout_DropsSession(t *testing.T) {
	srv := newTestServer(t)
	client := loggedInClient(t, srv)

	resp, _ := doJSON(t, client, http.MethodPost, srv.URL+"/api/v1/auth/logout", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, p := doJSON(t, client, http.MethodGet, srv.URL+"/api/v1/notes/", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "AUTHENTICATION_ERROR", p.Code)
}
