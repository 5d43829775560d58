package httpapi

import (
	"net/http"

	"github.com/gofrs/uuid/v5"

	"github.com/akorchev/notesafe/internal/errs"
	"github.com/akorchev/notesafe/internal/lifecycle"
)

// resourceAPI binds one lifecycle engine to HTTP. The three kinds share
// every route; only the wire codecs differ.
type resourceAPI[T lifecycle.Resource, I any, P any] struct {
	eng          *lifecycle.Engine[T, I, P]
	decodeCreate func(*http.Request) (I, error)
	decodePatch  func(*http.Request) (P, error)
	render       func(T) any
}

// routes mounts:
//
//	POST   /                create
//	GET    /                list
//	GET    /{id}            get
//	PATCH  /{id}            partial update
//	DELETE /{id}            soft delete
//	POST   /{id}/restore    restore
//	DELETE /{id}/purge      hard delete
func (a resourceAPI[T, I, P]) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /", func(w http.ResponseWriter, r *http.Request) {
		in, err := a.decodeCreate(r)
		if err != nil {
			writeError(w, err)
			return
		}
		res, err := a.eng.Create(r.Context(), SessionFromCtx(r.Context()), in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeData(w, http.StatusCreated, a.render(res))
	})

	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		list, err := a.eng.List(r.Context(), SessionFromCtx(r.Context()))
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]any, 0, len(list))
		for _, res := range list {
			out = append(out, a.render(res))
		}
		writeData(w, http.StatusOK, out)
	})

	mux.HandleFunc("GET /{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeError(w, err)
			return
		}
		res, err := a.eng.Get(r.Context(), SessionFromCtx(r.Context()), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeData(w, http.StatusOK, a.render(res))
	})

	mux.HandleFunc("PATCH /{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeError(w, err)
			return
		}
		p, err := a.decodePatch(r)
		if err != nil {
			writeError(w, err)
			return
		}
		res, err := a.eng.Update(r.Context(), SessionFromCtx(r.Context()), id, p)
		if err != nil {
			writeError(w, err)
			return
		}
		writeData(w, http.StatusOK, a.render(res))
	})

	mux.HandleFunc("DELETE /{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeError(w, err)
			return
		}
		res, err := a.eng.SoftDelete(r.Context(), SessionFromCtx(r.Context()), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeData(w, http.StatusOK, a.render(res))
	})

	mux.HandleFunc("POST /{id}/restore", func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeError(w, err)
			return
		}
		res, err := a.eng.Restore(r.Context(), SessionFromCtx(r.Context()), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeData(w, http.StatusOK, a.render(res))
	})

	mux.HandleFunc("DELETE /{id}/purge", func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeError(w, err)
			return
		}
		res, err := a.eng.HardDelete(r.Context(), SessionFromCtx(r.Context()), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeData(w, http.StatusOK, a.render(res))
	})

	return mux
}

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.FromString(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, errs.Validation("invalid resource id", []errs.FieldIssue{{Field: "id", Message: "must be a uuid"}})
	}
	return id, nil
}
