// Package httpapi exposes the JSON API over the lifecycle engines and
// the authentication service.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/akorchev/notesafe/internal/errs"
)

type payload struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
	Data    any    `json:"data,omitempty"`
	Issues  any    `json:"issues,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, p payload) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(p)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, payload{Success: true, Data: data})
}

// writeError maps a classified error onto the wire. Non-operational
// failures present only a generic message; the full detail stays in the
// server log.
func writeError(w http.ResponseWriter, err error) {
	te := errs.Classify(err)
	p := payload{Success: false, Code: string(te.Kind), Message: te.Message}
	if !te.Operational {
		p.Message = "internal server error"
	}
	if te.Kind == errs.KindValidation && te.Meta != nil {
		p.Issues = te.Meta["issues"]
	}
	writeJSON(w, te.Status, p)
}
