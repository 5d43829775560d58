package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/akorchev/notesafe/internal/errs"
	"github.com/akorchev/notesafe/internal/model"
)

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errs.Validation("invalid request body", nil)
	}
	return nil
}

// --- notes ---

type noteWire struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	IsDeleted bool       `json:"isDeleted"`
	DeletedAt *time.Time `json:"deletedAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func renderNote(n model.Note) any {
	return noteWire{
		ID:        n.ID.String(),
		Title:     n.Title,
		Body:      n.Body,
		IsDeleted: n.IsDeleted,
		DeletedAt: n.DeletedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

func decodeNoteCreate(r *http.Request) (model.NoteInput, error) {
	var in struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	}
	if err := decodeBody(r, &in); err != nil {
		return model.NoteInput{}, err
	}
	return model.NoteInput{Title: in.Title, Body: in.Body}, nil
}

func decodeNotePatch(r *http.Request) (model.NotePatch, error) {
	var p struct {
		Title *string `json:"title"`
		Body  *string `json:"body"`
	}
	if err := decodeBody(r, &p); err != nil {
		return model.NotePatch{}, err
	}
	return model.NotePatch{Title: p.Title, Body: p.Body}, nil
}

// --- todos ---

type todoWire struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	Priority  string     `json:"priority"`
	DueDate   time.Time  `json:"dueDate"`
	IsDeleted bool       `json:"isDeleted"`
	DeletedAt *time.Time `json:"deletedAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func renderTodo(t model.Todo) any {
	return todoWire{
		ID:        t.ID.String(),
		Title:     t.Title,
		Body:      t.Body,
		Priority:  string(t.Priority),
		DueDate:   t.DueDate,
		IsDeleted: t.IsDeleted,
		DeletedAt: t.DeletedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func decodeTodoCreate(r *http.Request) (model.TodoInput, error) {
	var in struct {
		Title    string     `json:"title"`
		Body     string     `json:"body"`
		Priority string     `json:"priority"`
		DueDate  *time.Time `json:"dueDate"`
	}
	if err := decodeBody(r, &in); err != nil {
		return model.TodoInput{}, err
	}
	out := model.TodoInput{Title: in.Title, Body: in.Body, Priority: model.Priority(in.Priority)}
	// request-level defaults
	if in.Priority == "" {
		out.Priority = model.PriorityLow
	}
	if in.DueDate != nil {
		out.DueDate = *in.DueDate
	} else {
		out.DueDate = time.Now().UTC()
	}
	return out, nil
}

func decodeTodoPatch(r *http.Request) (model.TodoPatch, error) {
	var p struct {
		Title    *string    `json:"title"`
		Body     *string    `json:"body"`
		Priority *string    `json:"priority"`
		DueDate  *time.Time `json:"dueDate"`
	}
	if err := decodeBody(r, &p); err != nil {
		return model.TodoPatch{}, err
	}
	out := model.TodoPatch{Title: p.Title, Body: p.Body, DueDate: p.DueDate}
	if p.Priority != nil {
		pr := model.Priority(*p.Priority)
		out.Priority = &pr
	}
	return out, nil
}

// --- password entries ---

// Secrets go back to their owner over the wire; they just must never
// land in logs or error metadata.
type passwordWire struct {
	ID        string     `json:"id"`
	Fieldname string     `json:"fieldname"`
	Email     string     `json:"email"`
	Username  string     `json:"username"`
	Secret    string     `json:"password"`
	Priority  string     `json:"priority"`
	IsDeleted bool       `json:"isDeleted"`
	DeletedAt *time.Time `json:"deletedAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func renderPassword(p model.PasswordEntry) any {
	return passwordWire{
		ID:        p.ID.String(),
		Fieldname: p.Fieldname,
		Email:     p.Email,
		Username:  p.Username,
		Secret:    p.Secret,
		Priority:  string(p.Priority),
		IsDeleted: p.IsDeleted,
		DeletedAt: p.DeletedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func decodePasswordCreate(r *http.Request) (model.PasswordInput, error) {
	var in struct {
		Fieldname string `json:"fieldname"`
		Email     string `json:"email"`
		Username  string `json:"username"`
		Secret    string `json:"password"`
		Priority  string `json:"priority"`
	}
	if err := decodeBody(r, &in); err != nil {
		return model.PasswordInput{}, err
	}
	out := model.PasswordInput{
		Fieldname: in.Fieldname,
		Email:     in.Email,
		Username:  in.Username,
		Secret:    in.Secret,
		Priority:  model.Priority(in.Priority),
	}
	if in.Priority == "" {
		out.Priority = model.PriorityLow
	}
	return out, nil
}

func decodePasswordPatch(r *http.Request) (model.PasswordPatch, error) {
	var p struct {
		Fieldname *string `json:"fieldname"`
		Email     *string `json:"email"`
		Username  *string `json:"username"`
		Secret    *string `json:"password"`
		Priority  *string `json:"priority"`
	}
	if err := decodeBody(r, &p); err != nil {
		return model.PasswordPatch{}, err
	}
	out := model.PasswordPatch{Fieldname: p.Fieldname, Email: p.Email, Username: p.Username, Secret: p.Secret}
	if p.Priority != nil {
		pr := model.Priority(*p.Priority)
		out.Priority = &pr
	}
	return out, nil
}
