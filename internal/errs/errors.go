// Package errs defines the closed error taxonomy surfaced by the resource
// engine, plus repository-level sentinels used for stable error mapping.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinels returned by repositories and matched with errors.Is.
var (
	// ErrNotFound indicates the requested entity does not exist
	// (or does not belong to the caller — lookups are owner-scoped).
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a unique constraint violation.
	ErrAlreadyExists = errors.New("already exists")

	// ErrExhausted indicates the name allocator ran out of attempts.
	ErrExhausted = errors.New("namespace exhausted")
)

// Kind is the machine-readable code of a taxonomy error.
type Kind string

const (
	KindAuthentication Kind = "AUTHENTICATION_ERROR"
	KindValidation     Kind = "VALIDATION_ERROR"
	KindConflict       Kind = "CONFLICT_ERROR"
	KindNotFound       Kind = "NOT_FOUND"
	KindDatabase       Kind = "DATABASE_ERROR"
	KindUnknown        Kind = "INTERNAL_SERVER_ERROR"
)

// FieldIssue is a single field-level validation failure. Only the field
// name and message are carried; submitted values never enter metadata.
type FieldIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a classified failure crossing the engine boundary. Operational
// errors are anticipated and safe to show to the caller; non-operational
// ones indicate bugs or infrastructure faults and warrant alerting.
type Error struct {
	Kind        Kind
	Message     string
	Status      int
	Operational bool
	Meta        map[string]any
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// WithMeta attaches a metadata entry and returns the error.
func (e *Error) WithMeta(key string, value any) *Error {
	if e.Meta == nil {
		e.Meta = map[string]any{}
	}
	e.Meta[key] = value
	return e
}

// Authentication builds a 401 error for an unauthenticated caller.
func Authentication(msg string, meta map[string]any) *Error {
	return &Error{Kind: KindAuthentication, Message: msg, Status: http.StatusUnauthorized, Operational: true, Meta: meta}
}

// Validation builds a 400 error carrying field-level issues.
func Validation(msg string, issues []FieldIssue) *Error {
	e := &Error{Kind: KindValidation, Message: msg, Status: http.StatusBadRequest, Operational: true}
	if len(issues) > 0 {
		e.Meta = map[string]any{"issues": issues}
	}
	return e
}

// Conflict builds a 409 error for uniqueness violations.
func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg, Status: http.StatusConflict, Operational: true}
}

// NotFound builds a 404 error for a missing or foreign-owned resource.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg, Status: http.StatusNotFound, Operational: true}
}

// Database builds a 500 operational error for known storage failures.
func Database(msg string) *Error {
	return &Error{Kind: KindDatabase, Message: msg, Status: http.StatusInternalServerError, Operational: true}
}

// Unknown builds a 500 non-operational error for anything unanticipated.
// The wrapped cause stays in metadata for the log; callers see only the
// generic message.
func Unknown(cause error) *Error {
	e := &Error{Kind: KindUnknown, Message: "internal server error", Status: http.StatusInternalServerError, Operational: false}
	if cause != nil {
		e.Meta = map[string]any{"cause": cause.Error()}
	}
	return e
}

// Classify promotes an arbitrary error to exactly one taxonomy kind.
// Already-classified errors pass through; repository sentinels map to
// their kinds; everything else becomes Unknown.
func Classify(err error) *Error {
	var te *Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &te):
		return te
	case errors.Is(err, ErrNotFound):
		return NotFound("resource not found")
	case errors.Is(err, ErrAlreadyExists):
		return Conflict("already taken")
	case errors.Is(err, ErrExhausted):
		return Database("name allocation exhausted")
	default:
		return Unknown(err)
	}
}
