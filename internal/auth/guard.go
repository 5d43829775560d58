// Package auth resolves the caller's identity from session state.
package auth

import (
	"github.com/gofrs/uuid/v5"

	"github.com/akorchev/notesafe/internal/errs"
	"github.com/akorchev/notesafe/internal/session"
)

// Authorize returns the authenticated user id carried by the session.
// It is a pure function of its input: no I/O, no side effects. A nil
// session or one without a user id yields an AuthenticationError whose
// metadata names the session id when one is known.
func Authorize(sess *session.Session) (uuid.UUID, error) {
	if sess == nil || sess.UserID == nil {
		meta := map[string]any{"sessionId": ""}
		if sess != nil {
			meta["sessionId"] = sess.ID
		}
		return uuid.Nil, errs.Authentication("not authenticated", meta)
	}
	return *sess.UserID, nil
}
