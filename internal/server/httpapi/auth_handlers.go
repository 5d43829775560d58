package httpapi

import (
	"net"
	"net/http"

	"github.com/akorchev/notesafe/internal/service"
)

// AuthHandler serves registration, login and account management.
type AuthHandler struct {
	svc *service.AuthService
	// SecureCookies marks the session cookie Secure; off only for
	// local plain-HTTP development.
	secureCookies bool
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(svc *service.AuthService, secureCookies bool) *AuthHandler {
	return &AuthHandler{svc: svc, secureCookies: secureCookies}
}

func (h *AuthHandler) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /register", h.register)
	mux.HandleFunc("POST /login", h.login)
	mux.HandleFunc("POST /logout", h.logout)
	mux.HandleFunc("PATCH /password", h.updatePassword)
	mux.HandleFunc("DELETE /account", h.deleteAccount)
	return mux
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &in); err != nil {
		writeError(w, err)
		return
	}
	u, err := h.svc.Register(r.Context(), in.Username, in.Email, in.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, map[string]string{"userId": u.ID.String()})
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &in); err != nil {
		writeError(w, err)
		return
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	sess, u, err := h.svc.Login(r.Context(), in.Username, in.Password, ip)
	if err != nil {
		writeError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	writeData(w, http.StatusOK, map[string]string{
		"userId":   u.ID.String(),
		"username": u.Username,
	})
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Logout(r.Context(), SessionFromCtx(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	writeData(w, http.StatusOK, nil)
}

func (h *AuthHandler) updatePassword(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Password string `json:"password"`
	}
	if err := decodeBody(r, &in); err != nil {
		writeError(w, err)
		return
	}
	if err := h.svc.UpdatePassword(r.Context(), SessionFromCtx(r.Context()), in.Password); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, nil)
}

func (h *AuthHandler) deleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteUser(r.Context(), SessionFromCtx(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, nil)
}
