package service

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/akorchev/notesafe/internal/auth"
	pkgcrypto "github.com/akorchev/notesafe/internal/crypto"
	"github.com/akorchev/notesafe/internal/errs"
	"github.com/akorchev/notesafe/internal/limiter"
	"github.com/akorchev/notesafe/internal/model"
	"github.com/akorchev/notesafe/internal/repository"
	"github.com/akorchev/notesafe/internal/session"
)

// AuthService manages accounts and the sessions that carry identity.
// Login and logout are the only session writers in the system.
type AuthService struct {
	users    repository.UserRepository
	sessions session.Store
	lim      limiter.Limiter
	log      *zap.Logger
}

// NewAuthService constructs the service with its dependencies.
func NewAuthService(users repository.UserRepository, sessions session.Store, lim limiter.Limiter, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{users: users, sessions: sessions, lim: lim, log: log}
}

// Register creates a new account. Duplicate email or username
// (case-insensitive) yields ConflictError.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	if err := validateCredentials(username, email, password, true); err != nil {
		return nil, s.fail("register", uuid.Nil, err)
	}
	uid, err := uuid.NewV4()
	if err != nil {
		return nil, s.fail("register", uuid.Nil, err)
	}
	salt, err := pkgcrypto.RandBytes(16)
	if err != nil {
		return nil, s.fail("register", uuid.Nil, err)
	}
	u := &model.User{
		ID:       uid,
		Username: username,
		Email:    email,
		PwdHash:  pkgcrypto.HashPassword([]byte(password), salt),
		SaltAuth: salt,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, s.fail("register", uuid.Nil, err)
	}
	s.log.Info("operation ok", zap.String("operation", "user.register"), zap.String("userId", uid.String()))
	return u, nil
}

// Login authenticates with rate limiting by (username, ip) and, on
// success, creates an authenticated session. Wrong username and wrong
// password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password, ip string) (*session.Session, *model.User, error) {
	ipHash := limiter.HashIP(ip)

	allowed, retryAfter, err := s.lim.Allow(ctx, username, ipHash)
	if err != nil {
		return nil, nil, s.fail("login", uuid.Nil, err)
	}
	if !allowed {
		return nil, nil, s.fail("login", uuid.Nil,
			errs.Authentication("too many attempts", map[string]any{"retryAfterSeconds": int(retryAfter.Seconds())}))
	}

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil || !pkgcrypto.VerifyPassword([]byte(password), u.SaltAuth, u.PwdHash) {
		if err != nil && !errors.Is(err, errs.ErrNotFound) {
			return nil, nil, s.fail("login", uuid.Nil, err)
		}
		if blocked, after, ferr := s.lim.Failure(ctx, username, ipHash); ferr == nil && blocked {
			return nil, nil, s.fail("login", uuid.Nil,
				errs.Authentication("too many attempts", map[string]any{"retryAfterSeconds": int(after.Seconds())}))
		}
		// same answer whether the user exists or not
		return nil, nil, s.fail("login", uuid.Nil, errs.Authentication("invalid credentials", nil))
	}

	// best-effort counter reset
	_ = s.lim.Success(ctx, username, ipHash)

	sess, err := session.New()
	if err != nil {
		return nil, nil, s.fail("login", u.ID, err)
	}
	id := u.ID
	sess.UserID = &id
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, nil, s.fail("login", u.ID, err)
	}
	s.log.Info("operation ok", zap.String("operation", "user.login"), zap.String("userId", u.ID.String()))
	return sess, u, nil
}

// Logout destroys the caller's session.
func (s *AuthService) Logout(ctx context.Context, sess *session.Session) error {
	if sess == nil {
		return nil
	}
	if err := s.sessions.Delete(ctx, sess.ID); err != nil {
		uid := uuid.Nil
		if sess.UserID != nil {
			uid = *sess.UserID
		}
		return s.fail("logout", uid, err)
	}
	return nil
}

// UpdatePassword replaces the authenticated caller's credential.
func (s *AuthService) UpdatePassword(ctx context.Context, sess *session.Session, newPassword string) error {
	uid, err := auth.Authorize(sess)
	if err != nil {
		return s.fail("updatePassword", uid, err)
	}
	if err := validatePasswordRule(newPassword); err != nil {
		return s.fail("updatePassword", uid, err)
	}
	salt, err := pkgcrypto.RandBytes(16)
	if err != nil {
		return s.fail("updatePassword", uid, err)
	}
	hash := pkgcrypto.HashPassword([]byte(newPassword), salt)
	if err := s.users.UpdatePassword(ctx, uid, hash, salt); err != nil {
		return s.fail("updatePassword", uid, err)
	}
	s.log.Info("operation ok", zap.String("operation", "user.updatePassword"), zap.String("userId", uid.String()))
	return nil
}

// DeleteUser removes the authenticated caller's account (resources
// cascade at the storage layer) and destroys the session.
func (s *AuthService) DeleteUser(ctx context.Context, sess *session.Session) error {
	uid, err := auth.Authorize(sess)
	if err != nil {
		return s.fail("deleteUser", uid, err)
	}
	if err := s.users.Delete(ctx, uid); err != nil {
		return s.fail("deleteUser", uid, err)
	}
	_ = s.sessions.Delete(ctx, sess.ID)
	s.log.Info("operation ok", zap.String("operation", "user.deleteUser"), zap.String("userId", uid.String()))
	return nil
}

func (s *AuthService) fail(op string, uid uuid.UUID, err error) error {
	te := errs.Classify(err)
	fields := []zap.Field{
		zap.String("operation", "user." + op),
		zap.String("errorKind", string(te.Kind)),
		zap.Int("status", te.Status),
		zap.Bool("operational", te.Operational),
	}
	if uid != uuid.Nil {
		fields = append(fields, zap.String("userId", uid.String()))
	}
	s.log.Error("operation failed", fields...)
	return te
}
