package session

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/rokotuskortti/vaccination-erecord/internal/logging"
)

var (
	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password; callers cannot tell which one failed.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrNotAuthenticated is returned when a token resolves to no live
	// session: unknown, expired, or the user no longer exists.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrNoSuchUser is returned by a UserSource for absent users.
	ErrNoSuchUser = errors.New("no such user")
)

// User is the slice of the user record the gate works with.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
}

// UserSource looks up users for login and session restoration.
// Lookups are case-sensitive exact matches.
type UserSource interface {
	ByUsername(ctx context.Context, username string) (*User, error)
	ByID(ctx context.Context, id int64) (*User, error)
}

// Manager implements the per-session state machine: Anonymous until a
// successful Login, Authenticated until Logout or TTL expiry.
type Manager struct {
	users  UserSource
	store  Store
	logger *logging.Logger
	secret []byte
	maxAge time.Duration
}

func NewManager(users UserSource, store Store, logger *logging.Logger, secret string, maxAge time.Duration) *Manager {
	return &Manager{
		users:  users,
		store:  store,
		logger: logger,
		secret: []byte(secret),
		maxAge: maxAge,
	}
}

// MaxAge returns the absolute session lifetime.
func (m *Manager) MaxAge() time.Duration {
	return m.maxAge
}

// Login verifies the credentials and establishes a session. The returned
// token is the opaque value handed to the client; only its HMAC is stored
// server-side.
func (m *Manager) Login(ctx context.Context, username, password string) (string, *User, error) {
	if username == "" || password == "" {
		return "", nil, ErrInvalidCredentials
	}

	u, err := m.users.ByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNoSuchUser) {
			m.logger.Debug("login rejected: user not found", "username", username)
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !VerifyPassword(u.PasswordHash, password) {
		m.logger.Debug("login rejected: password mismatch", "username", username)
		return "", nil, ErrInvalidCredentials
	}

	token, err := generateToken()
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	if err := m.store.Save(ctx, m.hashToken(token), u.ID, m.maxAge); err != nil {
		return "", nil, fmt.Errorf("failed to store session: %w", err)
	}

	m.logger.Info("user logged in", "username", u.Username, "user_id", u.ID)
	return token, u, nil
}

// Resolve maps a token back to its user. Any failure along the way --
// unknown token, expired session, deleted user -- collapses into
// ErrNotAuthenticated so the caller falls back to Anonymous.
func (m *Manager) Resolve(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, ErrNotAuthenticated
	}

	userID, err := m.store.Get(ctx, m.hashToken(token))
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, fmt.Errorf("failed to resolve session: %w", err)
	}

	u, err := m.users.ByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNoSuchUser) {
			m.logger.Warn("session points at a missing user", "user_id", userID)
			return nil, ErrNotAuthenticated
		}
		return nil, fmt.Errorf("failed to restore session user: %w", err)
	}

	return u, nil
}

// Logout invalidates the session immediately; the old token is dead for
// all subsequent requests.
func (m *Manager) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := m.store.Delete(ctx, m.hashToken(token)); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// hashToken keys the store under an HMAC of the token, so a leaked store
// dump cannot be replayed as cookies.
func (m *Manager) hashToken(token string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}

// generateToken creates a cryptographically secure random token
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
