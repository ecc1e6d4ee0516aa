package session

import (
	"context"
	"errors"
	"net/http"

	"github.com/rokotuskortti/vaccination-erecord/internal/httputil"
	"github.com/rokotuskortti/vaccination-erecord/internal/logging"
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

const (
	UserIDContextKey   ContextKey = "user_id"
	UsernameContextKey ContextKey = "username"
)

// Middleware gates protected routes on a live session.
type Middleware struct {
	manager    *Manager
	cookieName string
}

func NewMiddleware(manager *Manager, cookieName string) *Middleware {
	return &Middleware{manager: manager, cookieName: cookieName}
}

// RequireAuth rejects anonymous requests with 401 and a stable reason
// code, and injects the resolved user into the context otherwise.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := m.TokenFromRequest(r)
		if token == "" {
			httputil.RespondError(w, httputil.CodeNotLoggedIn, http.StatusUnauthorized)
			return
		}

		u, err := m.manager.Resolve(r.Context(), token)
		if err != nil {
			if !errors.Is(err, ErrNotAuthenticated) {
				logging.GetLoggerFromContext(r.Context()).Error("session resolution failed", "error", err.Error())
			}
			httputil.RespondError(w, httputil.CodeNotLoggedIn, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDContextKey, u.ID)
		ctx = context.WithValue(ctx, UsernameContextKey, u.Username)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// TokenFromRequest extracts the session token from the request cookie.
func (m *Middleware) TokenFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// UserIDFromContext extracts the authenticated user id from the request context
func UserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDContextKey).(int64)
	return userID, ok
}

// UsernameFromContext extracts the authenticated username from the request context
func UsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(UsernameContextKey).(string)
	return username, ok
}
