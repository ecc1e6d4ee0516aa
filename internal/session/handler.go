package session

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rokotuskortti/vaccination-erecord/internal/httputil"
	"github.com/rokotuskortti/vaccination-erecord/internal/logging"
)

// Handler contains the HTTP handlers for login and logout.
type Handler struct {
	manager      *Manager
	cookieName   string
	secureCookie bool
}

func NewHandler(manager *Manager, cookieName string, secureCookie bool) *Handler {
	return &Handler{
		manager:      manager,
		cookieName:   cookieName,
		secureCookie: secureCookie,
	}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// StatusResponse acknowledges login and logout.
type StatusResponse struct {
	Status string `json:"status"`
}

// Login handles user login
// @Summary      User login
// @Description  Verify credentials and establish a session cookie
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Credentials"
// @Success      200 {object} StatusResponse
// @Failure      401 {object} httputil.ErrorResponse "Invalid credentials"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /api/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	token, u, err := h.manager.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			logger.Debug("invalid username or password", "username", req.Username)
			httputil.RespondError(w, httputil.CodeInvalidCredentials, http.StatusUnauthorized)
			return
		}
		logger.Error("login failed", "error", err.Error())
		httputil.RespondErrorWithCode(w, "login failed", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.manager.MaxAge().Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	logger.Info("user logged in", "username", u.Username)
	httputil.RespondJSON(w, StatusResponse{Status: "Authorized"}, http.StatusOK)
}

// Logout handles user logout
// @Summary      User logout
// @Description  Invalidate the current session
// @Tags         auth
// @Produce      json
// @Success      200 {object} StatusResponse
// @Failure      401 {object} httputil.ErrorResponse "Not logged in"
// @Router       /api/logout [get]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if username, ok := UsernameFromContext(r.Context()); ok {
		logger.Debug("user logging out", "username", username)
	}

	if cookie, err := r.Cookie(h.cookieName); err == nil {
		if err := h.manager.Logout(r.Context(), cookie.Value); err != nil {
			logger.Error("failed to invalidate session", "error", err.Error())
			httputil.RespondErrorWithCode(w, "logout failed", httputil.CodeInternalError, http.StatusInternalServerError)
			return
		}
	}

	// Expire the cookie client-side as well.
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	httputil.RespondJSON(w, StatusResponse{Status: "Logged out"}, http.StatusOK)
}
