package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rokotuskortti/vaccination-erecord/internal/config"
	"github.com/rokotuskortti/vaccination-erecord/internal/dates"
	"github.com/rokotuskortti/vaccination-erecord/internal/dose"
	internalhttp "github.com/rokotuskortti/vaccination-erecord/internal/http"
	"github.com/rokotuskortti/vaccination-erecord/internal/logging"
	"github.com/rokotuskortti/vaccination-erecord/internal/session"
	"github.com/rokotuskortti/vaccination-erecord/internal/user"
	"github.com/rokotuskortti/vaccination-erecord/internal/vaccine"
)

type singleUserSource struct {
	user *session.User
}

func (s *singleUserSource) ByUsername(_ context.Context, username string) (*session.User, error) {
	if s.user != nil && s.user.Username == username {
		return s.user, nil
	}
	return nil, session.ErrNoSuchUser
}

func (s *singleUserSource) ByID(_ context.Context, id int64) (*session.User, error) {
	if s.user != nil && s.user.ID == id {
		return s.user, nil
	}
	return nil, session.ErrNoSuchUser
}

func testRouter(t *testing.T) http.Handler {
	t.Helper()

	hash, err := session.HashPassword("correct horse")
	require.NoError(t, err)
	users := &singleUserSource{user: &session.User{ID: 1, Username: "anna@example.com", PasswordHash: hash}}

	logger := logging.NewLogger(true, "error")
	manager := session.NewManager(users, session.NewMemoryStore(), logger, "test-secret", 4*time.Hour)

	codec, err := dates.NewCodec("D.M.YYYY")
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Server.Env = "prod"
	cfg.Session.Cookie = "erecord_session"

	return internalhttp.NewRouter(cfg, internalhttp.Handlers{
		Session: session.NewHandler(manager, cfg.Session.Cookie, false),
		User:    user.NewHandler(nil),
		Vaccine: vaccine.NewHandler(nil),
		Dose:    dose.NewHandler(nil, codec),
	}, session.NewMiddleware(manager, cfg.Session.Cookie), logger)
}

func TestHealthAndVersion(t *testing.T) {
	router := testRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"api is running"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/version", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "version")
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	router := testRouter(t)

	for _, target := range []string{"/api/user", "/api/dose", "/api/vaccine", "/api/logout"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, target)
		assert.Contains(t, rec.Body.String(), "UserNotLoggedIn", target)
	}
}

func TestLoginLogoutFlow(t *testing.T) {
	router := testRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/login",
		strings.NewReader(`{"username":"anna@example.com","password":"correct horse"}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	sessionCookie := cookies[0]
	assert.Equal(t, "erecord_session", sessionCookie.Name)

	logoutReq := httptest.NewRequest(http.MethodGet, "/api/logout", nil)
	logoutReq.AddCookie(sessionCookie)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, logoutReq)
	require.Equal(t, http.StatusOK, rec.Code)

	// The session is gone after logout.
	retryReq := httptest.NewRequest(http.MethodGet, "/api/logout", nil)
	retryReq.AddCookie(sessionCookie)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, retryReq)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginRejectionIsUniform(t *testing.T) {
	router := testRouter(t)

	bodies := []string{
		`{"username":"anna@example.com","password":"wrong"}`,
		`{"username":"nobody@example.com","password":"correct horse"}`,
	}

	var responses []string
	for _, body := range bodies {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(body)))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		responses = append(responses, rec.Body.String())
	}
	assert.Equal(t, responses[0], responses[1])
}
