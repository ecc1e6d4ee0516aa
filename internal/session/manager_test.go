package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rokotuskortti/vaccination-erecord/internal/logging"
)

type fakeUsers struct {
	byName map[string]*User
	byID   map[int64]*User
}

func newFakeUsers(users ...*User) *fakeUsers {
	f := &fakeUsers{
		byName: make(map[string]*User),
		byID:   make(map[int64]*User),
	}
	for _, u := range users {
		f.byName[u.Username] = u
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) ByUsername(_ context.Context, username string) (*User, error) {
	if u, ok := f.byName[username]; ok {
		return u, nil
	}
	return nil, ErrNoSuchUser
}

func (f *fakeUsers) ByID(_ context.Context, id int64) (*User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, ErrNoSuchUser
}

func testUser(t *testing.T, id int64, username, password string) *User {
	t.Helper()
	hash, err := HashPassword(password)
	require.NoError(t, err)
	return &User{ID: id, Username: username, PasswordHash: hash}
}

func testManager(t *testing.T, users *fakeUsers) (*Manager, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	logger := logging.NewLogger(true, "error")
	return NewManager(users, store, logger, "test-secret", 4*time.Hour), store
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("salasana")
	require.NoError(t, err)

	assert.NotContains(t, hash, "salasana")
	assert.True(t, VerifyPassword(hash, "salasana"))
	assert.False(t, VerifyPassword(hash, "wrong"))
	assert.False(t, VerifyPassword("not-a-hash", "salasana"))
}

func TestLoginSuccess(t *testing.T) {
	ctx := context.Background()
	m, _ := testManager(t, newFakeUsers(testUser(t, 2, "samuli", "salasana")))

	token, u, err := m.Login(ctx, "samuli", "salasana")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, int64(2), u.ID)

	resolved, err := m.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "samuli", resolved.Username)
}

func TestLoginRejectionIsUniform(t *testing.T) {
	ctx := context.Background()
	m, _ := testManager(t, newFakeUsers(testUser(t, 2, "samuli", "salasana")))

	_, _, unknownErr := m.Login(ctx, "nouser", "x")
	_, _, wrongPassErr := m.Login(ctx, "samuli", "wrongpass")

	assert.ErrorIs(t, unknownErr, ErrInvalidCredentials)
	assert.ErrorIs(t, wrongPassErr, ErrInvalidCredentials)
	assert.Equal(t, unknownErr, wrongPassErr)
}

func TestLoginEmptyCredentialsRejected(t *testing.T) {
	ctx := context.Background()
	m, _ := testManager(t, newFakeUsers(testUser(t, 2, "samuli", "salasana")))

	_, _, err := m.Login(ctx, "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginIsCaseSensitive(t *testing.T) {
	ctx := context.Background()
	m, _ := testManager(t, newFakeUsers(testUser(t, 2, "samuli", "salasana")))

	_, _, err := m.Login(ctx, "Samuli", "salasana")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogoutInvalidatesToken(t *testing.T) {
	ctx := context.Background()
	m, _ := testManager(t, newFakeUsers(testUser(t, 2, "samuli", "salasana")))

	token, _, err := m.Login(ctx, "samuli", "salasana")
	require.NoError(t, err)

	require.NoError(t, m.Logout(ctx, token))

	_, err = m.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestResolveExpiredSessionIsAnonymous(t *testing.T) {
	ctx := context.Background()
	m, store := testManager(t, newFakeUsers(testUser(t, 2, "samuli", "salasana")))

	token, _, err := m.Login(ctx, "samuli", "salasana")
	require.NoError(t, err)

	store.SetClock(func() time.Time { return time.Now().Add(5 * time.Hour) })

	_, err = m.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestResolveDeletedUserIsAnonymous(t *testing.T) {
	ctx := context.Background()
	users := newFakeUsers(testUser(t, 2, "samuli", "salasana"))
	m, _ := testManager(t, users)

	token, _, err := m.Login(ctx, "samuli", "salasana")
	require.NoError(t, err)

	delete(users.byID, 2)

	_, err = m.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestResolveGarbageToken(t *testing.T) {
	ctx := context.Background()
	m, _ := testManager(t, newFakeUsers())

	_, err := m.Resolve(ctx, "")
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = m.Resolve(ctx, "garbage")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}
