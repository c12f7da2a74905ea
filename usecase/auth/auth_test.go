package auth

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/todoclient/api/client"
	"github.com/fastygo/todoclient/api/transport"
	"github.com/fastygo/todoclient/domain"
	"github.com/fastygo/todoclient/internal/router"
)

type stubAPI struct {
	loginFn    func(ctx context.Context, creds domain.Credentials) (*transport.LoginResponse, error)
	registerFn func(ctx context.Context, creds domain.Credentials) error
}

func (s *stubAPI) Login(ctx context.Context, creds domain.Credentials) (*transport.LoginResponse, error) {
	if s.loginFn == nil {
		return nil, errors.New("unexpected Login call")
	}
	return s.loginFn(ctx, creds)
}

func (s *stubAPI) Register(ctx context.Context, creds domain.Credentials) error {
	if s.registerFn == nil {
		return errors.New("unexpected Register call")
	}
	return s.registerFn(ctx, creds)
}

type memorySessions struct {
	mu     sync.Mutex
	values map[string]string
	getErr error
	setErr error
}

func newMemorySessions(kv ...string) *memorySessions {
	m := &memorySessions{values: map[string]string{}}
	for i := 0; i+1 < len(kv); i += 2 {
		m.values[kv[i]] = kv[i+1]
	}
	return m
}

func (m *memorySessions) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", m.getErr
	}
	return m.values[key], nil
}

func (m *memorySessions) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *memorySessions) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

func (m *memorySessions) Ping(context.Context) error { return nil }

func (m *memorySessions) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.values)
}

type recordingNav struct {
	paths []string
}

func (r *recordingNav) Push(_ context.Context, path string) error {
	r.paths = append(r.paths, path)
	return nil
}

func TestNewRehydratesFromStorage(t *testing.T) {
	sessions := newMemorySessions(domain.SessionTokenKey, "tok", domain.SessionUserKey, "alice")

	uc := New(context.Background(), &stubAPI{}, sessions, nil, nil)

	assert.Equal(t, domain.Session{Token: "tok", Username: "alice"}, uc.Session())
	assert.True(t, uc.IsAuthenticated())
}

func TestNewStartsLoggedOutWhenStorageFails(t *testing.T) {
	sessions := newMemorySessions()
	sessions.getErr = errors.New("locked")

	uc := New(context.Background(), &stubAPI{}, sessions, nil, nil)

	assert.False(t, uc.IsAuthenticated())
}

func TestIsAuthenticatedFollowsToken(t *testing.T) {
	cases := map[string]bool{
		"":        false,
		"   ":     true,
		"jwt.abc": true,
	}
	for token, want := range cases {
		uc := New(context.Background(), &stubAPI{}, newMemorySessions(domain.SessionTokenKey, token), nil, nil)
		assert.Equal(t, want, uc.IsAuthenticated(), "token %q", token)
	}
}

func TestLoginPersistsAndNavigatesHome(t *testing.T) {
	sessions := newMemorySessions()
	nav := &recordingNav{}
	api := &stubAPI{loginFn: func(_ context.Context, creds domain.Credentials) (*transport.LoginResponse, error) {
		assert.Equal(t, domain.Credentials{Username: "alice", Password: "pw"}, creds)
		return &transport.LoginResponse{Username: "alice", Token: "tok-1"}, nil
	}}
	uc := New(context.Background(), api, sessions, nav, nil)

	var published []domain.Session
	uc.Subscribe(func(s domain.Session) { published = append(published, s) })

	require.NoError(t, uc.Login(context.Background(), "alice", "pw"))

	assert.Equal(t, domain.Session{Token: "tok-1", Username: "alice"}, uc.Session())
	assert.Equal(t, "tok-1", sessions.values[domain.SessionTokenKey])
	assert.Equal(t, "alice", sessions.values[domain.SessionUserKey])
	assert.Equal(t, []string{router.HomePath}, nav.paths)
	assert.Equal(t, []domain.Session{{Token: "tok-1", Username: "alice"}}, published)
}

func TestLoginErrorIsReturnedUnchanged(t *testing.T) {
	apiErr := domain.WrapError(domain.ErrCodeUnauthorized, "bad credentials", &client.StatusError{StatusCode: http.StatusUnauthorized, Path: "/api/auth/login"})
	nav := &recordingNav{}
	sessions := newMemorySessions()
	uc := New(context.Background(), &stubAPI{loginFn: func(context.Context, domain.Credentials) (*transport.LoginResponse, error) {
		return nil, apiErr
	}}, sessions, nav, nil)

	err := uc.Login(context.Background(), "alice", "nope")

	assert.Same(t, apiErr, err)
	assert.False(t, uc.IsAuthenticated())
	assert.Empty(t, nav.paths)
	assert.Zero(t, sessions.len())
}

func TestLoginStorageFailureLeavesLoggedOut(t *testing.T) {
	sessions := newMemorySessions()
	sessions.setErr = errors.New("read-only")
	uc := New(context.Background(), &stubAPI{loginFn: func(context.Context, domain.Credentials) (*transport.LoginResponse, error) {
		return &transport.LoginResponse{Username: "a", Token: "t"}, nil
	}}, sessions, nil, nil)

	err := uc.Login(context.Background(), "a", "b")
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInternal))
	assert.False(t, uc.IsAuthenticated())
}

func TestRegisterDoesNotNavigate(t *testing.T) {
	nav := &recordingNav{}
	var got domain.Credentials
	uc := New(context.Background(), &stubAPI{registerFn: func(_ context.Context, creds domain.Credentials) error {
		got = creds
		return nil
	}}, newMemorySessions(), nav, nil)

	require.NoError(t, uc.Register(context.Background(), "bob", "pw"))
	assert.Equal(t, "bob", got.Username)
	assert.Empty(t, nav.paths)
	assert.False(t, uc.IsAuthenticated())
}

func TestRegisterErrorPropagates(t *testing.T) {
	conflict := domain.NewError(domain.ErrCodeConflict, "username taken")
	uc := New(context.Background(), &stubAPI{registerFn: func(context.Context, domain.Credentials) error {
		return conflict
	}}, newMemorySessions(), nil, nil)

	assert.Same(t, conflict, uc.Register(context.Background(), "bob", "pw"))
}

func TestLogoutClearsEverything(t *testing.T) {
	sessions := newMemorySessions(domain.SessionTokenKey, "tok", domain.SessionUserKey, "alice")
	nav := &recordingNav{}
	uc := New(context.Background(), &stubAPI{}, sessions, nav, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	uc.Logout(ctx)

	assert.Equal(t, domain.Session{}, uc.Session())
	assert.Zero(t, sessions.len())
	assert.Equal(t, []string{router.LoginPath}, nav.paths)
}

func TestForcedLogoutMatchesLogoutEndState(t *testing.T) {
	sessions := newMemorySessions(domain.SessionTokenKey, "tok", domain.SessionUserKey, "alice")
	nav := &recordingNav{}
	uc := New(context.Background(), &stubAPI{}, sessions, nav, nil)

	uc.HandleAuthFailure(context.Background(), &client.StatusError{StatusCode: http.StatusForbidden, Path: "/api/todos"})

	assert.Equal(t, domain.Session{}, uc.Session())
	assert.False(t, uc.IsAuthenticated())
	assert.Zero(t, sessions.len())
	assert.Equal(t, []string{router.LoginPath}, nav.paths)
}

func TestGuardReadsSessionStore(t *testing.T) {
	r := router.New(router.DefaultRoutes(), nil)
	sessions := newMemorySessions()
	uc := New(context.Background(), &stubAPI{loginFn: func(context.Context, domain.Credentials) (*transport.LoginResponse, error) {
		return &transport.LoginResponse{Username: "alice", Token: "tok"}, nil
	}}, sessions, r, nil)
	r.BeforeEach(router.RequireAuth(uc))

	require.NoError(t, r.Push(context.Background(), router.HomePath))
	assert.Equal(t, router.LoginPath, r.Current().Path)

	require.NoError(t, uc.Login(context.Background(), "alice", "pw"))
	assert.Equal(t, router.HomePath, r.Current().Path)

	uc.Logout(context.Background())
	assert.Equal(t, router.LoginPath, r.Current().Path)
}
