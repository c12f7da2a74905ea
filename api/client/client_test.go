package client

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fastygo/todoclient/api/transport"
	"github.com/fastygo/todoclient/domain"
)

type memorySessions struct {
	mu     sync.Mutex
	values map[string]string
	getErr error
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
	if m.values == nil {
		m.values = map[string]string{}
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

type captured struct {
	method string
	path   string
	query  string
	auth   string
	ctype  string
	reqID  string
	body   []byte
}

func newTestClient(t *testing.T, handler fasthttp.RequestHandler, logger *zap.Logger) (*Client, *[]captured) {
	t.Helper()

	var mu sync.Mutex
	var seen []captured
	ln := fasthttputil.NewInmemoryListener()
	srv := &fasthttp.Server{Handler: func(ctx *fasthttp.RequestCtx) {
		mu.Lock()
		seen = append(seen, captured{
			method: string(ctx.Method()),
			path:   string(ctx.Path()),
			query:  string(ctx.QueryArgs().QueryString()),
			auth:   string(ctx.Request.Header.Peek("Authorization")),
			ctype:  string(ctx.Request.Header.ContentType()),
			reqID:  string(ctx.Request.Header.Peek("X-Request-ID")),
			body:   append([]byte(nil), ctx.PostBody()...),
		})
		mu.Unlock()
		handler(ctx)
	}}
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() { _ = ln.Close() })

	c, err := New(Options{
		BaseURL: "http://api.test/",
		Logger:  logger,
		Dial:    func(string) (net.Conn, error) { return ln.Dial() },
	})
	require.NoError(t, err)
	return c, &seen
}

func respond(status int, body any) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(status)
		if body == nil {
			return
		}
		ctx.Response.Header.SetContentType("application/json")
		payload, _ := json.Marshal(body)
		ctx.SetBody(payload)
	}
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New(Options{BaseURL: "  "})
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestDoAttachesBearerAndJSONHeaders(t *testing.T) {
	c, seen := newTestClient(t, respond(http.StatusOK, []domain.Todo{{ID: 1, Title: "a", Priority: domain.PriorityLow}}), nil)
	sessions := &memorySessions{values: map[string]string{domain.SessionTokenKey: "tok-123"}}
	c.UseRequest(BearerToken(sessions, nil))

	todos, err := c.Todos().List(context.Background())
	require.NoError(t, err)
	require.Len(t, todos, 1)

	require.Len(t, *seen, 1)
	got := (*seen)[0]
	assert.Equal(t, "GET", got.method)
	assert.Equal(t, "/api/todos", got.path)
	assert.Equal(t, "Bearer tok-123", got.auth)
	assert.Equal(t, "application/json", got.ctype)
	assert.NotEmpty(t, got.reqID)
}

func TestDoOmitsBearerWithoutToken(t *testing.T) {
	c, seen := newTestClient(t, respond(http.StatusOK, []domain.Category{}), nil)
	c.UseRequest(BearerToken(&memorySessions{}, nil))

	_, err := c.Categories().List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, (*seen)[0].auth)
}

func TestStorageFailureDoesNotBlockRequest(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	c, seen := newTestClient(t, respond(http.StatusOK, []domain.Category{{ID: 1, Name: "Home"}}), nil)
	c.UseRequest(BearerToken(&memorySessions{getErr: errors.New("disk gone")}, zap.New(core)))

	cats, err := c.Categories().List(context.Background())
	require.NoError(t, err)
	assert.Len(t, cats, 1)
	assert.Empty(t, (*seen)[0].auth)
	assert.Equal(t, 1, logs.FilterMessageSnippet("without it").Len())
}

func TestAuthFailureHookRunsBeforeCallerSeesError(t *testing.T) {
	c, _ := newTestClient(t, respond(http.StatusForbidden, map[string]string{"message": "expired"}), nil)

	var order []string
	var hookErr *StatusError
	c.OnAuthFailure(func(_ context.Context, err *StatusError) {
		order = append(order, "hook")
		hookErr = err
	})

	err := c.Todos().Delete(context.Background(), 7)
	order = append(order, "returned")

	require.Error(t, err)
	assert.Equal(t, []string{"hook", "returned"}, order)
	require.NotNil(t, hookErr)
	assert.Equal(t, "/api/todos/7", hookErr.Path)
	assert.True(t, IsAuthFailure(err))
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))
}

func TestLoginRejectionSkipsAuthFailureHook(t *testing.T) {
	c, _ := newTestClient(t, respond(http.StatusUnauthorized, map[string]string{"message": "bad credentials"}), nil)

	called := false
	c.OnAuthFailure(func(context.Context, *StatusError) { called = true })

	_, err := c.Auth().Login(context.Background(), domain.Credentials{Username: "u", Password: "wrong"})
	require.Error(t, err)
	assert.False(t, called)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnauthorized))

	var dErr *domain.Error
	require.True(t, errors.As(err, &dErr))
	assert.Equal(t, "bad credentials", dErr.Message)
}

func TestOtherErrorsPassThrough(t *testing.T) {
	c, _ := newTestClient(t, respond(http.StatusInternalServerError, nil), nil)

	called := false
	c.OnAuthFailure(func(context.Context, *StatusError) { called = true })

	_, err := c.Todos().List(context.Background())
	require.Error(t, err)
	assert.False(t, called)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInternal))
	statusErr, ok := AsStatusError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
}

func TestConflictKeepsServerMessage(t *testing.T) {
	c, _ := newTestClient(t, respond(http.StatusConflict, map[string]string{"error": "category exists"}), nil)

	_, err := c.Categories().Create(context.Background(), "Home", "home")
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeConflict))
	assert.Contains(t, err.Error(), "category exists")
}

func TestSearchSendsOnlySetFilters(t *testing.T) {
	c, seen := newTestClient(t, respond(http.StatusOK, []domain.Todo{}), nil)

	_, err := c.Todos().Search(context.Background(), domain.TaskFilter{CategoryID: 3, Priority: domain.PriorityHigh})
	require.NoError(t, err)

	got := (*seen)[0]
	assert.Equal(t, "/api/todos/search", got.path)
	assert.Equal(t, "categoryId=3&priority=HIGH", got.query)
}

func TestCreateSendsNormalizedPayload(t *testing.T) {
	c, seen := newTestClient(t, respond(http.StatusCreated, domain.Todo{ID: 9, Title: "x", Priority: domain.PriorityLow}), nil)

	_, err := c.Todos().Create(context.Background(), transport.NewCreateTodoRequest(domain.NewTodo{Title: "x"}))
	require.NoError(t, err)

	assert.JSONEq(t, `{"title":"x","category":null,"priority":"LOW","dueDate":null}`, string((*seen)[0].body))
}

func TestUpdateSendsWholeRecord(t *testing.T) {
	due := "2026-01-02"
	todo := domain.Todo{ID: 4, Title: "t", Completed: true, Category: &domain.Category{ID: 2, Name: "Work"}, Priority: domain.PriorityMedium, DueDate: &due}
	c, seen := newTestClient(t, respond(http.StatusOK, todo), nil)

	got, err := c.Todos().Update(context.Background(), todo)
	require.NoError(t, err)
	assert.Equal(t, todo, *got)

	assert.Equal(t, "PUT", (*seen)[0].method)
	assert.Equal(t, "/api/todos/4", (*seen)[0].path)
	assert.JSONEq(t, `{"id":4,"title":"t","completed":true,"category":{"id":2,"name":"Work"},"priority":"MEDIUM","dueDate":"2026-01-02"}`, string((*seen)[0].body))
}

func TestDeleteAcceptsNoContent(t *testing.T) {
	c, seen := newTestClient(t, respond(http.StatusNoContent, nil), nil)

	require.NoError(t, c.Todos().Delete(context.Background(), 12))
	assert.Equal(t, "DELETE", (*seen)[0].method)
}

func TestTransportFailureIsUnavailable(t *testing.T) {
	c, err := New(Options{
		BaseURL: "http://api.test",
		Dial:    func(string) (net.Conn, error) { return nil, errors.New("connection refused") },
	})
	require.NoError(t, err)

	called := false
	c.OnAuthFailure(func(context.Context, *StatusError) { called = true })

	_, err = c.Todos().List(context.Background())
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnavailable))
	assert.False(t, called)
}

func TestProbeBypassesInterceptors(t *testing.T) {
	c, seen := newTestClient(t, respond(http.StatusNotFound, nil), nil)
	c.UseRequest(func(context.Context, *fasthttp.Request) error { return errors.New("must not run") })

	status, err := c.Probe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "/", (*seen)[0].path)
}

func TestIsLoginPath(t *testing.T) {
	assert.True(t, IsLoginPath("/api/auth/login"))
	assert.False(t, IsLoginPath("/api/auth/register"))
	assert.False(t, IsLoginPath("/api/todos"))
}
