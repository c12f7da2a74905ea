package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/todoclient/domain"
	"github.com/fastygo/todoclient/pkg/httpcontext"
	appLogger "github.com/fastygo/todoclient/pkg/logger"
)

// RequestInterceptor runs on every outgoing request before it is sent.
// Returning an error aborts the request.
type RequestInterceptor func(ctx context.Context, req *fasthttp.Request) error

// ErrorInterceptor observes every non-2xx response before the error reaches
// the caller. It cannot swallow the error.
type ErrorInterceptor func(ctx context.Context, err *StatusError)

// Options configure a Client.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	Logger    *zap.Logger
	// Dial overrides how connections are opened; tests use an in-memory listener.
	Dial fasthttp.DialFunc
}

// Client is the HTTP adapter every store talks through. It prefixes the base
// URL, sends JSON, bounds each call by a fixed timeout and runs interceptors.
type Client struct {
	baseURL string
	http    *fasthttp.Client
	ctx     *httpcontext.Adapter
	logger  *zap.Logger

	mu        sync.RWMutex
	onRequest []RequestInterceptor
	onError   []ErrorInterceptor
}

// New constructs a Client. An empty base URL is rejected.
func New(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "api base url is required")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "todoctl"
	}

	adapter := httpcontext.NewAdapter(opts.Timeout)

	return &Client{
		baseURL: base,
		http: &fasthttp.Client{
			Name:         opts.UserAgent,
			ReadTimeout:  adapter.Timeout(),
			WriteTimeout: adapter.Timeout(),
			Dial:         opts.Dial,
		},
		ctx:    adapter,
		logger: opts.Logger,
	}, nil
}

// BaseURL returns the resolved API endpoint.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// UseRequest appends an outbound interceptor.
func (c *Client) UseRequest(fn RequestInterceptor) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onRequest = append(c.onRequest, fn)
}

// UseError appends an inbound error interceptor.
func (c *Client) UseError(fn ErrorInterceptor) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onError = append(c.onError, fn)
}

// OnAuthFailure registers fn to run on any 401/403 except those answering the
// login endpoint, where a rejection only means bad credentials.
func (c *Client) OnAuthFailure(fn func(ctx context.Context, err *StatusError)) {
	if fn == nil {
		return
	}
	c.UseError(func(ctx context.Context, err *StatusError) {
		if err.IsAuthFailure() && !IsLoginPath(err.Path) {
			fn(ctx, err)
		}
	})
}

// IsLoginPath reports whether path denotes the login endpoint.
func IsLoginPath(path string) bool {
	return strings.Contains(path, "/auth/login")
}

// Do issues method against path. body, when non-nil, is sent as JSON; query
// is appended as a query string; out, when non-nil, receives the decoded
// response body.
func (c *Client) Do(ctx context.Context, method, path string, body any, query url.Values, out any) error {
	reqCtx, cancel := c.ctx.Attach(ctx)
	defer cancel()

	log := appLogger.WithRequestID(reqCtx, c.logger).With(
		zap.String("method", method),
		zap.String("path", path),
	)

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.SetContentType("application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", appLogger.RequestID(reqCtx))
	if len(query) > 0 {
		req.URI().SetQueryString(query.Encode())
	}
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return domain.WrapError(domain.ErrCodeInvalid, "encode request body", err)
		}
		req.SetBody(payload)
	}

	for _, fn := range c.requestInterceptors() {
		if err := fn(reqCtx, req); err != nil {
			return err
		}
	}

	if err := reqCtx.Err(); err != nil {
		return domain.WrapError(domain.ErrCodeUnavailable, "request not sent", err)
	}

	started := time.Now()
	deadline, _ := reqCtx.Deadline()
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		log.Error("api request failed", zap.Duration("elapsed", time.Since(started)), zap.Error(err))
		if errors.Is(err, fasthttp.ErrTimeout) {
			return domain.WrapError(domain.ErrCodeUnavailable, "request timed out", err)
		}
		return domain.WrapError(domain.ErrCodeUnavailable, "api unreachable", err)
	}

	status := resp.StatusCode()
	log.Debug("api request completed", zap.Int("status", status), zap.Duration("elapsed", time.Since(started)))

	if status < 200 || status > 299 {
		statusErr := &StatusError{
			StatusCode: status,
			Method:     method,
			Path:       path,
			Body:       append([]byte(nil), resp.Body()...),
		}
		for _, fn := range c.errorInterceptors() {
			fn(reqCtx, statusErr)
		}
		return wrapStatus(statusErr)
	}

	if out == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "decode response body", err)
	}
	return nil
}

// Probe issues a bare GET against the base URL, bypassing interceptors. Any
// HTTP answer counts as reachable.
func (c *Client) Probe(ctx context.Context) (int, error) {
	reqCtx, cancel := c.ctx.Attach(ctx)
	defer cancel()

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + "/")
	req.Header.SetMethod(fasthttp.MethodGet)

	deadline, _ := reqCtx.Deadline()
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return 0, domain.WrapError(domain.ErrCodeUnavailable, "api unreachable", err)
	}
	return resp.StatusCode(), nil
}

func (c *Client) requestInterceptors() []RequestInterceptor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]RequestInterceptor(nil), c.onRequest...)
}

func (c *Client) errorInterceptors() []ErrorInterceptor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]ErrorInterceptor(nil), c.onError...)
}
