package router

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/fastygo/todoclient/domain"
	"github.com/fastygo/todoclient/pkg/observer"
)

const (
	HomePath  = "/"
	LoginPath = "/login"
)

// maxRedirects bounds guard redirect chains.
const maxRedirects = 5

// Meta is the per-view metadata guards look at.
type Meta struct {
	RequiresAuth bool
}

// Route is a named view.
type Route struct {
	Path string
	Name string
	Meta Meta
}

// Navigation describes a completed transition.
type Navigation struct {
	From       Route
	To         Route
	Requested  string
	Redirected bool
}

// Guard runs before every navigation. It returns an empty string to proceed
// or the path to redirect to.
type Guard func(to, from Route) string

// AuthState is the part of the session a guard needs.
type AuthState interface {
	IsAuthenticated() bool
}

// RequireAuth sends unauthenticated users to the login view when the target
// view requires authentication.
func RequireAuth(auth AuthState) Guard {
	return func(to, _ Route) string {
		if to.Meta.RequiresAuth && (auth == nil || !auth.IsAuthenticated()) {
			return LoginPath
		}
		return ""
	}
}

// DefaultRoutes returns the two views of the client.
func DefaultRoutes() []Route {
	return []Route{
		{Path: HomePath, Name: "home", Meta: Meta{RequiresAuth: true}},
		{Path: LoginPath, Name: "login"},
	}
}

// Router tracks the current view and runs guards on every Push.
type Router struct {
	logger *zap.Logger

	mu      sync.RWMutex
	routes  map[string]Route
	guards  []Guard
	current Route
	changes observer.Subject[Navigation]
}

// New builds a router over routes. Before the first Push the current view is empty.
func New(routes []Route, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	table := make(map[string]Route, len(routes))
	for _, r := range routes {
		table[r.Path] = r
	}
	return &Router{
		logger: logger,
		routes: table,
	}
}

// BeforeEach registers a guard. Guards run in registration order; the first
// redirect wins.
func (r *Router) BeforeEach(g Guard) {
	if g == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.guards = append(r.guards, g)
}

// Subscribe registers fn for every completed navigation.
func (r *Router) Subscribe(fn func(Navigation)) func() {
	return r.changes.Subscribe(fn)
}

// Current returns the active view.
func (r *Router) Current() Route {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Resolve runs the guards against path without navigating.
func (r *Router) Resolve(path string) (Route, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.resolveLocked(path)
}

// Push navigates to path, following guard redirects.
func (r *Router) Push(ctx context.Context, path string) error {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return err
		}
	}

	r.mu.Lock()
	target, err := r.resolveLocked(path)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	nav := Navigation{
		From:       r.current,
		To:         target,
		Requested:  path,
		Redirected: target.Path != path,
	}
	r.current = target
	r.mu.Unlock()

	if nav.Redirected {
		r.logger.Debug("navigation redirected", zap.String("requested", path), zap.String("to", target.Path))
	}
	r.changes.Publish(nav)
	return nil
}

func (r *Router) resolveLocked(path string) (Route, error) {
	from := r.current
	for i := 0; i <= maxRedirects; i++ {
		to, ok := r.routes[path]
		if !ok {
			return Route{}, domain.WrapError(domain.ErrCodeNotFound, "unknown view", fmt.Errorf("no route for %q", path))
		}
		redirect := ""
		for _, g := range r.guards {
			if redirect = g(to, from); redirect != "" {
				break
			}
		}
		if redirect == "" || redirect == to.Path {
			return to, nil
		}
		path = redirect
	}
	return Route{}, domain.NewError(domain.ErrCodeInternal, "too many navigation redirects")
}
