package auth

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/fastygo/todoclient/api/client"
	"github.com/fastygo/todoclient/api/transport"
	"github.com/fastygo/todoclient/domain"
	"github.com/fastygo/todoclient/internal/router"
	"github.com/fastygo/todoclient/pkg/observer"
	"github.com/fastygo/todoclient/repository"
)

// API is the slice of the HTTP adapter the session store calls.
type API interface {
	Login(ctx context.Context, creds domain.Credentials) (*transport.LoginResponse, error)
	Register(ctx context.Context, creds domain.Credentials) error
}

// Navigator moves the application to another view.
type Navigator interface {
	Push(ctx context.Context, path string) error
}

// UseCase is the session store. It keeps the in-memory session and the
// persisted copy in step on every transition.
type UseCase struct {
	api      API
	sessions repository.SessionRepository
	nav      Navigator
	logger   *zap.Logger

	mu      sync.RWMutex
	state   domain.Session
	changes observer.Subject[domain.Session]
}

// New rehydrates the session from storage. A storage read failure starts the
// store logged out rather than failing.
func New(ctx context.Context, api API, sessions repository.SessionRepository, nav Navigator, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	uc := &UseCase{
		api:      api,
		sessions: sessions,
		nav:      nav,
		logger:   logger,
	}

	token, tokenErr := sessions.Get(ctx, domain.SessionTokenKey)
	user, userErr := sessions.Get(ctx, domain.SessionUserKey)
	if tokenErr != nil || userErr != nil {
		logger.Warn("could not restore session, starting logged out",
			zap.NamedError("token_error", tokenErr),
			zap.NamedError("user_error", userErr),
		)
		return uc
	}
	uc.state = domain.Session{Token: token, Username: user}
	return uc
}

// Session returns a snapshot of the current session.
func (uc *UseCase) Session() domain.Session {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.state
}

// IsAuthenticated is true iff the credential is non-empty.
func (uc *UseCase) IsAuthenticated() bool {
	return uc.Session().IsAuthenticated()
}

// Subscribe registers fn for every session transition.
func (uc *UseCase) Subscribe(fn func(domain.Session)) func() {
	return uc.changes.Subscribe(fn)
}

// Login exchanges credentials for a token, persists it and navigates home.
// API errors are returned unchanged.
func (uc *UseCase) Login(ctx context.Context, username, password string) error {
	resp, err := uc.api.Login(ctx, domain.Credentials{Username: username, Password: password})
	if err != nil {
		return err
	}

	if err := uc.sessions.Set(ctx, domain.SessionTokenKey, resp.Token); err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "persist session", err)
	}
	if err := uc.sessions.Set(ctx, domain.SessionUserKey, resp.Username); err != nil {
		_ = uc.sessions.Delete(context.WithoutCancel(ctx), domain.SessionTokenKey)
		return domain.WrapError(domain.ErrCodeInternal, "persist session", err)
	}

	uc.set(domain.Session{Token: resp.Token, Username: resp.Username})
	uc.logger.Info("logged in", zap.String("username", resp.Username))
	uc.navigate(ctx, router.HomePath)
	return nil
}

// Register creates an account. It does not log in or navigate.
func (uc *UseCase) Register(ctx context.Context, username, password string) error {
	return uc.api.Register(ctx, domain.Credentials{Username: username, Password: password})
}

// Logout clears the session everywhere and navigates to the login view. It
// never fails; storage problems are logged.
func (uc *UseCase) Logout(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	uc.clear(ctx)
	uc.logger.Info("logged out")
	uc.navigate(ctx, router.LoginPath)
}

// HandleAuthFailure is registered with the HTTP adapter and runs when the
// server rejects the credential outside the login endpoint. It leaves the
// same end state as Logout.
func (uc *UseCase) HandleAuthFailure(ctx context.Context, err *client.StatusError) {
	fields := []zap.Field{zap.String("username", uc.Session().Username)}
	if err != nil {
		fields = append(fields, zap.Int("status", err.StatusCode), zap.String("path", err.Path))
	}
	uc.logger.Warn("session rejected by server, forcing logout", fields...)

	ctx = context.WithoutCancel(ctx)
	uc.clear(ctx)
	uc.navigate(ctx, router.LoginPath)
}

func (uc *UseCase) clear(ctx context.Context) {
	uc.set(domain.Session{})
	if err := uc.sessions.Delete(ctx, domain.SessionTokenKey, domain.SessionUserKey); err != nil {
		uc.logger.Error("failed to clear persisted session", zap.Error(err))
	}
}

func (uc *UseCase) set(s domain.Session) {
	uc.mu.Lock()
	uc.state = s
	uc.mu.Unlock()
	uc.changes.Publish(s)
}

func (uc *UseCase) navigate(ctx context.Context, path string) {
	if uc.nav == nil {
		return
	}
	if err := uc.nav.Push(ctx, path); err != nil {
		uc.logger.Warn("navigation failed", zap.String("path", path), zap.Error(err))
	}
}
