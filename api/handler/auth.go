package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/todoclient/api/transport"
	"github.com/fastygo/todoclient/domain"
	"github.com/fastygo/todoclient/internal/middleware"
	"github.com/fastygo/todoclient/pkg/httpcontext"
)

// Accounts is the user registry behind the auth endpoints.
type Accounts interface {
	Register(ctx context.Context, username, password string) error
	Authenticate(ctx context.Context, username, password string) error
}

type AuthHandler struct {
	baseHandler
	accounts Accounts
	secret   string
	ttl      time.Duration
}

func NewAuthHandler(accounts Accounts, secret string, ttl time.Duration, adapter *httpcontext.Adapter, logger *zap.Logger) *AuthHandler {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		accounts:    accounts,
		secret:      secret,
		ttl:         ttl,
	}
}

// Login answers POST /api/auth/login with {username, token}.
func (h *AuthHandler) Login(ctx *fasthttp.RequestCtx) {
	var req transport.AuthRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.accounts.Authenticate(stdCtx, req.Username, req.Password); err != nil {
		h.respondError(ctx, err)
		return
	}
	token, err := middleware.IssueToken(h.secret, req.Username, h.ttl)
	if err != nil {
		h.respondError(ctx, domain.WrapError(domain.ErrCodeInternal, "issue token", err))
		return
	}
	h.logger.Info("user logged in", zap.String("username", req.Username))
	h.respondJSON(ctx, http.StatusOK, transport.LoginResponse{Username: req.Username, Token: token})
}

// Register answers POST /api/auth/register.
func (h *AuthHandler) Register(ctx *fasthttp.RequestCtx) {
	var req transport.AuthRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.accounts.Register(stdCtx, req.Username, req.Password); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.logger.Info("user registered", zap.String("username", req.Username))
	h.respondJSON(ctx, http.StatusCreated, map[string]string{"username": req.Username})
}
