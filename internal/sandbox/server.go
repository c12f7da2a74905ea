package sandbox

import (
	"context"
	"net"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/todoclient/api/handler"
	"github.com/fastygo/todoclient/internal/config"
	"github.com/fastygo/todoclient/internal/middleware"
	"github.com/fastygo/todoclient/pkg/httpcontext"
)

// Server serves the todo API from memory for local development and tests.
type Server struct {
	cfg    config.SandboxConfig
	store  *Store
	server *fasthttp.Server
	logger *zap.Logger
}

func New(cfg config.SandboxConfig, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "sandbox-secret"
	}

	store := NewStore()
	adapter := httpcontext.NewAdapter(5 * time.Second)

	handlers := Handlers{
		Auth:     apiHandler.NewAuthHandler(store, cfg.JWTSecret, cfg.TokenTTL, adapter, logger),
		Todo:     apiHandler.NewTodoHandler(store, adapter, logger),
		Category: apiHandler.NewCategoryHandler(store, adapter, logger),
		Health:   apiHandler.NewHealthHandler(adapter, logger),
	}
	r := newRouter(handlers, middleware.JWTAuth(cfg.JWTSecret, logger))

	return &Server{
		cfg:   cfg,
		store: store,
		server: &fasthttp.Server{
			Handler:      r.Handler,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  time.Minute,
			Name:         "todo-sandbox",
		},
		logger: logger,
	}
}

// Store exposes the backing data, mainly for seeding.
func (s *Server) Store() *Store {
	return s.store
}

// Handler returns the request handler without binding a socket.
func (s *Server) Handler() fasthttp.RequestHandler {
	return s.server.Handler
}

// Serve blocks serving ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("sandbox started", zap.String("address", ln.Addr().String()))
	return s.server.Serve(ln)
}

// ListenAndServe binds the configured address.
func (s *Server) ListenAndServe() error {
	addr := s.cfg.Addr
	if addr == "" {
		addr = ":8080"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.ShutdownWithContext(ctx)
}
