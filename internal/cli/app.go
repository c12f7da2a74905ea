package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/todoclient/api/client"
	"github.com/fastygo/todoclient/domain"
	"github.com/fastygo/todoclient/internal/config"
	"github.com/fastygo/todoclient/internal/dialog"
	boltInfra "github.com/fastygo/todoclient/internal/infrastructure/bolt"
	"github.com/fastygo/todoclient/internal/infrastructure/monitor"
	redisInfra "github.com/fastygo/todoclient/internal/infrastructure/redis"
	"github.com/fastygo/todoclient/internal/router"
	"github.com/fastygo/todoclient/internal/services/lifecycle"
	"github.com/fastygo/todoclient/pkg/logger"
	"github.com/fastygo/todoclient/repository"
	boltRepo "github.com/fastygo/todoclient/repository/bolt"
	redisRepo "github.com/fastygo/todoclient/repository/redis"
	authUC "github.com/fastygo/todoclient/usecase/auth"
	taskUC "github.com/fastygo/todoclient/usecase/task"
)

// viewAnnotation binds a command to the view it renders. Commands bound to a
// view are dispatched through the router, so its guards run first.
const viewAnnotation = "todoctl/view"

const (
	viewHome  = "home"
	viewLogin = "login"
	// viewNone needs the session layer but does not navigate.
	viewNone = "none"
)

var viewPaths = map[string]string{
	viewHome:  router.HomePath,
	viewLogin: router.LoginPath,
}

// App carries global flags and, once a command needs it, the wired runtime.
type App struct {
	APIURL   string
	LogLevel string

	// LoadConfig and Dial are replaced in tests.
	LoadConfig func() (*config.Config, error)
	Dial       fasthttp.DialFunc

	cfg    *config.Config
	logger *zap.Logger
	in     *bufio.Reader
	rt     *runtime
}

type runtime struct {
	sessions  repository.SessionRepository
	client    *client.Client
	router    *router.Router
	auth      *authUC.UseCase
	tasks     *taskUC.UseCase
	dialog    *dialog.Coordinator
	monitor   *monitor.Monitor
	lifecycle *lifecycle.Manager
}

func (a *App) bootstrap(cmd *cobra.Command) error {
	if a.cfg != nil {
		return nil
	}
	load := a.LoadConfig
	if load == nil {
		load = config.Load
	}
	cfg, err := load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if a.APIURL != "" {
		cfg.API.BaseURL = config.NormalizeBaseURL(a.APIURL)
	}
	if a.LogLevel != "" {
		cfg.Logger.Level = a.LogLevel
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
		Output:   cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("logger error: %w", err)
	}

	a.cfg = cfg
	a.logger = zapLogger
	return nil
}

// open wires storage, the HTTP adapter and the stores.
func (a *App) open(cmd *cobra.Command) (*runtime, error) {
	if a.rt != nil {
		return a.rt, nil
	}
	if err := a.bootstrap(cmd); err != nil {
		return nil, err
	}
	ctx := ctxOf(cmd)
	cfg, log := a.cfg, a.logger

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, log)

	sessions, err := a.openSessions(ctx, manager)
	if err != nil {
		_ = manager.Shutdown(ctx)
		return nil, err
	}

	dial := a.Dial
	if dial == nil {
		dial = func(addr string) (net.Conn, error) {
			return fasthttp.DialTimeout(addr, cfg.API.RequestTimeout)
		}
	}
	apiClient, err := client.New(client.Options{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.RequestTimeout,
		Logger:  log,
		Dial:    dial,
	})
	if err != nil {
		_ = manager.Shutdown(ctx)
		return nil, err
	}

	r := router.New(router.DefaultRoutes(), log)
	auth := authUC.New(ctx, apiClient.Auth(), sessions, r, log)
	r.BeforeEach(router.RequireAuth(auth))

	apiClient.UseRequest(client.BearerToken(sessions, log))
	apiClient.OnAuthFailure(auth.HandleAuthFailure)
	errOut := cmd.ErrOrStderr()
	apiClient.OnAuthFailure(func(context.Context, *client.StatusError) {
		fmt.Fprintln(errOut, styleError.Render("Session expired. Run `todoctl login` to sign in again."))
	})

	coord := dialog.New()
	coord.Subscribe(a.prompter(cmd, coord))

	a.rt = &runtime{
		sessions:  sessions,
		client:    apiClient,
		router:    r,
		auth:      auth,
		tasks:     taskUC.New(apiClient.Todos(), apiClient.Categories(), log),
		dialog:    coord,
		monitor:   monitor.New(apiClient, sessions, cfg.Session.Backend, cfg.Refresh.MonitorInterval, log),
		lifecycle: manager,
	}
	return a.rt, nil
}

func (a *App) openSessions(ctx context.Context, manager *lifecycle.Manager) (repository.SessionRepository, error) {
	cfg := a.cfg
	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		redisClient, err := redisInfra.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, domain.WrapError(domain.ErrCodeUnavailable, "redis session storage unavailable", err)
		}
		manager.Register("redis", func(context.Context) error {
			return redisClient.Close()
		})
		return redisRepo.NewSessionRepository(redisClient, ""), nil
	default:
		store, err := boltInfra.Open(cfg.Session.Path, "session")
		if err != nil {
			return nil, domain.WrapError(domain.ErrCodeUnavailable, "failed to open session storage", err)
		}
		manager.Register("session_store", func(context.Context) error {
			return store.Close()
		})
		return boltRepo.NewSessionRepository(store), nil
	}
}

// Close releases whatever the last command opened.
func (a *App) Close(ctx context.Context) error {
	if a.logger != nil {
		defer a.logger.Sync()
	}
	if a.rt == nil {
		return nil
	}
	rt := a.rt
	a.rt = nil
	return rt.lifecycle.Shutdown(ctx)
}

// enter navigates to the command's view and fails if a guard redirected.
func (a *App) enter(cmd *cobra.Command) error {
	view, ok := cmd.Annotations[viewAnnotation]
	if !ok {
		return nil
	}
	rt, err := a.open(cmd)
	if err != nil {
		return err
	}
	path, navigates := viewPaths[view]
	if !navigates {
		return nil
	}
	if err := rt.router.Push(ctxOf(cmd), path); err != nil {
		return err
	}
	if rt.router.Current().Path != path {
		return domain.NewError(domain.ErrCodeUnauthorized, "not logged in, run `todoctl login` first")
	}
	return nil
}

func (a *App) reader(cmd *cobra.Command) *bufio.Reader {
	if a.in == nil {
		a.in = bufio.NewReader(cmd.InOrStdin())
	}
	return a.in
}

func (a *App) readLine(cmd *cobra.Command, prompt string) (string, error) {
	if prompt != "" {
		fmt.Fprint(cmd.OutOrStdout(), prompt)
	}
	line, err := a.reader(cmd).ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// prompter renders every opened dialog and answers it from the input stream.
// It runs on the goroutine that opened the dialog.
func (a *App) prompter(cmd *cobra.Command, coord *dialog.Coordinator) func(dialog.State) {
	return func(s dialog.State) {
		if !s.IsOpen {
			return
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderDialog(s))
		line, err := a.readLine(cmd, "> ")
		if err != nil {
			coord.Close(false)
			return
		}
		coord.Close(isYes(line))
	}
}

func isYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
