package services

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/todoclient/domain"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// AuthState reports whether a session is active.
type AuthState interface {
	IsAuthenticated() bool
}

// Fetcher is the read side of the task store.
type Fetcher interface {
	FetchTasks(ctx context.Context, filter domain.TaskFilter)
	FetchCategories(ctx context.Context)
}

// RefresherConfig controls how often the task store is reloaded.
type RefresherConfig struct {
	Interval time.Duration
	Filter   domain.TaskFilter
	// WithCategories also reloads categories on every tick.
	WithCategories bool
}

// Refresher periodically reloads the task store so a watching view stays current.
type Refresher struct {
	tasks   Fetcher
	monitor ConnectionHealth
	auth    AuthState
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     RefresherConfig

	mu     sync.Mutex
	filter domain.TaskFilter
}

func NewRefresher(tasks Fetcher, monitor ConnectionHealth, auth AuthState, logger *zap.Logger, cfg RefresherConfig) *Refresher {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Refresher{
		tasks:   tasks,
		monitor: monitor,
		auth:    auth,
		logger:  logger,
		cfg:     cfg,
		filter:  cfg.Filter,
		cron:    cron.New(cron.WithSeconds()),
	}

	_, err := r.cron.AddFunc(everySpec(cfg.Interval), func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		r.Refresh(ctx)
	})
	if err != nil {
		logger.Error("failed to schedule refresh", zap.Error(err))
	}

	return r
}

// Start launches the cron scheduler.
func (r *Refresher) Start() {
	if r == nil || r.cron == nil {
		return
	}
	r.cron.Start()
	r.logger.Info("refresher started", zap.Duration("interval", r.cfg.Interval))
}

// Stop waits for a running refresh to finish or ctx to expire.
func (r *Refresher) Stop(ctx context.Context) {
	if r == nil || r.cron == nil {
		return
	}
	stopCtx := r.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	r.logger.Info("refresher stopped")
}

// SetFilter changes the filter used from the next tick on.
func (r *Refresher) SetFilter(filter domain.TaskFilter) {
	r.mu.Lock()
	r.filter = filter
	r.mu.Unlock()
}

// Refresh reloads once. It skips while logged out or while the API is
// unreachable and reports whether it ran.
func (r *Refresher) Refresh(ctx context.Context) bool {
	if r.auth != nil && !r.auth.IsAuthenticated() {
		r.logger.Debug("skipping refresh (logged out)")
		return false
	}
	if r.monitor != nil && !r.monitor.IsOnline() {
		r.logger.Debug("skipping refresh (offline)")
		return false
	}

	r.mu.Lock()
	filter := r.filter
	r.mu.Unlock()

	if r.cfg.WithCategories {
		r.tasks.FetchCategories(ctx)
	}
	r.tasks.FetchTasks(ctx, filter)
	return true
}

func everySpec(interval time.Duration) string {
	if interval < time.Second {
		interval = time.Second
	}
	return "@every " + interval.Round(time.Second).String()
}
