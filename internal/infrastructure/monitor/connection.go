package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Prober reaches the API without going through the interceptor chain.
type Prober interface {
	Probe(ctx context.Context) (int, error)
}

// Pinger checks the session storage.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Monitor struct {
	api     Prober
	storage Pinger
	backend string

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

func New(api Prober, storage Pinger, backend string, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		api:      api,
		storage:  storage,
		backend:  backend,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// IsOnline reports whether the last probe reached the API.
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.API
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Check probes both dependencies now and stores the result.
func (m *Monitor) Check(ctx context.Context) Status {
	apiOK, code, latency := m.checkAPI(ctx)
	status := Status{
		API:            apiOK,
		APIStatusCode:  code,
		APILatency:     latency,
		Storage:        m.checkStorage(ctx),
		StorageBackend: m.backend,
		LastCheck:      time.Now(),
	}

	m.mu.Lock()
	previous := m.status
	m.status = status
	m.mu.Unlock()

	if !previous.LastCheck.IsZero() && previous.API != status.API {
		m.logger.Warn("api reachability changed", zap.Bool("online", status.API))
	}
	return status
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.refresh()
	for {
		select {
		case <-ticker.C:
			m.refresh()
		case <-m.stopCh:
			return
		}
	}
}

func (m *Monitor) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), m.interval)
	defer cancel()
	m.Check(ctx)
}

func (m *Monitor) checkAPI(ctx context.Context) (bool, int, time.Duration) {
	if m.api == nil {
		return false, 0, 0
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	started := time.Now()
	code, err := m.api.Probe(ctx)
	if err != nil {
		m.logger.Debug("api probe failed", zap.Error(err))
		return false, 0, time.Since(started)
	}
	return true, code, time.Since(started)
}

func (m *Monitor) checkStorage(ctx context.Context) bool {
	if m.storage == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := m.storage.Ping(ctx); err != nil {
		m.logger.Warn("session storage check failed", zap.Error(err))
		return false
	}
	return true
}
