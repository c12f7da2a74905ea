package httpcontext

import (
	"context"
	"time"

	"github.com/google/uuid"

	appLogger "github.com/fastygo/todoclient/pkg/logger"
)

// DefaultTimeout bounds every outbound API call unless configured otherwise.
const DefaultTimeout = 10 * time.Second

// Adapter derives a per-request context carrying a deadline and a request ID.
type Adapter struct {
	timeout time.Duration
}

// NewAdapter constructs a new Adapter using the provided timeout.
func NewAdapter(timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Adapter{
		timeout: timeout,
	}
}

// Timeout returns the per-request budget.
func (a *Adapter) Timeout() time.Duration {
	if a == nil {
		return DefaultTimeout
	}
	return a.timeout
}

// Attach creates a child context bounded by the adapter timeout. A caller
// deadline that is sooner wins. An existing request ID is kept.
func (a *Adapter) Attach(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}

	stdCtx, cancel := context.WithTimeout(parent, a.Timeout())

	if appLogger.RequestID(stdCtx) == "" {
		stdCtx = appLogger.ContextWithRequestID(stdCtx, uuid.NewString())
	}

	return stdCtx, cancel
}
