package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type probeFunc func(ctx context.Context) (int, error)

func (f probeFunc) Probe(ctx context.Context) (int, error) { return f(ctx) }

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestCheckReportsBothDependencies(t *testing.T) {
	m := New(
		probeFunc(func(context.Context) (int, error) { return 404, nil }),
		pingFunc(func(context.Context) error { return nil }),
		"bolt", time.Second, nil,
	)

	status := m.Check(context.Background())
	assert.True(t, status.API)
	assert.Equal(t, 404, status.APIStatusCode)
	assert.True(t, status.Storage)
	assert.Equal(t, "bolt", status.StorageBackend)
	assert.True(t, m.IsOnline())
	assert.Equal(t, status, m.GetStatus())
}

func TestCheckFailures(t *testing.T) {
	m := New(
		probeFunc(func(context.Context) (int, error) { return 0, errors.New("refused") }),
		pingFunc(func(context.Context) error { return errors.New("locked") }),
		"redis", time.Second, nil,
	)

	status := m.Check(context.Background())
	assert.False(t, status.API)
	assert.False(t, status.Storage)
	assert.False(t, m.IsOnline())
}

func TestMissingDependenciesAreOffline(t *testing.T) {
	m := New(nil, nil, "", 0, nil)
	status := m.Check(context.Background())
	assert.False(t, status.API)
	assert.False(t, status.Storage)
}

func TestLoopRefreshesUntilStopped(t *testing.T) {
	m := New(
		probeFunc(func(context.Context) (int, error) { return 200, nil }),
		pingFunc(func(context.Context) error { return nil }),
		"bolt", 10*time.Millisecond, nil,
	)
	m.Start()
	require.Eventually(t, m.IsOnline, time.Second, 5*time.Millisecond)
	m.Stop()
	m.Stop()
}
