package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fastygo/todoclient/domain"
)

type fakeFetcher struct {
	mu         sync.Mutex
	filters    []domain.TaskFilter
	categories int
}

func (f *fakeFetcher) FetchTasks(_ context.Context, filter domain.TaskFilter) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filters = append(f.filters, filter)
}

func (f *fakeFetcher) FetchCategories(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.categories++
}

type flag bool

func (f flag) IsOnline() bool        { return bool(f) }
func (f flag) IsAuthenticated() bool { return bool(f) }

func TestRefreshUsesFilter(t *testing.T) {
	fetcher := &fakeFetcher{}
	filter := domain.TaskFilter{Priority: domain.PriorityHigh}
	r := NewRefresher(fetcher, flag(true), flag(true), nil, RefresherConfig{Filter: filter, WithCategories: true})

	assert.True(t, r.Refresh(context.Background()))
	r.SetFilter(domain.TaskFilter{Keyword: "milk"})
	assert.True(t, r.Refresh(context.Background()))

	assert.Equal(t, []domain.TaskFilter{filter, {Keyword: "milk"}}, fetcher.filters)
	assert.Equal(t, 2, fetcher.categories)
}

func TestRefreshSkipsWhenOfflineOrLoggedOut(t *testing.T) {
	fetcher := &fakeFetcher{}

	offline := NewRefresher(fetcher, flag(false), flag(true), nil, RefresherConfig{})
	assert.False(t, offline.Refresh(context.Background()))

	loggedOut := NewRefresher(fetcher, flag(true), flag(false), nil, RefresherConfig{})
	assert.False(t, loggedOut.Refresh(context.Background()))

	assert.Empty(t, fetcher.filters)
}

func TestRefreshWithoutCollaborators(t *testing.T) {
	fetcher := &fakeFetcher{}
	r := NewRefresher(fetcher, nil, nil, nil, RefresherConfig{})
	assert.True(t, r.Refresh(context.Background()))
	assert.Zero(t, fetcher.categories)
}

func TestEverySpec(t *testing.T) {
	assert.Equal(t, "@every 1s", everySpec(200*time.Millisecond))
	assert.Equal(t, "@every 30s", everySpec(30*time.Second))
	assert.Equal(t, "@every 2m0s", everySpec(2*time.Minute))
}

func TestStartStop(t *testing.T) {
	r := NewRefresher(&fakeFetcher{}, nil, nil, nil, RefresherConfig{Interval: time.Hour})
	r.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	r.Stop(ctx)
	assert.NoError(t, ctx.Err())
}
