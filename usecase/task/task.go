package task

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/fastygo/todoclient/api/transport"
	"github.com/fastygo/todoclient/domain"
	"github.com/fastygo/todoclient/pkg/observer"
)

// TodoAPI is the slice of the HTTP adapter used for todos.
type TodoAPI interface {
	List(ctx context.Context) ([]domain.Todo, error)
	Search(ctx context.Context, filter domain.TaskFilter) ([]domain.Todo, error)
	Create(ctx context.Context, req transport.CreateTodoRequest) (*domain.Todo, error)
	Update(ctx context.Context, todo domain.Todo) (*domain.Todo, error)
	Delete(ctx context.Context, id int64) error
}

// CategoryAPI is the slice of the HTTP adapter used for categories.
type CategoryAPI interface {
	List(ctx context.Context) ([]domain.Category, error)
	Create(ctx context.Context, name, icon string) (*domain.Category, error)
}

// State is a snapshot of the task store. Err is empty when the last read succeeded.
type State struct {
	Todos      []domain.Todo
	Categories []domain.Category
	Loading    bool
	Err        string
}

// UseCase is the task store: the local todo and category collections kept in
// step with server responses.
type UseCase struct {
	todos      TodoAPI
	categories CategoryAPI
	logger     *zap.Logger

	mu    sync.RWMutex
	state State
	seq   uint64

	// Loading stays set while the latest fetch or any create is outstanding.
	fetching bool
	creating int
	changes  observer.Subject[State]
}

func New(todos TodoAPI, categories CategoryAPI, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		todos:      todos,
		categories: categories,
		logger:     logger,
	}
}

// State returns a copy of the current state.
func (uc *UseCase) State() State {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.snapshotLocked()
}

// Subscribe registers fn for every state change.
func (uc *UseCase) Subscribe(fn func(State)) func() {
	return uc.changes.Subscribe(fn)
}

// FetchTasks replaces the collection with the server's list, using the search
// endpoint when any filter is set. Failures land in State.Err and leave the
// collection untouched. A response to a superseded call is dropped.
func (uc *UseCase) FetchTasks(ctx context.Context, filter domain.TaskFilter) {
	uc.mu.Lock()
	uc.seq++
	seq := uc.seq
	uc.fetching = true
	uc.state.Err = ""
	uc.updateLoadingLocked()
	uc.mu.Unlock()
	uc.publish()

	var (
		todos []domain.Todo
		err   error
	)
	if filter.IsZero() {
		todos, err = uc.todos.List(ctx)
	} else {
		todos, err = uc.todos.Search(ctx, filter)
	}

	uc.mu.Lock()
	if seq != uc.seq {
		uc.mu.Unlock()
		uc.logger.Debug("discarding stale todo list response", zap.Uint64("seq", seq))
		return
	}
	uc.fetching = false
	uc.updateLoadingLocked()
	if err != nil {
		uc.state.Err = domain.ErrorMessage(err)
	} else {
		uc.state.Todos = todos
	}
	uc.mu.Unlock()

	if err != nil {
		uc.logger.Error("failed to load todos", zap.Error(err))
	}
	uc.publish()
}

// FetchCategories replaces the category collection. Like FetchTasks it
// records failures in State.Err rather than returning them; a success clears it.
func (uc *UseCase) FetchCategories(ctx context.Context) {
	categories, err := uc.categories.List(ctx)

	uc.mu.Lock()
	if err != nil {
		uc.state.Err = domain.ErrorMessage(err)
	} else {
		uc.state.Categories = categories
		uc.state.Err = ""
	}
	uc.mu.Unlock()

	if err != nil {
		uc.logger.Error("failed to load categories", zap.Error(err))
	}
	uc.publish()
}

// CreateTask posts a new todo and appends the server's record. A blank title
// is a no-op that returns (nil, nil).
func (uc *UseCase) CreateTask(ctx context.Context, in domain.NewTodo) (*domain.Todo, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, nil
	}

	uc.mu.Lock()
	uc.creating++
	uc.updateLoadingLocked()
	uc.mu.Unlock()
	uc.publish()

	created, err := uc.todos.Create(ctx, transport.NewCreateTodoRequest(in))

	uc.mu.Lock()
	uc.creating--
	uc.updateLoadingLocked()
	if err != nil {
		uc.state.Err = domain.ErrorMessage(err)
	} else {
		uc.state.Todos = append(uc.state.Todos, *created)
	}
	uc.mu.Unlock()
	uc.publish()

	if err != nil {
		uc.logger.Error("failed to create todo", zap.Error(err))
		return nil, err
	}
	return created, nil
}

// CreateCategory posts a new category, appends it and returns it so the
// caller can select it straight away. A blank name is a no-op; an empty icon
// becomes the default one.
func (uc *UseCase) CreateCategory(ctx context.Context, name, icon string) (*domain.Category, error) {
	if strings.TrimSpace(name) == "" {
		return nil, nil
	}
	if icon == "" {
		icon = domain.DefaultIcon
	}

	created, err := uc.categories.Create(ctx, name, icon)
	if err != nil {
		uc.logger.Error("failed to create category", zap.Error(err))
		return nil, err
	}

	uc.mu.Lock()
	uc.state.Categories = append(uc.state.Categories, *created)
	uc.mu.Unlock()
	uc.publish()
	return created, nil
}

// UpdateTask sends the whole record and replaces the local entry with exactly
// what the server returned. If no local entry has that id the result is dropped.
func (uc *UseCase) UpdateTask(ctx context.Context, todo domain.Todo) (*domain.Todo, error) {
	updated, err := uc.todos.Update(ctx, todo)
	if err != nil {
		uc.logger.Error("failed to update todo", zap.Int64("id", todo.ID), zap.Error(err))
		return nil, err
	}

	uc.mu.Lock()
	replaced := false
	for i := range uc.state.Todos {
		if uc.state.Todos[i].ID == todo.ID {
			uc.state.Todos[i] = *updated
			replaced = true
			break
		}
	}
	uc.mu.Unlock()

	if replaced {
		uc.publish()
	}
	return updated, nil
}

// DeleteTask removes the todo from the collection once the server confirms.
func (uc *UseCase) DeleteTask(ctx context.Context, id int64) error {
	if err := uc.todos.Delete(ctx, id); err != nil {
		uc.logger.Error("failed to delete todo", zap.Int64("id", id), zap.Error(err))
		return err
	}

	uc.mu.Lock()
	kept := make([]domain.Todo, 0, len(uc.state.Todos))
	for _, t := range uc.state.Todos {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	uc.state.Todos = kept
	uc.mu.Unlock()
	uc.publish()
	return nil
}

// Find returns the local todo with id.
func (uc *UseCase) Find(id int64) (domain.Todo, bool) {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	for _, t := range uc.state.Todos {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Todo{}, false
}

func (uc *UseCase) updateLoadingLocked() {
	uc.state.Loading = uc.fetching || uc.creating > 0
}

func (uc *UseCase) publish() {
	uc.changes.Publish(uc.State())
}

func (uc *UseCase) snapshotLocked() State {
	return State{
		Todos:      append([]domain.Todo(nil), uc.state.Todos...),
		Categories: append([]domain.Category(nil), uc.state.Categories...),
		Loading:    uc.state.Loading,
		Err:        uc.state.Err,
	}
}
