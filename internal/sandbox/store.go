package sandbox

import (
	"context"
	"sort"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/todoclient/api/transport"
	"github.com/fastygo/todoclient/domain"
)

type account struct {
	hash       []byte
	todos      map[int64]domain.Todo
	categories map[int64]domain.Category
}

// Store keeps users, categories and todos in memory. Categories and todos
// are scoped per user; ids are global and never reused.
type Store struct {
	mu         sync.RWMutex
	users      map[string]*account
	nextTodo   int64
	nextCat    int64
	bcryptCost int
}

func NewStore() *Store {
	return &Store{
		users:      make(map[string]*account),
		bcryptCost: bcrypt.DefaultCost,
	}
}

// Register creates an account. A taken username is a CONFLICT.
func (s *Store) Register(_ context.Context, username, password string) error {
	creds := domain.Credentials{Username: strings.TrimSpace(username), Password: password}
	if err := creds.Validate(); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "hash password", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[creds.Username]; exists {
		return domain.NewError(domain.ErrCodeConflict, "username already taken")
	}
	s.users[creds.Username] = &account{
		hash:       hash,
		todos:      make(map[int64]domain.Todo),
		categories: make(map[int64]domain.Category),
	}
	return nil
}

// Authenticate checks a password. Unknown users and wrong passwords look the same.
func (s *Store) Authenticate(_ context.Context, username, password string) error {
	s.mu.RLock()
	acc, ok := s.users[strings.TrimSpace(username)]
	s.mu.RUnlock()
	if !ok {
		return domain.NewError(domain.ErrCodeUnauthorized, "invalid username or password")
	}
	if err := bcrypt.CompareHashAndPassword(acc.hash, []byte(password)); err != nil {
		return domain.NewError(domain.ErrCodeUnauthorized, "invalid username or password")
	}
	return nil
}

func (s *Store) ListCategories(_ context.Context, username string) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, err := s.accountLocked(username)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Category, 0, len(acc.categories))
	for _, c := range acc.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CreateCategory rejects blank and duplicate names. Unknown icons fall back to the default one.
func (s *Store) CreateCategory(_ context.Context, username string, req transport.CreateCategoryRequest) (*domain.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "category name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acc, err := s.accountLocked(username)
	if err != nil {
		return nil, err
	}
	for _, c := range acc.categories {
		if strings.EqualFold(c.Name, name) {
			return nil, domain.NewError(domain.ErrCodeConflict, "category already exists")
		}
	}
	s.nextCat++
	c := domain.Category{ID: s.nextCat, Name: name, Icon: domain.IconByName(req.Icon).Name}
	acc.categories[c.ID] = c
	return &c, nil
}

// SearchTodos returns the user's todos in creation order. Zero filter fields match everything.
func (s *Store) SearchTodos(_ context.Context, username string, filter domain.TaskFilter) ([]domain.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, err := s.accountLocked(username)
	if err != nil {
		return nil, err
	}

	keyword := strings.ToLower(strings.TrimSpace(filter.Keyword))
	out := make([]domain.Todo, 0, len(acc.todos))
	for _, t := range acc.todos {
		if keyword != "" && !strings.Contains(strings.ToLower(t.Title), keyword) {
			continue
		}
		if filter.CategoryID != 0 && t.CategoryID() != filter.CategoryID {
			continue
		}
		if filter.Priority != "" && t.Priority != filter.Priority {
			continue
		}
		if filter.Date != "" && (t.DueDate == nil || *t.DueDate != filter.Date) {
			continue
		}
		out = append(out, s.embedLocked(acc, t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) CreateTodo(_ context.Context, username string, req transport.CreateTodoRequest) (*domain.Todo, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "title is required")
	}
	priority := req.Priority
	if priority == "" {
		priority = domain.DefaultPriority
	}
	if !priority.Valid() {
		return nil, domain.NewError(domain.ErrCodeInvalid, "invalid priority")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acc, err := s.accountLocked(username)
	if err != nil {
		return nil, err
	}

	todo := domain.Todo{Title: title, Priority: priority, DueDate: req.DueDate}
	if req.Category != nil {
		c, ok := acc.categories[req.Category.ID]
		if !ok {
			return nil, domain.ErrCategoryNotFound
		}
		todo.Category = &domain.Category{ID: c.ID}
	}
	s.nextTodo++
	todo.ID = s.nextTodo
	acc.todos[todo.ID] = todo

	out := s.embedLocked(acc, todo)
	return &out, nil
}

// UpdateTodo replaces the whole record except its id.
func (s *Store) UpdateTodo(_ context.Context, username string, id int64, in domain.Todo) (*domain.Todo, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "title is required")
	}
	if in.Priority == "" {
		in.Priority = domain.DefaultPriority
	}
	if !in.Priority.Valid() {
		return nil, domain.NewError(domain.ErrCodeInvalid, "invalid priority")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acc, err := s.accountLocked(username)
	if err != nil {
		return nil, err
	}
	if _, ok := acc.todos[id]; !ok {
		return nil, domain.ErrTaskNotFound
	}

	todo := domain.Todo{
		ID:        id,
		Title:     title,
		Completed: in.Completed,
		Priority:  in.Priority,
		DueDate:   in.DueDate,
	}
	if in.Category != nil && in.Category.ID != 0 {
		if _, ok := acc.categories[in.Category.ID]; !ok {
			return nil, domain.ErrCategoryNotFound
		}
		todo.Category = &domain.Category{ID: in.Category.ID}
	}
	acc.todos[id] = todo

	out := s.embedLocked(acc, todo)
	return &out, nil
}

func (s *Store) DeleteTodo(_ context.Context, username string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, err := s.accountLocked(username)
	if err != nil {
		return err
	}
	if _, ok := acc.todos[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(acc.todos, id)
	return nil
}

func (s *Store) accountLocked(username string) (*account, error) {
	acc, ok := s.users[username]
	if !ok {
		// token outlived the account, e.g. after a sandbox restart
		return nil, domain.NewError(domain.ErrCodeForbidden, "unknown account")
	}
	return acc, nil
}

// embedLocked expands the stored category reference into the full object.
func (s *Store) embedLocked(acc *account, t domain.Todo) domain.Todo {
	if t.Category == nil {
		return t
	}
	if c, ok := acc.categories[t.Category.ID]; ok {
		cp := c
		t.Category = &cp
	}
	return t
}
