package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/valyala/fasthttp"

	"github.com/fastygo/todoclient/api/transport"
	"github.com/fastygo/todoclient/domain"
)

const (
	todosPath      = "/api/todos"
	todoSearchPath = "/api/todos/search"
)

// TodoAPI groups the todo endpoints.
type TodoAPI struct {
	c *Client
}

func (c *Client) Todos() *TodoAPI {
	return &TodoAPI{c: c}
}

func (t *TodoAPI) List(ctx context.Context) ([]domain.Todo, error) {
	var out []domain.Todo
	if err := t.c.Do(ctx, fasthttp.MethodGet, todosPath, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Search sends only the filter fields that are set.
func (t *TodoAPI) Search(ctx context.Context, filter domain.TaskFilter) ([]domain.Todo, error) {
	var out []domain.Todo
	if err := t.c.Do(ctx, fasthttp.MethodGet, todoSearchPath, nil, SearchQuery(filter), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (t *TodoAPI) Create(ctx context.Context, req transport.CreateTodoRequest) (*domain.Todo, error) {
	var out domain.Todo
	if err := t.c.Do(ctx, fasthttp.MethodPost, todosPath, req, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update sends the whole record and returns the server's version of it.
func (t *TodoAPI) Update(ctx context.Context, todo domain.Todo) (*domain.Todo, error) {
	var out domain.Todo
	if err := t.c.Do(ctx, fasthttp.MethodPut, todoPath(todo.ID), todo, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (t *TodoAPI) Delete(ctx context.Context, id int64) error {
	return t.c.Do(ctx, fasthttp.MethodDelete, todoPath(id), nil, nil, nil)
}

// SearchQuery encodes the non-empty filter fields.
func SearchQuery(filter domain.TaskFilter) url.Values {
	q := url.Values{}
	if kw := strings.TrimSpace(filter.Keyword); kw != "" {
		q.Set("keyword", kw)
	}
	if filter.CategoryID != 0 {
		q.Set("categoryId", strconv.FormatInt(filter.CategoryID, 10))
	}
	if p := strings.TrimSpace(string(filter.Priority)); p != "" {
		q.Set("priority", p)
	}
	if d := strings.TrimSpace(filter.Date); d != "" {
		q.Set("date", d)
	}
	return q
}

func todoPath(id int64) string {
	return fmt.Sprintf("%s/%d", todosPath, id)
}
