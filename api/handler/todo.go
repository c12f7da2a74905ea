package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/todoclient/api/transport"
	"github.com/fastygo/todoclient/domain"
	"github.com/fastygo/todoclient/pkg/httpcontext"
)

// Todos is the per-user todo storage behind the todo endpoints.
type Todos interface {
	SearchTodos(ctx context.Context, username string, filter domain.TaskFilter) ([]domain.Todo, error)
	CreateTodo(ctx context.Context, username string, req transport.CreateTodoRequest) (*domain.Todo, error)
	UpdateTodo(ctx context.Context, username string, id int64, todo domain.Todo) (*domain.Todo, error)
	DeleteTodo(ctx context.Context, username string, id int64) error
}

type TodoHandler struct {
	baseHandler
	todos Todos
}

func NewTodoHandler(todos Todos, adapter *httpcontext.Adapter, logger *zap.Logger) *TodoHandler {
	return &TodoHandler{
		baseHandler: newBaseHandler(adapter, logger),
		todos:       todos,
	}
}

// List answers GET /api/todos.
func (h *TodoHandler) List(ctx *fasthttp.RequestCtx) {
	h.search(ctx, domain.TaskFilter{})
}

// Search answers GET /api/todos/search?keyword&categoryId&priority&date.
func (h *TodoHandler) Search(ctx *fasthttp.RequestCtx) {
	args := ctx.QueryArgs()
	filter := domain.TaskFilter{
		Keyword: string(args.Peek("keyword")),
		Date:    string(args.Peek("date")),
	}
	if raw := string(args.Peek("categoryId")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.invalid(ctx, "invalid categoryId")
			return
		}
		filter.CategoryID = id
	}
	if raw := string(args.Peek("priority")); raw != "" {
		p, err := domain.ParsePriority(raw)
		if err != nil {
			h.respondError(ctx, err)
			return
		}
		filter.Priority = p
	}
	h.search(ctx, filter)
}

func (h *TodoHandler) search(ctx *fasthttp.RequestCtx, filter domain.TaskFilter) {
	user := h.username(ctx)
	if user == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	todos, err := h.todos.SearchTodos(stdCtx, user, filter)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, todos)
}

// Create answers POST /api/todos.
func (h *TodoHandler) Create(ctx *fasthttp.RequestCtx) {
	user := h.username(ctx)
	if user == "" {
		return
	}
	var req transport.CreateTodoRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.todos.CreateTodo(stdCtx, user, req)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusCreated, created)
}

// Update answers PUT /api/todos/{id}. The path id wins over the body.
func (h *TodoHandler) Update(ctx *fasthttp.RequestCtx) {
	user := h.username(ctx)
	if user == "" {
		return
	}
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}
	var todo domain.Todo
	if !h.decode(ctx, &todo) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.todos.UpdateTodo(stdCtx, user, id, todo)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, updated)
}

// Delete answers DELETE /api/todos/{id} with 204.
func (h *TodoHandler) Delete(ctx *fasthttp.RequestCtx) {
	user := h.username(ctx)
	if user == "" {
		return
	}
	id, ok := h.pathID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.todos.DeleteTodo(stdCtx, user, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	ctx.SetStatusCode(http.StatusNoContent)
}

func (h *TodoHandler) pathID(ctx *fasthttp.RequestCtx) (int64, bool) {
	raw, _ := ctx.UserValue("id").(string)
	id, ok := parseID(raw)
	if !ok {
		h.invalid(ctx, "invalid todo id")
	}
	return id, ok
}
