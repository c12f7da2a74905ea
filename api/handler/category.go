package handler

import (
	"context"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/todoclient/api/transport"
	"github.com/fastygo/todoclient/domain"
	"github.com/fastygo/todoclient/pkg/httpcontext"
)

// Categories is the per-user category storage.
type Categories interface {
	ListCategories(ctx context.Context, username string) ([]domain.Category, error)
	CreateCategory(ctx context.Context, username string, req transport.CreateCategoryRequest) (*domain.Category, error)
}

type CategoryHandler struct {
	baseHandler
	categories Categories
}

func NewCategoryHandler(categories Categories, adapter *httpcontext.Adapter, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		baseHandler: newBaseHandler(adapter, logger),
		categories:  categories,
	}
}

// List answers GET /api/categories.
func (h *CategoryHandler) List(ctx *fasthttp.RequestCtx) {
	user := h.username(ctx)
	if user == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	categories, err := h.categories.ListCategories(stdCtx, user)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, categories)
}

// Create answers POST /api/categories.
func (h *CategoryHandler) Create(ctx *fasthttp.RequestCtx) {
	user := h.username(ctx)
	if user == "" {
		return
	}
	var req transport.CreateCategoryRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.categories.CreateCategory(stdCtx, user, req)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusCreated, created)
}
