package client

import (
	"context"

	"github.com/valyala/fasthttp"

	"github.com/fastygo/todoclient/api/transport"
	"github.com/fastygo/todoclient/domain"
)

const categoriesPath = "/api/categories"

// CategoryAPI groups the category endpoints.
type CategoryAPI struct {
	c *Client
}

func (c *Client) Categories() *CategoryAPI {
	return &CategoryAPI{c: c}
}

func (a *CategoryAPI) List(ctx context.Context) ([]domain.Category, error) {
	var out []domain.Category
	if err := a.c.Do(ctx, fasthttp.MethodGet, categoriesPath, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *CategoryAPI) Create(ctx context.Context, name, icon string) (*domain.Category, error) {
	var out domain.Category
	body := transport.CreateCategoryRequest{Name: name, Icon: icon}
	if err := a.c.Do(ctx, fasthttp.MethodPost, categoriesPath, body, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
