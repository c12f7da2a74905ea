package transport

import "github.com/fastygo/todoclient/domain"

// AuthRequest is the body of POST /api/auth/login and /api/auth/register.
type AuthRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CategoryRef is how a todo references its category on write.
type CategoryRef struct {
	ID int64 `json:"id"`
}

// CreateTodoRequest is the body of POST /api/todos. Category and DueDate serialize as null when absent.
type CreateTodoRequest struct {
	Title    string          `json:"title"`
	Category *CategoryRef    `json:"category"`
	Priority domain.Priority `json:"priority"`
	DueDate  *string         `json:"dueDate"`
}

// NewCreateTodoRequest normalizes a caller payload into its wire form:
// the category id becomes {id} or null, priority defaults to LOW and an
// empty due date becomes null.
func NewCreateTodoRequest(in domain.NewTodo) CreateTodoRequest {
	req := CreateTodoRequest{
		Title:    in.Title,
		Priority: in.Priority,
	}
	if in.CategoryID != 0 {
		req.Category = &CategoryRef{ID: in.CategoryID}
	}
	if req.Priority == "" {
		req.Priority = domain.DefaultPriority
	}
	if in.DueDate != "" {
		due := in.DueDate
		req.DueDate = &due
	}
	return req
}

// CreateCategoryRequest is the body of POST /api/categories.
type CreateCategoryRequest struct {
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}
