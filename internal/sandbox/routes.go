package sandbox

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/todoclient/api/handler"
)

type Handlers struct {
	Auth     *apiHandler.AuthHandler
	Todo     *apiHandler.TodoHandler
	Category *apiHandler.CategoryHandler
	Health   *apiHandler.HealthHandler
}

func newRouter(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/", handlers.Health.Check)
	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/api/auth/login", handlers.Auth.Login)
	r.POST("/api/auth/register", handlers.Auth.Register)

	// Protected routes
	r.GET("/api/categories", authMiddleware(handlers.Category.List))
	r.POST("/api/categories", authMiddleware(handlers.Category.Create))

	r.GET("/api/todos", authMiddleware(handlers.Todo.List))
	r.GET("/api/todos/search", authMiddleware(handlers.Todo.Search))
	r.POST("/api/todos", authMiddleware(handlers.Todo.Create))
	r.PUT("/api/todos/{id}", authMiddleware(handlers.Todo.Update))
	r.DELETE("/api/todos/{id}", authMiddleware(handlers.Todo.Delete))

	return r
}
