package app

import (
	"net/http"

	"todoService/internal/config"
	"todoService/internal/handlers"
	"todoService/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const serviceName = "todo-service"

func NewRouter(cfg config.ServerConfig, h *handlers.TodoHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		MaxAge:         300,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RateLimit(cfg.RateLimit))
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.Post("/todos", h.CreateTodo)                  // POST /todos
	r.Get("/find", h.FindTodos)                     // GET /find?searchTerm=
	r.Get("/todo", h.GetTodoByID)                   // GET /todo?id=
	r.Patch("/todo", h.UpdateTodoTitle)             // PATCH /todo?id=
	r.Patch("/mark-completed", h.MarkTodoCompleted) // PATCH /mark-completed?id=
	r.Delete("/todo", h.DeleteTodo)                 // DELETE /todo?id=

	r.Get("/health", h.HealthCheck)

	return otelhttp.NewHandler(r, serviceName)
}
