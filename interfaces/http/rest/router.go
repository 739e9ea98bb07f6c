package rest

import (
	"net/http"

	"todobackend/application/services"
	"todobackend/infrastructure/config"
	"todobackend/interfaces/http/rest/handlers"
	"todobackend/interfaces/http/rest/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Router creates and configures the HTTP router
type Router struct {
	cfg     *config.Config
	service *services.TodoService
	logger  *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, service *services.TodoService, logger *zap.Logger) *Router {
	return &Router{
		cfg:     cfg,
		service: service,
		logger:  logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() *chi.Mux {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health checks
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	// API routes
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(rt.cfg, rt.logger))

		r.Route("/todos", func(r chi.Router) {
			todoHandler := handlers.NewTodoHandler(rt.service, rt.logger)
			r.Get("/", todoHandler.ListTodos)
			r.Get("/search/{name}", todoHandler.SearchTodos)
			r.Post("/", todoHandler.CreateTodo)
			r.Patch("/{todoId}", todoHandler.UpdateTodo)
			r.Delete("/{todoId}", todoHandler.DeleteTodo)
			r.Post("/{todoId}/attachment", todoHandler.IssueUploadURL)
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
