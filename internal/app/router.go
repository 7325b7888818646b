package app

import (
	"net/http"
	"taskmanager/internal/handlers"
	"taskmanager/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func (a *App) newRouter() *chi.Mux {
	taskHandler := handlers.NewTaskHandler(a.taskService)
	authHandler := handlers.NewAuthHandler(a.authService)
	analyticsHandler := handlers.NewAnalyticsHandler(a.analyticsService)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimw.Recoverer)
	r.Use(middleware.SecureHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: a.config.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	if a.config.Server.RequestTimeout > 0 {
		r.Use(chimw.Timeout(a.config.Server.RequestTimeout))
	}

	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(handlers.MethodNotAllowed)

	r.Get("/health", taskHandler.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		if a.config.Server.RateLimitRPM > 0 {
			r.Use(middleware.RateLimit(a.config.Server.RateLimitRPM))
		}

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register) // POST /api/auth/register
			r.Post("/login", authHandler.Login)       // POST /api/auth/login
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(a.tokens))

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", taskHandler.ListTasks)   // GET /api/tasks
				r.Post("/", taskHandler.CreateTask) // POST /api/tasks

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", taskHandler.GetTask)       // GET /api/tasks/{id}
					r.Put("/", taskHandler.UpdateTask)    // PUT /api/tasks/{id}
					r.Delete("/", taskHandler.DeleteTask) // DELETE /api/tasks/{id}
				})
			})

			r.Route("/analytics", func(r chi.Router) {
				r.Get("/dashboard", analyticsHandler.Dashboard) // GET /api/analytics/dashboard
				r.Get("/trends", analyticsHandler.Trends)       // GET /api/analytics/trends
			})
		})
	})

	return r
}
