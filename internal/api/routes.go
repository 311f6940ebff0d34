package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures all API routes.
func SetupRoutes(h *Handlers) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	// Health check (no auth required)
	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Get("/providers", h.ListProviders)
		r.Get("/providers/configured", h.ListConfiguredProviders)

		r.Route("/domains/{domainID}", func(r chi.Router) {
			r.Post("/queue", h.QueueDomain)
			r.Post("/actions", h.EnqueueAction)
			r.Get("/coverage", h.GetCoverage)
			r.Get("/submissions", h.ListSubmissions)
		})

		r.Post("/queue/drain", h.DrainQueue)

		r.Route("/batches", func(r chi.Router) {
			r.Get("/", h.ListBatches)
			r.Get("/{batchID}", h.GetBatch)
			r.Post("/{batchID}/cancel", h.CancelBatch)
		})
	})

	return r
}
