package router

import (
	"shopstock-rest-api/internal/handler"
	"shopstock-rest-api/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler        *handler.Handler
	CatalogHandler *handler.CatalogHandler
	AdminHandler   *handler.AdminHandler
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Unified status endpoint for monitoring
	if cfg.Handler != nil {
		r.Get("/api/status", cfg.Handler.Status)
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check endpoints
		if cfg.Handler != nil {
			r.Get("/health", cfg.Handler.Health)
			r.Get("/ready", cfg.Handler.Ready)
		}

		// Catalog item endpoints
		if cfg.CatalogHandler != nil {
			r.Route("/items", func(r chi.Router) {
				r.Get("/", cfg.CatalogHandler.ListItems)
				r.Post("/", cfg.CatalogHandler.CreateItem)
				r.Post("/bulk", cfg.CatalogHandler.BulkCreateItems)
				r.Route("/{product_id}", func(r chi.Router) {
					r.Get("/", cfg.CatalogHandler.GetItem)
					r.Put("/", cfg.CatalogHandler.UpdateItem)
					r.Delete("/", cfg.CatalogHandler.DeleteItem)
				})
			})
		}

		// Admin endpoints
		if cfg.AdminHandler != nil {
			r.Route("/admin", func(r chi.Router) {
				r.Get("/stats", cfg.AdminHandler.GetStats)
				r.Get("/health", cfg.AdminHandler.GetHealth)
			})
		}
	})

	return r
}
