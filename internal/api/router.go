/**
 * @description
 * This file sets up the HTTP router for the finance service using the
 * go-chi/chi router. All functional routes sit behind the internal API key
 * middleware; only the health check is open.
 */
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new Chi router and registers the finance-service routes.
func NewRouter(h *Handler, internalAPIKey string) *chi.Mux {
	r := chi.NewRouter()

	// Setup middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Internal-Api-Key"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Finance service is healthy"))
	})

	// Internal routes protected by the shared API key
	r.Group(func(r chi.Router) {
		r.Use(InternalAuthMiddleware(internalAPIKey))

		r.Post("/internal/batch/run", h.handleRunBatch)
		r.Get("/internal/batch/last-run", h.handleLastRun)
		r.Post("/internal/contracts/{id}/schedule", h.handleGenerateSchedule)
		r.Get("/internal/properties/{id}/profitability", h.handlePropertyProfitability)
	})

	return r
}
