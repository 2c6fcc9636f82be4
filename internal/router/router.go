// Package router sets up the HTTP routes and middleware chains of the
// AutoBlog API. Everything under /api requires the API token; the
// generation endpoints are also rate limited.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"autoblog/internal/handlers"
	"autoblog/internal/middleware"
)

// New returns the configured router. limiter may be nil.
func New(api *handlers.API, auth *middleware.TokenAuth, limiter *middleware.RateLimiter) chi.Router {
	r := chi.NewRouter()

	// Global middleware applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	// Health check, no auth.
	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Use(auth.Require)

		// Generation costs upstream tokens, so it is rate limited.
		r.Group(func(r chi.Router) {
			if limiter != nil {
				r.Use(limiter.Middleware)
			}
			r.Post("/generate", api.Generate)
			r.Post("/generate/bulk", api.BulkGenerate)
			r.Post("/schedule/run", api.RunSchedule)
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", api.Posts)
			r.Get("/untracked", api.Untracked)
			r.Post("/{id}/publish", api.Publish)
			r.Delete("/{id}", api.Delete)
		})

		r.Get("/analytics", api.Analytics)
		r.Get("/analytics/export", api.Export)
		r.Get("/images/search", api.SearchImages)

		r.Get("/settings", api.Settings)
		r.Put("/settings", api.UpdateSettings)
		r.Post("/settings/test/{service}", api.TestConnection)

		r.Get("/schedule", api.Schedule)
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
