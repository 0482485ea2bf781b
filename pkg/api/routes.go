package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// buildRouter constructs the chi router with all routes and middleware.
func (s *server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chimw.Recoverer)
	r.Use(s.requestLogger)
	r.Use(s.corsMiddleware())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/status", s.handleStatus)

		r.Get("/projects", s.handleListProjects)
		r.Get("/runs/pd", s.handleListPDRuns)
		r.Get("/runs/dv", s.handleListDVRuns)

		// Manual sweep of the inbound directory. Rate limited: each call
		// walks the directory and hits the database per pending row.
		r.Group(func(r chi.Router) {
			if s.cfg.RateLimit.Enabled {
				r.Use(s.rateLimitMiddleware(s.cfg.RateLimit))
			}

			r.Post("/ingest", s.handleIngest)
		})
	})

	return r
}

// corsMiddleware builds the CORS middleware from configured origins.
func (s *server) corsMiddleware() func(http.Handler) http.Handler {
	origins := s.cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	})
}
