package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/rwanda"
	"github.com/nerrad567/rwanda/internal/explorer"
	"github.com/nerrad567/rwanda/internal/metrics"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// Hierarchy explorer page (embedded via go:embed)
	r.Handle("/explorer/*", http.StripPrefix("/explorer", explorer.Handler(s.cfg.ExplorerDir)))
	r.Handle("/explorer", http.RedirectHandler("/explorer/", http.StatusMovedPermanently))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/stats", s.handleStats)
		r.Handle("/metrics", metrics.Handler(s.gatherer))

		r.Get("/provinces", s.handleNames(rwanda.LevelProvince))
		r.Get("/districts", s.handleNames(rwanda.LevelDistrict))
		r.Get("/sectors", s.handleNames(rwanda.LevelSector))
		r.Get("/cells", s.handleNames(rwanda.LevelCell))
		r.Get("/villages", s.handleNames(rwanda.LevelVillage))

		r.Route("/locations", func(r chi.Router) {
			r.Get("/", s.handleListLocations)
			r.Get("/search", s.handleSearch)
			r.Get("/{code}", s.handleGetLocation)
			r.Get("/{code}/children", s.handleListChildren)
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
