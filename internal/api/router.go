package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
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

	// Action dispatcher. All methods are routed into the handler so
	// non-POST requests get the 405 envelope instead of chi's default.
	r.HandleFunc(s.cfg.HookRoute(), s.handleHook)

	// Registry management API
	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Route("/devices", func(r chi.Router) {
				r.Get("/", s.handleListEntries)
				r.Put("/", s.handleUpsertEntry)
				r.Delete("/{varID}", s.handleDeleteEntry)
			})

			r.Get("/rooms", s.handleListRooms)
			r.Get("/audit", s.handleListAudit)
			r.Get("/history/{varID}", s.handleVariableHistory)
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
