// Package server hosts the local preview of the generated site and
// rebuilds it as the content tree changes.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/stitchdocs/sitegen/internal/metrics"
)

// Server serves the output directory over HTTP for local preview.
type Server struct {
	Addr   string
	router *chi.Mux
	server *http.Server
}

// NewServer creates a preview server for the site rooted at outDir.
// When registry is non-nil, Prometheus metrics are exposed at /metrics.
func NewServer(addr, outDir string, registry *prometheus.Registry) *Server {
	s := &Server{
		Addr:   addr,
		router: chi.NewRouter(),
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/healthz", s.handleHealth)
	if registry != nil {
		s.router.Handle("/metrics", metrics.Handler(registry))
	}
	s.router.Handle("/*", http.FileServer(http.Dir(outDir)))

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the server and blocks until it stops.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}
