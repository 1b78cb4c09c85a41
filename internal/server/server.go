// Package server exposes the render pipeline and graph store over HTTP.
//
// Routes:
//
//	GET  /healthz                                     liveness probe
//	POST /api/render                                  render an inline snapshot
//	POST /api/graphs                                  store a snapshot
//	GET  /api/graphs                                  list stored graphs
//	GET  /api/graphs/{id}                             fetch a stored graph
//	DELETE /api/graphs/{id}                           delete a stored graph
//	POST /api/graphs/{id}/render                      render a stored graph
//	POST /api/graphs/{id}/containers/{cid}/toggle     toggle collapse state
//
// Per-viewer collapse state lives in sessions, identified by the
// X-Session-ID header. The toggle endpoint creates a session on first use
// and returns its ID; subsequent renders with that header see the viewer's
// collapse overrides without mutating the stored snapshot.
package server

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/flowscope/flowscope/pkg/observability"
	"github.com/flowscope/flowscope/pkg/pipeline"
	"github.com/flowscope/flowscope/pkg/session"
	"github.com/flowscope/flowscope/pkg/store"
)

// SessionHeader carries the viewer's session ID.
const SessionHeader = "X-Session-ID"

// Config wires the server's collaborators.
type Config struct {
	Store    store.Store
	Sessions session.Store
	Runner   *pipeline.Runner
	Logger   *log.Logger
}

// Server holds the chi router and the wired collaborators.
type Server struct {
	router   chi.Router
	store    store.Store
	sessions session.Store
	runner   *pipeline.Runner
	logger   *log.Logger
}

// NewServer creates a Server with all routes configured.
func NewServer(cfg Config) *Server {
	s := &Server{
		store:    cfg.Store,
		sessions: cfg.Sessions,
		runner:   cfg.Runner,
		logger:   cfg.Logger,
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.sessions == nil {
		s.sessions = session.NewMemoryStore()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/render", s.handleRender)

		r.Route("/graphs", func(r chi.Router) {
			r.Post("/", s.handleCreateGraph)
			r.Get("/", s.handleListGraphs)
			r.Get("/{id}", s.handleGetGraph)
			r.Delete("/{id}", s.handleDeleteGraph)
			r.Post("/{id}/render", s.handleRenderGraph)
			r.Post("/{id}/containers/{containerID}/toggle", s.handleToggle)
		})
	})

	s.router = r
	return s
}

// ServeHTTP implements the http.Handler interface, delegating to the chi router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// logRequests emits one structured record per request and feeds the
// observability hooks.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		observability.Server().OnRequest(r.Context(), r.Method, r.URL.Path)
		next.ServeHTTP(ww, r)

		duration := time.Since(start)
		observability.Server().OnResponse(r.Context(), r.Method, r.URL.Path, ww.Status(), duration)
		s.logger.Info("request",
			"id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", duration)
	})
}
