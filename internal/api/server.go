// Package api exposes the stored reports and an on-demand extraction
// endpoint over HTTP.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/reportclaw/reportclaw/internal/extract"
	"github.com/reportclaw/reportclaw/internal/pipeline"
	"github.com/reportclaw/reportclaw/internal/reflow"
	"github.com/reportclaw/reportclaw/internal/store"
)

// Config carries the server's own knobs.
type Config struct {
	APIKey         string
	MaxUploadBytes int64
	ReflowCfg      reflow.Config
}

// Server is the HTTP API server for reportclaw.
type Server struct {
	router    chi.Router
	db        *store.Store
	orch      *pipeline.Orchestrator
	extractor *extract.Extractor
	log       *slog.Logger
	cfg       Config
}

// NewServer creates and configures the HTTP server.
func NewServer(db *store.Store, orch *pipeline.Orchestrator, ext *extract.Extractor, log *slog.Logger, cfg Config) *Server {
	s := &Server{
		db:        db,
		orch:      orch,
		extractor: ext,
		log:       log,
		cfg:       cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/extract", s.handleExtract)
		r.Get("/api/reports", s.handleListReports)
		r.Get("/api/reports/{reportID}/mda", s.handleGetMDA)
		r.Get("/api/jobs", s.handleListJobs)
		r.Get("/api/jobs/{jobID}", s.handleGetJob)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
