package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hitrax/qagen/internal/config"
	"github.com/hitrax/qagen/internal/generate"
	"github.com/hitrax/qagen/internal/pipeline"
)

// Server is the localhost HTTP surface over a single document session. It is
// the Go counterpart of the original single-page tool: one user, one session,
// nothing persisted past the process.
type Server struct {
	router chi.Router
	sess   *pipeline.Session
	orch   *pipeline.Orchestrator
	client *generate.Client
	log    *slog.Logger
	cfg    config.Config
}

func NewServer(sess *pipeline.Session, orch *pipeline.Orchestrator, client *generate.Client, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		sess:   sess,
		orch:   orch,
		client: client,
		log:    log,
		cfg:    cfg,
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

	r.Get("/health", s.handleHealth)

	r.Post("/api/document", s.handleUploadDocument)
	r.Get("/api/document", s.handleGetDocument)

	r.Get("/api/chunks", s.handleListChunks)
	r.Post("/api/chunks", s.handleAddChunk)
	r.Post("/api/chunks/autosplit", s.handleAutoSplit)
	r.Delete("/api/chunks/{chunkID}", s.handleDeleteChunk)
	r.Post("/api/chunks/{chunkID}/generate", s.handleGenerateChunk)

	r.Post("/api/generate-all", s.handleGenerateAll)
	r.Get("/api/progress", s.handleProgress)

	r.Get("/api/export", s.handleExport)
	r.Get("/api/preview", s.handlePreview)
	r.Get("/api/stats/llm", s.handleLLMStats)

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
