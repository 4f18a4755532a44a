package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/hitrax/qagen/internal/dataset"
	"github.com/hitrax/qagen/internal/document"
	"github.com/hitrax/qagen/internal/generate"
	"github.com/hitrax/qagen/internal/pipeline"
)

func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		s.sess.LoadDocument(nil)
		jsonError(w, fmt.Sprintf("unsupported file type: %s (only .pdf)", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	doc, err := document.OpenPDF(filename, data)
	if err != nil {
		s.sess.LoadDocument(nil)
		jsonError(w, "unreadable PDF: "+err.Error(), http.StatusBadRequest)
		return
	}

	s.sess.LoadDocument(doc)
	s.log.Info("document loaded", "name", filename, "pages", doc.PageCount())

	writeJSON(w, http.StatusOK, map[string]any{
		"name":        doc.Name(),
		"page_count":  doc.PageCount(),
		"has_outline": hasOutline(doc),
	})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc := s.sess.Document()
	if doc == nil {
		jsonError(w, "no document loaded", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"name":        doc.Name(),
		"page_count":  doc.PageCount(),
		"has_outline": hasOutline(doc),
	})
}

func (s *Server) handleListChunks(w http.ResponseWriter, r *http.Request) {
	chunks := s.sess.Chunks()
	type chunkInfo struct {
		ID           int    `json:"id"`
		StartPage    int    `json:"start_page"`
		EndPage      int    `json:"end_page"`
		ContextTitle string `json:"context_title,omitempty"`
		PairCount    int    `json:"pair_count"`
		Generated    bool   `json:"generated"`
	}
	out := make([]chunkInfo, 0, len(chunks))
	for _, c := range chunks {
		pairs, ok := s.sess.Store().Get(c.ID)
		out = append(out, chunkInfo{
			ID:           c.ID,
			StartPage:    c.StartPage,
			EndPage:      c.EndPage,
			ContextTitle: c.ContextTitle,
			PairCount:    len(pairs),
			Generated:    ok,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"chunks": out})
}

func (s *Server) handleAddChunk(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StartPage    int    `json:"start_page"`
		EndPage      int    `json:"end_page"`
		ContextTitle string `json:"context_title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	chunk, err := s.sess.AddChunk(req.StartPage, req.EndPage, req.ContextTitle)
	if err != nil {
		jsonError(w, err.Error(), statusFor(err))
		return
	}
	writeJSON(w, http.StatusCreated, chunk)
}

func (s *Server) handleAutoSplit(w http.ResponseWriter, r *http.Request) {
	chunks, err := s.sess.AutoSplit(s.cfg.MaxPagesPerChunk)
	if err != nil {
		jsonError(w, err.Error(), statusFor(err))
		return
	}
	s.log.Info("auto-split complete", "chunks", len(chunks))
	writeJSON(w, http.StatusOK, map[string]any{"chunks": chunks})
}

func (s *Server) handleDeleteChunk(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "chunkID"))
	if err != nil {
		jsonError(w, "invalid chunk id", http.StatusBadRequest)
		return
	}
	if !s.sess.DeleteChunk(id) {
		jsonError(w, fmt.Sprintf("chunk %d not found", id), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGenerateChunk(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "chunkID"))
	if err != nil {
		jsonError(w, "invalid chunk id", http.StatusBadRequest)
		return
	}
	pairs, err := s.orch.GenerateOne(r.Context(), s.sess, id)
	if err != nil {
		jsonError(w, err.Error(), statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"chunk_id": id, "pairs": pairs})
}

func (s *Server) handleGenerateAll(w http.ResponseWriter, r *http.Request) {
	if s.sess.Document() == nil {
		jsonError(w, pipeline.ErrNoDocument.Error(), http.StatusNotFound)
		return
	}
	if len(s.sess.Chunks()) == 0 {
		jsonError(w, "no chunks to generate", http.StatusBadRequest)
		return
	}
	if run := s.sess.Run(); run.Running {
		jsonError(w, pipeline.ErrBusy.Error(), http.StatusConflict)
		return
	}

	// The batch outlives the request; poll /api/progress for status.
	go func() {
		if err := s.orch.RunAll(context.Background(), s.sess, nil); err != nil {
			s.log.Error("batch run failed", "error", err)
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]any{
		"total":    len(s.sess.Chunks()),
		"poll_url": "/api/progress",
	})
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sess.Run())
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if s.sess.Store().PairCount() == 0 {
		jsonError(w, "nothing to export: no generated pairs", http.StatusNotFound)
		return
	}
	out, err := dataset.Export(s.sess.Chunks(), s.sess.Store())
	if err != nil {
		jsonError(w, "export failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", dataset.ExportFilename))
	w.Write(out)
}

func (s *Server) handleLLMStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.client.Stats().Snapshot())
}

// statusFor maps session and generation errors to HTTP statuses.
func statusFor(err error) int {
	var genErr *generate.GenerationError
	switch {
	case errors.Is(err, pipeline.ErrNoDocument):
		return http.StatusNotFound
	case errors.Is(err, pipeline.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, pipeline.ErrNoOutline):
		return http.StatusUnprocessableEntity
	case errors.As(err, &genErr):
		switch genErr.Class {
		case generate.ClassAuthDenied, generate.ClassLocation:
			return http.StatusForbidden
		case generate.ClassRateLimited:
			return http.StatusTooManyRequests
		default:
			return http.StatusBadGateway
		}
	default:
		return http.StatusBadRequest
	}
}

// hasOutline reports whether the document carries a readable outline.
func hasOutline(doc document.Document) bool {
	nodes, err := doc.Outline()
	return err == nil && len(nodes) > 0
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "")
	if name == "" || name == "." {
		name = "upload.pdf"
	}
	return name
}
