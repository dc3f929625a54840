package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/reportclaw/reportclaw/internal/parser"
	"github.com/reportclaw/reportclaw/internal/reflow"
	"github.com/reportclaw/reportclaw/internal/store"
)

// handleExtract runs the section extractor over an uploaded PDF without
// touching the database. Useful for spot-checking a single filing.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

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

	if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != ".pdf" {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", ext), http.StatusBadRequest)
		return
	}

	// The pdf reader needs a seekable file, so the upload lands on disk.
	tmp, err := os.CreateTemp("", "reportclaw-upload-*.pdf")
	if err != nil {
		jsonError(w, "failed to stage upload", http.StatusInternalServerError)
		return
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	n, err := io.Copy(tmp, io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	tmp.Close()
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if n > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	doc, err := parser.Open(tmpPath)
	if err != nil {
		jsonError(w, "failed to open pdf: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer doc.Close()

	res, ok := s.extractor.Extract(doc)
	if !ok {
		jsonError(w, "section three not found", http.StatusUnprocessableEntity)
		return
	}
	preview := res.ManagementOverview
	if preview == "" {
		preview = res.FullSection
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"pages":   doc.PageCount(),
		"result":  res,
		"preview": reflow.ReflowWith(preview, s.cfg.ReflowCfg),
	})
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	reports, err := s.db.ListReports(r.Context(), limit)
	if err != nil {
		s.log.Error("list reports failed", "error", err)
		jsonError(w, "query failed", http.StatusInternalServerError)
		return
	}
	if reports == nil {
		reports = []store.Report{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": reports})
}

func (s *Server) handleGetMDA(w http.ResponseWriter, r *http.Request) {
	reportID, err := strconv.ParseInt(chi.URLParam(r, "reportID"), 10, 64)
	if err != nil {
		jsonError(w, "invalid report id", http.StatusBadRequest)
		return
	}
	mda, err := s.db.GetMDA(r.Context(), reportID)
	if err != nil {
		s.log.Error("get mda failed", "report_id", reportID, "error", err)
		jsonError(w, "query failed", http.StatusInternalServerError)
		return
	}
	if mda == nil {
		jsonError(w, "no extraction for report", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, mda)
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"jobs":        s.orch.Jobs(),
		"queue_depth": s.orch.QueueDepth(),
	})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job := s.orch.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
