package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/elonfeng/blogrank/internal/service"
	"github.com/elonfeng/blogrank/internal/store"
	"github.com/elonfeng/blogrank/pkg/rank"
)

// Server provides the HTTP API.
type Server struct {
	svc   *service.Service
	store store.Store
	port  int
}

// New creates a new HTTP server.
func New(svc *service.Service, st store.Store, port int) *Server {
	if port == 0 {
		port = 8080
	}
	return &Server{
		svc:   svc,
		store: st,
		port:  port,
	}
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/v1/analyze", s.handleAnalyze)
	mux.HandleFunc("/api/v1/score", s.handleScore)
	mux.HandleFunc("/api/v1/analyses", s.handleAnalyses)
	mux.HandleFunc("/api/v1/analyses/", s.handleAnalysisByID)
	mux.HandleFunc("/api/v1/history", s.handleHistory)
	return mux
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf(":%d", s.port)
	fmt.Printf("blogrank server listening on %s\n", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type analyzeRequest struct {
	BlogID  string `json:"blog_id"`
	Keyword string `json:"keyword"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json body"})
		return
	}
	if req.BlogID == "" || req.Keyword == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "blog_id and keyword are required"})
		return
	}

	result, err := s.svc.Analyze(r.Context(), req.BlogID, req.Keyword)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, rank.ErrInvalidInput) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": result})
}

type scoreRequest struct {
	BlogID string `json:"blog_id"`

	// Stats, when present, bypasses collection and scores the given
	// signals directly.
	Stats *rank.BlogStats `json:"stats"`
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json body"})
		return
	}

	var result *rank.CompositeScoreResult
	switch {
	case req.Stats != nil:
		if err := rank.ValidateStats(*req.Stats); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		scored := rank.Score(*req.Stats, nil)
		result = &scored
	case req.BlogID != "":
		var err error
		result, err = s.svc.Score(r.Context(), req.BlogID)
		if err != nil {
			status := http.StatusBadGateway
			if errors.Is(err, rank.ErrInvalidInput) {
				status = http.StatusBadRequest
			}
			writeJSON(w, status, map[string]string{"error": err.Error()})
			return
		}
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "blog_id or stats required"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": result})
}

func (s *Server) handleAnalyses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if s.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "persistence disabled"})
		return
	}

	opts := store.AnalysisListOpts{
		BlogID:  r.URL.Query().Get("blog_id"),
		Keyword: r.URL.Query().Get("keyword"),
		Limit:   50,
	}
	if since := r.URL.Query().Get("since"); since != "" {
		if t, err := time.Parse(time.RFC3339, since); err == nil {
			opts.Since = t
		}
	}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil && n > 0 {
			opts.Limit = n
		}
	}

	analyses, err := s.store.ListAnalyses(r.Context(), opts)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  analyses,
		"count": len(analyses),
	})
}

func (s *Server) handleAnalysisByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if s.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "persistence disabled"})
		return
	}

	id := r.URL.Path[len("/api/v1/analyses/"):]
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "analysis id required"})
		return
	}

	analysis, err := s.store.GetAnalysis(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "analysis not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": analysis})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if s.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "persistence disabled"})
		return
	}

	blogID := r.URL.Query().Get("blog_id")
	if blogID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "blog_id is required"})
		return
	}

	var since time.Time
	if v := r.URL.Query().Get("since"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			since = t
		}
	}

	snaps, err := s.store.GetScoreHistory(r.Context(), blogID, since)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  snaps,
		"count": len(snaps),
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
