// Package httpapi exposes search, export and stats over HTTP with API-key
// authentication and a per-request wall-clock deadline.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"poursuite/internal/catalog"
	"poursuite/internal/config"
	"poursuite/internal/export"
	"poursuite/internal/logging"
	"poursuite/internal/search"
)

// Server wires the search engine and catalog into an HTTP handler.
type Server struct {
	engine  *search.Engine
	catalog *catalog.Catalog
	cfg     *config.Config
	logger  *zap.Logger

	// metricsHandler serves GET /metrics; nil disables the endpoint.
	metricsHandler http.Handler

	// audit records search and export requests; nil disables auditing.
	audit *logging.AuditTrail
}

// NewServer builds the API server. metricsHandler may be nil.
func NewServer(engine *search.Engine, cat *catalog.Catalog, cfg *config.Config, logger *zap.Logger, metricsHandler http.Handler) *Server {
	return &Server{
		engine:         engine,
		catalog:        cat,
		cfg:            cfg,
		logger:         logger,
		metricsHandler: metricsHandler,
	}
}

// WithAudit enables the audit trail and returns the server for chaining.
func (s *Server) WithAudit(trail *logging.AuditTrail) *Server {
	s.audit = trail
	return s
}

// Router assembles the chi router with logging, recovery and auth.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(APIKeyMiddleware(s.cfg.HTTP.APIKey))

	r.Get("/health", s.handleHealth)
	if s.metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", s.metricsHandler)
	}
	r.Get("/search", s.handleSearch)
	r.Get("/search/export", s.handleExport)
	r.Get("/stats", s.handleStats)
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqLogger := s.logger.With(
			zap.String("request_id", middleware.GetReqID(r.Context())))
		r = r.WithContext(logging.WithContext(r.Context(), reqLogger))

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		reqLogger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)))
	})
}

// --- response shapes -------------------------------------------------------

type mentionResult struct {
	DocumentDate string `json:"document_date"`
	DBID         string `json:"db_id"`
	FilePath     string `json:"file_path"`
	Content      string `json:"content"`
}

type processResult struct {
	ProcessNumber string          `json:"process_number"`
	MentionCount  int             `json:"mention_count"`
	Mentions      []mentionResult `json:"mentions"`
}

type searchResponse struct {
	TotalProcesses int             `json:"total_processes"`
	Page           int             `json:"page"`
	PageSize       int             `json:"page_size"`
	Truncated      bool            `json:"truncated"`
	Results        []processResult `json:"results"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// --- handlers --------------------------------------------------------------

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Stats())
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	params, err := s.parseParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := s.runSearch(r, params)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.auditRequest("search", params, page)
	if page.Truncated {
		w.Header().Set("X-Truncated", "true")
	}
	writeJSON(w, http.StatusOK, toSearchResponse(page))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	params, err := s.parseParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	includeSummary := r.URL.Query().Get("include_summary") == "true"

	page, err := s.runSearch(r, params)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.auditRequest("export", params, page)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=search_results.csv")
	if page.Truncated {
		w.Header().Set("X-Truncated", "true")
	}

	var fields []export.Field
	if includeSummary {
		fields = []export.Field{
			{Name: "Keywords", Value: params.Keywords},
			{Name: "Process Number", Value: params.ProcessNumber},
			{Name: "Start Date", Value: params.StartDate},
			{Name: "End Date", Value: params.EndDate},
			{Name: "Exclusion Terms", Value: params.ExclusionTerms},
		}
	}
	if err := export.Write(w, page.Results, includeSummary, fields); err != nil {
		// Headers are already gone; the truncated file is the client's signal.
		logging.FromContext(r.Context()).Error("csv export failed mid-stream", zap.Error(err))
	}
}

// runSearch applies the configured wall-clock deadline and executes the
// search. The request context is detached so a client disconnect does not
// cancel shard queries that are already running.
func (s *Server) runSearch(r *http.Request, params search.Params) (search.Page, error) {
	params.Deadline = time.Now().Add(s.cfg.Search.Timeout)
	return s.engine.Search(context.WithoutCancel(r.Context()), params)
}

func (s *Server) auditRequest(action string, params search.Params, page search.Page) {
	s.audit.Record(action, map[string]any{
		"keywords":        params.Keywords,
		"process_number":  params.ProcessNumber,
		"start_date":      params.StartDate,
		"end_date":        params.EndDate,
		"page":            page.PageNum,
		"total_processes": page.TotalProcesses,
		"truncated":       page.Truncated,
	})
}

func (s *Server) parseParams(r *http.Request) (search.Params, error) {
	q := r.URL.Query()
	params := search.Params{
		Keywords:       q.Get("keywords"),
		ProcessNumber:  q.Get("process_number"),
		StartDate:      q.Get("start_date"),
		EndDate:        q.Get("end_date"),
		ExclusionTerms: q.Get("exclusion_terms"),
		Page:           1,
		PageSize:       s.cfg.Search.DefaultPageSize,
	}

	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return params, fmt.Errorf("page must be a positive integer, got %q", v)
		}
		params.Page = n
	}
	if v := q.Get("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > s.cfg.Search.MaxPageSize {
			return params, fmt.Errorf("page_size must be in [1, %d], got %q",
				s.cfg.Search.MaxPageSize, v)
		}
		params.PageSize = n
	}
	return params, nil
}

func toSearchResponse(page search.Page) searchResponse {
	resp := searchResponse{
		TotalProcesses: page.TotalProcesses,
		Page:           page.PageNum,
		PageSize:       page.PageSize,
		Truncated:      page.Truncated,
		Results:        make([]processResult, 0, len(page.Results)),
	}
	for _, group := range page.Results {
		pr := processResult{
			ProcessNumber: group.ProcessNumber,
			MentionCount:  len(group.Mentions),
			Mentions:      make([]mentionResult, 0, len(group.Mentions)),
		}
		for _, m := range group.Mentions {
			pr.Mentions = append(pr.Mentions, mentionResult{
				DocumentDate: m.DocumentDate,
				DBID:         m.ShardID,
				FilePath:     m.FilePath,
				Content:      m.Content,
			})
		}
		resp.Results = append(resp.Results, pr)
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
