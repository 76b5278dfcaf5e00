// Package api - Thin HTTP layer over the graph engine
// The API only ingests definitions, evaluates them and serializes reports.
// Every request gets its own store; nothing is shared between requests.
package api

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"factory-graph/adapters/hcl"
	"factory-graph/adapters/storage"
	"factory-graph/core/graph"
	"factory-graph/core/output"
	"factory-graph/internal/errors"
	"factory-graph/internal/logging"
)

// defaultSource names a submitted definition when the request doesn't
const defaultSource = "request.hcl"

// Server is the API server
type Server struct {
	mux     *http.ServeMux
	version string
	config  ServerConfig
	history storage.Store
	logger  *zap.Logger
}

// ServerConfig configures the API server
type ServerConfig struct {
	// DefaultStorage is given to items declared without a storage
	DefaultStorage int64

	// MaxBodyBytes caps the size of a submitted definition
	MaxBodyBytes int64
}

// NewServer creates a new API server (without report history)
func NewServer(version string, config ServerConfig) *Server {
	return NewServerWithHistory(version, config, nil)
}

// NewServerWithHistory creates a new API server that can save reports
func NewServerWithHistory(version string, config ServerConfig, history storage.Store) *Server {
	if config.MaxBodyBytes < 1 {
		config.MaxBodyBytes = 1 << 20
	}
	s := &Server{
		mux:     http.NewServeMux(),
		version: version,
		config:  config,
		history: history,
		logger:  logging.Named("api"),
	}

	s.registerRoutes()
	return s
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	// Core endpoints
	s.mux.HandleFunc("POST /solve", s.handleSolve)
	s.mux.HandleFunc("POST /check", s.handleCheck)
	s.mux.HandleFunc("POST /export", s.handleExport)
	s.mux.HandleFunc("GET /health", s.handleHealth)

	// Supporting endpoints
	s.mux.HandleFunc("GET /version", s.handleVersion)

	// History endpoints
	s.mux.HandleFunc("GET /snapshots", s.handleListSnapshots)
	s.mux.HandleFunc("GET /snapshots/{id}", s.handleGetSnapshot)
	s.mux.HandleFunc("DELETE /snapshots/{id}", s.handleDeleteSnapshot)
	s.mux.HandleFunc("GET /snapshots/{id}/compare/{other}", s.handleCompareSnapshots)
}

// CheckResponse is returned by POST /check
type CheckResponse struct {
	Source      string   `json:"source"`
	Fingerprint string   `json:"fingerprint"`
	Cyclic      bool     `json:"cyclic"`
	Cycle       []string `json:"cycle,omitempty"`
}

// OrderResponse is returned by POST /export?format=order
type OrderResponse struct {
	Source string   `json:"source"`
	Order  []string `json:"order"`
}

// SnapshotInfo summarizes a saved report in listings
type SnapshotInfo struct {
	ID          string           `json:"id"`
	Source      string           `json:"source"`
	Fingerprint string           `json:"fingerprint"`
	CreatedAt   time.Time        `json:"created_at"`
	Cyclic      bool             `json:"cyclic"`
	CycleProfit *decimal.Decimal `json:"cycle_profit,omitempty"`
}

// handleSolve handles POST /solve. With save=true the report is also
// written to the history and its ID returned in X-Snapshot-ID.
func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	save := r.URL.Query().Get("save") == "true"
	if save && !s.requireHistory(w) {
		return
	}

	source, store, ok := s.readStore(w, r)
	if !ok {
		return
	}

	report, err := output.BuildReport(source, store)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	if save {
		snap := storage.NewSnapshot(report)
		if err := s.history.Save(r.Context(), snap); err != nil {
			s.writeDomainError(w, err)
			return
		}
		w.Header().Set("X-Snapshot-ID", snap.ID)
	}
	s.writeJSON(w, report, http.StatusOK)
}

// handleListSnapshots handles GET /snapshots?source=&limit=
func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	if !s.requireHistory(w) {
		return
	}

	filter := &storage.ListFilter{Source: r.URL.Query().Get("source")}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			s.writeError(w, "INVALID_LIMIT", "limit must be a non-negative integer", nil, http.StatusBadRequest)
			return
		}
		filter.Limit = limit
	}

	snaps, err := s.history.List(r.Context(), filter)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	infos := make([]SnapshotInfo, 0, len(snaps))
	for _, snap := range snaps {
		infos = append(infos, SnapshotInfo{
			ID:          snap.ID,
			Source:      snap.Source,
			Fingerprint: snap.Fingerprint,
			CreatedAt:   snap.CreatedAt,
			Cyclic:      snap.Report.Cyclic,
			CycleProfit: snap.Report.Summary.CycleProfit,
		})
	}

	s.writeJSON(w, map[string]interface{}{
		"snapshots": infos,
		"count":     len(infos),
	}, http.StatusOK)
}

// handleGetSnapshot handles GET /snapshots/{id}
func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	if !s.requireHistory(w) {
		return
	}
	snap, err := s.history.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, snap, http.StatusOK)
}

// handleDeleteSnapshot handles DELETE /snapshots/{id}
func (s *Server) handleDeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	if !s.requireHistory(w) {
		return
	}
	if err := s.history.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleCompareSnapshots handles GET /snapshots/{id}/compare/{other}
func (s *Server) handleCompareSnapshots(w http.ResponseWriter, r *http.Request) {
	if !s.requireHistory(w) {
		return
	}
	c, err := storage.CompareIDs(r.Context(), s.history, r.PathValue("id"), r.PathValue("other"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, c, http.StatusOK)
}

func (s *Server) requireHistory(w http.ResponseWriter) bool {
	if s.history == nil {
		s.writeError(w, "HISTORY_DISABLED", "report history is not configured", nil, http.StatusServiceUnavailable)
		return false
	}
	return true
}

// handleCheck handles POST /check
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	source, store, ok := s.readStore(w, r)
	if !ok {
		return
	}

	cycle := graph.FindCycle(store)
	s.writeJSON(w, CheckResponse{
		Source:      source,
		Fingerprint: store.Fingerprint(),
		Cyclic:      cycle != nil,
		Cycle:       cycle,
	}, http.StatusOK)
}

// handleExport handles POST /export?format=dot|order
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "dot"
	}
	if format != "dot" && format != "order" {
		s.writeError(w, "UNKNOWN_FORMAT", "format must be dot or order", nil, http.StatusBadRequest)
		return
	}

	source, store, ok := s.readStore(w, r)
	if !ok {
		return
	}

	if format == "order" {
		order, err := graph.ProductionOrder(store)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		s.writeJSON(w, OrderResponse{Source: source, Order: order}, http.StatusOK)
		return
	}

	w.Header().Set("Content-Type", "text/vnd.graphviz")
	if err := graph.ToDOT(store, w); err != nil {
		s.logger.Error("failed to write DOT", zap.String("source", source), zap.Error(err))
	}
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]interface{}{
		"status":  "healthy",
		"version": s.version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

// handleVersion handles GET /version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{
		"version":     s.version,
		"engine":      "factory-graph",
		"api_version": "v1",
	}, http.StatusOK)
}

// readStore decodes the request body into a fresh store. On failure the
// error response has already been written.
func (s *Server) readStore(w http.ResponseWriter, r *http.Request) (string, *graph.Store, bool) {
	source := r.URL.Query().Get("source")
	if source == "" {
		source = defaultSource
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			s.writeError(w, "BODY_TOO_LARGE", err.Error(), nil, http.StatusRequestEntityTooLarge)
			return "", nil, false
		}
		s.writeError(w, "INVALID_BODY", err.Error(), nil, http.StatusBadRequest)
		return "", nil, false
	}

	store, err := hcl.ParseStore(body, source,
		graph.WithDefaultStorage(s.config.DefaultStorage),
		graph.WithLogger(s.logger.Named("store").With(zap.String("source", source))),
	)
	if err != nil {
		s.writeDomainError(w, err)
		return "", nil, false
	}
	return source, store, true
}

// statusFor maps a domain error type to an HTTP status
func statusFor(t errors.Type) int {
	switch t {
	case errors.TypeParsing, errors.TypeInput:
		return http.StatusBadRequest
	case errors.TypeDuplicateLabel, errors.TypeUnknownLabel:
		return http.StatusUnprocessableEntity
	case errors.TypeCyclicGraph:
		return http.StatusConflict
	case errors.TypeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	t := errors.TypeOf(err)
	var context map[string]interface{}
	var e *errors.Error
	if stderrors.As(err, &e) {
		context = e.Context
	}
	if t == errors.TypeInternal {
		s.logger.Error("request failed", zap.Error(err))
	}
	s.writeError(w, string(t), err.Error(), context, statusFor(t))
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, code, message string, context map[string]interface{}, status int) {
	body := map[string]interface{}{
		"code":    code,
		"message": message,
	}
	if len(context) > 0 {
		body["context"] = context
	}
	s.writeJSON(w, map[string]interface{}{"error": body}, status)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(rec, r)
	s.logger.Debug("request",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", rec.status),
		zap.Duration("duration", time.Since(start)),
	)
}

// ListenAndServe starts the server
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
