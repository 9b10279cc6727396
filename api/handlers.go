package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/prasetyowira/qrstudio/constant"
	"github.com/prasetyowira/qrstudio/domain/export"
	"github.com/prasetyowira/qrstudio/domain/session"
	"github.com/prasetyowira/qrstudio/domain/style"
	"github.com/prasetyowira/qrstudio/infrastructure/cache"
	appLogger "github.com/prasetyowira/qrstudio/infrastructure/logger"
)

// Exporter runs the export pipeline
type Exporter interface {
	Preview(ctx context.Context, snap style.Snapshot) (*export.File, error)
	PreviewItems(ctx context.Context, snap style.Snapshot) []export.PreviewItem
	ExportSingle(ctx context.Context, snap style.Snapshot, n export.Notifier) (*export.File, export.Result, error)
	ExportBulk(ctx context.Context, snap style.Snapshot, n export.Notifier, guard *export.Guard) (*export.File, export.Result, error)
}

// SessionStore creates and finds sessions
type SessionStore interface {
	Create(ctx context.Context) *session.Session
	Get(ctx context.Context, id string) (*session.Session, error)
	Close(ctx context.Context, id string)
}

// JobLister lists recorded export jobs
type JobLister interface {
	List(ctx context.Context, limit int) ([]export.Result, error)
}

// StatsReporter reports cache usage
type StatsReporter interface {
	Stats() cache.Stats
}

// Handler contains service dependencies for API handlers
type Handler struct {
	exporter Exporter
	sessions SessionStore
	jobs     JobLister
	defaults style.Config
	caches   map[string]StatsReporter
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// NewHandler creates a new API handler. jobs may be nil when history is
// disabled.
func NewHandler(exporter Exporter, sessions SessionStore, jobs JobLister, defaults style.Config) *Handler {
	return &Handler{
		exporter: exporter,
		sessions: sessions,
		jobs:     jobs,
		defaults: defaults.Normalize(),
		caches:   make(map[string]StatsReporter),
	}
}

// ReportCache adds a cache to the stats route under name
func (h *Handler) ReportCache(name string, c StatsReporter) {
	if h.caches == nil {
		h.caches = make(map[string]StatsReporter)
	}
	h.caches[name] = c
}

// SingleRequest is the request object for the stateless single export
type SingleRequest struct {
	Value string            `json:"value"`
	Style style.DraftUpdate `json:"style"`
}

// BulkRequest is the request object for the stateless bulk export. Values
// wins over Text when both are set.
type BulkRequest struct {
	Text   string            `json:"text"`
	Values []string          `json:"values"`
	Style  style.DraftUpdate `json:"style"`
}

// JobsResponse is the response for the job history
type JobsResponse struct {
	Jobs []export.Result `json:"jobs"`
}

// StatsResponse is the response for the cache stats route
type StatsResponse struct {
	Caches map[string]cache.Stats `json:"caches"`
}

// styleFrom resolves a request style against the defaults the same way a
// session commits its draft
func (h *Handler) styleFrom(ctx context.Context, u style.DraftUpdate) style.Config {
	store := style.NewStore(h.defaults)
	store.UpdateDraft(u)
	return store.Apply(ctx)
}

// CreateQRCode handles the stateless single export
func (h *Handler) CreateQRCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req SingleRequest
	if !decode(w, r, constant.CtxCreateQRCode, &req) {
		return
	}
	if req.Value == "" {
		WriteJSONError(w, constant.ErrNoInputs, http.StatusUnprocessableEntity)
		return
	}

	snap := style.Snapshot{
		Config: h.styleFrom(ctx, req.Style),
		Mode:   style.ModeSingle,
		Single: req.Value,
	}
	file, res, err := h.exporter.ExportSingle(ctx, snap, nil)
	if err != nil {
		h.writeExportError(ctx, w, constant.CtxCreateQRCode, err)
		return
	}

	writeFile(w, file, res)
}

// CreateZip handles the stateless bulk export
func (h *Handler) CreateZip(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req BulkRequest
	if !decode(w, r, constant.CtxCreateZip, &req) {
		return
	}

	raw := req.Text
	if req.Values != nil {
		raw = strings.Join(req.Values, "\n")
	}
	snap := style.Snapshot{
		Config: h.styleFrom(ctx, req.Style),
		Mode:   style.ModeMulti,
		Inputs: style.SplitLines(raw),
	}

	file, res, err := h.exporter.ExportBulk(ctx, snap, nil, nil)
	if err != nil {
		h.writeExportError(ctx, w, constant.CtxCreateZip, err)
		return
	}

	writeFile(w, file, res)
}

// ListJobs handles the job history request
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.jobs == nil {
		WriteJSON(w, JobsResponse{Jobs: []export.Result{}}, http.StatusOK)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			WriteJSONError(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	jobs, err := h.jobs.List(ctx, limit)
	if err != nil {
		appLogger.CtxError(ctx, "Error listing jobs", appLogger.LoggerInfo{
			ContextFunction: constant.CtxGetJobs,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeAPIServiceError,
				Message: err.Error(),
				Type:    constant.ErrTypeAPI,
			},
		})
		WriteJSONError(w, "Failed to list jobs", http.StatusInternalServerError)
		return
	}

	WriteJSON(w, JobsResponse{Jobs: jobs}, http.StatusOK)
}

// GetStats reports size and hit counters of the registered caches
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	resp := StatsResponse{Caches: make(map[string]cache.Stats, len(h.caches))}
	for name, c := range h.caches {
		resp.Caches[name] = c.Stats()
	}

	appLogger.CtxDebug(r.Context(), "Reporting cache stats", appLogger.LoggerInfo{
		ContextFunction: constant.CtxGetStats,
		Data: map[string]interface{}{
			constant.DataCount: len(resp.Caches),
		},
	})

	WriteJSON(w, resp, http.StatusOK)
}

// decode reads the JSON body into v, writing a 400 on failure
func decode(w http.ResponseWriter, r *http.Request, fn string, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		appLogger.CtxError(r.Context(), "Error decoding request body", appLogger.LoggerInfo{
			ContextFunction: fn,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeAPIDecodeRequest,
				Message: err.Error(),
				Type:    constant.ErrTypeAPI,
			},
		})
		WriteJSONError(w, "Invalid request format", http.StatusBadRequest)
		return false
	}
	return true
}

// writeExportError maps pipeline errors to status codes
func (h *Handler) writeExportError(ctx context.Context, w http.ResponseWriter, fn string, err error) {
	switch {
	case errors.Is(err, export.ErrNoInputs):
		WriteJSONError(w, constant.ErrNoInputs, http.StatusUnprocessableEntity)
	case errors.Is(err, export.ErrJobInFlight):
		appLogger.CtxWarn(ctx, "Export rejected, job in flight", appLogger.LoggerInfo{
			ContextFunction: fn,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeAPIConflict,
				Message: err.Error(),
				Type:    constant.ErrTypeAPI,
			},
		})
		WriteJSONError(w, constant.ErrJobInFlight, http.StatusConflict)
	case errors.Is(err, export.ErrSymbolTooDense):
		WriteJSONError(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		appLogger.CtxError(ctx, "Export failed", appLogger.LoggerInfo{
			ContextFunction: fn,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeAPIServiceError,
				Message: err.Error(),
				Type:    constant.ErrTypeAPI,
			},
		})
		WriteJSONError(w, "Failed to export QR codes", http.StatusInternalServerError)
	}
}

// writeFile sends a finished download
func writeFile(w http.ResponseWriter, file *export.File, res export.Result) {
	w.Header().Set(constant.HeaderContentType, file.ContentType)
	w.Header().Set(constant.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.Name))
	if res.JobID != "" {
		w.Header().Set(constant.HeaderJobID, res.JobID)
		w.Header().Set(constant.HeaderItemsSucceeded, strconv.Itoa(res.Succeeded))
		w.Header().Set(constant.HeaderItemsSkipped, strconv.Itoa(res.Skipped))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Data)
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set(constant.HeaderContentType, constant.ContentTypeJSON)
	w.WriteHeader(statusCode)
	err := json.NewEncoder(w).Encode(data)
	if err != nil {
		return
	}
}

// WriteJSONError writes a JSON error response
func WriteJSONError(w http.ResponseWriter, message string, statusCode int) {
	WriteJSON(w, ErrorResponse{
		Error: message,
		Code:  statusCode,
	}, statusCode)
}
