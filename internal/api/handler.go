// Package api implements the finscope REST API.
// It scores statement bundles and serves stored reports from Postgres.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/finscope/finscope/internal/reports"
	"github.com/finscope/finscope/internal/store"
	"github.com/finscope/finscope/internal/summary"
	"github.com/finscope/finscope/pkg/scoring"
)

// ReportStore is the report persistence the handler depends on.
type ReportStore interface {
	Insert(ctx context.Context, report *scoring.Report) error
	Get(ctx context.Context, id string) (*scoring.Report, error)
	ListByTicker(ctx context.Context, ticker string, limit int) ([]reports.Summary, error)
}

// Options carries the optional collaborators of a Handler.
type Options struct {
	// Archive keeps a blob copy of every scored bundle and report.
	Archive *store.Archive
	// Summarizer serves ?summarize=true requests.
	Summarizer summary.Summarizer
	// Ping reports database health for /healthz.
	Ping func(ctx context.Context) error
}

// Handler is the top-level API handler for the finscope service.
type Handler struct {
	engine     *scoring.Engine
	reports    ReportStore
	archive    *store.Archive
	summarizer summary.Summarizer
	ping       func(ctx context.Context) error
	cache      *ReportCache
}

// NewHandler creates a new API handler. reports may be nil, in which case
// scored reports are returned but not persisted.
func NewHandler(engine *scoring.Engine, reports ReportStore, cache *ReportCache, opts Options) *Handler {
	if cache == nil {
		cache = NewReportCache(0)
	}
	return &Handler{
		engine:     engine,
		reports:    reports,
		archive:    opts.Archive,
		summarizer: opts.Summarizer,
		ping:       opts.Ping,
		cache:      cache,
	}
}

// RegisterRoutes registers all API routes on the given ServeMux. Write
// endpoints are wrapped with auth.
func (h *Handler) RegisterRoutes(mux *http.ServeMux, auth func(http.Handler) http.Handler) {
	if auth == nil {
		auth = func(next http.Handler) http.Handler { return next }
	}

	// Write endpoints (auth-protected)
	mux.Handle("POST /api/v1/score", auth(http.HandlerFunc(h.handleScore)))

	// Read endpoints
	mux.HandleFunc("GET /api/v1/reports", h.handleListReports)
	mux.HandleFunc("GET /api/v1/reports/{reportID}", h.handleGetReport)
	mux.HandleFunc("GET /api/v1/models", h.handleListModels)
	mux.HandleFunc("GET /healthz", h.handleHealth)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
