package api

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/finscope/finscope/internal/reports"
	"github.com/finscope/finscope/internal/store"
	"github.com/finscope/finscope/internal/summary"
	"github.com/finscope/finscope/pkg/statement"
	"github.com/finscope/finscope/pkg/surface"
)

// maxBodyBytes caps a score request body, both as sent and after gzip
// decompression.
var maxBodyBytes int64 = 10 << 20

// handleScore handles POST /api/v1/score. The body is a statement bundle;
// ?summarize=true attaches a narrative summary when a summarizer is set.
func (h *Handler) handleScore(w http.ResponseWriter, r *http.Request) {
	var body io.Reader = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	// Support gzip-compressed request bodies
	if r.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(body)
		if err != nil {
			writeBodyError(w, "invalid gzip body", err)
			return
		}
		defer gz.Close()
		body = http.MaxBytesReader(w, gz, maxBodyBytes)
	}

	bundle, err := statement.Decode(body)
	if err != nil {
		writeBodyError(w, "invalid statement bundle", err)
		return
	}
	if bundle.Ticker == "" {
		writeError(w, http.StatusBadRequest, "ticker is required")
		return
	}
	if !statement.ValidTicker(bundle.Ticker) {
		writeError(w, http.StatusBadRequest, "invalid ticker: use letters, digits, dots or dashes (at most 16)")
		return
	}

	report, err := h.engine.Score(bundle)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "scoring failed: "+err.Error())
		return
	}

	ctx := r.Context()
	if summarize, _ := strconv.ParseBool(r.URL.Query().Get("summarize")); summarize {
		if h.summarizer == nil {
			report.SummaryError = "summaries are not configured"
		} else {
			summary.Attach(ctx, h.summarizer, report)
		}
	}

	if h.reports != nil {
		if err := h.reports.Insert(ctx, report); err != nil {
			zap.L().Error("store report", zap.String("ticker", report.Ticker), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to store report")
			return
		}
	}
	if h.archive != nil {
		if _, err := h.archive.SaveReport(ctx, report, bundle); err != nil {
			// The database row is authoritative; the blob copy is best effort.
			zap.L().Warn("archive report", zap.String("id", report.ID), zap.Error(err))
		}
	}
	if report.ID != "" {
		h.cache.Put(report.ID, report)
	}

	status := http.StatusOK
	if report.ID != "" {
		w.Header().Set("Location", "/api/v1/reports/"+report.ID)
		status = http.StatusCreated
	}
	writeJSON(w, status, report)
}

// handleGetReport handles GET /api/v1/reports/{reportID}. ?format selects
// json (default), markdown, html or text.
func (h *Handler) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("reportID")

	report := h.cache.Get(id)
	if report == nil {
		var err error
		switch {
		case h.reports != nil:
			report, err = h.reports.Get(r.Context(), id)
		case h.archive != nil:
			report, err = h.archive.LoadReport(r.Context(), id)
		default:
			err = reports.ErrNotFound
		}
		if errors.Is(err, reports.ErrNotFound) || errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "report not found")
			return
		}
		if err != nil {
			zap.L().Error("get report", zap.String("id", id), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to load report")
			return
		}
		h.cache.Put(id, report)
	}

	format := r.URL.Query().Get("format")
	if format == "" || format == surface.FormatJSON {
		writeJSON(w, http.StatusOK, report)
		return
	}
	renderer, err := surface.ForFormat(format)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.Header().Set("Content-Type", contentType(format))
	w.WriteHeader(http.StatusOK)
	if err := renderer.Render(w, report); err != nil {
		zap.L().Warn("render report", zap.String("id", id), zap.Error(err))
	}
}

// handleListReports handles GET /api/v1/reports?ticker=X&limit=N.
func (h *Handler) handleListReports(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("ticker")))
	if ticker == "" {
		writeError(w, http.StatusBadRequest, "ticker query parameter is required")
		return
	}
	if h.reports == nil {
		writeError(w, http.StatusServiceUnavailable, "report storage is not configured")
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 500 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	list, err := h.reports.ListByTicker(r.Context(), ticker, limit)
	if err != nil {
		zap.L().Error("list reports", zap.String("ticker", ticker), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list reports")
		return
	}
	if list == nil {
		list = []reports.Summary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ticker": ticker, "reports": list})
}

type modelInfo struct {
	Key        string   `json:"key"`
	Name       string   `json:"name"`
	Metrics    []string `json:"metrics"`
	Categories []string `json:"categories,omitempty"`
}

// handleListModels handles GET /api/v1/models.
func (h *Handler) handleListModels(w http.ResponseWriter, r *http.Request) {
	var out []modelInfo
	for _, m := range h.engine.Models() {
		info := modelInfo{Key: m.Key, Name: m.Name}
		for _, c := range m.Categories {
			info.Categories = append(info.Categories, c.Name)
		}
		for _, d := range m.Metrics {
			info.Metrics = append(info.Metrics, d.Name)
		}
		out = append(out, info)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.ping != nil {
		if err := h.ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unreachable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeBodyError answers 413 when the body hit maxBodyBytes and 400 for
// anything else wrong with it.
func writeBodyError(w http.ResponseWriter, msg string, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
		return
	}
	writeError(w, http.StatusBadRequest, msg+": "+err.Error())
}

func contentType(format string) string {
	switch format {
	case surface.FormatMarkdown, "md":
		return "text/markdown; charset=utf-8"
	case surface.FormatHTML:
		return "text/html; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

var _ ReportStore = (*reports.Repository)(nil)
