package api

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finscope/finscope/internal/reports"
	"github.com/finscope/finscope/internal/store"
	"github.com/finscope/finscope/internal/summary"
	"github.com/finscope/finscope/pkg/scoring"
)

// memStore is an in-memory ReportStore.
type memStore struct {
	mu      sync.Mutex
	reports map[string]*scoring.Report
	gets    int
	failAll bool
}

func newMemStore() *memStore {
	return &memStore{reports: map[string]*scoring.Report{}}
}

func (m *memStore) Insert(_ context.Context, r *scoring.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return errors.New("db down")
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	m.reports[r.ID] = r
	return nil
}

func (m *memStore) Get(_ context.Context, id string) (*scoring.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	r, ok := m.reports[id]
	if !ok {
		return nil, reports.ErrNotFound
	}
	return r, nil
}

func (m *memStore) ListByTicker(_ context.Context, ticker string, limit int) ([]reports.Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []reports.Summary
	for _, r := range m.reports {
		if r.Ticker == ticker && len(out) < limit {
			out = append(out, reports.Summary{ID: r.ID, Ticker: r.Ticker, Recommendation: r.Recommendation})
		}
	}
	return out, nil
}

func newTestServer(t *testing.T, repo ReportStore, opts Options, apiKey string) *httptest.Server {
	t.Helper()
	engine := scoring.NewEngine(scoring.DefaultModels(scoring.Defaults())...)
	h := NewHandler(engine, repo, NewReportCache(4), opts)
	mux := http.NewServeMux()
	h.RegisterRoutes(mux, APIKeyAuth(apiKey))
	srv := httptest.NewServer(CORS(mux))
	t.Cleanup(srv.Close)
	return srv
}

func fixture(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile("../../testdata/acme.json")
	require.NoError(t, err)
	return data
}

func postScore(t *testing.T, srv *httptest.Server, query string, body []byte, header http.Header) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/score"+query, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeReport(t *testing.T, resp *http.Response) scoring.Report {
	t.Helper()
	var r scoring.Report
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&r))
	return r
}

func TestScore_PersistsAndCaches(t *testing.T) {
	repo := newMemStore()
	srv := newTestServer(t, repo, Options{}, "")

	resp := postScore(t, srv, "", fixture(t), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	report := decodeReport(t, resp)
	assert.Equal(t, "ACME", report.Ticker)
	assert.NotEmpty(t, report.ID)
	assert.Equal(t, "/api/v1/reports/"+report.ID, resp.Header.Get("Location"))
	require.Len(t, report.Models, 3)
	assert.Equal(t, scoring.RecommendHold, report.Recommendation)
	assert.Len(t, repo.reports, 1)

	// Served from cache without touching the store.
	get, err := http.Get(srv.URL + "/api/v1/reports/" + report.ID)
	require.NoError(t, err)
	defer get.Body.Close()
	assert.Equal(t, http.StatusOK, get.StatusCode)
	assert.Equal(t, 0, repo.gets)
}

func TestScore_WithoutStore(t *testing.T) {
	srv := newTestServer(t, nil, Options{}, "")

	resp := postScore(t, srv, "", fixture(t), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	report := decodeReport(t, resp)
	assert.Empty(t, report.ID)
}

func TestScore_Archive(t *testing.T) {
	dir := t.TempDir()
	archive := store.NewArchive(store.NewLocalStorage(dir))
	srv := newTestServer(t, newMemStore(), Options{Archive: archive}, "")

	resp := postScore(t, srv, "", fixture(t), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	report := decodeReport(t, resp)

	saved, err := archive.LoadReport(context.Background(), report.ID)
	require.NoError(t, err)
	assert.Equal(t, "ACME", saved.Ticker)
	_, err = archive.LoadBundle(context.Background(), "ACME", report.ID)
	assert.NoError(t, err)
}

func TestScore_Gzip(t *testing.T) {
	srv := newTestServer(t, nil, Options{}, "")

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write(fixture(t))
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	resp := postScore(t, srv, "", buf.Bytes(), http.Header{"Content-Encoding": {"gzip"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestScore_BadRequests(t *testing.T) {
	srv := newTestServer(t, nil, Options{}, "")

	tests := []struct {
		name string
		body string
	}{
		{"not json", "{{"},
		{"no ticker", `{"balance_sheet": []}`},
		{"bad date", `{"ticker": "X", "balance_sheet": [{"date": "someday", "Cash": 1}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postScore(t, srv, "", []byte(tt.body), nil)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestScore_StoreFailure(t *testing.T) {
	repo := newMemStore()
	repo.failAll = true
	srv := newTestServer(t, repo, Options{}, "")

	resp := postScore(t, srv, "", fixture(t), nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestScore_Summarize(t *testing.T) {
	sum := &summary.Static{Text: "Healthy margins."}
	srv := newTestServer(t, nil, Options{Summarizer: sum}, "")

	resp := postScore(t, srv, "?summarize=true", fixture(t), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	report := decodeReport(t, resp)
	assert.Equal(t, "Healthy margins.", report.Summary)
	require.Len(t, sum.Prompts, 1)

	// Without a summarizer the request still succeeds.
	srv = newTestServer(t, nil, Options{}, "")
	resp = postScore(t, srv, "?summarize=true", fixture(t), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	report = decodeReport(t, resp)
	assert.Empty(t, report.Summary)
	assert.NotEmpty(t, report.SummaryError)
}

func TestScore_RequiresAPIKey(t *testing.T) {
	srv := newTestServer(t, nil, Options{}, "s3cret")

	resp := postScore(t, srv, "", fixture(t), nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = postScore(t, srv, "", fixture(t), http.Header{"X-Api-Key": {"s3cret"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Reads stay open.
	get, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer get.Body.Close()
	assert.Equal(t, http.StatusOK, get.StatusCode)
}

func TestGetReport(t *testing.T) {
	repo := newMemStore()
	id := uuid.NewString()
	repo.reports[id] = &scoring.Report{ID: id, Ticker: "ACME", Recommendation: scoring.RecommendBuy,
		Models: []scoring.ModelResult{{Model: scoring.ModelBuffett, Name: "Buffett", Score: 8}}}
	srv := newTestServer(t, repo, Options{}, "")

	t.Run("json from store", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/v1/reports/" + id)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "BUY", string(decodeReport(t, resp).Recommendation))
	})

	t.Run("markdown", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/v1/reports/" + id + "?format=markdown")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/markdown"))
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		assert.Contains(t, buf.String(), "# ACME financial scores")
	})

	t.Run("unknown format", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/v1/reports/" + id + "?format=pdf")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("not found", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/v1/reports/" + uuid.NewString())
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestListReports(t *testing.T) {
	repo := newMemStore()
	srv := newTestServer(t, repo, Options{}, "")
	postScore(t, srv, "", fixture(t), nil)

	resp, err := http.Get(srv.URL + "/api/v1/reports?ticker=ACME")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Ticker  string            `json:"ticker"`
		Reports []reports.Summary `json:"reports"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ACME", body.Ticker)
	assert.Len(t, body.Reports, 1)

	for _, q := range []string{"", "?ticker=ACME&limit=0", "?ticker=ACME&limit=abc"} {
		resp, err := http.Get(srv.URL + "/api/v1/reports" + q)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
	}
}

func TestListModels(t *testing.T) {
	srv := newTestServer(t, nil, Options{}, "")

	resp, err := http.Get(srv.URL + "/api/v1/models")
	require.NoError(t, err)
	defer resp.Body.Close()

	var models []modelInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&models))
	require.Len(t, models, 3)
	assert.Equal(t, scoring.ModelFinancialHealth, models[0].Key)
	assert.Len(t, models[2].Metrics, scoring.LynchMetricCount)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, nil, Options{Ping: func(context.Context) error { return errors.New("down") }}, "")

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, nil, Options{}, "")

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/v1/score", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestGetReport_ArchiveOnly(t *testing.T) {
	archive := store.NewArchive(store.NewLocalStorage(t.TempDir()))
	srv := newTestServer(t, nil, Options{Archive: archive}, "")

	resp := postScore(t, srv, "", fixture(t), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := decodeReport(t, resp).ID

	// A fresh handler has an empty cache and must read the archive.
	srv = newTestServer(t, nil, Options{Archive: archive}, "")
	get, err := http.Get(srv.URL + "/api/v1/reports/" + id)
	require.NoError(t, err)
	defer get.Body.Close()
	assert.Equal(t, http.StatusOK, get.StatusCode)
	assert.Equal(t, "ACME", decodeReport(t, get).Ticker)
}

func TestScore_RejectsUnsafeTicker(t *testing.T) {
	root := t.TempDir()
	base := filepath.Join(root, "a", "b", "reports")
	archive := store.NewArchive(store.NewLocalStorage(base))
	srv := newTestServer(t, nil, Options{Archive: archive}, "")

	for _, ticker := range []string{"../../../escaped", "ACME/../../X", "..", "A B"} {
		body := fmt.Sprintf(`{"ticker": %q, "balance_sheet": []}`, ticker)
		resp := postScore(t, srv, "", []byte(body), nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, ticker)
	}

	var written []string
	require.NoError(t, filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			written = append(written, path)
		}
		return err
	}))
	assert.Empty(t, written)
}

func TestScore_BodyTooLarge(t *testing.T) {
	prev := maxBodyBytes
	maxBodyBytes = 1 << 10
	t.Cleanup(func() { maxBodyBytes = prev })

	srv := newTestServer(t, nil, Options{}, "")
	padded := []byte(`{"ticker": "ACME", "note": "` + strings.Repeat("x", 4<<10) + `"}`)

	resp := postScore(t, srv, "", padded, nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)

	// A small compressed body that inflates past the cap is refused too.
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write(padded)
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.Less(t, int64(buf.Len()), maxBodyBytes)

	resp = postScore(t, srv, "", buf.Bytes(), http.Header{"Content-Encoding": {"gzip"}})
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)

	// Bodies under the cap still score.
	maxBodyBytes = prev
	resp = postScore(t, srv, "", fixture(t), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListReports_NormalizesTicker(t *testing.T) {
	repo := newMemStore()
	srv := newTestServer(t, repo, Options{}, "")
	postScore(t, srv, "", fixture(t), nil)

	resp, err := http.Get(srv.URL + "/api/v1/reports?ticker=%20acme%20")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Ticker  string            `json:"ticker"`
		Reports []reports.Summary `json:"reports"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ACME", body.Ticker)
	assert.Len(t, body.Reports, 1)
}
