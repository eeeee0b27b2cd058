package summary_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finscope/finscope/internal/summary"
	"github.com/finscope/finscope/pkg/scoring"
	"github.com/finscope/finscope/pkg/statement"
)

func testReport() *scoring.Report {
	roe := scoring.MetricResult{Key: "roe", Name: "ROE", Value: statement.Some(0.18), Score: 8, Status: scoring.StatusComputed, Format: scoring.FormatPercentage}
	owner := scoring.MetricResult{Key: "owner_earnings", Name: "Owner Earnings", Value: statement.Some(3.2e9), Score: 10, Status: scoring.StatusComputed, Format: scoring.FormatCurrency}
	missing := scoring.MetricResult{Key: "peg", Name: "PEG", Score: 3, Status: scoring.StatusMissing, Format: scoring.FormatPlain}
	reserved := scoring.MetricResult{Key: "asset_quality", Name: "Asset Quality", Score: 3, Status: scoring.StatusReserved, Format: scoring.FormatPlain}

	return &scoring.Report{
		Ticker:         "ACME",
		Recommendation: scoring.RecommendBuy,
		Models: []scoring.ModelResult{
			{Model: scoring.ModelFinancialHealth, Name: "Financial Health", Score: 7.8, Breakdown: scoring.Breakdown{
				{Category: &scoring.CategoryResult{Key: "balance_sheet", Name: "Balance Sheet", Score: 7.8, Breakdown: scoring.Breakdown{{Metric: &reserved}}}},
			}},
			{Model: scoring.ModelBuffett, Name: "Buffett", Score: 9, Breakdown: scoring.Breakdown{{Metric: &roe}, {Metric: &owner}}},
			{Model: scoring.ModelLynch, Name: "Lynch", Score: 3, Breakdown: scoring.Breakdown{{Metric: &missing}}},
		},
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := summary.BuildPrompt(testReport())

	for _, want := range []string{
		"Analyze the company ACME",
		"BUY, HOLD, or SELL",
		"Financial Health Score: 7.80/10",
		"Buffett Score: 9.00/10",
		"Lynch Score: 3.00/10",
		"Rule-based recommendation: BUY",
		"Buffett Breakdown:",
		"- ROE: 18.00% (score 8.00/10)",
		"- Owner Earnings: $3.20B (score 10.00/10)",
		"- PEG: N/A (score 3.00/10)",
		"Balance Sheet (7.80/10):",
	} {
		assert.Contains(t, prompt, want)
	}
	assert.NotContains(t, prompt, "Asset Quality", "reserved metrics carry no information")
}

func TestAttach(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		report := testReport()
		report.SummaryError = "stale"
		s := &summary.Static{Text: "Looks healthy. BUY."}

		summary.Attach(context.Background(), s, report)

		assert.Equal(t, "Looks healthy. BUY.", report.Summary)
		assert.Empty(t, report.SummaryError)
		require.Len(t, s.Prompts, 1)
		assert.Contains(t, s.Prompts[0], "ACME")
	})

	t.Run("failure is recorded not raised", func(t *testing.T) {
		report := testReport()
		summary.Attach(context.Background(), &summary.Static{Err: errors.New("quota exceeded")}, report)

		assert.Empty(t, report.Summary)
		assert.Equal(t, "quota exceeded", report.SummaryError)
		assert.Equal(t, 9.0, report.Models[1].Score, "scores untouched")
	})
}

func TestAnthropic_Summarize(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/v1/messages") {
			http.NotFound(w, r)
			return
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "msg_01",
			"type": "message",
			"role": "assistant",
			"model": "claude-sonnet-4-5-20250929",
			"content": [{"type": "text", "text": "  Strong margins. HOLD.  "}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 120, "output_tokens": 8}
		}`)
	}))
	defer srv.Close()

	a := summary.NewAnthropic("test-key", "claude-sonnet-4-5-20250929", 512,
		option.WithBaseURL(srv.URL), option.WithMaxRetries(0))

	text, err := a.Summarize(context.Background(), "Analyze ACME")
	require.NoError(t, err)
	assert.Equal(t, "Strong margins. HOLD.", text)

	require.NotNil(t, got)
	assert.Equal(t, "claude-sonnet-4-5-20250929", got["model"])
	assert.EqualValues(t, 512, got["max_tokens"])
	msgs, ok := got["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 1)
	assert.Contains(t, mustJSON(t, msgs[0]), "Analyze ACME")
}

func TestAnthropic_SummarizeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"type":"error","error":{"type":"invalid_request_error","message":"bad model"}}`)
	}))
	defer srv.Close()

	a := summary.NewAnthropic("test-key", "nope", 512, option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
	_, err := a.Summarize(context.Background(), "Analyze ACME")
	assert.Error(t, err)
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}
