package main

import (
	"context"
	"errors"
	"strings"

	"github.com/finscope/finscope/internal/store"
	"github.com/finscope/finscope/internal/summary"
	"github.com/finscope/finscope/pkg/config"
	"github.com/finscope/finscope/pkg/scoring"
	"github.com/finscope/finscope/pkg/statement"
)

// inputOpts selects where statements come from: a bundle file or a
// balance sheet, income statement and cash flow CSV triple.
type inputOpts struct {
	bundle   string
	bsPath   string
	isPath   string
	cfPath   string
	ticker   string
	price    float64
	priceSet bool
}

func (o inputOpts) load() (*statement.Statements, error) {
	var (
		s   *statement.Statements
		err error
	)
	switch {
	case o.bundle != "":
		s, err = statement.LoadFile(o.bundle)
	case o.bsPath != "" || o.isPath != "" || o.cfPath != "":
		s, err = statement.LoadCSVFiles(o.ticker, o.bsPath, o.isPath, o.cfPath)
	default:
		return nil, errors.New("no input: pass --bundle or at least one of --bs, --is, --cf")
	}
	if err != nil {
		return nil, err
	}

	if o.ticker != "" {
		s.Ticker = strings.ToUpper(o.ticker)
		if err := statement.CheckTicker(s.Ticker); err != nil {
			return nil, err
		}
	}
	if o.priceSet {
		s.Price = statement.Some(o.price)
	}
	return s, nil
}

// newEngine builds an engine from the config, narrowed to models when given.
func newEngine(models []string) (*scoring.Engine, error) {
	sc := cfg.Scoring
	if len(models) > 0 {
		sc.Models = models
	}
	built, err := sc.BuildModels()
	if err != nil {
		return nil, err
	}
	return scoring.NewEngine(built...), nil
}

func newSummarizer() (summary.Summarizer, error) {
	if cfg.Summary.APIKey == "" {
		return nil, errors.New("summaries need ANTHROPIC_API_KEY or FINSCOPE_SUMMARY_API_KEY")
	}
	return summary.NewAnthropic(cfg.Summary.APIKey, cfg.Summary.Model, cfg.Summary.MaxTokens), nil
}

func openArchive(ctx context.Context) (*store.Archive, error) {
	client, err := store.Open(ctx, cfg.Storage, cfg.ReportDir())
	if err != nil {
		return nil, err
	}
	return store.NewArchive(client), nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// ensureConfig lets commands run without PersistentPreRunE, as in tests.
func ensureConfig() {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
}
