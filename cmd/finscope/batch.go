package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"syscall"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/finscope/finscope/internal/store"
	"github.com/finscope/finscope/internal/summary"
	"github.com/finscope/finscope/pkg/scoring"
	"github.com/finscope/finscope/pkg/statement"
	"github.com/finscope/finscope/pkg/surface"
)

func newBatchCmd() *cobra.Command {
	var opts batchOpts

	cmd := &cobra.Command{
		Use:   "batch [dir|file...]",
		Short: "Score many statement bundles concurrently",
		Long: `Scores every bundle (.json, .yaml, .yml, .xlsx) in the given files or
directories and prints one summary row per company. Failed bundles are
logged and skipped.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			opts.paths = args
			opts.out = cmd.OutOrStdout()
			return runBatch(ctx, opts)
		},
	}

	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "Bundles scored in parallel (default from config)")
	cmd.Flags().StringSliceVar(&opts.models, "model", nil, "Models to run; default from config")
	cmd.Flags().StringVar(&opts.outputDir, "output-dir", "", "Write one report per bundle into this directory")
	cmd.Flags().StringVar(&opts.outputFmt, "output", "json", "Format of the per-bundle reports: text, json, markdown or html")
	cmd.Flags().BoolVar(&opts.summarize, "summarize", false, "Attach narrative summaries")
	cmd.Flags().BoolVar(&opts.save, "save", false, "Save every report to the configured storage")

	return cmd
}

type batchOpts struct {
	paths       []string
	concurrency int
	models      []string
	outputDir   string
	outputFmt   string
	summarize   bool
	save        bool
	out         io.Writer
}

type batchResult struct {
	path   string
	report *scoring.Report
	err    error
}

func runBatch(ctx context.Context, opts batchOpts) error {
	ensureConfig()
	if opts.out == nil {
		opts.out = os.Stdout
	}

	files, err := collectBundles(opts.paths)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no statement bundles found in %s", strings.Join(opts.paths, ", "))
	}

	engine, err := newEngine(opts.models)
	if err != nil {
		return err
	}

	var sum summary.Summarizer
	if opts.summarize {
		if sum, err = newSummarizer(); err != nil {
			return err
		}
	}
	var archive *store.Archive
	if opts.save {
		if archive, err = openArchive(ctx); err != nil {
			return err
		}
	}
	var renderer surface.Renderer
	if opts.outputDir != "" {
		if renderer, err = surface.ForFormat(opts.outputFmt); err != nil {
			return err
		}
		if err := os.MkdirAll(opts.outputDir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	concurrency := opts.concurrency
	if concurrency <= 0 {
		concurrency = cfg.Batch.Concurrency
	}

	results := make([]batchResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var succeeded, failed atomic.Int64

	for i, path := range files {
		g.Go(func() error {
			log := zap.L().With(zap.String("bundle", path))

			report, err := scoreOne(gctx, engine, sum, archive, path)
			if err == nil && renderer != nil {
				err = writeReport(renderer, opts.outputDir, opts.outputFmt, report)
			}
			results[i] = batchResult{path: path, report: report, err: err}
			if err != nil {
				failed.Add(1)
				log.Error("scoring failed", zap.Error(err))
				return nil // don't abort batch on individual failure
			}

			succeeded.Add(1)
			log.Debug("scored", zap.String("ticker", report.Ticker), zap.String("recommendation", string(report.Recommendation)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	printBatchSummary(opts.out, results)
	zap.L().Info("batch complete",
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int64("failed", failed.Load()),
	)
	if failed.Load() > 0 && succeeded.Load() == 0 {
		return fmt.Errorf("all %d bundles failed", failed.Load())
	}
	return nil
}

func scoreOne(ctx context.Context, engine *scoring.Engine, sum summary.Summarizer, archive *store.Archive, path string) (*scoring.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bundle, err := statement.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if bundle.Ticker == "" {
		bundle.Ticker = strings.ToUpper(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	}
	report, err := engine.Score(bundle)
	if err != nil {
		return nil, err
	}
	if sum != nil {
		summary.Attach(ctx, sum, report)
	}
	if archive != nil {
		if _, err := archive.SaveReport(ctx, report, bundle); err != nil {
			return nil, err
		}
	}
	return report, nil
}

func writeReport(r surface.Renderer, dir, format string, report *scoring.Report) error {
	ext := map[string]string{
		surface.FormatJSON:     ".json",
		surface.FormatMarkdown: ".md",
		"md":                   ".md",
		surface.FormatHTML:     ".html",
	}[format]
	if ext == "" {
		ext = ".txt"
	}
	f, err := os.OpenFile(filepath.Join(dir, reportFileName(report)+ext), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if err := r.Render(f, report); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// reportFileName names a batch output file after the ticker and a short
// report ID, so bundles sharing a ticker never overwrite each other.
func reportFileName(report *scoring.Report) string {
	stem := report.Ticker
	if !statement.ValidTicker(stem) {
		stem = "report"
	}
	id := report.ID
	if id == "" {
		id = uuid.NewString()
	}
	return stem + "-" + strings.ReplaceAll(id, "-", "")[:8]
}

// collectBundles expands directories into their bundle files, sorted.
func collectBundles(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			switch strings.ToLower(filepath.Ext(e.Name())) {
			case ".json", ".yaml", ".yml", ".xlsx":
				files = append(files, filepath.Join(p, e.Name()))
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

func printBatchSummary(w io.Writer, results []batchResult) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TICKER\tFINANCIAL HEALTH\tBUFFETT\tLYNCH\tRECOMMENDATION")
	for _, r := range results {
		if r.err != nil {
			fmt.Fprintf(tw, "%s\t-\t-\t-\tERROR: %v\n", filepath.Base(r.path), r.err)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.report.Ticker,
			modelScore(r.report, scoring.ModelFinancialHealth),
			modelScore(r.report, scoring.ModelBuffett),
			modelScore(r.report, scoring.ModelLynch),
			r.report.Recommendation)
	}
	tw.Flush()
}

func modelScore(r *scoring.Report, key string) string {
	m, ok := r.Model(key)
	if !ok {
		return "-"
	}
	return surface.FormatScore(m.Score)
}
