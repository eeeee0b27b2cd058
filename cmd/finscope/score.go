package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/finscope/finscope/internal/summary"
	"github.com/finscope/finscope/pkg/surface"
)

func newScoreCmd() *cobra.Command {
	var opts scoreOpts

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score one company's financial statements",
		Long: `Loads a statement bundle (JSON, YAML or XLSX) or a CSV triple, derives
ratios, runs the scoring models and renders the report.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.input.priceSet = cmd.Flags().Changed("price")
			opts.out = cmd.OutOrStdout()
			return runScore(cmd.Context(), opts)
		},
	}

	addInputFlags(cmd, &opts.input)
	cmd.Flags().StringSliceVar(&opts.models, "model", nil, "Models to run (financial_health, buffett, lynch); default from config")
	cmd.Flags().StringVar(&opts.outputFmt, "output", "text", "Output format: text, json, markdown or html")
	cmd.Flags().BoolVar(&opts.summarize, "summarize", false, "Attach a narrative summary from the Anthropic API")
	cmd.Flags().BoolVar(&opts.save, "save", false, "Save the report and bundle to the configured storage")

	return cmd
}

func addInputFlags(cmd *cobra.Command, in *inputOpts) {
	cmd.Flags().StringVar(&in.bundle, "bundle", "", "Statement bundle file (.json, .yaml, .xlsx)")
	cmd.Flags().StringVar(&in.bsPath, "bs", "", "Balance sheet CSV")
	cmd.Flags().StringVar(&in.isPath, "is", "", "Income statement CSV")
	cmd.Flags().StringVar(&in.cfPath, "cf", "", "Cash flow CSV")
	cmd.Flags().StringVar(&in.ticker, "ticker", "", "Ticker symbol (overrides the bundle)")
	cmd.Flags().Float64Var(&in.price, "price", 0, "Current share price (overrides the bundle)")
}

type scoreOpts struct {
	input     inputOpts
	models    []string
	outputFmt string
	summarize bool
	save      bool
	out       io.Writer
}

func runScore(ctx context.Context, opts scoreOpts) error {
	ensureConfig()
	if opts.out == nil {
		opts.out = os.Stdout
	}

	renderer, err := surface.ForFormat(opts.outputFmt)
	if err != nil {
		return err
	}

	bundle, err := opts.input.load()
	if err != nil {
		return fmt.Errorf("loading statements: %w", err)
	}

	engine, err := newEngine(opts.models)
	if err != nil {
		return err
	}
	report, err := engine.Score(bundle)
	if err != nil {
		return fmt.Errorf("scoring: %w", err)
	}

	if opts.summarize {
		sum, err := newSummarizer()
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Requesting summary (%s)...\n", cfg.Summary.Model)
		summary.Attach(ctx, sum, report)
	}

	if opts.save {
		archive, err := openArchive(ctx)
		if err != nil {
			return err
		}
		id, err := archive.SaveReport(ctx, report, bundle)
		if err != nil {
			return fmt.Errorf("saving report: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Saved report %s\n", id)
	}

	return renderer.Render(opts.out, report)
}
