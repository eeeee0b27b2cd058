package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/finscope/finscope/pkg/ratios"
	"github.com/finscope/finscope/pkg/statement"
	"github.com/finscope/finscope/pkg/surface"
)

func newRatiosCmd() *cobra.Command {
	var opts ratiosOpts

	cmd := &cobra.Command{
		Use:   "ratios",
		Short: "Print statements with derived ratio columns",
		Long: `Loads statements, appends the derived ratio columns used by scoring and
prints every statement as a Markdown table. --yoy adds a year-over-year
change column for every column.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.input.priceSet = cmd.Flags().Changed("price")
			opts.out = cmd.OutOrStdout()
			return runRatios(opts)
		},
	}

	addInputFlags(cmd, &opts.input)
	cmd.Flags().BoolVar(&opts.yoy, "yoy", false, "Add year-over-year change columns")

	return cmd
}

type ratiosOpts struct {
	input inputOpts
	yoy   bool
	out   io.Writer
}

func runRatios(opts ratiosOpts) error {
	if opts.out == nil {
		opts.out = os.Stdout
	}
	bundle, err := opts.input.load()
	if err != nil {
		return fmt.Errorf("loading statements: %w", err)
	}

	derived := ratios.Derive(bundle)
	if opts.yoy {
		for _, k := range statement.Kinds {
			ratios.AddYoY(derived.Table(k))
		}
	}

	if derived.Ticker != "" {
		fmt.Fprintf(opts.out, "# %s\n\n", derived.Ticker)
	}
	return surface.WriteStatementTables(opts.out, derived)
}
