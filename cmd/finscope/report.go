package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/finscope/finscope/internal/store"
	"github.com/finscope/finscope/pkg/surface"
)

func newReportCmd() *cobra.Command {
	var (
		outputFmt string
		bundle    bool
	)

	cmd := &cobra.Command{
		Use:   "report <id>",
		Short: "Show a saved report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd.Context(), cmd.OutOrStdout(), args[0], outputFmt, bundle)
		},
	}

	cmd.Flags().StringVar(&outputFmt, "output", "text", "Output format: text, json, markdown or html")
	cmd.Flags().BoolVar(&bundle, "statements", false, "Print the saved input statements instead of the report")

	return cmd
}

func runReport(ctx context.Context, out io.Writer, id, outputFmt string, showBundle bool) error {
	ensureConfig()
	if out == nil {
		out = os.Stdout
	}

	archive, err := openArchive(ctx)
	if err != nil {
		return err
	}
	report, err := archive.LoadReport(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("report %s not found in %s storage", id, firstNonEmpty(cfg.Storage.Backend, "local"))
	}
	if err != nil {
		return err
	}

	if showBundle {
		s, err := archive.LoadBundle(ctx, report.Ticker, id)
		if err != nil {
			return fmt.Errorf("loading statements for %s: %w", id, err)
		}
		return surface.WriteStatementTables(out, s)
	}

	renderer, err := surface.ForFormat(outputFmt)
	if err != nil {
		return err
	}
	return renderer.Render(out, report)
}
