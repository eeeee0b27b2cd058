// Package main provides the finscope CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/finscope/finscope/pkg/config"
)

var version = "dev"

var (
	cfgPath string
	cfg     *config.Config
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "finscope",
		Short: "Financial health scoring for public companies",
		Long: `finscope derives ratios from balance sheet, income statement and cash
flow data and scores them with the Financial Health, Buffett and Lynch models.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = zap.L().Sync()
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to config file (default: .finscope/config.yaml in this or a parent directory)")

	rootCmd.AddCommand(
		newScoreCmd(),
		newBatchCmd(),
		newRatiosCmd(),
		newReportCmd(),
		newServeCmd(),
		newInitCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// setup loads .env, the config file and the logger.
func setup() error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}

	path := cfgPath
	if path == "" {
		if wd, err := os.Getwd(); err == nil {
			path = config.FindConfigFile(wd)
		}
	}
	c, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg = c

	if err := config.InitLogger(cfg.Log); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the finscope version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "finscope", version)
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
