package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/finscope/finscope/pkg/config"
)

func newInitCmd() *cobra.Command {
	var (
		dir   string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default .finscope/config.yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := filepath.Join(dir, ".finscope", "config.yaml")
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.WriteDefault(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "Directory to create .finscope/ in")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config")

	return cmd
}
