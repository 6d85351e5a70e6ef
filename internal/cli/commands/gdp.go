package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/aoc/internal/cli/output"
	"github.com/leapstack-labs/aoc/internal/gdp"
)

// NewGDPCommand creates the gdp command.
func NewGDPCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gdp [path]",
		Short: "Load the pipe-delimited GDP file and print it in long form",
		Long: `Parse a GDP file with a Country column and one column per year.

Rows mentioning "Office" are dropped, empty cells become 1 and decimal commas
are normalized. The table is printed as one row per (Country, Year).`,
		Example: `  # The configured GDP file
  aoc gdp

  # Another file, as CSV
  aoc gdp data/gdp_2024.csv -o csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}

			path := cmdCtx.Cfg.GDPPath
			if len(args) > 0 {
				abs, err := filepath.Abs(args[0])
				if err != nil {
					return fmt.Errorf("failed to resolve GDP path %s: %w", args[0], err)
				}
				path = abs
			}
			cmdCtx.Logger.Debug("loading GDP file", "path", path)

			records, err := gdp.Load(path)
			if err != nil {
				return err
			}
			return cmdCtx.Renderer.Table(output.GdpTable("GDP", records))
		},
	}
	return cmd
}
