package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/aoc/internal/cli/output"
)

// NewExtractCommand creates the extract command.
func NewExtractCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <ict|ccs|url>",
		Short: "Fetch one JSON-stat indicator and print it as (Country, Year, Value)",
		Long: `Fetch a single JSON-stat dataset and flatten it to one row per cell.

The argument is either "ict" or "ccs", selecting the configured endpoint, or a
full http(s) URL. Missing cells are shown with the fill value 1 and flagged.`,
		Example: `  # Inspect the configured ICT indicator
  aoc extract ict

  # Any JSON-stat endpoint
  aoc extract "https://example.org/jsonstat/tin00074" -o csv`,
		Args: cobra.ExactArgs(1),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return []string{"ict", "ccs"}, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, args[0])
		},
	}
	return cmd
}

func runExtract(cmd *cobra.Command, source string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	cfg := cmdCtx.Cfg

	url, title := source, source
	switch source {
	case "ict":
		url, title = cfg.ICTURL, "ICT"
	case "ccs":
		url, title = cfg.CCSURL, "CCS"
	}

	records, err := createExtractor(cfg, cmdCtx.Logger).Extract(cmd.Context(), url)
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	if err := r.Table(output.IndicatorTable(title, records)); err != nil {
		return err
	}

	filled := 0
	for _, rec := range records {
		if rec.Filled {
			filled++
		}
	}
	if filled > 0 && r.EffectiveMode() != output.ModeJSON {
		r.Muted(fmt.Sprintf("%d of %d cells missing, filled with 1", filled, len(records)))
	}
	return nil
}
