package commands

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/aoc/internal/chart"
	"github.com/leapstack-labs/aoc/internal/cli/output"
	"github.com/leapstack-labs/aoc/internal/engine"
	"github.com/leapstack-labs/aoc/internal/export"
	"github.com/leapstack-labs/aoc/pkg/core"
)

// Table names accepted by --tables.
const (
	TableICT    = "ict"
	TableCCS    = "ccs"
	TableGDP    = "gdp"
	TableMerged = "merged"
	TablePivot  = "pivot"
)

// RunTables lists every table the run command can print.
var RunTables = []string{TableICT, TableCCS, TableGDP, TableMerged, TablePivot}

// RunOptions holds options for the run command.
type RunOptions struct {
	Tables []string
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Extract, join and chart the AOC indicator",
		Long: `Fetch the ICT and CCS indicators, load the GDP file, join them on
(Country, Year) and compute AOC = GDP x CCS x ICT.

Missing values and unmatched keys are filled with 1. The result is pivoted to
one column per country, drawn as a line chart and optionally exported to an
Excel workbook.`,
		Example: `  # Run with the configured sources and open the chart
  aoc run

  # Write an SVG chart without opening it
  aoc run --chart out/aoc.svg --no-open

  # Cumulative totals, exported to a workbook
  aoc run --mode cumulative --export aoc.xlsx

  # Machine readable summary and merged rows
  aoc run -o json --no-open`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRun(cmd, opts)
		},
	}

	cmd.Flags().String("chart", "", "Chart file; the extension selects the format (default: aoc.png)")
	cmd.Flags().Bool("no-open", false, "Do not open the chart in the system viewer")
	cmd.Flags().String("export", "", "Write the merged and pivot tables to this .xlsx workbook")
	cmd.Flags().String("title", "", "Chart title")
	cmd.Flags().Float64("width", 0, "Chart width in inches")
	cmd.Flags().Float64("height", 0, "Chart height in inches")
	cmd.Flags().Int("max-rows", 0, "Rows to display per table (0 for all)")
	cmd.Flags().Int("max-columns", 0, "Columns to display per table (0 for all)")
	cmd.Flags().Int("precision", 0, "Decimals shown for numbers")
	cmd.Flags().StringSliceVar(&opts.Tables, "tables", []string{TablePivot}, "Tables to print: "+strings.Join(RunTables, ", "))

	_ = cmd.RegisterFlagCompletionFunc("tables", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return RunTables, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runRun(cmd *cobra.Command, opts *RunOptions) error {
	for _, name := range opts.Tables {
		if !slices.Contains(RunTables, name) {
			return fmt.Errorf("unknown table %q (want one of %s)", name, strings.Join(RunTables, ", "))
		}
	}

	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer

	if err := cfg.ValidateInputs(); err != nil {
		return err
	}

	eng, err := createEngine(cfg, cmdCtx.Logger)
	if err != nil {
		return err
	}

	res, err := eng.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	summary := summarize(res)

	if cfg.Chart.Path != "" {
		if err := ensureParentDir(cfg.Chart.Path); err != nil {
			return err
		}
		var view chart.Viewer
		if cfg.Chart.Open {
			// Viewer failures are reported, not returned.
			view = func(path string) error {
				if err := chart.SystemViewer(path); err != nil {
					r.Warning(err.Error())
				}
				return nil
			}
		}
		if err := chart.Visualize(cfg.Chart.Path, res.Pivot, chartOptions(cfg), view); err != nil {
			return err
		}
		summary.Chart = cfg.Chart.Path
		cmdCtx.Logger.Debug("chart written", "path", cfg.Chart.Path)
	}

	if cfg.ExportPath != "" {
		if err := ensureParentDir(cfg.ExportPath); err != nil {
			return err
		}
		if err := export.WriteWorkbook(cfg.ExportPath, res.Merged, res.Pivot); err != nil {
			return err
		}
		summary.Export = cfg.ExportPath
		cmdCtx.Logger.Debug("workbook written", "path", cfg.ExportPath)
	}

	if r.EffectiveMode() == output.ModeJSON {
		merged := res.Merged
		if merged == nil {
			merged = []core.MergedRecord{}
		}
		return r.JSON(output.RunReport{
			Summary: summary,
			Merged:  merged,
			Pivot:   output.PivotTable("", res.Pivot).Objects(),
		})
	}

	for _, name := range opts.Tables {
		if err := r.Table(runTable(res, name)); err != nil {
			return err
		}
		r.Println("")
	}
	return r.Summary(summary)
}

func runTable(res *engine.Result, name string) output.Table {
	switch name {
	case TableICT:
		return output.IndicatorTable("ICT", res.ICT)
	case TableCCS:
		return output.IndicatorTable("CCS", res.CCS)
	case TableGDP:
		return output.GdpTable("GDP", res.GDP)
	case TableMerged:
		return output.MergedTable("Merged", res.Merged)
	default:
		return output.PivotTable("AOC by year and country", res.Pivot)
	}
}

func summarize(res *engine.Result) output.RunSummary {
	return output.RunSummary{
		RunID:      res.RunID,
		Mode:       string(res.Mode),
		ICTRows:    len(res.ICT),
		CCSRows:    len(res.CCS),
		GDPRows:    len(res.GDP),
		MergedRows: len(res.Merged),
		Countries:  len(res.Pivot.Countries),
		Years:      len(res.Pivot.Years),
		FilledICT:  res.FilledCount(core.FillICT),
		FilledCCS:  res.FilledCount(core.FillCCS),
		FilledGDP:  res.FilledCount(core.FillGDP),
		DurationMS: res.Duration.Milliseconds(),
	}
}
