package engine

// run.go - Pipeline orchestration

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/leapstack-labs/aoc/internal/chart"
	"github.com/leapstack-labs/aoc/internal/gdp"
	"github.com/leapstack-labs/aoc/internal/transform"
	"github.com/leapstack-labs/aoc/pkg/core"
)

// Result holds everything one run produced.
type Result struct {
	RunID     string
	Mode      transform.Mode
	StartedAt time.Time
	Duration  time.Duration

	ICT []core.IndicatorRecord
	CCS []core.IndicatorRecord
	GDP []core.GdpRecord

	Merged []core.MergedRecord
	Pivot  *chart.PivotTable
}

// FilledCount returns the number of merged rows carrying all flags in f.
func (r *Result) FilledCount(f core.Fill) int {
	n := 0
	for _, m := range r.Merged {
		if m.Filled.Has(f) {
			n++
		}
	}
	return n
}

// Run executes the pipeline: ICT, then CCS, then the GDP file, then the
// join and the pivot. Stages run in order and the first failure stops the run.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	res := &Result{
		RunID:     uuid.NewString(),
		Mode:      e.mode,
		StartedAt: time.Now(),
	}
	logger := e.logger.With("run_id", res.RunID)
	logger.Info("starting run", "mode", e.mode)

	if err := e.load(ctx, res); err != nil {
		logger.Error("run failed", "error", err.Error())
		return nil, err
	}

	logger.Debug("sources loaded", "ict_rows", len(res.ICT), "ccs_rows", len(res.CCS), "gdp_rows", len(res.GDP))

	res.Merged = transform.Transform(res.ICT, res.CCS, res.GDP, transform.Options{Mode: e.mode})
	res.Pivot = chart.Pivot(res.Merged)
	res.Duration = time.Since(res.StartedAt)

	logger.Info("run completed",
		"merged_rows", len(res.Merged),
		"countries", len(res.Pivot.Countries),
		"years", len(res.Pivot.Years),
		"duration", res.Duration,
	)
	return res, nil
}

func (e *Engine) load(ctx context.Context, res *Result) error {
	var err error
	if res.ICT, err = e.extractor.Extract(ctx, e.ictURL); err != nil {
		return fmt.Errorf("failed to extract ICT: %w", err)
	}
	if res.CCS, err = e.extractor.Extract(ctx, e.ccsURL); err != nil {
		return fmt.Errorf("failed to extract CCS: %w", err)
	}
	if res.GDP, err = gdp.Load(e.gdpPath); err != nil {
		return fmt.Errorf("failed to load GDP: %w", err)
	}
	return nil
}
