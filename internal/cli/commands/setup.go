package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/aoc/internal/chart"
	"github.com/leapstack-labs/aoc/internal/cli/config"
	"github.com/leapstack-labs/aoc/internal/cli/output"
	"github.com/leapstack-labs/aoc/internal/engine"
	"github.com/leapstack-labs/aoc/internal/extract"
	"github.com/leapstack-labs/aoc/internal/transform"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with config, logger and renderer.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cfg, err := getConfig()
	if err != nil {
		return nil, err
	}
	logger := config.GetLogger(cmd.Context())

	// The root command stores a renderer; commands run on their own build one.
	r := output.FromContext(cmd.Context())
	if r == nil {
		r = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))
		r.SetDisplay(cfg.Display)
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}, nil
}

// Helper functions shared across commands

// getConfig returns the current configuration, loading defaults, file and
// environment when the root command did not run.
func getConfig() (*config.Config, error) {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg, nil
	}
	return config.LoadConfig("", nil)
}

func createEngine(cfg *config.Config, logger *slog.Logger) (*engine.Engine, error) {
	return engine.New(engine.Config{
		ICTURL:        cfg.ICTURL,
		CCSURL:        cfg.CCSURL,
		GDPPath:       cfg.GDPPath,
		Mode:          transform.Mode(cfg.Mode),
		UserAgent:     cfg.UserAgent,
		GeoDimension:  cfg.GeoDimension,
		TimeDimension: cfg.TimeDimension,
		Naming:        extract.Naming(cfg.Naming),
		Logger:        logger,
	})
}

func createExtractor(cfg *config.Config, logger *slog.Logger) *extract.Extractor {
	return extract.New(extract.Config{
		UserAgent:     cfg.UserAgent,
		GeoDimension:  cfg.GeoDimension,
		TimeDimension: cfg.TimeDimension,
		Naming:        extract.Naming(cfg.Naming),
		Logger:        logger,
	})
}

func chartOptions(cfg *config.Config) chart.Options {
	return chart.Options{
		Title:  cfg.Chart.Title,
		Width:  cfg.Chart.Width,
		Height: cfg.Chart.Height,
	}
}

// ensureParentDir creates the directory that will hold path.
func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}
