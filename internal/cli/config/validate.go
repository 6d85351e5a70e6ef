package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/leapstack-labs/aoc/internal/chart"
	"github.com/leapstack-labs/aoc/internal/cli/output"
	"github.com/leapstack-labs/aoc/internal/extract"
	"github.com/leapstack-labs/aoc/internal/transform"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validateURL("ict_url", c.ICTURL); err != nil {
		return err
	}
	if err := validateURL("ccs_url", c.CCSURL); err != nil {
		return err
	}
	if c.GDPPath == "" {
		return fmt.Errorf("gdp_path is required")
	}
	if _, err := transform.ParseMode(c.Mode); err != nil {
		return fmt.Errorf("invalid mode: %w", err)
	}
	if _, err := extract.ParseNaming(c.Naming); err != nil {
		return fmt.Errorf("invalid naming: %w", err)
	}
	if !output.Mode(c.OutputFormat).Valid() {
		return fmt.Errorf("invalid output format %q (want one of %v)", c.OutputFormat, output.Modes)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}

	if c.Chart.Width <= 0 || c.Chart.Height <= 0 {
		return fmt.Errorf("chart size must be positive, got %gx%g", c.Chart.Width, c.Chart.Height)
	}
	if c.Chart.Path != "" {
		if format := chart.FormatOf(c.Chart.Path); !slices.Contains(chart.Formats, format) {
			return fmt.Errorf("unsupported chart format %q for %s (want one of %v)", format, c.Chart.Path, chart.Formats)
		}
	}
	if c.ExportPath != "" && !strings.EqualFold(filepath.Ext(c.ExportPath), ".xlsx") {
		return fmt.Errorf("export path must end in .xlsx: %s", c.ExportPath)
	}

	if c.Display.MaxRows < 0 || c.Display.MaxColumns < 0 || c.Display.Precision < 0 {
		return fmt.Errorf("display limits must not be negative")
	}
	return nil
}

// ValidateInputs checks that local inputs exist.
func (c *Config) ValidateInputs() error {
	info, err := os.Stat(c.GDPPath)
	if os.IsNotExist(err) {
		return fmt.Errorf("GDP file does not exist: %s\nHint: Create the file or use --gdp to specify a different path", c.GDPPath)
	}
	if err != nil {
		return fmt.Errorf("failed to stat GDP file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("GDP path is a directory: %s", c.GDPPath)
	}
	return nil
}

// SlogLevel returns the configured log level. Verbose forces debug.
func (c *Config) SlogLevel() (slog.Level, error) {
	if c.Verbose {
		return slog.LevelDebug, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

func validateURL(key, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", key)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid %s %q: scheme must be http or https", key, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid %s %q: missing host", key, raw)
	}
	return nil
}
