// Package config provides configuration management for the aoc CLI.
//
// Values are layered defaults < config file < AOC_ environment variables <
// explicitly set flags, then decoded into Config.
package config

import (
	"github.com/leapstack-labs/aoc/internal/cli/output"
)

// ChartConfig holds chart rendering options.
type ChartConfig struct {
	Path   string  `koanf:"path" yaml:"path" json:"path"`
	Title  string  `koanf:"title" yaml:"title" json:"title"`
	Width  float64 `koanf:"width" yaml:"width" json:"width"`
	Height float64 `koanf:"height" yaml:"height" json:"height"`
	Open   bool    `koanf:"open" yaml:"open" json:"open"`
}

// Config holds all CLI configuration options.
type Config struct {
	ICTURL        string         `koanf:"ict_url" yaml:"ict_url" json:"ict_url"`
	CCSURL        string         `koanf:"ccs_url" yaml:"ccs_url" json:"ccs_url"`
	GDPPath       string         `koanf:"gdp_path" yaml:"gdp_path" json:"gdp_path"`
	Mode          string         `koanf:"mode" yaml:"mode" json:"mode"`
	Naming        string         `koanf:"naming" yaml:"naming" json:"naming"`
	OutputFormat  string         `koanf:"output" yaml:"output" json:"output"`
	Verbose       bool           `koanf:"verbose" yaml:"verbose" json:"verbose"`
	LogLevel      string         `koanf:"log_level" yaml:"log_level" json:"log_level"`
	UserAgent     string         `koanf:"user_agent" yaml:"user_agent" json:"user_agent"`
	GeoDimension  string         `koanf:"geo_dimension" yaml:"geo_dimension" json:"geo_dimension"`
	TimeDimension string         `koanf:"time_dimension" yaml:"time_dimension" json:"time_dimension"`
	ExportPath    string         `koanf:"export_path" yaml:"export_path,omitempty" json:"export_path,omitempty"`
	Chart         ChartConfig    `koanf:"chart" yaml:"chart" json:"chart"`
	Display       output.Display `koanf:"display" yaml:"display" json:"display"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-" yaml:"-" json:"-"`
}

// Default configuration values.
const (
	DefaultICTURL        = "http://ec.europa.eu/eurostat/wdds/rest/data/v2.1/json/en/tin00074?nace_r2=ICT"
	DefaultCCSURL        = "http://ec.europa.eu/eurostat/wdds/rest/data/v2.1/json/en/isoc_cicce_use?sizen_r2=M_C10_S951_XK&sizen_r2=L_C10_S951_XK&unit=PC_ENT&indic_is=E_CC"
	DefaultGDPPath       = "gdp_data.csv"
	DefaultMode          = "instant"
	DefaultNaming        = "code"
	DefaultOutput        = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultLogLevel      = "warn"
	DefaultGeoDimension  = "geo"
	DefaultTimeDimension = "time"
	DefaultChartPath     = "aoc.png"
	DefaultChartTitle    = "AOC by country"
	DefaultChartWidth    = 12.0
	DefaultChartHeight   = 7.0
)

// ConfigFileNames are searched, in order, when no --config is given.
var ConfigFileNames = []string{"aoc.yaml", "aoc.yml"}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"ict_url":             DefaultICTURL,
		"ccs_url":             DefaultCCSURL,
		"gdp_path":            DefaultGDPPath,
		"mode":                DefaultMode,
		"naming":              DefaultNaming,
		"output":              DefaultOutput,
		"verbose":             false,
		"log_level":           DefaultLogLevel,
		"user_agent":          "",
		"geo_dimension":       DefaultGeoDimension,
		"time_dimension":      DefaultTimeDimension,
		"export_path":         "",
		"chart.path":          DefaultChartPath,
		"chart.title":         DefaultChartTitle,
		"chart.width":         DefaultChartWidth,
		"chart.height":        DefaultChartHeight,
		"chart.open":          true,
		"display.max_rows":    output.DefaultMaxRows,
		"display.max_columns": output.DefaultMaxColumns,
		"display.precision":   output.DefaultPrecision,
	}
}
