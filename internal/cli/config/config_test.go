package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/aoc/internal/cli/output"
)

// chdirTemp moves the test into a fresh directory so no stray aoc.yaml is found.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	cwd, err := os.Getwd()
	require.NoError(t, err)
	return cwd
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "aoc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func testFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("config", "", "config file")
	flags.String("mode", "", "aggregation mode")
	flags.String("gdp", "", "GDP file")
	flags.String("chart", "", "chart file")
	flags.String("export", "", "workbook file")
	flags.Bool("no-open", false, "do not open the chart")
	flags.Int("max-rows", 0, "rows to display")
	flags.StringP("output", "o", "", "output format")
	return flags
}

func validConfig() Config {
	return Config{
		ICTURL:       DefaultICTURL,
		CCSURL:       DefaultCCSURL,
		GDPPath:      DefaultGDPPath,
		Mode:         DefaultMode,
		Naming:       DefaultNaming,
		OutputFormat: DefaultOutput,
		LogLevel:     DefaultLogLevel,
		Chart:        ChartConfig{Path: DefaultChartPath, Width: 1, Height: 1},
		Display:      output.DefaultDisplay(),
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	cwd := chdirTemp(t)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultICTURL, cfg.ICTURL)
	assert.Equal(t, DefaultCCSURL, cfg.CCSURL)
	assert.Equal(t, filepath.Join(cwd, DefaultGDPPath), cfg.GDPPath)
	assert.Equal(t, filepath.Join(cwd, DefaultChartPath), cfg.Chart.Path)
	assert.Equal(t, DefaultMode, cfg.Mode)
	assert.Equal(t, DefaultNaming, cfg.Naming)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.True(t, cfg.Chart.Open)
	assert.InDelta(t, DefaultChartWidth, cfg.Chart.Width, 1e-9)
	assert.Equal(t, output.DefaultDisplay(), cfg.Display)
	assert.Empty(t, cfg.ExportPath)
	assert.Empty(t, GetConfigFileUsed())
	assert.Equal(t, cfg, GetCurrentConfig())
}

func TestLoadConfig_FileFoundUpward(t *testing.T) {
	ResetConfig()
	root := chdirTemp(t)
	writeConfig(t, root, `mode: cumulative
gdp_path: data/gdp.csv
chart:
  path: out/chart.svg
  open: false
display:
  max_rows: 5
`)
	sub := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0750))
	t.Chdir(sub)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "aoc.yaml"), GetConfigFileUsed())
	assert.Equal(t, root, cfg.ProjectRoot)
	assert.Equal(t, "cumulative", cfg.Mode)
	assert.Equal(t, filepath.Join(root, "data", "gdp.csv"), cfg.GDPPath, "file paths resolve against the project root")
	assert.Equal(t, filepath.Join(root, "out", "chart.svg"), cfg.Chart.Path)
	assert.False(t, cfg.Chart.Open)
	assert.Equal(t, 5, cfg.Display.MaxRows)
	assert.Equal(t, output.DefaultPrecision, cfg.Display.Precision, "unset nested keys keep defaults")
}

func TestLoadConfig_FlagPrecedence(t *testing.T) {
	ResetConfig()
	cwd := chdirTemp(t)
	cfgPath := writeConfig(t, cwd, "mode: cumulative\ngdp_path: from_file.csv\n")
	t.Setenv("AOC_GDP_PATH", "from_env.csv")

	flags := testFlags()
	require.NoError(t, flags.Set("gdp", "from_flag.csv"))
	require.NoError(t, flags.Set("mode", "instant"))

	cfg, err := LoadConfig(cfgPath, flags)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(cwd, "from_flag.csv"), cfg.GDPPath, "flag value should override config file and env var")
	assert.Equal(t, "instant", cfg.Mode)
}

func TestLoadConfig_EnvPrecedenceOverFile(t *testing.T) {
	ResetConfig()
	cwd := chdirTemp(t)
	cfgPath := writeConfig(t, cwd, "gdp_path: from_file.csv\n")
	t.Setenv("AOC_GDP_PATH", "from_env.csv")

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(cwd, "from_env.csv"), cfg.GDPPath, "env var should override config file")
}

func TestLoadConfig_FlagNotSetUsesEnv(t *testing.T) {
	ResetConfig()
	cwd := chdirTemp(t)
	t.Setenv("AOC_GDP_PATH", "from_env.csv")

	// Flag defined but never set, so Changed is false
	cfg, err := LoadConfig("", testFlags())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(cwd, "from_env.csv"), cfg.GDPPath, "env var should be used when flag is not set")
}

func TestLoadConfig_NestedEnv(t *testing.T) {
	ResetConfig()
	chdirTemp(t)
	t.Setenv("AOC_CHART__TITLE", "Composite index")
	t.Setenv("AOC_DISPLAY__MAX_ROWS", "7")
	t.Setenv("AOC_CHART__OPEN", "false")

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, "Composite index", cfg.Chart.Title)
	assert.Equal(t, 7, cfg.Display.MaxRows)
	assert.False(t, cfg.Chart.Open)
}

func TestLoadConfig_FlagBridges(t *testing.T) {
	ResetConfig()
	cwd := chdirTemp(t)
	// Paths from a config in another directory resolve there, flag paths resolve from CWD
	other := t.TempDir()
	cfgPath := writeConfig(t, other, "chart:\n  path: file_chart.png\n")

	flags := testFlags()
	require.NoError(t, flags.Set("chart", "flag_chart.svg"))
	require.NoError(t, flags.Set("export", "out.xlsx"))
	require.NoError(t, flags.Set("no-open", "true"))
	require.NoError(t, flags.Set("max-rows", "3"))
	require.NoError(t, flags.Set("output", "json"))

	cfg, err := LoadConfig(cfgPath, flags)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(cwd, "flag_chart.svg"), cfg.Chart.Path)
	assert.Equal(t, filepath.Join(cwd, "out.xlsx"), cfg.ExportPath)
	assert.False(t, cfg.Chart.Open)
	assert.Equal(t, 3, cfg.Display.MaxRows)
	assert.Equal(t, "json", cfg.OutputFormat)
}

func TestLoadConfig_ExpandsEnvVars(t *testing.T) {
	ResetConfig()
	cwd := chdirTemp(t)
	t.Setenv("EUROSTAT_HOST", "example.org")
	t.Setenv("DATA_DIR", "/srv/data")
	cfgPath := writeConfig(t, cwd, `ict_url: https://${EUROSTAT_HOST}/ict
gdp_path: ${DATA_DIR}/gdp.csv
`)

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)

	assert.Equal(t, "https://example.org/ict", cfg.ICTURL)
	assert.Equal(t, "/srv/data/gdp.csv", cfg.GDPPath)
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	ResetConfig()
	cwd := chdirTemp(t)
	cfgPath := writeConfig(t, cwd, "mode: [unclosed\n")

	_, err := LoadConfig(cfgPath, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoadConfig_InvalidValue(t *testing.T) {
	ResetConfig()
	chdirTemp(t)
	t.Setenv("AOC_MODE", "weekly")

	_, err := LoadConfig("", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid mode")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(c *Config)
		errSubstr string
	}{
		{"valid", func(_ *Config) {}, ""},
		{"empty ICT URL", func(c *Config) { c.ICTURL = "" }, "ict_url is required"},
		{"non-http CCS URL", func(c *Config) { c.CCSURL = "ftp://host/x" }, "scheme must be http or https"},
		{"URL without host", func(c *Config) { c.ICTURL = "http://" }, "missing host"},
		{"empty GDP path", func(c *Config) { c.GDPPath = "" }, "gdp_path is required"},
		{"unknown mode", func(c *Config) { c.Mode = "rolling" }, "unknown mode"},
		{"unknown naming", func(c *Config) { c.Naming = "name" }, "invalid naming"},
		{"label naming", func(c *Config) { c.Naming = "label" }, ""},
		{"unknown output", func(c *Config) { c.OutputFormat = "yaml" }, "invalid output format"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "invalid log_level"},
		{"zero chart width", func(c *Config) { c.Chart.Width = 0 }, "chart size must be positive"},
		{"unsupported chart format", func(c *Config) { c.Chart.Path = "aoc.bmp" }, "unsupported chart format"},
		{"export not xlsx", func(c *Config) { c.ExportPath = "aoc.csv" }, "must end in .xlsx"},
		{"export xlsx upper case", func(c *Config) { c.ExportPath = "AOC.XLSX" }, ""},
		{"negative rows", func(c *Config) { c.Display.MaxRows = -1 }, "must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.errSubstr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestConfig_ValidateInputs(t *testing.T) {
	dir := t.TempDir()
	cfg := validConfig()

	cfg.GDPPath = filepath.Join(dir, "missing.csv")
	err := cfg.ValidateInputs()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GDP file does not exist")

	cfg.GDPPath = dir
	err = cfg.ValidateInputs()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is a directory")

	cfg.GDPPath = filepath.Join(dir, "gdp.csv")
	require.NoError(t, os.WriteFile(cfg.GDPPath, []byte("Country|2020\n"), 0600))
	assert.NoError(t, cfg.ValidateInputs())
}

func TestConfig_SlogLevel(t *testing.T) {
	cfg := validConfig()

	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	cfg.LogLevel = "info"
	level, err = cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)

	cfg.Verbose = true
	level, err = cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level, "verbose forces debug")
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_VAR_ONE", "value_one")
	t.Setenv("TEST_VAR_TWO", "value_two")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"single variable", "${TEST_VAR_ONE}", "value_one"},
		{"multiple variables", "${TEST_VAR_ONE}/${TEST_VAR_TWO}", "value_one/value_two"},
		{"variable in path", "/path/to/${TEST_VAR_ONE}/file", "/path/to/value_one/file"},
		{"unset variable stays as-is", "${UNSET_VARIABLE}", "${UNSET_VARIABLE}"},
		{"no variables", "plain string", "plain string"},
		{"empty string", "", ""},
		{"mixed set and unset", "${TEST_VAR_ONE}:${UNSET_VAR}", "value_one:${UNSET_VAR}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, expandEnvVars(tt.input))
		})
	}
}

func TestGetLogger_Fallback(t *testing.T) {
	logger := GetLogger(context.Background())
	require.NotNil(t, logger)

	custom := slog.New(slog.DiscardHandler)
	ctx := context.WithValue(context.Background(), LoggerKey(), custom)
	assert.Same(t, custom, GetLogger(ctx))
}
