package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/aoc/internal/cli/config"
	"github.com/leapstack-labs/aoc/internal/cli/output"
	"github.com/leapstack-labs/aoc/internal/extract"
	"github.com/leapstack-labs/aoc/internal/gdp"
	"github.com/spf13/cobra"
)

// DoctorOptions holds options for the doctor command.
type DoctorOptions struct {
	Offline bool // Skip the network checks
}

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	opts := &DoctorOptions{}
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, inputs and sources before a run",
		Long: `Check that a run can succeed.

The doctor command verifies:
- Config: which file was loaded
- Inputs: the GDP file exists and parses
- Sources: both indicator endpoints answer with a usable JSON-stat cube
- Outputs: the chart and workbook directories are writable

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # Run all checks
  aoc doctor

  # Skip the network checks
  aoc doctor --offline -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Offline, "offline", false, "Skip fetching the indicator endpoints")

	return cmd
}

// Check statuses.
const (
	StatusPass = "pass"
	StatusWarn = "warn"
	StatusFail = "error"
	StatusSkip = "skip"
)

// DoctorOutput is the JSON output for the doctor command.
type DoctorOutput struct {
	Checks []HealthCheck `json:"checks"`
	Score  int           `json:"score"`
	Failed int           `json:"failed"`
}

// HealthCheck represents a single check result.
type HealthCheck struct {
	Name   string `json:"name"`
	Group  string `json:"group"`
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func runDoctor(cmd *cobra.Command, opts *DoctorOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer

	var checks []HealthCheck
	checks = append(checks, checkConfigFile())
	checks = append(checks, checkGDP(cfg))
	if opts.Offline {
		checks = append(checks,
			HealthCheck{Name: "ICT endpoint", Group: "sources", Status: StatusSkip, Detail: "offline"},
			HealthCheck{Name: "CCS endpoint", Group: "sources", Status: StatusSkip, Detail: "offline"},
		)
	} else {
		ex := createExtractor(cfg, cmdCtx.Logger)
		checks = append(checks,
			checkSource(cmd.Context(), ex, "ICT endpoint", cfg.ICTURL),
			checkSource(cmd.Context(), ex, "CCS endpoint", cfg.CCSURL),
		)
	}
	checks = append(checks, checkWritable("chart directory", cfg.Chart.Path))
	if cfg.ExportPath != "" {
		checks = append(checks, checkWritable("workbook directory", cfg.ExportPath))
	}

	out := &DoctorOutput{Checks: checks, Score: calculateHealthScore(checks)}
	for _, c := range checks {
		if c.Status == StatusFail {
			out.Failed++
		}
	}

	var renderErr error
	switch r.EffectiveMode() {
	case output.ModeJSON:
		renderErr = r.JSON(out)
	case output.ModeMarkdown, output.ModeCSV:
		renderDoctorMarkdown(r, out)
	default:
		renderDoctorText(r, out)
	}
	if renderErr != nil {
		return renderErr
	}
	if out.Failed > 0 {
		return fmt.Errorf("%d check(s) failed", out.Failed)
	}
	return nil
}

func checkConfigFile() HealthCheck {
	c := HealthCheck{Name: "config file", Group: "config", Status: StatusPass}
	if used := config.GetConfigFileUsed(); used != "" {
		c.Detail = used
	} else {
		c.Status = StatusWarn
		c.Detail = "no aoc.yaml found, using defaults and environment"
	}
	return c
}

func checkGDP(cfg *config.Config) HealthCheck {
	c := HealthCheck{Name: "GDP file", Group: "inputs"}
	if err := cfg.ValidateInputs(); err != nil {
		c.Status = StatusFail
		c.Detail = firstLine(err.Error())
		return c
	}
	records, err := gdp.Load(cfg.GDPPath)
	if err != nil {
		c.Status = StatusFail
		c.Detail = err.Error()
		return c
	}

	filled := 0
	for _, rec := range records {
		if rec.Filled {
			filled++
		}
	}
	c.Status = StatusPass
	c.Detail = fmt.Sprintf("%d values, %d filled", len(records), filled)
	if len(records) == 0 {
		c.Status = StatusWarn
		c.Detail = "no GDP values"
	}
	return c
}

func checkSource(ctx context.Context, ex *extract.Extractor, name, url string) HealthCheck {
	c := HealthCheck{Name: name, Group: "sources"}
	records, err := ex.Extract(ctx, url)
	if err != nil {
		c.Status = StatusFail
		var reqErr *extract.RequestError
		if errors.As(err, &reqErr) {
			c.Detail = "unreachable: " + reqErr.Err.Error()
		} else {
			c.Detail = err.Error()
		}
		return c
	}
	c.Status = StatusPass
	c.Detail = fmt.Sprintf("%d cells", len(records))
	if len(records) == 0 {
		c.Status = StatusWarn
		c.Detail = "empty cube"
	}
	return c
}

func checkWritable(name, path string) HealthCheck {
	c := HealthCheck{Name: name, Group: "outputs"}
	if path == "" {
		c.Status = StatusSkip
		c.Detail = "disabled"
		return c
	}
	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		c.Status = StatusWarn
		c.Detail = dir + " will be created"
		return c
	case err != nil:
		c.Status = StatusFail
		c.Detail = err.Error()
		return c
	case !info.IsDir():
		c.Status = StatusFail
		c.Detail = dir + " is not a directory"
		return c
	}

	tmp, err := os.CreateTemp(dir, ".aoc-doctor-*")
	if err != nil {
		c.Status = StatusFail
		c.Detail = "not writable: " + err.Error()
		return c
	}
	_ = tmp.Close()
	_ = os.Remove(tmp.Name())
	c.Status = StatusPass
	c.Detail = dir
	return c
}

// calculateHealthScore computes a health score from 0-100.
// Failures cost 25 points, warnings 10; skipped checks are neutral.
func calculateHealthScore(checks []HealthCheck) int {
	score := 100
	for _, check := range checks {
		switch check.Status {
		case StatusFail:
			score -= 25
		case StatusWarn:
			score -= 10
		}
	}
	return max(score, 0)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func renderDoctorText(r *output.Renderer, out *DoctorOutput) {
	styles := r.Styles()

	r.Println("")
	r.Println(styles.Header1.Render("aoc Health Report"))
	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))
	r.Println("")

	currentGroup := ""
	titleCaser := cases.Title(language.English)
	for _, check := range out.Checks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			r.Println(styles.Bold.Render("   " + titleCaser.String(currentGroup)))
			r.Println(styles.Muted.Render("   " + strings.Repeat("-", 40)))
		}

		icon := styles.Success.Render("✓")
		switch check.Status {
		case StatusWarn:
			icon = styles.Warning.Render("!")
		case StatusFail:
			icon = styles.Error.Render("✗")
		case StatusSkip:
			icon = styles.Muted.Render("-")
		}

		line := fmt.Sprintf("   %s %s", icon, check.Name)
		if check.Detail != "" {
			line += "  " + styles.Muted.Render(check.Detail)
		}
		r.Println(line)
	}
	r.Println("")

	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))
	scoreStyle := styles.Success
	if out.Score < 70 {
		scoreStyle = styles.Warning
	}
	if out.Score < 50 {
		scoreStyle = styles.Error
	}
	r.Printf("   Health Score: %s\n", scoreStyle.Render(fmt.Sprintf("%d/100", out.Score)))
	r.Println("")
}

func renderDoctorMarkdown(r *output.Renderer, out *DoctorOutput) {
	r.Println("# aoc Health Report")
	r.Println("")

	currentGroup := ""
	titleCaser := cases.Title(language.English)
	for _, check := range out.Checks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			r.Println("")
			r.Println("## " + titleCaser.String(currentGroup))
			r.Println("")
		}

		r.Printf("- **[%s]** %s", strings.ToUpper(check.Status), check.Name)
		if check.Detail != "" {
			r.Printf(": %s", check.Detail)
		}
		r.Println("")
	}
	r.Println("")

	r.Println("## Health Score")
	r.Println("")
	r.Printf("**%d/100**\n", out.Score)
}
