package output

import (
	"time"

	"github.com/leapstack-labs/aoc/internal/chart"
	"github.com/leapstack-labs/aoc/pkg/core"
)

// IndicatorTable tabulates extracted indicator records.
func IndicatorTable(title string, records []core.IndicatorRecord) Table {
	t := Table{Title: title, Columns: []string{"Country", "Year", "Value", "Filled"}}
	for _, rec := range records {
		t.Rows = append(t.Rows, []any{rec.Country, rec.Year, rec.Value, rec.Filled})
	}
	return t
}

// GdpTable tabulates GDP records.
func GdpTable(title string, records []core.GdpRecord) Table {
	t := Table{Title: title, Columns: []string{"Country", "Year", "GDP", "Filled"}}
	for _, rec := range records {
		t.Rows = append(t.Rows, []any{rec.Country, rec.Year, rec.GDP, rec.Filled})
	}
	return t
}

// MergedTable tabulates joined rows.
func MergedTable(title string, records []core.MergedRecord) Table {
	t := Table{
		Title:   title,
		Columns: []string{"Country", "Year", "ICT_value", "CCS_value", "GDP_value", "AOC", "Filled"},
	}
	for _, rec := range records {
		t.Rows = append(t.Rows, []any{rec.Country, rec.Year, rec.ICT, rec.CCS, rec.GDP, rec.AOC, rec.Filled.String()})
	}
	return t
}

// PivotTable tabulates a pivot with one row per year and one column per
// country. Missing cells are nil.
func PivotTable(title string, p *chart.PivotTable) Table {
	t := Table{Title: title, Columns: append([]string{"Year"}, p.Countries...)}
	for _, year := range p.Years {
		row := make([]any, 0, len(p.Countries)+1)
		row = append(row, year)
		for _, country := range p.Countries {
			if v, ok := p.Value(year, country); ok {
				row = append(row, v)
			} else {
				row = append(row, nil)
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// RunSummary describes a finished pipeline run.
type RunSummary struct {
	RunID      string `json:"run_id"`
	Mode       string `json:"mode"`
	ICTRows    int    `json:"ict_rows"`
	CCSRows    int    `json:"ccs_rows"`
	GDPRows    int    `json:"gdp_rows"`
	MergedRows int    `json:"merged_rows"`
	Countries  int    `json:"countries"`
	Years      int    `json:"years"`
	FilledICT  int    `json:"filled_ict"`
	FilledCCS  int    `json:"filled_ccs"`
	FilledGDP  int    `json:"filled_gdp"`
	Chart      string `json:"chart,omitempty"`
	Export     string `json:"export,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// RunReport is the JSON document emitted by a run.
type RunReport struct {
	Summary RunSummary          `json:"summary"`
	Merged  []core.MergedRecord `json:"merged"`
	Pivot   []map[string]any    `json:"pivot"`
}

type field struct {
	key   string
	value any
}

func (s RunSummary) fields() []field {
	fields := []field{
		{"Run ID", s.RunID},
		{"Mode", s.Mode},
		{"ICT rows", s.ICTRows},
		{"CCS rows", s.CCSRows},
		{"GDP rows", s.GDPRows},
		{"Merged rows", s.MergedRows},
		{"Countries", s.Countries},
		{"Years", s.Years},
		{"Sentinel ICT", s.FilledICT},
		{"Sentinel CCS", s.FilledCCS},
		{"Sentinel GDP", s.FilledGDP},
	}
	if s.Chart != "" {
		fields = append(fields, field{"Chart", s.Chart})
	}
	if s.Export != "" {
		fields = append(fields, field{"Workbook", s.Export})
	}
	return fields
}

// Summary renders s as a key/value list (a two column table in CSV mode)
// followed by the completion line, which goes to stderr in json and csv modes.
func (r *Renderer) Summary(s RunSummary) error {
	fields := s.fields()

	switch r.EffectiveMode() {
	case ModeJSON:
		if err := r.JSON(s); err != nil {
			return err
		}
	case ModeCSV:
		t := Table{Columns: []string{"field", "value"}}
		for _, f := range fields {
			t.Rows = append(t.Rows, []any{f.key, f.value})
		}
		if err := r.tableCSV(t); err != nil {
			return err
		}
	case ModeMarkdown:
		r.Println(FormatHeader(2, "Summary"))
		r.Println("")
		for _, f := range fields {
			r.Println(FormatKeyValue(f.key, f.value))
		}
		r.Println("")
	default:
		r.Header(2, "Summary")
		for _, f := range fields {
			r.Printf("  %s %v\n", r.styles.Bold.Render(f.key+":"), f.value)
		}
	}

	elapsed := time.Duration(s.DurationMS) * time.Millisecond
	r.Success("Completed in " + elapsed.String())
	return nil
}
