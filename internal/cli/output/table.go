package output

import (
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Display limits how much of a table is shown in text and markdown modes.
// JSON and CSV always carry every row and column.
type Display struct {
	// MaxRows caps the rows shown; 0 shows all.
	MaxRows int `koanf:"max_rows" yaml:"max_rows" json:"max_rows"`
	// MaxColumns caps the columns shown; 0 shows all.
	MaxColumns int `koanf:"max_columns" yaml:"max_columns" json:"max_columns"`
	// Precision is the number of decimals for float cells.
	Precision int `koanf:"precision" yaml:"precision" json:"precision"`
}

// Display defaults.
const (
	DefaultMaxRows    = 50
	DefaultMaxColumns = 0
	DefaultPrecision  = 4
)

// DefaultDisplay returns the limits used when none are configured.
func DefaultDisplay() Display {
	return Display{
		MaxRows:    DefaultMaxRows,
		MaxColumns: DefaultMaxColumns,
		Precision:  DefaultPrecision,
	}
}

func (d Display) withDefaults() Display {
	if d.MaxRows < 0 {
		d.MaxRows = 0
	}
	if d.MaxColumns < 0 {
		d.MaxColumns = 0
	}
	if d.Precision < 0 {
		d.Precision = DefaultPrecision
	}
	return d
}

// Table is a titled grid of cells. Cells are strings, bools, ints or
// float64; nil marks a missing cell.
type Table struct {
	Title   string
	Columns []string
	Rows    [][]any
}

// Table renders t in the effective mode.
func (r *Renderer) Table(t Table) error {
	switch r.EffectiveMode() {
	case ModeJSON:
		return r.JSON(t.Objects())
	case ModeCSV:
		return r.tableCSV(t)
	case ModeMarkdown:
		return r.tableMarkdown(t)
	default:
		return r.tableText(t)
	}
}

// Objects returns one column-keyed map per row.
func (t Table) Objects() []map[string]any {
	objs := make([]map[string]any, 0, len(t.Rows))
	for _, row := range t.Rows {
		obj := make(map[string]any, len(t.Columns))
		for i, col := range t.Columns {
			if i < len(row) {
				obj[col] = row[i]
			} else {
				obj[col] = nil
			}
		}
		objs = append(objs, obj)
	}
	return objs
}

// truncate applies the display limits and reports what was hidden.
func (t Table) truncate(d Display) (Table, int, int) {
	hiddenRows, hiddenCols := 0, 0
	out := Table{Title: t.Title, Columns: t.Columns, Rows: t.Rows}

	if d.MaxColumns > 0 && len(out.Columns) > d.MaxColumns {
		hiddenCols = len(out.Columns) - d.MaxColumns
		out.Columns = out.Columns[:d.MaxColumns]
		rows := make([][]any, len(out.Rows))
		for i, row := range out.Rows {
			if len(row) > d.MaxColumns {
				row = row[:d.MaxColumns]
			}
			rows[i] = row
		}
		out.Rows = rows
	}
	if d.MaxRows > 0 && len(out.Rows) > d.MaxRows {
		hiddenRows = len(out.Rows) - d.MaxRows
		out.Rows = out.Rows[:d.MaxRows]
	}
	return out, hiddenRows, hiddenCols
}

func (r *Renderer) prettyWriter(t Table) table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)

	header := make(table.Row, len(t.Columns))
	for i, col := range t.Columns {
		header[i] = col
	}
	tw.AppendHeader(header)

	var configs []table.ColumnConfig
	for i := range t.Columns {
		if numericColumn(t.Rows, i) {
			configs = append(configs, table.ColumnConfig{Number: i + 1, Align: text.AlignRight})
		}
	}
	tw.SetColumnConfigs(configs)

	printer := message.NewPrinter(language.English)
	for _, row := range t.Rows {
		cells := make(table.Row, len(t.Columns))
		for i := range t.Columns {
			var v any
			if i < len(row) {
				v = row[i]
			}
			cells[i] = FormatCell(printer, v, r.display.Precision)
		}
		tw.AppendRow(cells)
	}
	return tw
}

func (r *Renderer) tableText(t Table) error {
	shown, hiddenRows, hiddenCols := t.truncate(r.display)
	if len(t.Rows) == 0 {
		if t.Title != "" {
			r.Header(2, t.Title)
		}
		r.Println("(0 rows)")
		return nil
	}

	tw := r.prettyWriter(shown)
	if t.Title != "" {
		tw.SetTitle(t.Title)
	}
	r.Println(tw.Render())
	r.footer(len(t.Rows), hiddenRows, hiddenCols)
	return nil
}

func (r *Renderer) tableMarkdown(t Table) error {
	shown, hiddenRows, hiddenCols := t.truncate(r.display)
	if t.Title != "" {
		r.Println(FormatHeader(2, t.Title))
		r.Println("")
	}
	if len(t.Rows) == 0 {
		r.Println("(0 rows)")
		return nil
	}
	r.Println(r.prettyWriter(shown).RenderMarkdown())
	r.footer(len(t.Rows), hiddenRows, hiddenCols)
	return nil
}

func (r *Renderer) footer(total, hiddenRows, hiddenCols int) {
	switch {
	case hiddenRows > 0 && hiddenCols > 0:
		r.Printf("(%d rows, showing %d; %d columns hidden)\n", total, total-hiddenRows, hiddenCols)
	case hiddenRows > 0:
		r.Printf("(%d rows, showing %d)\n", total, total-hiddenRows)
	case hiddenCols > 0:
		r.Printf("(%d rows; %d columns hidden)\n", total, hiddenCols)
	default:
		r.Printf("(%d rows)\n", total)
	}
}

func (r *Renderer) tableCSV(t Table) error {
	w := csv.NewWriter(r.out)
	if err := w.Write(t.Columns); err != nil {
		return err
	}
	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i := range t.Columns {
			var v any
			if i < len(row) {
				v = row[i]
			}
			record[i] = rawCell(v)
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// FormatCell formats a cell for humans: floats are grouped and rounded to
// precision, nil becomes "-".
func FormatCell(p *message.Printer, v any, precision int) string {
	switch val := v.(type) {
	case nil:
		return "-"
	case float64:
		return p.Sprintf(fmt.Sprintf("%%.%df", precision), val)
	case int:
		return p.Sprintf("%d", val)
	case bool:
		if val {
			return "yes"
		}
		return ""
	default:
		return fmt.Sprint(val)
	}
}

// rawCell formats a cell for machines: full float precision, no grouping.
func rawCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}

func numericColumn(rows [][]any, col int) bool {
	seen := false
	for _, row := range rows {
		if col >= len(row) || row[col] == nil {
			continue
		}
		switch row[col].(type) {
		case float64, int:
			seen = true
		default:
			return false
		}
	}
	return seen
}
