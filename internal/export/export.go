// Package export writes the merged and pivoted AOC tables to an Excel
// workbook.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/leapstack-labs/aoc/internal/chart"
	"github.com/leapstack-labs/aoc/pkg/core"
)

// Sheet names.
const (
	MergedSheet = "merged"
	PivotSheet  = "pivot"
)

// MergedHeaders are the column headers of the merged sheet.
var MergedHeaders = []string{"Country", "Year", "ICT_value", "CCS_value", "GDP_value", "AOC", "Filled"}

// Workbook builds a workbook holding merged on one sheet and pivot on another.
// The caller owns the returned file and must Close it.
func Workbook(merged []core.MergedRecord, pivot *chart.PivotTable) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", MergedSheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	if err := writeMerged(f, merged); err != nil {
		_ = f.Close()
		return nil, err
	}

	if _, err := f.NewSheet(PivotSheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to create sheet %s: %w", PivotSheet, err)
	}
	if err := writePivot(f, pivot); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

// WriteWorkbook saves the workbook to path.
func WriteWorkbook(path string, merged []core.MergedRecord, pivot *chart.PivotTable) error {
	f, err := Workbook(merged, pivot)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

// Write streams the workbook to w.
func Write(w io.Writer, merged []core.MergedRecord, pivot *chart.PivotTable) error {
	f, err := Workbook(merged, pivot)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeMerged(f *excelize.File, rows []core.MergedRecord) error {
	header := make([]any, len(MergedHeaders))
	for i, h := range MergedHeaders {
		header[i] = h
	}
	if err := setRow(f, MergedSheet, 1, header); err != nil {
		return err
	}

	for i, r := range rows {
		values := []any{r.Country, r.Year, r.ICT, r.CCS, r.GDP, r.AOC, nil}
		if r.Filled != 0 {
			values[6] = r.Filled.String()
		}
		if err := setRow(f, MergedSheet, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

func writePivot(f *excelize.File, p *chart.PivotTable) error {
	header := make([]any, 0, len(p.Countries)+1)
	header = append(header, "Year")
	for _, c := range p.Countries {
		header = append(header, c)
	}
	if err := setRow(f, PivotSheet, 1, header); err != nil {
		return err
	}

	for i, year := range p.Years {
		values := make([]any, 0, len(p.Countries)+1)
		values = append(values, year)
		for _, c := range p.Countries {
			if v, ok := p.Value(year, c); ok {
				values = append(values, v)
			} else {
				values = append(values, nil)
			}
		}
		if err := setRow(f, PivotSheet, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}
