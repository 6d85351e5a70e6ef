package chart

import (
	"slices"

	"github.com/leapstack-labs/aoc/pkg/core"
)

// PivotTable is the merged table reshaped to rows = Year, columns = Country,
// cell = sum of AOC. Cells with no contributing row are absent, not zero.
type PivotTable struct {
	Years     []string
	Countries []string

	cells map[core.Key]float64
}

// Pivot builds a PivotTable from merged rows. Years ascend (numerically when
// possible) and countries ascend lexically. Duplicate (Country, Year) rows
// are summed.
func Pivot(rows []core.MergedRecord) *PivotTable {
	p := &PivotTable{cells: make(map[core.Key]float64)}
	years := make(map[string]bool)
	countries := make(map[string]bool)

	for _, r := range rows {
		p.cells[r.Key()] += r.AOC
		if !years[r.Year] {
			years[r.Year] = true
			p.Years = append(p.Years, r.Year)
		}
		if !countries[r.Country] {
			countries[r.Country] = true
			p.Countries = append(p.Countries, r.Country)
		}
	}

	slices.SortFunc(p.Years, core.CompareYear)
	slices.Sort(p.Countries)
	return p
}

// Value returns the cell for (year, country) and whether it is present.
func (p *PivotTable) Value(year, country string) (float64, bool) {
	v, ok := p.cells[core.Key{Country: country, Year: year}]
	return v, ok
}

// Len returns the number of present cells.
func (p *PivotTable) Len() int { return len(p.cells) }
