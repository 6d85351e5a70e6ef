// Package transform joins the indicator and GDP tables and computes the AOC
// composite.
package transform

import (
	"fmt"
	"slices"
	"strings"

	"github.com/leapstack-labs/aoc/pkg/core"
)

// Mode selects how joined rows are reported.
type Mode string

// Aggregation modes.
const (
	// ModeInstant reports one row per joined (Country, Year) pair with its
	// own composite value.
	ModeInstant Mode = "instant"
	// ModeCumulative collapses rows per (Country, Year) and reports the
	// running total of AOC per country in ascending year order.
	ModeCumulative Mode = "cumulative"
)

// Modes lists the accepted modes.
var Modes = []Mode{ModeInstant, ModeCumulative}

// ParseMode converts a string to a Mode. The empty string is ModeInstant.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeInstant:
		return ModeInstant, nil
	case ModeCumulative:
		return ModeCumulative, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want one of %v)", s, Modes)
	}
}

// Options controls Transform.
type Options struct {
	Mode Mode
}

// Transform left-joins ICT and then GDP onto the CCS anchor table by
// (Country, Year) and computes AOC = GDP × CCS × ICT per row.
//
// Join multiplicity follows SQL: an anchor row with n matches yields n rows,
// and anchor order is preserved. Unmatched cells take core.Sentinel and are
// flagged in MergedRecord.Filled.
func Transform(ict, ccs []core.IndicatorRecord, gdp []core.GdpRecord, opts Options) []core.MergedRecord {
	ictByKey := make(map[core.Key][]core.IndicatorRecord, len(ict))
	for _, r := range ict {
		ictByKey[r.Key()] = append(ictByKey[r.Key()], r)
	}
	gdpByKey := make(map[core.Key][]core.GdpRecord, len(gdp))
	for _, r := range gdp {
		gdpByKey[r.Key()] = append(gdpByKey[r.Key()], r)
	}

	merged := make([]core.MergedRecord, 0, len(ccs))
	for _, anchor := range ccs {
		base := core.MergedRecord{
			Country: anchor.Country,
			Year:    anchor.Year,
			CCS:     anchor.Value,
		}
		if anchor.Filled {
			base.Filled |= core.FillCCS
		}

		for _, withICT := range joinICT(base, ictByKey[anchor.Key()]) {
			for _, row := range joinGDP(withICT, gdpByKey[anchor.Key()]) {
				row.AOC = core.Composite(row.GDP, row.CCS, row.ICT)
				merged = append(merged, row)
			}
		}
	}

	if opts.Mode == ModeCumulative {
		return cumulate(merged)
	}
	return merged
}

func joinICT(base core.MergedRecord, matches []core.IndicatorRecord) []core.MergedRecord {
	if len(matches) == 0 {
		base.ICT = core.Sentinel
		base.Filled |= core.FillICT
		return []core.MergedRecord{base}
	}
	out := make([]core.MergedRecord, 0, len(matches))
	for _, m := range matches {
		row := base
		row.ICT = m.Value
		if m.Filled {
			row.Filled |= core.FillICT
		}
		out = append(out, row)
	}
	return out
}

func joinGDP(base core.MergedRecord, matches []core.GdpRecord) []core.MergedRecord {
	if len(matches) == 0 {
		base.GDP = core.Sentinel
		base.Filled |= core.FillGDP
		return []core.MergedRecord{base}
	}
	out := make([]core.MergedRecord, 0, len(matches))
	for _, m := range matches {
		row := base
		row.GDP = m.GDP
		if m.Filled {
			row.Filled |= core.FillGDP
		}
		out = append(out, row)
	}
	return out
}

// cumulate groups rows by key, summing AOC, and replaces each group's AOC
// with the running total for its country. Input values (ICT, CCS, GDP) of a
// group are those of its first row; Filled is the union over the group.
func cumulate(rows []core.MergedRecord) []core.MergedRecord {
	groups := make(map[core.Key]int)
	var out []core.MergedRecord
	for _, r := range rows {
		if i, ok := groups[r.Key()]; ok {
			out[i].AOC += r.AOC
			out[i].Filled |= r.Filled
			continue
		}
		groups[r.Key()] = len(out)
		out = append(out, r)
	}

	slices.SortStableFunc(out, func(a, b core.MergedRecord) int {
		if c := strings.Compare(a.Country, b.Country); c != 0 {
			return c
		}
		return core.CompareYear(a.Year, b.Year)
	})

	var running float64
	for i := range out {
		if i == 0 || out[i].Country != out[i-1].Country {
			running = 0
		}
		running += out[i].AOC
		out[i].AOC = running
	}
	return out
}
