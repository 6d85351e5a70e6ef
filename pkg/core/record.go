package core

import (
	"cmp"
	"strconv"
	"strings"
)

// Key identifies an observation across all three sources.
// Keys match only on exact string equality; no normalization is applied.
type Key struct {
	Country string
	Year    string
}

// IndicatorRecord is one (Country, Year) observation of a remote indicator.
type IndicatorRecord struct {
	Country string  `json:"country"`
	Year    string  `json:"year"`
	Value   float64 `json:"value"`
	// Filled is true when Value is the sentinel standing in for a missing cell.
	Filled bool `json:"filled,omitempty"`
}

// Key returns the join key of the record.
func (r IndicatorRecord) Key() Key { return Key{Country: r.Country, Year: r.Year} }

// GdpRecord is one long-form GDP observation.
type GdpRecord struct {
	Country string  `json:"country"`
	Year    string  `json:"year"`
	GDP     float64 `json:"gdp"`
	Filled  bool    `json:"filled,omitempty"`
}

// Key returns the join key of the record.
func (r GdpRecord) Key() Key { return Key{Country: r.Country, Year: r.Year} }

// MergedRecord is a joined row carrying all three inputs and the composite.
type MergedRecord struct {
	Country string  `json:"country"`
	Year    string  `json:"year"`
	ICT     float64 `json:"ict_value"`
	CCS     float64 `json:"ccs_value"`
	GDP     float64 `json:"gdp_value"`
	AOC     float64 `json:"aoc"`
	Filled  Fill    `json:"filled,omitempty"`
}

// Key returns the join key of the record.
func (r MergedRecord) Key() Key { return Key{Country: r.Country, Year: r.Year} }

// Composite computes AOC = GDP × CCS × ICT.
func Composite(gdp, ccs, ict float64) float64 {
	return gdp * ccs * ict
}

// CompareYear orders year labels numerically when both parse as integers
// and lexically otherwise. It returns -1, 0 or +1.
func CompareYear(a, b string) int {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	if aerr == nil && berr == nil {
		return cmp.Compare(ai, bi)
	}
	return strings.Compare(a, b)
}
