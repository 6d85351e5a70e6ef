// Package gdp loads the local GDP table: a pipe-delimited wide file with one
// row per country and one column per year, reshaped into long form.
package gdp

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/leapstack-labs/aoc/pkg/core"
)

// Delimiter separates fields in the GDP file.
const Delimiter = '|'

// CountryColumn is the header of the identifier column.
const CountryColumn = "Country"

// ExcludeMarker drops any row with a cell containing it. The source file
// carries administrative aggregate rows that are not countries.
const ExcludeMarker = "Office"

// missingTokens are cell values read as missing, like an empty cell. They
// follow the default NA markers of pandas' read_csv.
var missingTokens = map[string]bool{
	"#N/A": true, "#N/A N/A": true, "#NA": true, "-1.#IND": true, "-1.#QNAN": true,
	"-NaN": true, "-nan": true, "1.#IND": true, "1.#QNAN": true, "<NA>": true,
	"N/A": true, "NA": true, "NULL": true, "NaN": true, "None": true,
	"n/a": true, "nan": true, "null": true,
}

// Load reads and reshapes the GDP file at path.
func Load(path string) ([]core.GdpRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open GDP file: %w", err)
	}
	defer func() { _ = f.Close() }()

	records, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// Parse reads a wide GDP table from r and returns it in long form, ordered
// year by year (all countries of the first year column, then the next).
func Parse(r io.Reader) ([]core.GdpRecord, error) {
	cr := csv.NewReader(r)
	cr.Comma = Delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("GDP file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	countryCol := -1
	for i, h := range header {
		if h == CountryColumn {
			countryCol = i
			break
		}
	}
	if countryCol < 0 {
		return nil, fmt.Errorf("header has no %q column: %v", CountryColumn, header)
	}

	var rows []row
	for line := 2; ; line++ {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(fields) > len(header) {
			return nil, fmt.Errorf("line %d: %d fields, header has %d", line, len(fields), len(header))
		}

		rw := fill(fields, len(header), line)
		if rw.contains(ExcludeMarker) {
			continue
		}
		rows = append(rows, rw)
	}

	out := make([]core.GdpRecord, 0, len(rows)*(len(header)-1))
	for col, year := range header {
		if col == countryCol {
			continue
		}
		for _, rw := range rows {
			v, err := ParseDecimal(rw.cells[col])
			if err != nil {
				return nil, fmt.Errorf("line %d, column %q: %w", rw.line, year, err)
			}
			out = append(out, core.GdpRecord{
				Country: rw.cells[countryCol],
				Year:    year,
				GDP:     v,
				Filled:  rw.filled[col],
			})
		}
	}
	return out, nil
}

type row struct {
	line   int
	cells  []string
	filled []bool
}

// fill pads short rows and replaces empty or NA cells with the sentinel text.
func fill(fields []string, width, line int) row {
	rw := row{line: line, cells: make([]string, width), filled: make([]bool, width)}
	for i := 0; i < width; i++ {
		if i < len(fields) && fields[i] != "" && !missingTokens[strings.TrimSpace(fields[i])] {
			rw.cells[i] = fields[i]
			continue
		}
		rw.cells[i] = core.SentinelText
		rw.filled[i] = true
	}
	return rw
}

func (r row) contains(marker string) bool {
	for _, c := range r.cells {
		if strings.Contains(c, marker) {
			return true
		}
	}
	return false
}

// ParseDecimal parses a number written with a comma decimal separator.
// When s contains a comma it must be the only one, with nothing but digits
// after it; dots before it are thousands separators and must sit on groups
// of three digits. "1.234,56" is 1234.56 while "1,234.56" is rejected.
// Text without a comma is parsed unchanged. Non-finite results are errors.
func ParseDecimal(s string) (float64, error) {
	s = strings.TrimSpace(s)
	text := s
	if intPart, frac, ok := strings.Cut(s, ","); ok {
		if strings.ContainsAny(frac, ".,") {
			return 0, fmt.Errorf("invalid GDP value %q: mixed decimal separators", text)
		}
		groups := strings.Split(intPart, ".")
		for _, g := range groups[1:] {
			if len(g) != 3 {
				return 0, fmt.Errorf("invalid GDP value %q: misplaced thousands separator", text)
			}
		}
		s = strings.Join(groups, "") + "." + frac
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid GDP value %q: %w", text, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid GDP value %q: not a finite number", text)
	}
	return v, nil
}
