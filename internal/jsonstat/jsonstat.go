// Package jsonstat decodes JSON-stat statistical cubes.
//
// A cube is a set of dimensions, each with an ordered list of category
// codes, and a flattened value array laid out in row-major order (the last
// dimension varies fastest). Both JSON-stat 2.0 datasets and JSON-stat 1.x
// bundles are accepted.
package jsonstat

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
)

// Dataset is a decoded cube.
type Dataset struct {
	Label   string
	Source  string
	Updated string

	// ID lists dimension ids in cube order; Size is the category count of each.
	ID   []string
	Size []int

	Dimensions map[string]*Dimension

	values map[int]float64
	status map[int]string
}

// Dimension is one axis of the cube.
type Dimension struct {
	ID    string
	Label string
	// Codes are category codes ordered by their position in the cube.
	Codes  []string
	Labels map[string]string
}

// Observation is one cell of the cube.
type Observation struct {
	// Codes holds one category code per dimension, aligned with Dataset.ID.
	Codes   []string
	Value   float64
	Missing bool
	Status  string
}

// Decode reads a JSON-stat document and returns its dataset. For bundles
// the first dataset in document order is returned.
func Decode(r io.Reader) (*Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read cube: %w", err)
	}

	raw, err := locateDataset(data)
	if err != nil {
		return nil, err
	}
	return build(raw)
}

type rawDataset struct {
	Class     string                     `json:"class"`
	Label     string                     `json:"label"`
	Source    string                     `json:"source"`
	Updated   string                     `json:"updated"`
	ID        []string                   `json:"id"`
	Size      []int                      `json:"size"`
	Value     json.RawMessage            `json:"value"`
	Status    json.RawMessage            `json:"status"`
	Dimension map[string]json.RawMessage `json:"dimension"`
}

type rawDimension struct {
	Label    string      `json:"label"`
	Category rawCategory `json:"category"`
}

type rawCategory struct {
	Index json.RawMessage   `json:"index"`
	Label map[string]string `json:"label"`
}

// locateDataset finds the dataset object, unwrapping a 1.x bundle if needed.
func locateDataset(data []byte) (*rawDataset, error) {
	var head struct {
		Class     string          `json:"class"`
		Dimension json.RawMessage `json:"dimension"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("invalid JSON-stat document: %w", err)
	}

	switch {
	case head.Class == "dataset" || len(head.Dimension) > 0:
		var ds rawDataset
		if err := json.Unmarshal(data, &ds); err != nil {
			return nil, fmt.Errorf("invalid JSON-stat dataset: %w", err)
		}
		return &ds, nil
	case head.Class == "" || head.Class == "bundle":
		return firstInBundle(data)
	default:
		return nil, fmt.Errorf("unsupported JSON-stat class %q", head.Class)
	}
}

// firstInBundle walks the top-level object in document order and returns
// the first member that looks like a dataset.
func firstInBundle(data []byte) (*rawDataset, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("invalid JSON-stat bundle: %w", err)
	}
	for dec.More() {
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("invalid JSON-stat bundle: %w", err)
		}
		var member json.RawMessage
		if err := dec.Decode(&member); err != nil {
			return nil, fmt.Errorf("invalid JSON-stat bundle: %w", err)
		}
		var ds rawDataset
		if err := json.Unmarshal(member, &ds); err != nil {
			continue
		}
		if len(ds.Dimension) > 0 {
			return &ds, nil
		}
	}
	return nil, errors.New("JSON-stat document contains no dataset")
}

func build(raw *rawDataset) (*Dataset, error) {
	ids, sizes := raw.ID, raw.Size
	// JSON-stat 1.x keeps id and size inside the dimension object.
	if len(ids) == 0 {
		if msg, ok := raw.Dimension["id"]; ok {
			if err := json.Unmarshal(msg, &ids); err != nil {
				return nil, fmt.Errorf("invalid dimension id list: %w", err)
			}
		}
		if msg, ok := raw.Dimension["size"]; ok {
			if err := json.Unmarshal(msg, &sizes); err != nil {
				return nil, fmt.Errorf("invalid dimension size list: %w", err)
			}
		}
	}
	if len(ids) == 0 {
		return nil, errors.New("JSON-stat dataset has no dimensions")
	}
	if len(ids) != len(sizes) {
		return nil, fmt.Errorf("dimension id/size mismatch: %d ids, %d sizes", len(ids), len(sizes))
	}

	ds := &Dataset{
		Label:      raw.Label,
		Source:     raw.Source,
		Updated:    raw.Updated,
		ID:         ids,
		Size:       sizes,
		Dimensions: make(map[string]*Dimension, len(ids)),
	}

	for i, id := range ids {
		msg, ok := raw.Dimension[id]
		if !ok {
			return nil, fmt.Errorf("dimension %q listed in id but not described", id)
		}
		dim, err := buildDimension(id, msg)
		if err != nil {
			return nil, err
		}
		if len(dim.Codes) != sizes[i] {
			return nil, fmt.Errorf("dimension %q has %d categories, size says %d", id, len(dim.Codes), sizes[i])
		}
		ds.Dimensions[id] = dim
	}

	total := ds.Len()
	values, err := decodeValues(raw.Value, total)
	if err != nil {
		return nil, err
	}
	ds.values = values

	// Status is informational; a malformed block is ignored.
	ds.status = decodeStatus(raw.Status, total)

	return ds, nil
}

func buildDimension(id string, msg json.RawMessage) (*Dimension, error) {
	var rd rawDimension
	if err := json.Unmarshal(msg, &rd); err != nil {
		return nil, fmt.Errorf("invalid dimension %q: %w", id, err)
	}

	dim := &Dimension{ID: id, Label: rd.Label, Labels: rd.Category.Label}

	index := bytes.TrimSpace(rd.Category.Index)
	switch {
	case len(index) == 0 || bytes.Equal(index, []byte("null")):
		if len(rd.Category.Label) != 1 {
			return nil, fmt.Errorf("dimension %q has no category index and %d labels", id, len(rd.Category.Label))
		}
		for code := range rd.Category.Label {
			dim.Codes = []string{code}
		}
	case index[0] == '[':
		if err := json.Unmarshal(index, &dim.Codes); err != nil {
			return nil, fmt.Errorf("invalid category index for %q: %w", id, err)
		}
	default:
		var positions map[string]int
		if err := json.Unmarshal(index, &positions); err != nil {
			return nil, fmt.Errorf("invalid category index for %q: %w", id, err)
		}
		dim.Codes = make([]string, len(positions))
		for code, pos := range positions {
			if pos < 0 || pos >= len(positions) || dim.Codes[pos] != "" {
				return nil, fmt.Errorf("category %q of %q has invalid position %d", code, id, pos)
			}
			dim.Codes[pos] = code
		}
	}

	return dim, nil
}

func decodeValues(msg json.RawMessage, total int) (map[int]float64, error) {
	values := make(map[int]float64)
	msg = bytes.TrimSpace(msg)
	if len(msg) == 0 || bytes.Equal(msg, []byte("null")) {
		return values, nil
	}

	if msg[0] == '[' {
		var cells []json.RawMessage
		if err := json.Unmarshal(msg, &cells); err != nil {
			return nil, fmt.Errorf("invalid value array: %w", err)
		}
		if len(cells) != total {
			return nil, fmt.Errorf("value array has %d cells, cube has %d", len(cells), total)
		}
		for i, cell := range cells {
			v, ok, err := coerce(cell)
			if err != nil {
				return nil, fmt.Errorf("value %d: %w", i, err)
			}
			if ok {
				values[i] = v
			}
		}
		return values, nil
	}

	var cells map[string]json.RawMessage
	if err := json.Unmarshal(msg, &cells); err != nil {
		return nil, fmt.Errorf("invalid value object: %w", err)
	}
	for key, cell := range cells {
		i, err := strconv.Atoi(key)
		if err != nil || i < 0 || i >= total {
			return nil, fmt.Errorf("value index %q out of range [0,%d)", key, total)
		}
		v, ok, err := coerce(cell)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
		if ok {
			values[i] = v
		}
	}
	return values, nil
}

// coerce converts a cell to a float. ok is false for null cells.
func coerce(cell json.RawMessage) (v float64, ok bool, err error) {
	cell = bytes.TrimSpace(cell)
	if len(cell) == 0 || bytes.Equal(cell, []byte("null")) {
		return 0, false, nil
	}
	if cell[0] == '"' {
		var s string
		if err := json.Unmarshal(cell, &s); err != nil {
			return 0, false, err
		}
		if s == "" {
			return 0, false, nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false, fmt.Errorf("non-numeric value %q", s)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false, fmt.Errorf("non-finite value %q", s)
		}
		return v, true, nil
	}
	if err := json.Unmarshal(cell, &v); err != nil {
		return 0, false, fmt.Errorf("non-numeric value %s", cell)
	}
	return v, true, nil
}

func decodeStatus(msg json.RawMessage, total int) map[int]string {
	status := make(map[int]string)
	msg = bytes.TrimSpace(msg)
	if len(msg) == 0 {
		return status
	}
	switch msg[0] {
	case '[':
		var list []string
		if json.Unmarshal(msg, &list) == nil {
			for i, s := range list {
				if s != "" && i < total {
					status[i] = s
				}
			}
		}
	case '{':
		var obj map[string]string
		if json.Unmarshal(msg, &obj) == nil {
			for key, s := range obj {
				if i, err := strconv.Atoi(key); err == nil && i >= 0 && i < total {
					status[i] = s
				}
			}
		}
	case '"':
		// A single status applies to every cell.
		var s string
		if json.Unmarshal(msg, &s) == nil && s != "" {
			for i := 0; i < total; i++ {
				status[i] = s
			}
		}
	}
	return status
}

// Len returns the number of cells in the cube.
func (d *Dataset) Len() int {
	n := 1
	for _, s := range d.Size {
		n *= s
	}
	return n
}

// DimIndex returns the position of dimension id in d.ID, or -1.
func (d *Dataset) DimIndex(id string) int {
	for i, v := range d.ID {
		if v == id {
			return i
		}
	}
	return -1
}

// Observations enumerates every cell of the cube in row-major order.
// Cells absent from the value block are reported as Missing.
func (d *Dataset) Observations() []Observation {
	total := d.Len()
	out := make([]Observation, 0, total)
	pos := make([]int, len(d.ID))

	for flat := 0; flat < total; flat++ {
		codes := make([]string, len(d.ID))
		for i, id := range d.ID {
			codes[i] = d.Dimensions[id].Codes[pos[i]]
		}
		v, ok := d.values[flat]
		out = append(out, Observation{
			Codes:   codes,
			Value:   v,
			Missing: !ok,
			Status:  d.status[flat],
		})

		// Advance the odometer, last dimension fastest.
		for i := len(pos) - 1; i >= 0; i-- {
			pos[i]++
			if pos[i] < d.Size[i] {
				break
			}
			pos[i] = 0
		}
	}
	return out
}

// Present returns the flat indexes that carry a value, ascending.
func (d *Dataset) Present() []int {
	idx := make([]int, 0, len(d.values))
	for i := range d.values {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx
}
