// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/leapstack-labs/aoc/internal/cli/output"
)

// ICTCube is a two-country, two-year JSON-stat 2.0 dataset with one
// missing cell (BE 2019).
const ICTCube = `{
  "version": "2.0", "class": "dataset", "label": "ICT share",
  "id": ["geo", "time"], "size": [2, 2],
  "dimension": {
    "geo":  {"category": {"index": ["AT", "BE"]}},
    "time": {"category": {"index": ["2018", "2019"]}}
  },
  "value": {"0": 0.5, "1": 0.5, "2": 0.25}
}`

// CCSCube covers the same keys as ICTCube with every cell present.
const CCSCube = `{
  "version": "2.0", "class": "dataset", "label": "CCS share",
  "id": ["geo", "time"], "size": [2, 2],
  "dimension": {
    "geo":  {"category": {"index": ["AT", "BE"]}},
    "time": {"category": {"index": ["2018", "2019"]}}
  },
  "value": [0.5, 0.5, 0.5, 0.5]
}`

// GDPData is a pipe-delimited GDP file matching the cubes.
const GDPData = `Country|2018|2019
AT|100|200
BE|40|80
Statistical Office note|1|1
`

// NewCubeServer starts a server answering /ict and /ccs with ICTCube and
// CCSCube. Any other path returns 404.
func NewCubeServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/ict", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(ICTCube))
	})
	mux.HandleFunc("/ccs", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(CCSCube))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// SetupTestWorkspace creates a temporary directory holding gdp_data.csv and
// an aoc.yaml pointing at the cube server. It returns the directory.
func SetupTestWorkspace(t *testing.T, srv *httptest.Server) string {
	t.Helper()

	tmpDir := t.TempDir()

	if err := os.WriteFile(filepath.Join(tmpDir, "gdp_data.csv"), []byte(GDPData), 0o600); err != nil {
		t.Fatalf("failed to create gdp_data.csv: %v", err)
	}

	cfg := "ict_url: " + srv.URL + "/ict\n" +
		"ccs_url: " + srv.URL + "/ccs\n" +
		"gdp_path: gdp_data.csv\n" +
		"chart:\n" +
		"  path: out/aoc.svg\n" +
		"  open: false\n"
	if err := os.WriteFile(filepath.Join(tmpDir, "aoc.yaml"), []byte(cfg), 0o600); err != nil {
		t.Fatalf("failed to create aoc.yaml: %v", err)
	}

	return tmpDir
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
// Output is captured in buffers for inspection.
func NewTestRenderer(mode output.Mode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// Output returns the stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}
