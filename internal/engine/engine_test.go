package engine

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/aoc/internal/extract"
	"github.com/leapstack-labs/aoc/internal/testutil"
	"github.com/leapstack-labs/aoc/internal/transform"
	"github.com/leapstack-labs/aoc/pkg/core"
)

const ictCube = `{
  "version": "2.0", "class": "dataset", "label": "ICT",
  "id": ["geo", "time"], "size": [1, 1],
  "dimension": {
    "geo":  {"category": {"index": ["A"]}},
    "time": {"category": {"index": ["2020"]}}
  },
  "value": [0.2]
}`

const ccsCube = `{
  "version": "2.0", "class": "dataset", "label": "CCS",
  "id": ["geo", "time"], "size": [2, 1],
  "dimension": {
    "geo":  {"category": {"index": ["A", "B"]}},
    "time": {"category": {"index": ["2020"]}}
  },
  "value": [0.5, 0.5]
}`

func cubeServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ict", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(ictCube))
	})
	mux.HandleFunc("/ccs", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(ccsCube))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"missing ICT", Config{CCSURL: "x", GDPPath: "g"}, "ICT URL is required"},
		{"missing CCS", Config{ICTURL: "x", GDPPath: "g"}, "CCS URL is required"},
		{"missing GDP", Config{ICTURL: "x", CCSURL: "y"}, "GDP path is required"},
		{"bad mode", Config{ICTURL: "x", CCSURL: "y", GDPPath: "g", Mode: "weekly"}, "unknown mode"},
		{"bad naming", Config{ICTURL: "x", CCSURL: "y", GDPPath: "g", Naming: "name"}, "unknown naming"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNew_DefaultMode(t *testing.T) {
	e, err := New(Config{ICTURL: "x", CCSURL: "y", GDPPath: "g"})
	require.NoError(t, err)
	assert.Equal(t, transform.ModeInstant, e.Mode())
}

func TestRun_EndToEnd(t *testing.T) {
	srv := cubeServer(t)
	gdpPath := testutil.WriteFile(t, "gdp_data.csv", "Country|2020\nA|100\n")

	e, err := New(Config{
		ICTURL:  srv.URL + "/ict",
		CCSURL:  srv.URL + "/ccs",
		GDPPath: gdpPath,
		Logger:  testutil.NewTestLogger(t),
	})
	require.NoError(t, err)

	res, err := e.Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, transform.ModeInstant, res.Mode)
	assert.Len(t, res.ICT, 1)
	assert.Len(t, res.CCS, 2)
	assert.Len(t, res.GDP, 1)

	require.Len(t, res.Merged, 2)
	a := res.Merged[0]
	assert.Equal(t, core.Key{Country: "A", Year: "2020"}, a.Key())
	assert.InDelta(t, 10.0, a.AOC, 1e-9)
	assert.Zero(t, a.Filled)

	b := res.Merged[1]
	assert.Equal(t, core.Key{Country: "B", Year: "2020"}, b.Key())
	assert.InDelta(t, 0.5, b.AOC, 1e-9)
	assert.Equal(t, core.FillICT|core.FillGDP, b.Filled)

	assert.Equal(t, 1, res.FilledCount(core.FillICT))
	assert.Equal(t, 1, res.FilledCount(core.FillGDP))
	assert.Equal(t, 0, res.FilledCount(core.FillCCS))

	assert.Equal(t, []string{"2020"}, res.Pivot.Years)
	assert.Equal(t, []string{"A", "B"}, res.Pivot.Countries)
	v, ok := res.Pivot.Value("2020", "A")
	require.True(t, ok)
	assert.InDelta(t, 10.0, v, 1e-9)
}

func TestRun_RequestError(t *testing.T) {
	srv := cubeServer(t)
	gdpPath := testutil.WriteFile(t, "gdp_data.csv", "Country|2020\nA|100\n")

	e, err := New(Config{
		ICTURL:  srv.URL + "/missing",
		CCSURL:  srv.URL + "/ccs",
		GDPPath: gdpPath,
	})
	require.NoError(t, err)

	_, err = e.Run(context.Background())
	require.Error(t, err)

	var reqErr *extract.RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, srv.URL+"/missing", reqErr.URL)
	assert.Contains(t, err.Error(), "failed to extract ICT")
}

func TestRun_MissingGDPFile(t *testing.T) {
	srv := cubeServer(t)

	e, err := New(Config{
		ICTURL:  srv.URL + "/ict",
		CCSURL:  srv.URL + "/ccs",
		GDPPath: t.TempDir() + "/nope.csv",
	})
	require.NoError(t, err)

	_, err = e.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load GDP")

	var reqErr *extract.RequestError
	assert.False(t, errors.As(err, &reqErr))
}

func TestRun_Cumulative(t *testing.T) {
	srv := cubeServer(t)
	gdpPath := testutil.WriteFile(t, "gdp_data.csv", "Country|2020\nA|100\n")

	e, err := New(Config{
		ICTURL:  srv.URL + "/ict",
		CCSURL:  srv.URL + "/ccs",
		GDPPath: gdpPath,
		Mode:    transform.ModeCumulative,
	})
	require.NoError(t, err)

	res, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, transform.ModeCumulative, res.Mode)
	assert.Len(t, res.Merged, 2)
}
