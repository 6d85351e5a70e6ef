package jsonstat

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeFile(t *testing.T, name string) *Dataset {
	t.Helper()
	f, err := os.Open(filepath.Join("testdata", name))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	ds, err := Decode(f)
	require.NoError(t, err)
	return ds
}

func TestDecode_Dataset2(t *testing.T) {
	ds := decodeFile(t, "tin00074.json")

	assert.Equal(t, []string{"unit", "nace_r2", "geo", "time"}, ds.ID)
	assert.Equal(t, 4, ds.Len())
	assert.Equal(t, []string{"AT", "BE"}, ds.Dimensions["geo"].Codes)
	assert.Equal(t, []string{"ICT"}, ds.Dimensions["nace_r2"].Codes, "label-only dimension has one category")
	assert.Equal(t, "Austria", ds.Dimensions["geo"].Labels["AT"])
	assert.Equal(t, 2, ds.DimIndex("geo"))
	assert.Equal(t, -1, ds.DimIndex("sizen_r2"))

	obs := ds.Observations()
	require.Len(t, obs, 4)

	// Last dimension varies fastest.
	assert.Equal(t, []string{"PC_GDP", "ICT", "AT", "2018"}, obs[0].Codes)
	assert.Equal(t, []string{"PC_GDP", "ICT", "AT", "2019"}, obs[1].Codes)
	assert.Equal(t, []string{"PC_GDP", "ICT", "BE", "2018"}, obs[2].Codes)

	assert.InDelta(t, 4.95, obs[0].Value, 1e-9)
	assert.False(t, obs[0].Missing)
	assert.True(t, obs[2].Missing)
	assert.Equal(t, ":", obs[2].Status)
	assert.InDelta(t, 3.7, obs[3].Value, 1e-9)

	assert.Equal(t, []int{0, 1, 3}, ds.Present())
}

func TestDecode_BundleV1(t *testing.T) {
	ds := decodeFile(t, "bundle_v1.json")

	assert.Equal(t, []string{"sizen_r2", "geo", "time"}, ds.ID)
	assert.Equal(t, []int{2, 1, 2}, ds.Size)

	obs := ds.Observations()
	require.Len(t, obs, 4)
	assert.InDelta(t, 21.0, obs[0].Value, 1e-9)
	assert.True(t, obs[1].Missing, "null cell is missing")
	assert.InDelta(t, 18.5, obs[2].Value, 1e-9, "numeric strings are coerced")
	assert.Equal(t, []string{"L_C10_S951_XK", "DE", "2020"}, obs[3].Codes)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		errSubstr string
	}{
		{
			name:      "not json",
			doc:       `<html>`,
			errSubstr: "invalid JSON-stat document",
		},
		{
			name:      "size mismatch",
			doc:       `{"class":"dataset","id":["geo"],"size":[3],"value":[],"dimension":{"geo":{"category":{"index":["A","B"]}}}}`,
			errSubstr: "has 2 categories, size says 3",
		},
		{
			name:      "value array length",
			doc:       `{"class":"dataset","id":["geo"],"size":[2],"value":[1],"dimension":{"geo":{"category":{"index":["A","B"]}}}}`,
			errSubstr: "value array has 1 cells",
		},
		{
			name:      "non numeric",
			doc:       `{"class":"dataset","id":["geo"],"size":[1],"value":["abc"],"dimension":{"geo":{"category":{"index":["A"]}}}}`,
			errSubstr: "non-numeric value",
		},
		{
			name:      "non finite string",
			doc:       `{"class":"dataset","id":["geo"],"size":[2],"value":["1.5","NaN"],"dimension":{"geo":{"category":{"index":["A","B"]}}}}`,
			errSubstr: `non-finite value "NaN"`,
		},
		{
			name:      "infinite string in object",
			doc:       `{"class":"dataset","id":["geo"],"size":[1],"value":{"0":"+Inf"},"dimension":{"geo":{"category":{"index":["A"]}}}}`,
			errSubstr: `non-finite value "+Inf"`,
		},
		{
			name:      "index out of range",
			doc:       `{"class":"dataset","id":["geo"],"size":[1],"value":{"5":1},"dimension":{"geo":{"category":{"index":["A"]}}}}`,
			errSubstr: "out of range",
		},
		{
			name:      "undescribed dimension",
			doc:       `{"class":"dataset","id":["geo","time"],"size":[1,1],"value":[1],"dimension":{"geo":{"category":{"index":["A"]}}}}`,
			errSubstr: `dimension "time" listed in id`,
		},
		{
			name:      "collection",
			doc:       `{"class":"collection","link":{}}`,
			errSubstr: "unsupported JSON-stat class",
		},
		{
			name:      "empty bundle",
			doc:       `{"a":{"label":"x"}}`,
			errSubstr: "contains no dataset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}
