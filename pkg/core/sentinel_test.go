package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFill(t *testing.T) {
	tests := []struct {
		name string
		fill Fill
		want string
	}{
		{"none", 0, ""},
		{"ict only", FillICT, "ict"},
		{"ict and gdp", FillICT | FillGDP, "ict,gdp"},
		{"all", FillICT | FillCCS | FillGDP, "ict,ccs,gdp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.fill.String())
		})
	}

	f := FillICT | FillGDP
	assert.True(t, f.Has(FillICT))
	assert.True(t, f.Has(FillICT|FillGDP))
	assert.False(t, f.Has(FillCCS))
}

func TestComposite(t *testing.T) {
	assert.InDelta(t, 24.0, Composite(2.0, 3.0, 4.0), 1e-9)
	assert.InDelta(t, 7.5, Composite(7.5, Sentinel, Sentinel), 1e-9, "sentinel is neutral")
}

func TestCompareYear(t *testing.T) {
	assert.Equal(t, -1, CompareYear("2019", "2020"))
	assert.Equal(t, 1, CompareYear("10000", "9999"), "numeric, not lexical")
	assert.Equal(t, 0, CompareYear("2020", "2020"))
	assert.Equal(t, -1, CompareYear("2020Q1", "2020Q2"))
}
