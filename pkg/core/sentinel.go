package core

// =============================================================================
// Sentinel policy
// =============================================================================

// Sentinel is the value substituted for missing or unmatched data.
//
// It is the multiplicative identity, so a missing input leaves the AOC
// product of the remaining inputs unchanged instead of zeroing it. A filled
// value is indistinguishable from a real observation of exactly 1; the
// Filled flags on each record carry that distinction.
const Sentinel = 1.0

// SentinelText is the textual form written into empty source cells before
// numeric parsing.
const SentinelText = "1"

// Fill records which inputs of a merged row carry the sentinel.
type Fill uint8

// Fill flags.
const (
	FillICT Fill = 1 << iota
	FillCCS
	FillGDP
)

// Has reports whether all flags in f2 are set.
func (f Fill) Has(f2 Fill) bool {
	return f&f2 == f2
}

// String returns a compact representation such as "ict,gdp".
func (f Fill) String() string {
	if f == 0 {
		return ""
	}
	var s string
	for _, p := range []struct {
		flag Fill
		name string
	}{
		{FillICT, "ict"},
		{FillCCS, "ccs"},
		{FillGDP, "gdp"},
	} {
		if !f.Has(p.flag) {
			continue
		}
		if s != "" {
			s += ","
		}
		s += p.name
	}
	return s
}
