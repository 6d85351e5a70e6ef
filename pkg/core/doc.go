// Package core defines the shared language of the aoc pipeline.
//
// This package contains:
//   - Typed record schemas for every pipeline stage (IndicatorRecord,
//     GdpRecord, MergedRecord)
//   - The join key (Key) shared by the extractor, loader and transformer
//   - The sentinel policy for missing or unmatched values
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
