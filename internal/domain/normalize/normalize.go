// Package normalize turns raw observations into dimensionless, weighted
// contributions against a reference baseline.
package normalize

import (
	"maps"
	"slices"
)

// Stat is the atomic computed unit of a valuation.
type Stat struct {
	RawValue             float64 `json:"rawValue"`
	ReferenceBaseline    float64 `json:"referenceBaseline"`
	Weight               float64 `json:"weight"`
	NormalizedValue      float64 `json:"normalizedValue"`
	WeightedContribution float64 `json:"weightedContribution"`
}

// Normalize divides raw by baseline and scales by weight. Values are not
// clamped: over-performance exceeds 1 and negative weights yield penalties.
// The caller must supply a non-zero baseline.
func Normalize(raw, baseline, weight float64) Stat {
	n := raw / baseline
	return Stat{
		RawValue:             raw,
		ReferenceBaseline:    baseline,
		Weight:               weight,
		NormalizedValue:      n,
		WeightedContribution: n * weight,
	}
}

// AtLeastOne is the zero-denominator guard for count-like baselines.
func AtLeastOne(v float64) float64 {
	if v < 1 {
		return 1
	}
	return v
}

// PerGame spreads a season count over appearances, never dividing by zero.
func PerGame(count, appearances float64) float64 {
	return count / AtLeastOne(appearances)
}

// Sum adds weighted contributions in key order so the result does not
// depend on map iteration.
func Sum(stats map[string]Stat) float64 {
	var total float64
	for _, k := range slices.Sorted(maps.Keys(stats)) {
		total += stats[k].WeightedContribution
	}
	return total
}

// Clone copies a stat map.
func Clone(stats map[string]Stat) map[string]Stat {
	if stats == nil {
		return nil
	}
	return maps.Clone(stats)
}
