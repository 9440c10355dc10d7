// Package scoring computes the per-section stats of a player valuation:
// one performance scorer per category plus the cross-cutting scorers that
// apply to every category.
package scoring

import (
	"github.com/okian/scoutval/internal/domain/normalize"
	"github.com/okian/scoutval/internal/domain/player"
	"github.com/okian/scoutval/internal/domain/types"
)

// Section is a set of computed stats and the sum of their contributions.
type Section struct {
	Stats      map[string]normalize.Stat `json:"stats"`
	FinalValue float64                   `json:"finalValue"`
}

func newSection(stats map[string]normalize.Stat) Section {
	return Section{Stats: stats, FinalValue: normalize.Sum(stats)}
}

// metric describes how one key is read from a snapshot.
type metric struct {
	key      string
	raw      func(s *player.Statistics) float64
	baseline func(s *player.Statistics) float64
}

func fixed(v float64) func(*player.Statistics) float64 {
	return func(*player.Statistics) float64 { return v }
}

func appearances(s *player.Statistics) float64 { return player.Count(s.Games.Appearances) }

func perGame(count func(s *player.Statistics) float64) func(*player.Statistics) float64 {
	return func(s *player.Statistics) float64 {
		return normalize.PerGame(count(s), appearances(s))
	}
}

// compute runs every metric through the normalizer. A metric without a
// weight is a configuration error, never a silent zero.
func compute(c player.Category, specs []metric, s *player.Statistics, w map[string]float64) (map[string]normalize.Stat, error) {
	out := make(map[string]normalize.Stat, len(specs))
	for _, m := range specs {
		weight, ok := w[m.key]
		if !ok {
			return nil, types.NewConfigurationError(string(c), m.key, "missing weight")
		}
		out[m.key] = normalize.Normalize(m.raw(s), m.baseline(s), weight)
	}
	return out, nil
}

func weightAt(c player.Category, name string, seq []float64, idx int) (float64, error) {
	if idx >= len(seq) {
		return 0, types.NewConfigurationError(string(c), name, "missing weight")
	}
	return seq[idx], nil
}
