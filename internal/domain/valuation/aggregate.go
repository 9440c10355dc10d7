package valuation

import (
	"fmt"

	"github.com/okian/scoutval/internal/domain/player"
	"github.com/okian/scoutval/internal/domain/types"
	w "github.com/okian/scoutval/internal/domain/weights"
)

// Finals are the six section final values. Absent sections are zero.
type Finals struct {
	Performance float64
	Media       float64
	Demand      float64
	External    float64
	Impact      float64
	Internal    float64
}

// Aggregate blends the six final values with the ordered finalValueWeights
// (performance, media, demand, external, impact, internal).
func Aggregate(c player.Category, f Finals, finalValueWeights []float64) (float64, error) {
	if len(finalValueWeights) != 6 {
		return 0, types.NewConfigurationError(string(c), "finalValueWeights",
			fmt.Sprintf("expected 6 entries, got %d", len(finalValueWeights)))
	}
	fw := finalValueWeights
	return f.Performance*fw[w.FinalPerformance] +
		f.Media*fw[w.FinalMedia] +
		f.Demand*fw[w.FinalDemand] +
		f.External*fw[w.FinalExternal] +
		f.Impact*fw[w.FinalImpact] +
		f.Internal*fw[w.FinalInternal], nil
}
