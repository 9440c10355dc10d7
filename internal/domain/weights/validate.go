package weights

import (
	"fmt"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/okian/scoutval/internal/domain/player"
	"github.com/okian/scoutval/internal/domain/types"
)

// Validate checks that p carries every coefficient the scorers for c read.
// Failures are ConfigurationErrors naming the offending key.
func Validate(c player.Category, p Profile) error {
	if !c.Valid() {
		return types.NewConfigurationError(string(c), "", "unknown category")
	}
	if err := checkKeys(c, "performanceWeights", RequiredMetrics(c), keysOf(p.PerformanceWeights)); err != nil {
		return err
	}
	if err := checkMedia(c, "socialMediaWeights", SocialMetrics, p.SocialMediaWeights); err != nil {
		return err
	}
	if err := checkMedia(c, "mediaMentionsWeights", MentionMetrics, p.MediaMentionsWeights); err != nil {
		return err
	}
	for _, seq := range []struct {
		name string
		got  []float64
		want int
	}{
		{"externalFactorWeights", p.ExternalFactorWeights, externalLen},
		{"demandFactorWeights", p.DemandFactorWeights, demandLen},
		{"finalValueWeights", p.FinalValueWeights, finalLen},
		{"impactWeights", p.ImpactWeights, impactLen},
	} {
		if len(seq.got) != seq.want {
			return types.NewConfigurationError(string(c), seq.name,
				fmt.Sprintf("expected %d entries, got %d", seq.want, len(seq.got)))
		}
	}
	if p.TotalPlatformDemand == 0 {
		return types.NewConfigurationError(string(c), "totalPlatformDemand", "must not be zero")
	}
	return nil
}

func checkMedia(c player.Category, field string, required []string, m map[string]MediaWeight) error {
	if err := checkKeys(c, field, required, keysOf(m)); err != nil {
		return err
	}
	for _, k := range required {
		if m[k].ReferenceMax == 0 {
			return types.NewConfigurationError(string(c), field+"."+k, "referenceMax must not be zero")
		}
	}
	return nil
}

func checkKeys(c player.Category, field string, required, present []string) error {
	want := mapset.NewSet(required...)
	have := mapset.NewSet(present...)
	if missing := sortedSlice(want.Difference(have)); len(missing) > 0 {
		return types.NewConfigurationError(string(c), missing[0], "missing weight in "+field)
	}
	if unknown := sortedSlice(have.Difference(want)); len(unknown) > 0 {
		return types.NewConfigurationError(string(c), unknown[0], "unknown key in "+field)
	}
	return nil
}

func keysOf[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func sortedSlice(s mapset.Set[string]) []string {
	out := s.ToSlice()
	sort.Strings(out)
	return out
}
