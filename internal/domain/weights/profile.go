// Package weights holds the per-category coefficient profiles that drive
// scoring and the store that persists them.
package weights

import (
	"maps"
	"slices"

	"github.com/okian/scoutval/internal/domain/player"
)

// MediaWeight pairs a reference maximum with the weight applied after
// normalizing against it.
type MediaWeight struct {
	ReferenceMax float64 `json:"referenceMax"`
	Weight       float64 `json:"weight"`
}

// Profile is the full set of coefficients for one category.
type Profile struct {
	PerformanceWeights    map[string]float64     `json:"performanceWeights"`
	SocialMediaWeights    map[string]MediaWeight `json:"socialMediaWeights"`
	MediaMentionsWeights  map[string]MediaWeight `json:"mediaMentionsWeights"`
	ExternalFactorWeights []float64              `json:"externalFactorWeights"`
	DemandFactorWeights   []float64              `json:"demandFactorWeights"`
	FinalValueWeights     []float64              `json:"finalValueWeights"`
	ImpactWeights         []float64              `json:"impactWeights"`
	TotalPlatformDemand   float64                `json:"totalPlatformDemand"`
}

// Clone returns a deep copy.
func (p Profile) Clone() Profile {
	return Profile{
		PerformanceWeights:    maps.Clone(p.PerformanceWeights),
		SocialMediaWeights:    maps.Clone(p.SocialMediaWeights),
		MediaMentionsWeights:  maps.Clone(p.MediaMentionsWeights),
		ExternalFactorWeights: slices.Clone(p.ExternalFactorWeights),
		DemandFactorWeights:   slices.Clone(p.DemandFactorWeights),
		FinalValueWeights:     slices.Clone(p.FinalValueWeights),
		ImpactWeights:         slices.Clone(p.ImpactWeights),
		TotalPlatformDemand:   p.TotalPlatformDemand,
	}
}

// Document is the backing representation: every category's profile in one
// record.
type Document map[player.Category]Profile

// Clone returns a deep copy.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for c, p := range d {
		out[c] = p.Clone()
	}
	return out
}
