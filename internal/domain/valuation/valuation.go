// Package valuation assembles the six scoring sections of a player into an
// immutable valuation record.
package valuation

import (
	"time"

	"github.com/okian/scoutval/internal/domain/normalize"
	"github.com/okian/scoutval/internal/domain/player"
	"github.com/okian/scoutval/internal/domain/scoring"
)

// Section names as reported in absent markers and metrics.
const (
	SectionPerformance = "performance"
	SectionMedia       = "mediaAttention"
	SectionDemand      = "demandFactor"
	SectionExternal    = "externalFactors"
	SectionImpact      = "impactOnTeam"
	SectionInternal    = "internalDemand"
)

// Section is one scoring dimension. An absent section has no stats, a zero
// final value and the reason it could not be computed.
type Section struct {
	Stats      map[string]normalize.Stat `json:"stats,omitempty"`
	FinalValue float64                   `json:"finalValue"`
	Absent     bool                      `json:"absent,omitempty"`
	Reason     string                    `json:"reason,omitempty"`
}

// MediaAttention keeps the social and mention scores apart. FinalValue is
// their sum and is what the composite weighs.
type MediaAttention struct {
	Social     Section `json:"socialMedia"`
	Mentions   Section `json:"mediaMentions"`
	FinalValue float64 `json:"finalValue"`
	Absent     bool    `json:"absent,omitempty"`
	Reason     string  `json:"reason,omitempty"`
}

// Valuation is the output for one player and one computation.
type Valuation struct {
	PlayerID         int             `json:"playerId"`
	Category         player.Category `json:"category"`
	Performance      Section         `json:"performance"`
	MediaAttention   MediaAttention  `json:"mediaAttention"`
	DemandFactor     Section         `json:"demandFactor"`
	ExternalFactors  Section         `json:"externalFactors"`
	ImpactOnTeam     Section         `json:"impactOnTeam"`
	InternalDemand   Section         `json:"internalDemand"`
	ImpactPercentage float64         `json:"impactPercentage"`
	CompositeValue   float64         `json:"compositeValue"`
	ComputedAt       time.Time       `json:"computedAt"`
}

// AbsentSections lists the sections that contributed zero for lack of data.
func (v *Valuation) AbsentSections() []string {
	var out []string
	for _, s := range []struct {
		name   string
		absent bool
	}{
		{SectionPerformance, v.Performance.Absent},
		{SectionMedia, v.MediaAttention.Absent},
		{SectionDemand, v.DemandFactor.Absent},
		{SectionExternal, v.ExternalFactors.Absent},
		{SectionImpact, v.ImpactOnTeam.Absent},
		{SectionInternal, v.InternalDemand.Absent},
	} {
		if s.absent {
			out = append(out, s.name)
		}
	}
	return out
}

// Clone returns a deep copy.
func (v Valuation) Clone() Valuation {
	out := v
	out.Performance = v.Performance.clone()
	out.MediaAttention.Social = v.MediaAttention.Social.clone()
	out.MediaAttention.Mentions = v.MediaAttention.Mentions.clone()
	out.DemandFactor = v.DemandFactor.clone()
	out.ExternalFactors = v.ExternalFactors.clone()
	out.ImpactOnTeam = v.ImpactOnTeam.clone()
	out.InternalDemand = v.InternalDemand.clone()
	return out
}

func (s Section) clone() Section {
	s.Stats = normalize.Clone(s.Stats)
	return s
}

func present(s scoring.Section) Section {
	return Section{Stats: s.Stats, FinalValue: s.FinalValue}
}

func absent(reason string) Section {
	return Section{Absent: true, Reason: reason}
}
