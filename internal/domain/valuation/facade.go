package valuation

import (
	"context"
	"errors"
	"time"

	"github.com/okian/scoutval/internal/domain/normalize"
	"github.com/okian/scoutval/internal/domain/player"
	"github.com/okian/scoutval/internal/domain/scoring"
	"github.com/okian/scoutval/internal/domain/types"
	"github.com/okian/scoutval/internal/domain/weights"
)

// Environment is the team and platform reference data resolved for a player
// before valuation. Team is nil when the player's team is unknown.
type Environment struct {
	Team     *scoring.TeamContext
	Platform scoring.PlatformContext
	Now      func() time.Time
}

// Facade owns a raw record and the valuation computed from it. It has no
// mutators; build a new Facade to pick up changed weights.
type Facade struct {
	record    player.Record
	valuation Valuation
}

// New resolves the category, loads its profile and computes every section.
// Missing profiles or weights fail with a ConfigurationError. Sections
// without data are marked absent and contribute zero.
func New(ctx context.Context, rec player.Record, loader weights.Loader, env Environment) (*Facade, error) {
	c, err := rec.Category()
	if err != nil {
		return nil, types.NewConfigurationError(rec.Position, "", err.Error())
	}
	profile, err := loader.Load(ctx, c)
	if err != nil {
		return nil, err
	}

	own := rec.Clone()
	v := Valuation{PlayerID: own.ID, Category: c}
	if env.Now != nil {
		v.ComputedAt = env.Now()
	} else {
		v.ComputedAt = time.Now().UTC()
	}

	var season *player.Statistics
	if s, err := own.CurrentSeason(); err == nil {
		season = &s
	}

	if season == nil {
		v.Performance = absent(types.NewDataUnavailableError(own.ID, SectionPerformance, "no statistic snapshot").Error())
	} else {
		sec, err := scoring.Performance(c, *season, profile.PerformanceWeights)
		if err != nil {
			return nil, err
		}
		v.Performance = present(sec)
	}

	social, mentions, err := scoring.Media(c, &own, profile)
	switch {
	case err == nil:
		v.MediaAttention = MediaAttention{
			Social:     present(social),
			Mentions:   present(mentions),
			FinalValue: social.FinalValue + mentions.FinalValue,
		}
	case errors.Is(err, types.ErrDataUnavailable):
		v.MediaAttention = MediaAttention{Absent: true, Reason: err.Error()}
	default:
		return nil, err
	}

	if v.DemandFactor, err = orAbsent(scoring.Demand(c, own.ID, env.Team, env.Platform, profile)); err != nil {
		return nil, err
	}
	if v.ExternalFactors, err = orAbsent(scoring.External(c, &own, season, env.Team, profile)); err != nil {
		return nil, err
	}
	impact, pct, err := scoring.Impact(c, own.ID, season, env.Team, profile)
	if v.ImpactOnTeam, err = orAbsent(impact, err); err != nil {
		return nil, err
	}
	v.ImpactPercentage = pct
	if v.InternalDemand, err = orAbsent(scoring.Internal(c, env.Platform, profile)); err != nil {
		return nil, err
	}

	v.CompositeValue, err = Aggregate(c, Finals{
		Performance: v.Performance.FinalValue,
		Media:       v.MediaAttention.FinalValue,
		Demand:      v.DemandFactor.FinalValue,
		External:    v.ExternalFactors.FinalValue,
		Impact:      v.ImpactOnTeam.FinalValue,
		Internal:    v.InternalDemand.FinalValue,
	}, profile.FinalValueWeights)
	if err != nil {
		return nil, err
	}

	return &Facade{record: own, valuation: v}, nil
}

// orAbsent turns a data-unavailable result into an absent section and passes
// every other error through.
func orAbsent(sec scoring.Section, err error) (Section, error) {
	switch {
	case err == nil:
		return present(sec), nil
	case errors.Is(err, types.ErrDataUnavailable):
		return absent(err.Error()), nil
	default:
		return Section{}, err
	}
}

// Valuation returns a copy of the computed valuation.
func (f *Facade) Valuation() Valuation { return f.valuation.Clone() }

// Record returns a copy of the raw record.
func (f *Facade) Record() player.Record { return f.record.Clone() }

// PerformanceMetrics returns a copy of the performance stats. It is nil when
// the performance section is absent.
func (f *Facade) PerformanceMetrics() map[string]normalize.Stat {
	return normalize.Clone(f.valuation.Performance.Stats)
}
