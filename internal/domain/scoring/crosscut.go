package scoring

import (
	"github.com/okian/scoutval/internal/domain/normalize"
	"github.com/okian/scoutval/internal/domain/player"
	"github.com/okian/scoutval/internal/domain/types"
	w "github.com/okian/scoutval/internal/domain/weights"
)

// External factor ceilings.
const (
	AgeCeiling             = 35
	InjuredGamesCeiling    = 10
	CompetitivenessCeiling = 100
)

// External factor keys.
const (
	FactorAge                 = "age"
	FactorGamesInjured        = "gamesInjured"
	FactorTeamCompetitiveness = "teamCompetitiveness"
	FactorNationalTeam        = "nationalTeamStatus"
	FactorCaptaincy           = "captaincy"

	DemandClubWorldRanking = "clubWorldRanking"
	DemandCompetitiveness  = "competitiveness"
	DemandPlatform         = "platformDemand"
	ImpactGoals            = "goals"
	ImpactAssists          = "assists"
	InternalDemandRatio    = "demandRatio"
)

// TeamContext is the team-level reference data for one player.
type TeamContext struct {
	Team    player.Team
	Goals   float64
	Assists float64
}

// PlatformContext is the platform-wide demand reference for one player.
type PlatformContext struct {
	PlayerDemand  float64
	HighestDemand float64
}

// Media scores the social and mention sub-sections independently.
func Media(c player.Category, rec *player.Record, p w.Profile) (social, mentions Section, err error) {
	if rec.Media == nil {
		return Section{}, Section{}, types.NewDataUnavailableError(rec.ID, "mediaAttention", "no media figures")
	}
	m := rec.Media
	social, err = mediaSection(c, "socialMediaWeights", w.SocialMetrics, p.SocialMediaWeights, map[string]float64{
		w.InstagramFollowers: m.InstagramFollowers,
		w.EngagementRate:     m.EngagementRate,
	})
	if err != nil {
		return Section{}, Section{}, err
	}
	mentions, err = mediaSection(c, "mediaMentionsWeights", w.MentionMetrics, p.MediaMentionsWeights, map[string]float64{
		w.GoogleSearches:  m.GoogleSearches,
		w.TwitterMentions: m.TwitterMentions,
	})
	if err != nil {
		return Section{}, Section{}, err
	}
	return social, mentions, nil
}

// mediaSection reports the first key in keys that has no weight.
func mediaSection(c player.Category, field string, keys []string, weights map[string]w.MediaWeight, raw map[string]float64) (Section, error) {
	stats := make(map[string]normalize.Stat, len(keys))
	for _, key := range keys {
		mw, ok := weights[key]
		if !ok || mw.ReferenceMax == 0 {
			return Section{}, types.NewConfigurationError(string(c), field+"."+key, "missing weight")
		}
		stats[key] = normalize.Normalize(raw[key], mw.ReferenceMax, mw.Weight)
	}
	return newSection(stats), nil
}

// External scores age, injuries, team competitiveness, national team status
// and captaincy against fixed ceilings. team and season may be nil.
func External(c player.Category, rec *player.Record, season *player.Statistics, team *TeamContext, p w.Profile) (Section, error) {
	var competitiveness, captain, national float64
	if team != nil {
		competitiveness = team.Team.Competitiveness * CompetitivenessCeiling
	}
	if season != nil && season.Games.Captain {
		captain = 1
	}
	if rec.NationalTeam {
		national = 1
	}
	factors := []struct {
		key      string
		idx      int
		raw      float64
		baseline float64
	}{
		{FactorAge, w.ExternalAge, float64(rec.Age), AgeCeiling},
		{FactorGamesInjured, w.ExternalGamesInjured, float64(rec.InjuredGames), InjuredGamesCeiling},
		{FactorTeamCompetitiveness, w.ExternalTeamCompetitiveness, competitiveness, CompetitivenessCeiling},
		{FactorNationalTeam, w.ExternalNationalTeam, national, 1},
		{FactorCaptaincy, w.ExternalCaptaincy, captain, 1},
	}
	stats := make(map[string]normalize.Stat, len(factors))
	for _, f := range factors {
		weight, err := weightAt(c, "externalFactorWeights", p.ExternalFactorWeights, f.idx)
		if err != nil {
			return Section{}, err
		}
		stats[f.key] = normalize.Normalize(f.raw, f.baseline, weight)
	}
	return newSection(stats), nil
}

// Demand scores club ranking strength, team competitiveness and the
// player's share of platform demand.
func Demand(c player.Category, playerID int, team *TeamContext, platform PlatformContext, p w.Profile) (Section, error) {
	if team == nil {
		return Section{}, types.NewDataUnavailableError(playerID, "demandFactor", "no team reference")
	}
	if p.TotalPlatformDemand == 0 {
		return Section{}, types.NewConfigurationError(string(c), "totalPlatformDemand", "must not be zero")
	}
	var strength float64
	if r := team.Team.WorldRanking; r > 0 {
		if team.Team.MaxRanking < r {
			return Section{}, types.NewDataUnavailableError(playerID, "demandFactor", "world ranking beyond max ranking")
		}
		strength = float64(team.Team.MaxRanking - r + 1)
	}
	factors := []struct {
		key      string
		idx      int
		raw      float64
		baseline float64
	}{
		{DemandClubWorldRanking, w.DemandClubRanking, strength, normalize.AtLeastOne(float64(team.Team.MaxRanking))},
		{DemandCompetitiveness, w.DemandCompetitiveness, team.Team.Competitiveness, 1},
		{DemandPlatform, w.DemandPlatform, platform.PlayerDemand, p.TotalPlatformDemand},
	}
	stats := make(map[string]normalize.Stat, len(factors))
	for _, f := range factors {
		weight, err := weightAt(c, "demandFactorWeights", p.DemandFactorWeights, f.idx)
		if err != nil {
			return Section{}, err
		}
		stats[f.key] = normalize.Normalize(f.raw, f.baseline, weight)
	}
	return newSection(stats), nil
}

// Impact scores the player's share of team goals and assists. It also
// returns the combined contribution as a percentage.
func Impact(c player.Category, playerID int, season *player.Statistics, team *TeamContext, p w.Profile) (Section, float64, error) {
	if team == nil {
		return Section{}, 0, types.NewDataUnavailableError(playerID, "impactOnTeam", "no team reference")
	}
	if season == nil {
		return Section{}, 0, types.NewDataUnavailableError(playerID, "impactOnTeam", "no statistic snapshot")
	}
	gw, err := weightAt(c, "impactWeights", p.ImpactWeights, w.ImpactGoals)
	if err != nil {
		return Section{}, 0, err
	}
	aw, err := weightAt(c, "impactWeights", p.ImpactWeights, w.ImpactAssists)
	if err != nil {
		return Section{}, 0, err
	}
	g, a := goals(season), assists(season)
	stats := map[string]normalize.Stat{
		ImpactGoals:   normalize.Normalize(g, normalize.AtLeastOne(team.Goals), gw),
		ImpactAssists: normalize.Normalize(a, normalize.AtLeastOne(team.Assists), aw),
	}
	pct := (g + a) / normalize.AtLeastOne(team.Goals+team.Assists) * 100
	return newSection(stats), pct, nil
}

// Internal scores the player's demand relative to the most demanded player.
func Internal(c player.Category, platform PlatformContext, p w.Profile) (Section, error) {
	if p.TotalPlatformDemand == 0 {
		return Section{}, types.NewConfigurationError(string(c), "totalPlatformDemand", "must not be zero")
	}
	ratio := platform.PlayerDemand / p.TotalPlatformDemand
	highest := normalize.AtLeastOne(platform.HighestDemand) / p.TotalPlatformDemand
	return newSection(map[string]normalize.Stat{
		InternalDemandRatio: normalize.Normalize(ratio, highest, 1),
	}), nil
}
