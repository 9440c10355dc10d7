package weights

import "github.com/okian/scoutval/internal/domain/player"

// Performance metric keys.
const (
	GamesStarted         = "gamesStarted"
	MinutesPerGame       = "minutesPerGame"
	TotalMinutesPlayed   = "totalMinutesPlayed"
	YellowCards          = "yellowCards"
	RedCards             = "redCards"
	GoalsPerGame         = "goalsPerGame"
	AssistsPerGame       = "assistsPerGame"
	DuelsWon             = "duelsWon"
	GoalConversion       = "goalConversion"
	KeyPassesPerGame     = "keyPassesPerGame"
	SuccessfulDribbles   = "successfulDribbles"
	InterceptionsPerGame = "interceptionsPerGame"
	TacklesPerGame       = "tacklesPerGame"
	SavesPerGame         = "savesPerGame"
	CleanSheets          = "cleanSheets"
	PenaltiesSaved       = "penaltiesSaved"
	GoalsConcededPerGame = "goalsConcededPerGame"
)

// Media sub-metric keys.
const (
	InstagramFollowers = "instagramFollowers"
	EngagementRate     = "engagementRate"
	GoogleSearches     = "googleSearches"
	TwitterMentions    = "twitterMentions"
)

// Positions inside the ordered weight sequences.
const (
	ExternalAge = iota
	ExternalGamesInjured
	ExternalTeamCompetitiveness
	ExternalNationalTeam
	ExternalCaptaincy
	externalLen
)

const (
	DemandClubRanking = iota
	DemandCompetitiveness
	DemandPlatform
	demandLen
)

const (
	FinalPerformance = iota
	FinalMedia
	FinalDemand
	FinalExternal
	FinalImpact
	FinalInternal
	finalLen
)

const (
	ImpactGoals = iota
	ImpactAssists
	impactLen
)

// BaseMetrics are shared by every category.
var BaseMetrics = []string{GamesStarted, MinutesPerGame, TotalMinutesPlayed, YellowCards, RedCards}

var categoryMetrics = map[player.Category][]string{
	player.Attacker:   {GoalsPerGame, AssistsPerGame, DuelsWon, GoalConversion, KeyPassesPerGame},
	player.Midfielder: {GoalsPerGame, AssistsPerGame, DuelsWon, SuccessfulDribbles, KeyPassesPerGame, InterceptionsPerGame},
	player.Defender:   {GoalsPerGame, AssistsPerGame, DuelsWon, InterceptionsPerGame, TacklesPerGame},
	player.Goalkeeper: {SavesPerGame, CleanSheets, PenaltiesSaved, GoalsConcededPerGame},
}

// RequiredMetrics lists the performance keys a category's scorer reads.
func RequiredMetrics(c player.Category) []string {
	extra, ok := categoryMetrics[c]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(BaseMetrics)+len(extra))
	out = append(out, BaseMetrics...)
	return append(out, extra...)
}

// SocialMetrics and MentionMetrics are the media sub-metric keys.
var (
	SocialMetrics  = []string{InstagramFollowers, EngagementRate}
	MentionMetrics = []string{GoogleSearches, TwitterMentions}
)
