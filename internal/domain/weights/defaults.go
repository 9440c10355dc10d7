package weights

import "github.com/okian/scoutval/internal/domain/player"

var defaultPerformance = map[player.Category]map[string]float64{
	player.Attacker: {
		GoalsPerGame:       0.3,
		AssistsPerGame:     0.15,
		GamesStarted:       0.1,
		DuelsWon:           0.1,
		MinutesPerGame:     0.1,
		GoalConversion:     0.1,
		KeyPassesPerGame:   0.05,
		TotalMinutesPlayed: 0.05,
		YellowCards:        -0.025,
		RedCards:           -0.075,
	},
	player.Midfielder: {
		GoalsPerGame:         0.15,
		AssistsPerGame:       0.2,
		GamesStarted:         0.1,
		DuelsWon:             0.15,
		MinutesPerGame:       0.1,
		SuccessfulDribbles:   0.1,
		KeyPassesPerGame:     0.1,
		TotalMinutesPlayed:   0.05,
		InterceptionsPerGame: 0.05,
		YellowCards:          -0.025,
		RedCards:             -0.075,
	},
	player.Defender: {
		GoalsPerGame:         0.05,
		AssistsPerGame:       0.05,
		GamesStarted:         0.15,
		DuelsWon:             0.2,
		MinutesPerGame:       0.15,
		InterceptionsPerGame: 0.15,
		TacklesPerGame:       0.15,
		TotalMinutesPlayed:   0.1,
		YellowCards:          -0.025,
		RedCards:             -0.075,
	},
	player.Goalkeeper: {
		GamesStarted:         0.15,
		SavesPerGame:         0.25,
		CleanSheets:          0.2,
		MinutesPerGame:       0.1,
		TotalMinutesPlayed:   0.1,
		PenaltiesSaved:       0.1,
		GoalsConcededPerGame: -0.1,
		YellowCards:          -0.025,
		RedCards:             -0.075,
	},
}

// DefaultProfile returns the expert-tuned profile for a built-in category.
func DefaultProfile(c player.Category) (Profile, bool) {
	perf, ok := defaultPerformance[c]
	if !ok {
		return Profile{}, false
	}
	p := Profile{
		PerformanceWeights: make(map[string]float64, len(perf)),
		SocialMediaWeights: map[string]MediaWeight{
			InstagramFollowers: {ReferenceMax: 1_000_000, Weight: 0.7},
			EngagementRate:     {ReferenceMax: 100, Weight: 0.3},
		},
		MediaMentionsWeights: map[string]MediaWeight{
			GoogleSearches:  {ReferenceMax: 1_000_000, Weight: 0.6},
			TwitterMentions: {ReferenceMax: 100_000, Weight: 0.4},
		},
		DemandFactorWeights:   []float64{0.4, 0.3, 0.3},
		ExternalFactorWeights: []float64{0.25, 0.2, 0.2, 0.2, 0.15},
		TotalPlatformDemand:   1000,
		FinalValueWeights:     []float64{0.4, 0.2, 0.15, 0.1, 0.1, 0.05},
		ImpactWeights:         []float64{0.6, 0.4},
	}
	for k, v := range perf {
		p.PerformanceWeights[k] = v
	}
	return p, true
}

// DefaultDocument returns defaults for every built-in category.
func DefaultDocument() Document {
	doc := make(Document, len(defaultPerformance))
	for _, c := range player.Categories() {
		p, _ := DefaultProfile(c)
		doc[c] = p
	}
	return doc
}
