package scoring

import (
	"fmt"

	"github.com/okian/scoutval/internal/domain/normalize"
	"github.com/okian/scoutval/internal/domain/player"
	w "github.com/okian/scoutval/internal/domain/weights"
)

// PerformanceScorer computes the category-specific performance metrics of
// one statistic snapshot.
type PerformanceScorer interface {
	Category() player.Category
	ComputeMetrics(s player.Statistics, weights map[string]float64) (map[string]normalize.Stat, error)
}

// Performance-variant scorers, one per category.
type (
	AttackerScorer   struct{}
	MidfielderScorer struct{}
	DefenderScorer   struct{}
	GoalkeeperScorer struct{}
)

// ScorerFor dispatches on the category.
func ScorerFor(c player.Category) (PerformanceScorer, error) {
	switch c {
	case player.Attacker:
		return AttackerScorer{}, nil
	case player.Midfielder:
		return MidfielderScorer{}, nil
	case player.Defender:
		return DefenderScorer{}, nil
	case player.Goalkeeper:
		return GoalkeeperScorer{}, nil
	}
	return nil, fmt.Errorf("%w: %q", player.ErrUnknownCategory, c)
}

// Performance scores a snapshot with the category's performance weights.
func Performance(c player.Category, s player.Statistics, weights map[string]float64) (Section, error) {
	scorer, err := ScorerFor(c)
	if err != nil {
		return Section{}, err
	}
	stats, err := scorer.ComputeMetrics(s, weights)
	if err != nil {
		return Section{}, err
	}
	return newSection(stats), nil
}

var (
	goals         = func(s *player.Statistics) float64 { return player.Count(s.Goals.Total) }
	assists       = func(s *player.Statistics) float64 { return s.AssistCount() }
	keyPasses     = func(s *player.Statistics) float64 { return player.Count(s.Passes.Key) }
	interceptions = func(s *player.Statistics) float64 { return player.Count(s.Tackles.Interceptions) }
	tackles       = func(s *player.Statistics) float64 { return player.Count(s.Tackles.Total) }
	saves         = func(s *player.Statistics) float64 { return player.Count(s.Goals.Saves) }
	conceded      = func(s *player.Statistics) float64 { return player.Count(s.Goals.Conceded) }
	lineups       = func(s *player.Statistics) float64 { return player.Count(s.Games.Lineups) }
	minutes       = func(s *player.Statistics) float64 { return player.Count(s.Games.Minutes) }
)

var baseMetrics = []metric{
	{w.GamesStarted, lineups, fixed(10)},
	{w.MinutesPerGame, perGame(minutes), fixed(90)},
	{w.TotalMinutesPlayed, minutes, fixed(900)},
	{w.YellowCards, func(s *player.Statistics) float64 { return player.Count(s.Cards.Yellow) }, fixed(5)},
	{w.RedCards, func(s *player.Statistics) float64 { return player.Count(s.Cards.Red) }, fixed(1)},
}

var duelsWon = metric{
	w.DuelsWon,
	func(s *player.Statistics) float64 { return player.Count(s.Duels.Won) },
	func(s *player.Statistics) float64 { return normalize.AtLeastOne(player.Count(s.Duels.Total)) },
}

func withBase(extra ...metric) []metric {
	out := make([]metric, 0, len(baseMetrics)+len(extra))
	out = append(out, baseMetrics...)
	return append(out, extra...)
}

var attackerMetrics = withBase(
	metric{w.GoalsPerGame, perGame(goals), fixed(0.5)},
	metric{w.AssistsPerGame, perGame(assists), fixed(0.3)},
	duelsWon,
	metric{w.GoalConversion, func(s *player.Statistics) float64 {
		return goals(s) / normalize.AtLeastOne(player.Count(s.Shots.Total))
	}, fixed(0.2)},
	metric{w.KeyPassesPerGame, perGame(keyPasses), fixed(2)},
)

var midfielderMetrics = withBase(
	metric{w.GoalsPerGame, perGame(goals), fixed(0.3)},
	metric{w.AssistsPerGame, perGame(assists), fixed(0.4)},
	duelsWon,
	metric{w.SuccessfulDribbles,
		func(s *player.Statistics) float64 { return player.Count(s.Dribbles.Success) },
		func(s *player.Statistics) float64 { return normalize.AtLeastOne(player.Count(s.Dribbles.Attempts)) },
	},
	metric{w.KeyPassesPerGame, perGame(keyPasses), fixed(3)},
	metric{w.InterceptionsPerGame, perGame(interceptions), fixed(2)},
)

var defenderMetrics = withBase(
	metric{w.GoalsPerGame, perGame(goals), fixed(0.1)},
	metric{w.AssistsPerGame, perGame(assists), fixed(0.2)},
	duelsWon,
	metric{w.InterceptionsPerGame, perGame(interceptions), fixed(3)},
	metric{w.TacklesPerGame, perGame(tackles), fixed(3)},
)

var goalkeeperMetrics = withBase(
	metric{w.SavesPerGame, perGame(saves), fixed(3)},
	metric{w.CleanSheets,
		func(s *player.Statistics) float64 { return lineups(s) - conceded(s) },
		func(s *player.Statistics) float64 { return normalize.AtLeastOne(lineups(s)) },
	},
	metric{w.PenaltiesSaved,
		func(s *player.Statistics) float64 { return player.Count(s.Penalty.Saved) },
		func(s *player.Statistics) float64 { return normalize.AtLeastOne(player.Count(s.Penalty.Scored)) },
	},
	metric{w.GoalsConcededPerGame, perGame(conceded), fixed(1)},
)

func (AttackerScorer) Category() player.Category { return player.Attacker }

func (sc AttackerScorer) ComputeMetrics(s player.Statistics, weights map[string]float64) (map[string]normalize.Stat, error) {
	return compute(sc.Category(), attackerMetrics, &s, weights)
}

func (MidfielderScorer) Category() player.Category { return player.Midfielder }

func (sc MidfielderScorer) ComputeMetrics(s player.Statistics, weights map[string]float64) (map[string]normalize.Stat, error) {
	return compute(sc.Category(), midfielderMetrics, &s, weights)
}

func (DefenderScorer) Category() player.Category { return player.Defender }

func (sc DefenderScorer) ComputeMetrics(s player.Statistics, weights map[string]float64) (map[string]normalize.Stat, error) {
	return compute(sc.Category(), defenderMetrics, &s, weights)
}

func (GoalkeeperScorer) Category() player.Category { return player.Goalkeeper }

func (sc GoalkeeperScorer) ComputeMetrics(s player.Statistics, weights map[string]float64) (map[string]normalize.Stat, error) {
	return compute(sc.Category(), goalkeeperMetrics, &s, weights)
}
