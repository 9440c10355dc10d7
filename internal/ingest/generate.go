package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"strconv"

	"github.com/google/uuid"

	"github.com/okian/scoutval/internal/domain/player"
)

// GenerateConfig sizes a synthetic dataset.
type GenerateConfig struct {
	Teams          int
	PlayersPerTeam int
	Users          int
	Seed           uint64
}

// Squad layout per eleven: one keeper, four defenders, four midfielders,
// two attackers. Larger squads repeat the cycle.
var squadCycle = []player.Category{
	player.Goalkeeper,
	player.Defender, player.Defender, player.Defender, player.Defender,
	player.Midfielder, player.Midfielder, player.Midfielder, player.Midfielder,
	player.Attacker, player.Attacker,
}

// Performance tiers scale every counting statistic.
const (
	tierLow = iota
	tierAverage
	tierHigh
	tierElite
	tierCount
)

var tierScale = [tierCount]float64{0.4, 1.0, 1.6, 2.2}

const (
	seasonMinutesMax = 3420 // 38 games of 90 minutes
	maxRankingSpread = 200
	favoritesPerUser = 5
)

// Generate builds a valid dataset from cfg. The same seed always yields the
// same dataset.
func Generate(cfg GenerateConfig) Dataset {
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))

	ds := Dataset{
		Teams:   make([]player.Team, 0, cfg.Teams),
		Players: make([]player.Record, 0, cfg.Teams*cfg.PlayersPerTeam),
	}
	for t := 1; t <= cfg.Teams; t++ {
		ds.Teams = append(ds.Teams, player.Team{
			ID:              t,
			Name:            "Team " + strconv.Itoa(t),
			WorldRanking:    t,
			MaxRanking:      cfg.Teams + rng.IntN(maxRankingSpread) + 1,
			Competitiveness: 0.5 + rng.Float64()*0.5,
		})
		for p := 0; p < cfg.PlayersPerTeam; p++ {
			id := (t-1)*cfg.PlayersPerTeam + p + 1
			cat := squadCycle[p%len(squadCycle)]
			ds.Players = append(ds.Players, generatePlayer(rng, id, t, cat))
		}
	}

	if len(ds.Players) > 0 {
		for u := 0; u < cfg.Users; u++ {
			user := uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("scout-%d-%d", cfg.Seed, u))).String()
			seen := make(map[int]struct{}, favoritesPerUser)
			for f := 0; f < favoritesPerUser && f < len(ds.Players); f++ {
				rec := ds.Players[rng.IntN(len(ds.Players))]
				if _, dup := seen[rec.ID]; dup {
					continue
				}
				seen[rec.ID] = struct{}{}
				ds.Favorites = append(ds.Favorites, player.Favorite{UserID: user, PlayerID: rec.ID})
			}
		}
	}
	return ds
}

func generatePlayer(rng *rand.Rand, id, teamID int, cat player.Category) player.Record {
	scale := tierScale[rng.IntN(tierCount)]
	count := func(base int) *int {
		v := int(float64(rng.IntN(base+1)) * scale)
		return &v
	}

	apps := 10 + rng.IntN(29)
	minutes := min(apps*(45+rng.IntN(46)), seasonMinutesMax)
	lineups := apps - rng.IntN(apps/3+1)
	duels := 40 + rng.IntN(260)
	shots := count(40)
	on := int(player.Count(shots) * (0.2 + rng.Float64()*0.4))

	season := player.Statistics{
		Team:    player.TeamRef{ID: teamID},
		Games:   player.Games{Appearances: &apps, Minutes: &minutes, Lineups: &lineups, Captain: rng.IntN(25) == 0, Position: string(cat)},
		Assists: count(6),
		Duels:   player.Duels{Total: &duels, Won: player.IntPtr(int(float64(duels) * (0.3 + rng.Float64()*0.4)))},
		Shots:   player.Shots{Total: shots, On: &on},
		Passes:  player.Passes{Key: count(30), Total: count(900), Accuracy: player.IntPtr(60 + rng.IntN(35))},
		Tackles: player.Tackles{Total: count(50), Interceptions: count(30), Blocks: count(15)},
		Cards:   player.Cards{Yellow: player.IntPtr(rng.IntN(9)), Red: player.IntPtr(rng.IntN(2))},
	}
	switch cat {
	case player.Attacker:
		season.Goals = player.Goals{Total: count(15)}
	case player.Midfielder:
		season.Goals = player.Goals{Total: count(6)}
	case player.Defender:
		season.Goals = player.Goals{Total: count(2)}
	case player.Goalkeeper:
		season.Goals = player.Goals{Total: player.IntPtr(0), Saves: count(90), Conceded: player.IntPtr(15 + rng.IntN(40))}
	}

	rec := player.Record{
		ID:         id,
		Name:       "Player " + strconv.Itoa(id),
		Age:        17 + rng.IntN(20),
		Position:   string(cat),
		TeamID:     teamID,
		Statistics: []player.Statistics{season},
	}
	// Roughly a third of the players have no media profile.
	if rng.IntN(3) > 0 {
		rec.Media = &player.Media{
			InstagramFollowers: float64(rng.IntN(5_000_000)) * scale,
			EngagementRate:     1 + rng.Float64()*9,
			GoogleSearches:     float64(rng.IntN(1_000_000)) * scale,
			TwitterMentions:    float64(rng.IntN(100_000)) * scale,
		}
	}
	return rec
}

// Encode writes ds as indented JSON readable by Decode.
func Encode(w io.Writer, ds Dataset) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ds); err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}
	return nil
}
