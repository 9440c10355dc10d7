package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/okian/scoutval/internal/domain/player"
)

// Dataset is the on-disk ingest format.
type Dataset struct {
	Teams     []player.Team     `json:"teams"`
	Players   []player.Record   `json:"players"`
	Favorites []player.Favorite `json:"favorites"`
}

// Decode reads a dataset, rejecting unknown top-level keys.
func Decode(r io.Reader) (Dataset, error) {
	var ds Dataset
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&ds); err != nil {
		return Dataset{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return ds, nil
}

// Validate checks ids are positive and unique, that ranked teams fit within
// their max ranking and that favorites point at players in the dataset. Players may reference teams outside it.
func (ds Dataset) Validate() error {
	teams := mapset.NewThreadUnsafeSet[int]()
	for _, t := range ds.Teams {
		if t.ID < 1 {
			return fmt.Errorf("%w: team id %d", ErrInvalid, t.ID)
		}
		if !teams.Add(t.ID) {
			return fmt.Errorf("%w: duplicate team %d", ErrInvalid, t.ID)
		}
		if t.WorldRanking > 0 && t.MaxRanking < t.WorldRanking {
			return fmt.Errorf("%w: team %d ranked %d of %d", ErrInvalid, t.ID, t.WorldRanking, t.MaxRanking)
		}
	}

	players := mapset.NewThreadUnsafeSet[int]()
	for i := range ds.Players {
		rec := &ds.Players[i]
		if rec.ID < 1 {
			return fmt.Errorf("%w: player id %d", ErrInvalid, rec.ID)
		}
		if !players.Add(rec.ID) {
			return fmt.Errorf("%w: duplicate player %d", ErrInvalid, rec.ID)
		}
		if _, err := rec.Category(); err != nil {
			return fmt.Errorf("%w: player %d: %w", ErrInvalid, rec.ID, err)
		}
	}

	for _, fav := range ds.Favorites {
		if fav.UserID == "" {
			return fmt.Errorf("%w: favorite of player %d has no user", ErrInvalid, fav.PlayerID)
		}
		if !players.Contains(fav.PlayerID) {
			return fmt.Errorf("%w: favorite of unknown player %d", ErrInvalid, fav.PlayerID)
		}
	}
	return nil
}

// MissingTeams lists team ids referenced by players but absent from the
// dataset.
func (ds Dataset) MissingTeams() []int {
	known := mapset.NewThreadUnsafeSet[int]()
	for _, t := range ds.Teams {
		known.Add(t.ID)
	}
	missing := mapset.NewThreadUnsafeSet[int]()
	for i := range ds.Players {
		if id := ds.Players[i].TeamID; id != 0 && !known.Contains(id) {
			missing.Add(id)
		}
	}
	out := missing.ToSlice()
	slices.Sort(out)
	return out
}
