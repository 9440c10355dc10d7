package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/okian/scoutval/internal/domain/player"
)

// Records wraps a DocumentStore with typed accessors for the player data set.
type Records struct {
	store DocumentStore
}

// NewRecords returns typed accessors over store.
func NewRecords(store DocumentStore) *Records {
	return &Records{store: store}
}

// Store returns the underlying document store.
func (r *Records) Store() DocumentStore { return r.store }

func decode[T any](body json.RawMessage) (T, error) {
	var v T
	err := json.Unmarshal(body, &v)
	return v, err
}

func decodeAll[T any](bodies []json.RawMessage) ([]T, error) {
	out := make([]T, 0, len(bodies))
	for _, b := range bodies {
		v, err := decode[T](b)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func favoriteID(userID string, playerID int) string {
	return userID + ":" + strconv.Itoa(playerID)
}

// GetPlayer returns ErrNotFound when the player is unknown.
func (r *Records) GetPlayer(ctx context.Context, id int) (player.Record, error) {
	body, err := r.store.Get(ctx, CollectionPlayers, strconv.Itoa(id))
	if err != nil {
		return player.Record{}, err
	}
	rec, err := decode[player.Record](body)
	if err != nil {
		return player.Record{}, fmt.Errorf("decode player %d: %w", id, err)
	}
	return rec, nil
}

// PutPlayer stores a player record keyed by its id.
func (r *Records) PutPlayer(ctx context.Context, rec player.Record) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return r.store.Put(ctx, CollectionPlayers, strconv.Itoa(rec.ID), body)
}

// PlayersByField returns players whose top-level field equals value.
func (r *Records) PlayersByField(ctx context.Context, field string, value any) ([]player.Record, error) {
	bodies, err := r.store.QueryByField(ctx, CollectionPlayers, field, value)
	if err != nil {
		return nil, err
	}
	return decodeAll[player.Record](bodies)
}

// TeamPlayers returns the roster of a team.
func (r *Records) TeamPlayers(ctx context.Context, teamID int) ([]player.Record, error) {
	return r.PlayersByField(ctx, "teamId", teamID)
}

// ListPlayers returns every stored player.
func (r *Records) ListPlayers(ctx context.Context) ([]player.Record, error) {
	bodies, err := r.store.List(ctx, CollectionPlayers)
	if err != nil {
		return nil, err
	}
	return decodeAll[player.Record](bodies)
}

// GetTeam returns ErrNotFound when the team is unknown.
func (r *Records) GetTeam(ctx context.Context, id int) (player.Team, error) {
	body, err := r.store.Get(ctx, CollectionTeams, strconv.Itoa(id))
	if err != nil {
		return player.Team{}, err
	}
	t, err := decode[player.Team](body)
	if err != nil {
		return player.Team{}, fmt.Errorf("decode team %d: %w", id, err)
	}
	return t, nil
}

// PutTeam stores a team keyed by its id.
func (r *Records) PutTeam(ctx context.Context, t player.Team) error {
	body, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return r.store.Put(ctx, CollectionTeams, strconv.Itoa(t.ID), body)
}

// ListTeams returns every stored team.
func (r *Records) ListTeams(ctx context.Context) ([]player.Team, error) {
	bodies, err := r.store.List(ctx, CollectionTeams)
	if err != nil {
		return nil, err
	}
	return decodeAll[player.Team](bodies)
}

// FavoritesFor returns the favorites of one user.
func (r *Records) FavoritesFor(ctx context.Context, userID string) ([]player.Favorite, error) {
	bodies, err := r.store.QueryByField(ctx, CollectionFavorites, "userId", userID)
	if err != nil {
		return nil, err
	}
	return decodeAll[player.Favorite](bodies)
}

// AddFavorite stores a favorite. Adding the same pair twice is a no-op.
func (r *Records) AddFavorite(ctx context.Context, fav player.Favorite) error {
	body, err := json.Marshal(fav)
	if err != nil {
		return err
	}
	return r.store.Put(ctx, CollectionFavorites, favoriteID(fav.UserID, fav.PlayerID), body)
}

// RemoveFavorite deletes a favorite. Removing an absent pair is not an error.
func (r *Records) RemoveFavorite(ctx context.Context, userID string, playerID int) error {
	err := r.store.Delete(ctx, CollectionFavorites, favoriteID(userID, playerID))
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

// FavoriteCount is how many users hold the player in their pool.
func (r *Records) FavoriteCount(ctx context.Context, playerID int) (int, error) {
	return r.store.CountByField(ctx, CollectionFavorites, "playerId", playerID)
}

// HighestFavoriteCount is the favorite count of the most favored player.
func (r *Records) HighestFavoriteCount(ctx context.Context) (int, error) {
	return r.store.CountMax(ctx, CollectionFavorites, "playerId")
}
