package ingest

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/scoutval/internal/domain/player"
	"github.com/okian/scoutval/pkg/logger"
)

// Sink receives the decoded documents.
type Sink interface {
	PutTeam(ctx context.Context, t player.Team) error
	PutPlayer(ctx context.Context, rec player.Record) error
	AddFavorite(ctx context.Context, fav player.Favorite) error
}

// Run reads cfg.File and writes its documents to sink: teams first, then
// players concurrently, then favorites. Individual write failures are
// counted and reported together once the run completes.
func Run(ctx context.Context, cfg *Config, sink Sink) (*Stats, error) {
	log := logger.Get().Named("ingest")
	if cfg.File == "" {
		return nil, ErrNoFile
	}

	f, err := os.Open(cfg.File)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	ds, err := Decode(f)
	if err != nil {
		return nil, err
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	for _, id := range ds.MissingTeams() {
		log.Warn(ctx, "player references a team outside the dataset", logger.Int("team_id", id))
	}

	log.Info(ctx, "dataset loaded",
		logger.String("file", cfg.File),
		logger.Int("teams", len(ds.Teams)),
		logger.Int("players", len(ds.Players)),
		logger.Int("favorites", len(ds.Favorites)),
		logger.Bool("dryRun", cfg.DryRun),
	)
	if cfg.DryRun {
		return &Stats{}, nil
	}

	start := time.Now()
	stats, err := Load(ctx, ds, sink, cfg.Workers)
	log.Info(ctx, "ingest finished",
		logger.Any("teams", stats.Teams),
		logger.Any("players", stats.Players),
		logger.Any("favorites", stats.Favorites),
		logger.Any("failed", stats.Failed),
		logger.String("duration", time.Since(start).String()),
	)
	return stats, err
}

// Load writes an already validated dataset.
func Load(ctx context.Context, ds Dataset, sink Sink, workers int) (*Stats, error) {
	log := logger.Get().Named("ingest")
	if workers < 1 {
		workers = defaultWorkers()
	}

	var (
		teams, players, favorites, failed int64
		firstErr                          error
		errOnce                           sync.Once
	)
	fail := func(kind string, id int, err error) {
		atomic.AddInt64(&failed, 1)
		errOnce.Do(func() { firstErr = err })
		log.Error(ctx, "write failed", logger.String("kind", kind), logger.Int("id", id), logger.Error(err))
	}

	for _, t := range ds.Teams {
		if err := sink.PutTeam(ctx, t); err != nil {
			fail("team", t.ID, err)
			continue
		}
		teams++
	}

	recs := make(chan player.Record, workers*2)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rec := range recs {
				if err := sink.PutPlayer(ctx, rec); err != nil {
					fail("player", rec.ID, err)
					continue
				}
				atomic.AddInt64(&players, 1)
			}
		}()
	}
feed:
	for i := range ds.Players {
		select {
		case recs <- ds.Players[i]:
		case <-ctx.Done():
			break feed
		}
	}
	close(recs)
	wg.Wait()

	for _, fav := range ds.Favorites {
		if err := sink.AddFavorite(ctx, fav); err != nil {
			fail("favorite", fav.PlayerID, err)
			continue
		}
		favorites++
	}

	stats := &Stats{Teams: teams, Players: players, Favorites: favorites, Failed: failed}
	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("ingest interrupted: %w", err)
	}
	if failed > 0 {
		return stats, fmt.Errorf("%w: %d documents, first: %w", ErrWriteFailure, failed, firstErr)
	}
	return stats, nil
}
