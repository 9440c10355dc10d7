// Package service orchestrates the record store, weight profiles, valuation,
// ranking and the revaluation queue behind the HTTP API and the MCP tools.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"golang.org/x/time/rate"

	eventqueue "github.com/okian/scoutval/internal/adapters/mq/queue"
	workerpool "github.com/okian/scoutval/internal/adapters/mq/worker"
	"github.com/okian/scoutval/internal/adapters/ranking"
	"github.com/okian/scoutval/internal/adapters/repository"
	"github.com/okian/scoutval/internal/domain/dedupe"
	"github.com/okian/scoutval/internal/domain/model"
	"github.com/okian/scoutval/internal/domain/player"
	"github.com/okian/scoutval/internal/domain/scoring"
	"github.com/okian/scoutval/internal/domain/types"
	"github.com/okian/scoutval/internal/domain/valuation"
	"github.com/okian/scoutval/internal/domain/weights"
	"github.com/okian/scoutval/pkg/logger"
	"github.com/okian/scoutval/pkg/metrics"
)

// Catalog is the record store surface the service reads and writes.
type Catalog interface {
	GetPlayer(ctx context.Context, id int) (player.Record, error)
	TeamPlayers(ctx context.Context, teamID int) ([]player.Record, error)
	GetTeam(ctx context.Context, id int) (player.Team, error)
	ListTeams(ctx context.Context) ([]player.Team, error)
	FavoritesFor(ctx context.Context, userID string) ([]player.Favorite, error)
	AddFavorite(ctx context.Context, fav player.Favorite) error
	RemoveFavorite(ctx context.Context, userID string, playerID int) error
	FavoriteCount(ctx context.Context, playerID int) (int, error)
	HighestFavoriteCount(ctx context.Context) (int, error)
}

// WeightStore is the weight profile surface the service needs.
type WeightStore interface {
	weights.Loader
	Save(ctx context.Context, c player.Category, p weights.Profile) error
	Categories() []player.Category
}

// FavoriteGroup is one category heading of a user's player pool.
type FavoriteGroup struct {
	Label   string          `json:"label"`
	Players []player.Record `json:"players"`
}

// Service implements the API and tool dependencies.
type Service struct {
	mu sync.RWMutex

	// Core components
	catalog    Catalog
	weights    WeightStore
	board      *ranking.Board
	deduper    dedupe.Deduper
	eventQueue *eventqueue.InMemoryQueue
	workerPool *workerpool.Pool

	// Weight save throttling, one bucket per user
	limitMu       sync.Mutex
	limiters      map[string]*rate.Limiter
	savesPerMin   int
	shutdownGrace time.Duration

	// Configuration
	workerCount int
	queueSize   int
	dedupeSize  int
	now         func() time.Time

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of revaluation workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the revaluation queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many pending player ids are tracked.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithWeightSavesPerMinute sets the per-user weight save budget.
// Zero or negative disables throttling.
func WithWeightSavesPerMinute(n int) Option {
	return func(s *Service) {
		s.savesPerMin = n
	}
}

// WithShutdownGrace bounds how long Stop waits for queued revaluations.
func WithShutdownGrace(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.shutdownGrace = d
		}
	}
}

// WithClock overrides the time source used for valuations and requests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service. Browsing and synchronous valuation work right
// away; revaluations need Start.
func New(catalog Catalog, store WeightStore, opts ...Option) *Service {
	s := &Service{
		catalog:       catalog,
		weights:       store,
		board:         ranking.NewBoard(),
		limiters:      make(map[string]*rate.Limiter),
		savesPerMin:   30,
		shutdownGrace: 10 * time.Second,
		workerCount:   runtime.NumCPU(),
		queueSize:     10_000,
		dedupeSize:    50_000,
		now:           func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	return s
}

// Start builds the revaluation queue and starts the worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting valuation service...")

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.eventQueue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.workerPool = workerpool.NewPool(s.workerCount, s.eventQueue, s)
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "valuation service started",
		logger.Int("workers", s.workerPool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

// Stop drains the revaluation queue and stops the workers.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	s.logger.Info(ctx, "stopping valuation service...")

	ctx, cancel := context.WithTimeout(ctx, s.shutdownGrace)
	defer cancel()
	err := s.workerPool.Shutdown(ctx)

	s.started = false
	if err != nil {
		s.logger.Warn(ctx, "worker pool did not drain in time", logger.Error(err))
		return err
	}
	s.logger.Info(ctx, "valuation service stopped")
	return nil
}

// Player returns the raw record for id.
func (s *Service) Player(ctx context.Context, id int) (player.Record, error) {
	rec, err := s.catalog.GetPlayer(ctx, id)
	if err != nil {
		return player.Record{}, s.storeError("get player", ErrPlayerNotFound, err)
	}
	return rec, nil
}

// PlayerValuation loads the player, resolves its environment and computes a
// fresh valuation. A successful valuation refreshes the leaderboard.
func (s *Service) PlayerValuation(ctx context.Context, id int) (valuation.Valuation, error) {
	start := time.Now()

	rec, err := s.Player(ctx, id)
	if err != nil {
		s.recordFailure(ctx, id, "", err)
		return valuation.Valuation{}, err
	}

	env, err := s.environment(ctx, rec)
	if err != nil {
		s.recordFailure(ctx, id, rec.Position, err)
		return valuation.Valuation{}, err
	}

	f, err := valuation.New(ctx, rec, s.weights, env)
	if err != nil {
		s.recordFailure(ctx, id, rec.Position, err)
		return valuation.Valuation{}, err
	}

	v := f.Valuation()
	s.board.Upsert(ctx, v.PlayerID, string(v.Category), v.CompositeValue)

	metrics.RecordValuation(string(v.Category))
	metrics.RecordValuationLatency(float64(time.Since(start).Microseconds()) / 1000)
	for _, section := range v.AbsentSections() {
		metrics.RecordAbsentSection(section)
	}

	s.logger.Debug(ctx, "player valued",
		logger.Int("player_id", v.PlayerID),
		logger.String("category", string(v.Category)),
		logger.Float64("composite", v.CompositeValue),
	)
	return v, nil
}

// environment resolves the team and platform reference data for rec.
func (s *Service) environment(ctx context.Context, rec player.Record) (valuation.Environment, error) {
	env := valuation.Environment{Now: s.now}

	if rec.TeamID != 0 {
		team, err := s.catalog.GetTeam(ctx, rec.TeamID)
		switch {
		case err == nil:
			roster, err := s.catalog.TeamPlayers(ctx, rec.TeamID)
			if err != nil {
				return env, types.NewUpstreamFetchError("team players", err)
			}
			tc := &scoring.TeamContext{Team: team}
			for i := range roster {
				season, err := roster[i].CurrentSeason()
				if err != nil {
					continue
				}
				tc.Goals += player.Count(season.Goals.Total)
				tc.Assists += season.AssistCount()
			}
			env.Team = tc
		case errors.Is(err, repository.ErrNotFound):
		default:
			return env, types.NewUpstreamFetchError("get team", err)
		}
	}

	demand, err := s.catalog.FavoriteCount(ctx, rec.ID)
	if err != nil {
		return env, types.NewUpstreamFetchError("favorite count", err)
	}
	highest, err := s.catalog.HighestFavoriteCount(ctx)
	if err != nil {
		return env, types.NewUpstreamFetchError("highest favorite count", err)
	}
	env.Platform = scoring.PlatformContext{
		PlayerDemand:  float64(demand),
		HighestDemand: float64(highest),
	}
	return env, nil
}

func (s *Service) recordFailure(ctx context.Context, id int, category string, err error) {
	kind := ErrorKind(err)
	metrics.RecordValuationError(kind)
	if kind == KindNotFound {
		return
	}
	s.logger.Error(ctx, "valuation failed",
		logger.Int("player_id", id),
		logger.String("category", category),
		logger.Error(err),
	)
}

// Teams lists every team.
func (s *Service) Teams(ctx context.Context) ([]player.Team, error) {
	teams, err := s.catalog.ListTeams(ctx)
	if err != nil {
		return nil, types.NewUpstreamFetchError("list teams", err)
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].ID < teams[j].ID })
	return teams, nil
}

// TeamPlayers lists the roster of teamID ordered by player id.
func (s *Service) TeamPlayers(ctx context.Context, teamID int) ([]player.Record, error) {
	if _, err := s.catalog.GetTeam(ctx, teamID); err != nil {
		return nil, s.storeError("get team", ErrTeamNotFound, err)
	}
	roster, err := s.catalog.TeamPlayers(ctx, teamID)
	if err != nil {
		return nil, types.NewUpstreamFetchError("team players", err)
	}
	sort.Slice(roster, func(i, j int) bool { return roster[i].ID < roster[j].ID })
	return roster, nil
}

// Favorites returns the user's player pool grouped by category heading.
// Favorites pointing at missing players are skipped.
func (s *Service) Favorites(ctx context.Context, userID string) ([]FavoriteGroup, error) {
	favs, err := s.catalog.FavoritesFor(ctx, userID)
	if err != nil {
		return nil, types.NewUpstreamFetchError("favorites", err)
	}

	byLabel := make(map[string][]player.Record)
	for _, fav := range favs {
		rec, err := s.catalog.GetPlayer(ctx, fav.PlayerID)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, types.NewUpstreamFetchError("get player", err)
		}
		label := player.Category("").GroupLabel()
		if c, err := rec.Category(); err == nil {
			label = c.GroupLabel()
		}
		byLabel[label] = append(byLabel[label], rec)
	}

	var groups []FavoriteGroup
	for _, label := range groupOrder {
		recs, ok := byLabel[label]
		if !ok {
			continue
		}
		sort.Slice(recs, func(i, j int) bool { return recs[i].ID < recs[j].ID })
		groups = append(groups, FavoriteGroup{Label: label, Players: recs})
	}
	return groups, nil
}

var groupOrder = []string{
	player.Goalkeeper.GroupLabel(),
	player.Defender.GroupLabel(),
	player.Midfielder.GroupLabel(),
	player.Attacker.GroupLabel(),
	player.Category("").GroupLabel(),
}

// AddFavorite adds playerID to the user's pool. The player must exist.
func (s *Service) AddFavorite(ctx context.Context, userID string, playerID int) error {
	if userID == "" {
		return fmt.Errorf("%w: empty user id", ErrInvalidRequest)
	}
	if _, err := s.Player(ctx, playerID); err != nil {
		return err
	}
	if err := s.catalog.AddFavorite(ctx, player.Favorite{UserID: userID, PlayerID: playerID}); err != nil {
		return types.NewUpstreamFetchError("add favorite", err)
	}
	return nil
}

// RemoveFavorite drops playerID from the user's pool. Removing an absent
// favorite is not an error.
func (s *Service) RemoveFavorite(ctx context.Context, userID string, playerID int) error {
	if err := s.catalog.RemoveFavorite(ctx, userID, playerID); err != nil {
		return types.NewUpstreamFetchError("remove favorite", err)
	}
	return nil
}

// Categories lists the categories that have a weight profile.
func (s *Service) Categories() []player.Category {
	return s.weights.Categories()
}

// WeightProfile returns the profile for a category label.
func (s *Service) WeightProfile(ctx context.Context, label string) (player.Category, weights.Profile, error) {
	c, err := player.ParseCategory(label)
	if err != nil {
		return "", weights.Profile{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	p, err := s.weights.Load(ctx, c)
	if err != nil {
		return c, weights.Profile{}, err
	}
	return c, p, nil
}

// SaveWeightProfile validates and persists a profile on behalf of userID.
// Saves beyond the per-user budget fail with ErrThrottled.
func (s *Service) SaveWeightProfile(ctx context.Context, userID, label string, p weights.Profile) (player.Category, error) {
	c, err := player.ParseCategory(label)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if !s.allowSave(userID) {
		metrics.RecordWeightSaveError("throttled")
		return c, ErrThrottled
	}
	if err := s.weights.Save(ctx, c, p); err != nil {
		return c, err
	}
	s.logger.Info(ctx, "weight profile saved",
		logger.String("category", string(c)),
		logger.String("user", userID),
	)
	return c, nil
}

func (s *Service) allowSave(userID string) bool {
	if s.savesPerMin <= 0 {
		return true
	}
	s.limitMu.Lock()
	defer s.limitMu.Unlock()
	l, ok := s.limiters[userID]
	if !ok {
		l = rate.NewLimiter(rate.Limit(float64(s.savesPerMin)/time.Minute.Seconds()), s.savesPerMin)
		s.limiters[userID] = l
	}
	return l.Allow()
}

// EnqueueRevaluation queues players for recomputation. Players with a
// revaluation already pending are reported as skipped. When the queue is
// full the job accepted so far is returned with ErrBackpressure.
func (s *Service) EnqueueRevaluation(ctx context.Context, playerIDs []int, reason string) (model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return model.Job{}, ErrNotStarted
	}
	if len(playerIDs) == 0 {
		return model.Job{}, fmt.Errorf("%w: no players to revalue", ErrInvalidRequest)
	}
	if reason == "" {
		reason = model.ReasonManual
	}

	job := model.NewJob()
	for _, id := range playerIDs {
		if s.deduper.SeenAndRecord(ctx, id) {
			metrics.RecordRevaluationDuplicate()
			job.Skipped = append(job.Skipped, id)
			continue
		}
		if err := s.eventQueue.Enqueue(ctx, job.Request(id, reason, s.now())); err != nil {
			s.deduper.Unrecord(ctx, id)
			s.logger.Warn(ctx, "revaluation rejected",
				logger.String("job", job.ID),
				logger.Int("player_id", id),
				logger.Error(err),
			)
			if errors.Is(err, eventqueue.ErrFull) {
				return job, ErrBackpressure
			}
			return job, err
		}
		job.Accepted = append(job.Accepted, id)
	}

	metrics.UpdateQueueSize(s.eventQueue.Len(ctx))
	s.logger.Info(ctx, "revaluation job queued",
		logger.String("job", job.ID),
		logger.Int("accepted", len(job.Accepted)),
		logger.Int("skipped", len(job.Skipped)),
	)
	return job, nil
}

// EnqueueTeamRevaluation queues every player on teamID.
func (s *Service) EnqueueTeamRevaluation(ctx context.Context, teamID int, reason string) (model.Job, error) {
	roster, err := s.TeamPlayers(ctx, teamID)
	if err != nil {
		return model.Job{}, err
	}
	ids := make([]int, len(roster))
	for i := range roster {
		ids[i] = roster[i].ID
	}
	return s.EnqueueRevaluation(ctx, ids, reason)
}

// Revalue recomputes one queued player. It releases the pending mark so the
// player can be queued again.
func (s *Service) Revalue(ctx context.Context, req model.RevaluationRequest) error {
	defer s.deduper.Unrecord(ctx, req.PlayerID)
	_, err := s.PlayerValuation(ctx, req.PlayerID)
	return err
}

// TopN returns the n highest composite values.
func (s *Service) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	return s.board.TopN(ctx, n)
}

// Rank returns the leaderboard entry of a valued player.
func (s *Service) Rank(ctx context.Context, playerID int) (types.Entry, error) {
	return s.board.Rank(ctx, playerID)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	ranked := s.board.Count(ctx)
	stats := map[string]interface{}{
		"started":       s.started,
		"workerCount":   s.workerCount,
		"queueSize":     s.queueSize,
		"dedupeSize":    s.dedupeSize,
		"rankedPlayers": ranked,
		"categories":    s.weights.Categories(),
	}

	if s.started {
		queueLen := s.eventQueue.Len(ctx)
		stats["queueLength"] = queueLen
		stats["pending"] = s.deduper.Size()
		stats["processed"] = s.workerPool.Processed()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateWorkerCount(s.workerPool.Size())
	}
	return stats
}

// storeError maps a store miss to notFound and anything else to an
// UpstreamFetchError.
func (s *Service) storeError(op string, notFound, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %w", notFound, err)
	}
	return types.NewUpstreamFetchError(op, err)
}
