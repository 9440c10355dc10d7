// Package ranking keeps the composite value leaderboard in a treap.
package ranking

import (
	"context"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/okian/scoutval/internal/domain/types"
	"github.com/okian/scoutval/pkg/metrics"
)

// Ordering: score DESC, then playerID ASC. "less" means ranks earlier, so an
// in-order walk yields the leaderboard from best to worst.

// scoreScale controls fixed-point scaling from float64. Composite values
// live in [0, a few units], so 12 decimals leaves ample headroom.
const scoreScale = 1_000_000_000_000

type scoreFP int64

func toFixedPoint(x float64) scoreFP {
	switch {
	case math.IsNaN(x):
		return 0
	case math.IsInf(x, 1):
		return scoreFP(math.MaxInt64)
	case math.IsInf(x, -1):
		return scoreFP(math.MinInt64)
	}
	scaled := x * scoreScale
	if scaled >= float64(math.MaxInt64) {
		return scoreFP(math.MaxInt64)
	}
	if scaled <= float64(math.MinInt64) {
		return scoreFP(math.MinInt64)
	}
	return scoreFP(math.Round(scaled))
}

func toFloat(x scoreFP) float64 {
	return float64(x) / scoreScale
}

type record struct {
	score    scoreFP
	category string
}

type node struct {
	id    int
	score scoreFP
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

func less(aScore scoreFP, aID int, bScore scoreFP, bID int) bool {
	if aScore != bScore {
		return aScore > bScore
	}
	return aID < bID
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

// priority hashes the player id so the tree shape does not depend on the
// order or distribution of scores.
func priority(id int) uint64 {
	return xxhash.Sum64String(strconv.Itoa(id))
}

func insert(n *node, id int, score scoreFP) *node {
	if n == nil {
		return &node{id: id, score: score, prio: priority(id), size: 1}
	}
	if less(score, id, n.score, n.id) {
		n.left = insert(n.left, id, score)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, score)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, id int, score scoreFP) *node {
	if n == nil {
		return nil
	}
	switch {
	case score == n.score && id == n.id:
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, score)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, score)
		}
	case less(score, id, n.score, n.id):
		n.left = deleteNode(n.left, id, score)
	default:
		n.right = deleteNode(n.right, id, score)
	}
	fix(n)
	return n
}

// walk visits nodes in rank order until visit returns false.
func walk(n *node, visit func(*node) bool) bool {
	if n == nil {
		return true
	}
	if !walk(n.left, visit) {
		return false
	}
	if !visit(n) {
		return false
	}
	return walk(n.right, visit)
}

// Board is the in-memory leaderboard of composite values.
type Board struct {
	mu   sync.RWMutex
	root *node
	byID map[int]record
}

// NewBoard returns an empty Board.
func NewBoard() *Board {
	return &Board{byID: make(map[int]record)}
}

// Upsert sets the composite value of a player, replacing any previous value.
func (b *Board) Upsert(_ context.Context, playerID int, category string, score float64) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	ns := toFixedPoint(score)

	b.mu.Lock()
	if old, ok := b.byID[playerID]; ok {
		b.root = deleteNode(b.root, playerID, old.score)
	}
	b.byID[playerID] = record{score: ns, category: category}
	b.root = insert(b.root, playerID, ns)
	count := len(b.byID)
	b.mu.Unlock()

	metrics.UpdateRankedPlayers(count)
}

// Remove drops a player from the board. Unknown ids are ignored.
func (b *Board) Remove(_ context.Context, playerID int) {
	b.mu.Lock()
	if old, ok := b.byID[playerID]; ok {
		b.root = deleteNode(b.root, playerID, old.score)
		delete(b.byID, playerID)
	}
	count := len(b.byID)
	b.mu.Unlock()

	metrics.UpdateRankedPlayers(count)
}

// Rank returns the entry of one player. Equal scores share a rank and the
// next distinct score takes the next rank.
func (b *Board) Rank(_ context.Context, playerID int) (types.Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	b.mu.RLock()
	defer b.mu.RUnlock()

	rec, ok := b.byID[playerID]
	if !ok {
		metrics.RecordErrorByComponent("ranking", "not_found")
		return types.Entry{}, ErrNotFound
	}

	rank := 0
	var prev scoreFP
	walk(b.root, func(n *node) bool {
		if rank == 0 || n.score != prev {
			rank++
			prev = n.score
		}
		return n.score != rec.score
	})

	return types.Entry{Rank: rank, PlayerID: playerID, Category: rec.category, Score: toFloat(rec.score)}, nil
}

// TopN returns the best n entries.
func (b *Board) TopN(_ context.Context, n int) ([]types.Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if n < 1 {
		metrics.RecordErrorByComponent("ranking", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]types.Entry, 0, min(n, len(b.byID)))
	rank := 0
	var prev scoreFP
	walk(b.root, func(nd *node) bool {
		if rank == 0 || nd.score != prev {
			rank++
			prev = nd.score
		}
		out = append(out, types.Entry{
			Rank:     rank,
			PlayerID: nd.id,
			Category: b.byID[nd.id].category,
			Score:    toFloat(nd.score),
		})
		return len(out) < n
	})
	return out, nil
}

// Count returns the number of ranked players.
func (b *Board) Count(_ context.Context) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.byID)
}
