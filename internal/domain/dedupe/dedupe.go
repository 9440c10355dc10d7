// Package dedupe tracks players with a revaluation already pending so that
// repeated requests collapse into one job.
package dedupe

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
)

// Deduper records pending player IDs.
type Deduper interface {
	// SeenAndRecord atomically checks if id is pending and records it if not.
	// Returns true if id was already pending, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id int) bool
	// Unrecord releases an id once its job finished, or when it could not be
	// enqueued, so later requests are accepted again.
	Unrecord(ctx context.Context, id int)
	Size() int64
}

// inMemoryDeduper keeps pending ids in a map plus an insertion-ordered list.
// When bounded and full, the oldest entry is evicted; a duplicate
// revaluation is harmless, an unbounded map is not.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[int]*list.Element
	order   *list.List
	maxSize int // 0 or negative means unbounded
	size    atomic.Int64
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: 50_000,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[int]*list.Element)
	d.order = list.New()
	return d
}

// SeenAndRecord implements Deduper.
func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}
	if d.maxSize > 0 && len(d.seen) >= d.maxSize {
		d.evictOldest()
	}
	d.seen[id] = d.order.PushBack(id)
	d.size.Add(1)
	return false
}

// Unrecord implements Deduper.
func (d *inMemoryDeduper) Unrecord(_ context.Context, id int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.seen[id]; ok {
		d.order.Remove(el)
		delete(d.seen, id)
		d.size.Add(-1)
	}
}

// evictOldest must be called with d.mu held.
func (d *inMemoryDeduper) evictOldest() {
	front := d.order.Front()
	if front == nil {
		return
	}
	d.order.Remove(front)
	delete(d.seen, front.Value.(int))
	d.size.Add(-1)
}

// Size returns the number of pending ids.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
