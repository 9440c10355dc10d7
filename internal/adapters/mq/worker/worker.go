// Package worker runs background revaluations pulled off the queue.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/scoutval/internal/domain/model"
	"github.com/okian/scoutval/pkg/logger"
	"github.com/okian/scoutval/pkg/metrics"
)

const (
	metricsUpdateInterval = 5 * time.Second
	poolShutdownTimeout   = 30 * time.Second
)

// Request is what workers read off the queue.
type Request = model.RevaluationRequest

// Revaluer recomputes the valuation of one player.
type Revaluer interface {
	Revalue(ctx context.Context, req Request) error
}

// RevaluerFunc adapts a function to Revaluer.
type RevaluerFunc func(ctx context.Context, req Request) error

// Revalue implements Revaluer.
func (f RevaluerFunc) Revalue(ctx context.Context, req Request) error { return f(ctx, req) }

// Queue defines how workers receive requests.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Request
}

// Worker processes revaluation requests.
type Worker interface {
	// Run starts the worker loop until ctx is canceled, Shutdown is called,
	// or the queue channel closes.
	Run(ctx context.Context)

	// Shutdown stops the worker after its current request.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue    Queue
	revaluer Revaluer
	name     string

	shutdown    chan struct{}
	stopOnce    sync.Once
	done        chan struct{}
	onProcessed func()

	logger logger.Logger
}

var _ Worker = (*InMemoryWorker)(nil)

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, revaluer Revaluer, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    queue,
		revaluer: revaluer,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	requests := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case req, ok := <-requests:
			if !ok {
				return
			}
			if err := w.process(ctx, req); err != nil {
				w.logger.Error(ctx, "revaluation failed",
					logger.String("job_id", req.JobID),
					logger.Int("player_id", req.PlayerID),
					logger.Error(err),
				)
			}
		}
	}
}

func (w *InMemoryWorker) signal() {
	w.stopOnce.Do(func() { close(w.shutdown) })
}

// Shutdown implements Worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.signal()

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed when Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} {
	return w.done
}

func (w *InMemoryWorker) process(ctx context.Context, req Request) error {
	metrics.RecordQueueDequeue()
	if !req.RequestedAt.IsZero() {
		metrics.RecordQueueProcessingLatency(float64(time.Since(req.RequestedAt).Milliseconds()))
	}

	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
		if w.onProcessed != nil {
			w.onProcessed()
		}
	}()

	if err := w.revaluer.Revalue(ctx, req); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "revaluation_error")
		return fmt.Errorf("revalue player %d: %w", req.PlayerID, err)
	}
	metrics.RecordRevaluationProcessed()
	return nil
}

// Pool manages multiple workers reading one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	shutdown chan struct{}
	stopOnce sync.Once

	processed         atomic.Int64
	lastProcessedTime time.Time

	logger logger.Logger
}

// NewPool creates a new worker pool. A non-positive count means one worker per CPU.
func NewPool(workerCount int, queue Queue, revaluer Revaluer) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	p := &Pool{
		workers:           make([]*InMemoryWorker, workerCount),
		queue:             queue,
		shutdown:          make(chan struct{}),
		lastProcessedTime: time.Now(),
		logger:            logger.Get().Named("worker-pool"),
	}
	for i := range workerCount {
		p.workers[i] = NewInMemoryWorker(queue, revaluer,
			WithName("worker-"+strconv.Itoa(i)),
			withProcessed(func() { p.processed.Add(1) }),
		)
	}

	metrics.UpdateWorkerActiveCount(workerCount)
	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerMessagesPerSecond(0.0)

	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Processed returns how many requests the pool has handled.
func (p *Pool) Processed() int64 { return p.processed.Load() }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	go p.runMetrics(ctx)
}

func (p *Pool) runMetrics(ctx context.Context) {
	ticker := time.NewTicker(metricsUpdateInterval)
	defer ticker.Stop()

	var last int64
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.shutdown:
			return
		case now := <-ticker.C:
			cur := p.processed.Load()
			if elapsed := now.Sub(p.lastProcessedTime).Seconds(); elapsed > 0 {
				metrics.UpdateWorkerMessagesPerSecond(float64(cur-last) / elapsed)
			}
			last = cur
			p.lastProcessedTime = now
		}
	}
}

// Shutdown closes the queue when it supports it, lets workers drain what is
// already queued, and stops them forcibly once ctx expires.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	p.stopOnce.Do(func() { close(p.shutdown) })

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.Done():
		case <-shutdownCtx.Done():
			timedOut = true
			p.logger.Warn(ctx, "worker drain timed out", logger.Int("worker_id", i))
			w.signal()
		}
	}
	metrics.UpdateWorkerActiveCount(0)
	if timedOut {
		return fmt.Errorf("worker pool shutdown: %w", shutdownCtx.Err())
	}
	return nil
}
