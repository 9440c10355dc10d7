package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/scoutval/internal/adapters/mq/worker"
	"github.com/okian/scoutval/internal/domain/model"
	logging "github.com/okian/scoutval/pkg/logger"
)

func init() {
	_ = logging.Init()
}

type mockQueue struct {
	ch   chan worker.Request
	once sync.Once
}

func newMockQueue(size int) *mockQueue {
	return &mockQueue{ch: make(chan worker.Request, size)}
}

func (mq *mockQueue) Dequeue(context.Context) <-chan worker.Request { return mq.ch }

func (mq *mockQueue) Close() error {
	mq.once.Do(func() { close(mq.ch) })
	return nil
}

type recordingRevaluer struct {
	mu     sync.Mutex
	seen   []int
	failOn map[int]error
	delay  time.Duration
}

func (r *recordingRevaluer) Revalue(ctx context.Context, req model.RevaluationRequest) error {
	if r.delay > 0 {
		time.Sleep(r.delay)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, req.PlayerID)
	return r.failOn[req.PlayerID]
}

func (r *recordingRevaluer) ids() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.seen...)
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker over a mock queue", t, func() {
		ctx := context.Background()
		q := newMockQueue(10)
		rev := &recordingRevaluer{failOn: map[int]error{2: errors.New("boom")}}
		w := worker.NewInMemoryWorker(q, rev, worker.WithName("test-worker"))
		go w.Run(ctx)

		convey.Convey("When requests arrive", func() {
			for id := 1; id <= 3; id++ {
				q.ch <- model.RevaluationRequest{JobID: "j", PlayerID: id, RequestedAt: time.Now()}
			}

			convey.Convey("Then every request should be revalued, failures included", func() {
				convey.So(waitFor(func() bool { return len(rev.ids()) == 3 }), convey.ShouldBeTrue)
				convey.So(rev.ids(), convey.ShouldResemble, []int{1, 2, 3})
				convey.So(w.Shutdown(ctx), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the queue closes", func() {
			_ = q.Close()

			convey.Convey("Then Run should return", func() {
				select {
				case <-w.Done():
				case <-time.After(time.Second):
					convey.So("worker still running", convey.ShouldBeEmpty)
				}
			})
		})

		convey.Convey("When Shutdown is called twice", func() {
			convey.So(w.Shutdown(ctx), convey.ShouldBeNil)
			convey.So(w.Shutdown(ctx), convey.ShouldBeNil)
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool of four workers", t, func() {
		ctx := context.Background()
		q := newMockQueue(100)
		rev := &recordingRevaluer{}
		p := worker.NewPool(4, q, rev)
		p.Start(ctx)

		convey.Convey("When requests are queued and the pool shuts down", func() {
			for id := range 50 {
				q.ch <- model.RevaluationRequest{PlayerID: id}
			}
			err := p.Shutdown(ctx)

			convey.Convey("Then queued requests should be drained first", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(rev.ids(), convey.ShouldHaveLength, 50)
				convey.So(p.Processed(), convey.ShouldEqual, 50)
				convey.So(p.Size(), convey.ShouldEqual, 4)
			})
		})
	})

	convey.Convey("Given a pool with a non-positive worker count", t, func() {
		p := worker.NewPool(0, newMockQueue(1), worker.RevaluerFunc(func(context.Context, model.RevaluationRequest) error { return nil }))

		convey.Convey("Then it should default to at least one worker", func() {
			convey.So(p.Size(), convey.ShouldBeGreaterThan, 0)
		})
	})

	convey.Convey("Given a pool whose revaluations outlive the deadline", t, func() {
		q := newMockQueue(10)
		rev := &recordingRevaluer{delay: 200 * time.Millisecond}
		p := worker.NewPool(1, q, rev)
		p.Start(context.Background())
		for id := range 5 {
			q.ch <- model.RevaluationRequest{PlayerID: id}
		}

		convey.Convey("When shutting down with a short context", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			err := p.Shutdown(ctx)

			convey.Convey("Then a timeout error should be returned", func() {
				convey.So(errors.Is(err, context.DeadlineExceeded), convey.ShouldBeTrue)
			})
		})
	})
}
