package queue_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/scoutval/internal/adapters/mq/queue"
)

func req(id int) queue.Request {
	return queue.Request{JobID: "job", PlayerID: id, RequestedAt: time.Now()}
}

func TestInMemoryQueue(t *testing.T) {
	Convey("Given an in-memory queue with capacity 3", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(3))

		Convey("When enqueuing within capacity", func() {
			So(q.Enqueue(ctx, req(1)), ShouldBeNil)
			So(q.Enqueue(ctx, req(2)), ShouldBeNil)

			Convey("Then requests should be dequeued in order", func() {
				So(q.Len(ctx), ShouldEqual, 2)
				ch := q.Dequeue(ctx)
				So((<-ch).PlayerID, ShouldEqual, 1)
				So((<-ch).PlayerID, ShouldEqual, 2)
				So(q.Len(ctx), ShouldEqual, 0)
			})
		})

		Convey("When the queue is full", func() {
			for id := 1; id <= 3; id++ {
				So(q.Enqueue(ctx, req(id)), ShouldBeNil)
			}
			err := q.Enqueue(ctx, req(4))

			Convey("Then enqueue should report backpressure without blocking", func() {
				So(errors.Is(err, queue.ErrFull), ShouldBeTrue)
				So(q.Len(ctx), ShouldEqual, 3)
				So(q.Capacity(), ShouldEqual, 3)
			})
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			err := q.Enqueue(cctx, req(1))

			Convey("Then the context error should be returned", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})

		Convey("When the queue is closed", func() {
			So(q.Enqueue(ctx, req(1)), ShouldBeNil)
			So(q.Close(), ShouldBeNil)
			So(q.Close(), ShouldBeNil)

			Convey("Then new requests should be rejected", func() {
				So(q.IsClosed(), ShouldBeTrue)
				So(errors.Is(q.Enqueue(ctx, req(2)), queue.ErrClosed), ShouldBeTrue)
			})

			Convey("Then queued requests should drain before the channel closes", func() {
				ch := q.Dequeue(ctx)
				r, ok := <-ch
				So(ok, ShouldBeTrue)
				So(r.PlayerID, ShouldEqual, 1)
				_, ok = <-ch
				So(ok, ShouldBeFalse)
			})
		})
	})
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	Convey("Given producers racing with Close", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(1000))

		var wg sync.WaitGroup
		for p := range 8 {
			wg.Add(1)
			go func(p int) {
				defer wg.Done()
				for i := range 200 {
					_ = q.Enqueue(ctx, req(p*1000+i))
				}
			}(p)
		}
		go func() {
			time.Sleep(time.Millisecond)
			_ = q.Close()
		}()
		wg.Wait()
		_ = q.Close()

		Convey("Then nothing should panic and the queue should stay bounded", func() {
			So(q.Len(ctx), ShouldBeLessThanOrEqualTo, 1000)
			So(q.IsClosed(), ShouldBeTrue)
		})
	})
}
