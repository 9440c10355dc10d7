package dedupe_test

import (
	"context"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/scoutval/internal/domain/dedupe"
)

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a new InMemoryDeduper", t, func() {
		ctx := context.Background()

		Convey("When creating a deduper with default options", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("Then it should start empty", func() {
				So(d, ShouldNotBeNil)
				So(d.Size(), ShouldEqual, 0)
			})
		})

		Convey("When recording player ids", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("And the id is new", func() {
				seen := d.SeenAndRecord(ctx, 7)

				Convey("Then it should return false and record the id", func() {
					So(seen, ShouldBeFalse)
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And the id is already pending", func() {
				d.SeenAndRecord(ctx, 7)
				seen := d.SeenAndRecord(ctx, 7)

				Convey("Then it should return true without growing", func() {
					So(seen, ShouldBeTrue)
					So(d.Size(), ShouldEqual, 1)
				})
			})
		})

		Convey("When unrecording ids", func() {
			d := dedupe.NewInMemoryDeduper()
			d.SeenAndRecord(ctx, 1)
			d.SeenAndRecord(ctx, 2)
			d.Unrecord(ctx, 1)
			d.Unrecord(ctx, 42)

			Convey("Then released ids should be accepted again", func() {
				So(d.Size(), ShouldEqual, 1)
				So(d.SeenAndRecord(ctx, 1), ShouldBeFalse)
				So(d.SeenAndRecord(ctx, 2), ShouldBeTrue)
			})
		})

		Convey("When a bounded deduper is full", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
			for id := 1; id <= 4; id++ {
				d.SeenAndRecord(ctx, id)
			}

			Convey("Then the oldest id should be evicted", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(ctx, 4), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, 1), ShouldBeFalse)
			})
		})

		Convey("When the deduper is unbounded", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
			for id := range 1000 {
				d.SeenAndRecord(ctx, id)
			}

			Convey("Then nothing should be evicted", func() {
				So(d.Size(), ShouldEqual, 1000)
				So(d.SeenAndRecord(ctx, 0), ShouldBeTrue)
			})
		})

		Convey("When many goroutines claim the same ids", func() {
			d := dedupe.NewInMemoryDeduper()
			var (
				wg     sync.WaitGroup
				mu     sync.Mutex
				claims int
			)
			for range 20 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for id := range 50 {
						if !d.SeenAndRecord(ctx, id) {
							mu.Lock()
							claims++
							mu.Unlock()
						}
					}
				}()
			}
			wg.Wait()

			Convey("Then each id should be claimed exactly once", func() {
				So(claims, ShouldEqual, 50)
				So(d.Size(), ShouldEqual, 50)
			})
		})
	})
}
