package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/skirmish/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a new InMemoryDeduper", t, func() {
		ctx := context.Background()

		Convey("When creating a deduper with default options", func() {
			d, err := dedupe.NewInMemoryDeduper()

			Convey("Then it should be empty", func() {
				So(err, ShouldBeNil)
				So(d.Size(), ShouldEqual, 0)
			})
		})

		Convey("When a non-positive size is given", func() {
			d, err := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(-1))

			Convey("Then the default is kept", func() {
				So(err, ShouldBeNil)
				So(d, ShouldNotBeNil)
			})
		})

		Convey("When recording keys", func() {
			d, err := dedupe.NewInMemoryDeduper()
			So(err, ShouldBeNil)
			key := dedupe.Key("Aelwyn", "session-1")

			Convey("And the key is new", func() {
				seen := d.SeenAndRecord(ctx, key)

				Convey("Then it should return false and record the key", func() {
					So(seen, ShouldBeFalse)
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And the key was already seen", func() {
				d.SeenAndRecord(ctx, key)
				seen := d.SeenAndRecord(ctx, key)

				Convey("Then it should return true", func() {
					So(seen, ShouldBeTrue)
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And the key is unrecorded", func() {
				d.SeenAndRecord(ctx, key)
				d.Unrecord(ctx, key)

				Convey("Then it can be recorded again", func() {
					So(d.Size(), ShouldEqual, 0)
					So(d.SeenAndRecord(ctx, key), ShouldBeFalse)
				})
			})

			Convey("And the same session is recorded for another player", func() {
				d.SeenAndRecord(ctx, key)
				seen := d.SeenAndRecord(ctx, dedupe.Key("You", "session-1"))

				Convey("Then it is a different key", func() {
					So(seen, ShouldBeFalse)
					So(d.Size(), ShouldEqual, 2)
				})
			})
		})

		Convey("When the deduper is full", func() {
			d, err := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(2))
			So(err, ShouldBeNil)
			d.SeenAndRecord(ctx, "a")
			d.SeenAndRecord(ctx, "b")
			d.SeenAndRecord(ctx, "c")

			Convey("Then the oldest key is evicted", func() {
				So(d.Size(), ShouldEqual, 2)
				So(d.SeenAndRecord(ctx, "c"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "a"), ShouldBeFalse)
			})
		})

		Convey("When many goroutines record the same keys", func() {
			d, err := dedupe.NewInMemoryDeduper()
			So(err, ShouldBeNil)

			var (
				wg    sync.WaitGroup
				mu    sync.Mutex
				fresh int
			)
			for g := 0; g < 8; g++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for i := 0; i < 100; i++ {
						if !d.SeenAndRecord(ctx, fmt.Sprintf("key-%d", i)) {
							mu.Lock()
							fresh++
							mu.Unlock()
						}
					}
				}()
			}
			wg.Wait()

			Convey("Then each key is fresh exactly once", func() {
				So(fresh, ShouldEqual, 100)
				So(d.Size(), ShouldEqual, 100)
			})
		})
	})
}
