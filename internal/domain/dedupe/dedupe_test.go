package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	dedupe "github.com/quadra2003/networking-lunches/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a new deduper", t, func() {
		d := dedupe.NewInMemoryDeduper()

		Convey("When recording a fresh submission id", func() {
			seen := d.SeenAndRecord(context.Background(), "sub-1")

			Convey("Then it reports unseen and tracks it", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When recording the same id twice", func() {
			d.SeenAndRecord(context.Background(), "sub-1")
			seen := d.SeenAndRecord(context.Background(), "sub-1")

			Convey("Then the second attempt is a duplicate", func() {
				So(seen, ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When unrecording an id", func() {
			d.SeenAndRecord(context.Background(), "sub-1")
			d.Unrecord(context.Background(), "sub-1")

			Convey("Then the id can be recorded again", func() {
				So(d.Size(), ShouldEqual, 0)
				So(d.SeenAndRecord(context.Background(), "sub-1"), ShouldBeFalse)
			})
		})

		Convey("When unrecording an unknown id", func() {
			d.Unrecord(context.Background(), "never-seen")

			Convey("Then nothing changes", func() {
				So(d.Size(), ShouldEqual, 0)
			})
		})
	})

	Convey("Given a bounded deduper of size 3", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))

		Convey("When a fourth id arrives", func() {
			for _, id := range []string{"a", "b", "c", "d"} {
				So(d.SeenAndRecord(context.Background(), id), ShouldBeFalse)
			}

			Convey("Then the oldest id is evicted first", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(context.Background(), "a"), ShouldBeFalse) // evicted, so fresh again
				So(d.SeenAndRecord(context.Background(), "c"), ShouldBeTrue)
				So(d.SeenAndRecord(context.Background(), "d"), ShouldBeTrue)
			})
		})
	})

	Convey("Given concurrent submissions of the same id", t, func() {
		d := dedupe.NewInMemoryDeduper()
		const goroutines = 32

		Convey("When all goroutines race on SeenAndRecord", func() {
			var wg sync.WaitGroup
			fresh := make(chan bool, goroutines)
			for i := 0; i < goroutines; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if !d.SeenAndRecord(context.Background(), "contested") {
						fresh <- true
					}
				}()
			}
			wg.Wait()
			close(fresh)

			Convey("Then exactly one wins", func() {
				So(len(fresh), ShouldEqual, 1)
				So(d.Size(), ShouldEqual, 1)
			})
		})
	})

	Convey("Given an unbounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))

		Convey("When recording many ids", func() {
			for i := 0; i < 1000; i++ {
				d.SeenAndRecord(context.Background(), fmt.Sprintf("sub-%d", i))
			}

			Convey("Then nothing is evicted", func() {
				So(d.Size(), ShouldEqual, 1000)
			})
		})
	})
}
