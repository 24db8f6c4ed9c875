package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	dedupe "github.com/auralab/stemscore/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSeenAndRecord(t *testing.T) {
	Convey("Given a fresh deduper", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper()

		Convey("When recording a new pair id", func() {
			seen := d.SeenAndRecord(ctx, "L1_song1")

			Convey("Then it should not have been seen before", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("And recording it again should report a duplicate", func() {
				So(d.SeenAndRecord(ctx, "L1_song1"), ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When recording distinct pair ids", func() {
			So(d.SeenAndRecord(ctx, "L1_song1"), ShouldBeFalse)
			So(d.SeenAndRecord(ctx, "L2_song1"), ShouldBeFalse)
			So(d.SeenAndRecord(ctx, "L1_song2"), ShouldBeFalse)

			Convey("Then all should be tracked", func() {
				So(d.Size(), ShouldEqual, 3)
			})
		})
	})
}

func TestSeenAndRecordConcurrent(t *testing.T) {
	Convey("Given concurrent recorders for the same id set", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper(dedupe.WithSizeHint(100))

		const goroutines = 8
		const ids = 100

		var wg sync.WaitGroup
		for g := 0; g < goroutines; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < ids; i++ {
					d.SeenAndRecord(ctx, fmt.Sprintf("pair-%d", i))
				}
			}()
		}
		wg.Wait()

		Convey("Then each id should be recorded exactly once", func() {
			So(d.Size(), ShouldEqual, ids)
		})
	})
}
