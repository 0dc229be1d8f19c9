package aggregate_test

import (
	"context"
	"testing"
	"time"

	"github.com/okian/neuropulse/internal/adapters/source"
	"github.com/okian/neuropulse/internal/domain/aggregate"
	"github.com/okian/neuropulse/internal/domain/model"
	"github.com/okian/neuropulse/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func ingest(ctx context.Context, src *source.InMemorySource, app string, eventType model.EventType, ts time.Time) {
	src.Ingest(ctx, model.UsageEvent{
		EventID:   app + ts.String(),
		AppID:     app,
		Type:      eventType,
		Timestamp: ts.UnixMilli(),
	})
}

func TestAggregator_Aggregate(t *testing.T) {
	Convey("Given a source with a window of events", t, func() {
		ctx := context.Background()
		src := source.NewInMemorySource()
		agg := aggregate.New(src)

		base := time.Now().Add(-10 * time.Minute)
		ingest(ctx, src, "instagram", model.EventForeground, base)
		ingest(ctx, src, "instagram", model.EventForeground, base.Add(time.Minute))
		ingest(ctx, src, "instagram", model.EventBackground, base.Add(2*time.Minute))
		ingest(ctx, src, "youtube", model.EventForeground, base.Add(3*time.Minute))

		res := agg.Aggregate(ctx, base, base.Add(5*time.Minute))

		Convey("Then per-app counts and unlocks are tallied", func() {
			So(res.Unavailable, ShouldBeFalse)
			So(res.PerAppCount["instagram"], ShouldEqual, 3)
			So(res.PerAppCount["youtube"], ShouldEqual, 1)
			So(res.UnlockCount, ShouldEqual, 3)
			So(res.PerAppLastSeen["instagram"], ShouldEqual, base.Add(2*time.Minute).UnixMilli())
		})

		Convey("Then the dominant app wins PrimaryApp", func() {
			So(res.PrimaryApp(), ShouldEqual, "instagram")
		})
	})
}

func TestAggregator_EdgeWindows(t *testing.T) {
	Convey("Given an aggregator", t, func() {
		ctx := context.Background()
		src := source.NewInMemorySource()
		agg := aggregate.New(src)

		Convey("When the window is inverted", func() {
			now := time.Now()
			res := agg.Aggregate(ctx, now, now.Add(-time.Minute))

			Convey("Then the result is empty, not an error", func() {
				So(res.Unavailable, ShouldBeFalse)
				So(res.PerAppCount, ShouldBeEmpty)
				So(res.PrimaryApp(), ShouldEqual, model.UnknownApp)
			})
		})

		Convey("When the source cannot be read", func() {
			src.SetFailure(source.ErrUnavailable)
			res := agg.Aggregate(ctx, time.Now().Add(-time.Minute), time.Now())

			Convey("Then the result is flagged unavailable", func() {
				So(res.Unavailable, ShouldBeTrue)
				So(res.PerAppCount, ShouldBeEmpty)
			})
		})
	})
}

func TestAggregator_BingeDetection(t *testing.T) {
	Convey("Given sustained same-app usage", t, func() {
		ctx := context.Background()
		src := source.NewInMemorySource()
		agg := aggregate.New(src)
		base := time.Now().Add(-time.Hour)

		Convey("When 10 events arrive with small gaps", func() {
			for i := 0; i < 10; i++ {
				ingest(ctx, src, "tiktok", model.EventForeground, base.Add(time.Duration(i)*5*time.Minute))
			}
			res := agg.Aggregate(ctx, base.Add(-time.Minute), base.Add(time.Hour))

			Convey("Then a binge is detected", func() {
				So(res.BingeDetected, ShouldBeTrue)
			})
		})

		Convey("When a gap exceeds the binge threshold", func() {
			for i := 0; i < 9; i++ {
				ingest(ctx, src, "tiktok", model.EventForeground, base.Add(time.Duration(i)*5*time.Minute))
			}
			// 25 minute silence resets the consecutive counter
			ingest(ctx, src, "tiktok", model.EventForeground, base.Add(70*time.Minute))
			res := agg.Aggregate(ctx, base.Add(-time.Minute), base.Add(2*time.Hour))

			Convey("Then no binge is detected", func() {
				So(res.BingeDetected, ShouldBeFalse)
			})
		})
	})
}

func TestAggregator_TrackerEviction(t *testing.T) {
	Convey("Given trackers accumulated from old events", t, func() {
		ctx := context.Background()
		src := source.NewInMemorySource()
		agg := aggregate.New(src, aggregate.WithTrackerTTL(30*time.Minute))

		stale := time.Now().Add(-2 * time.Hour)
		ingest(ctx, src, "oldapp", model.EventForeground, stale)
		agg.Aggregate(ctx, stale.Add(-time.Minute), stale.Add(time.Minute))
		So(agg.TrackerCount(), ShouldEqual, 1)

		Convey("When a forced sweep runs past the TTL", func() {
			agg.Sweep(time.Now())

			Convey("Then idle trackers are evicted", func() {
				So(agg.TrackerCount(), ShouldEqual, 0)
			})
		})
	})
}
