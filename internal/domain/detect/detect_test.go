package detect_test

import (
	"context"
	"testing"
	"time"

	"github.com/okian/neuropulse/internal/adapters/source"
	"github.com/okian/neuropulse/internal/domain/catalog"
	"github.com/okian/neuropulse/internal/domain/detect"
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

// morning is a fixed reference time outside the evening risk bands.
var morning = time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

func newDetector(src *source.InMemorySource, now time.Time) *detect.Detector {
	return detect.New(src, catalog.New(), detect.WithNow(func() time.Time { return now }))
}

func TestDetector_DetectForegroundApp(t *testing.T) {
	Convey("Given recent foreground events", t, func() {
		ctx := context.Background()
		src := source.NewInMemorySource()
		d := newDetector(src, morning)

		src.Ingest(ctx, model.UsageEvent{AppID: "older", Type: model.EventForeground, Timestamp: morning.Add(-40 * time.Second).UnixMilli()})
		src.Ingest(ctx, model.UsageEvent{AppID: "newest", Type: model.EventForeground, Timestamp: morning.Add(-5 * time.Second).UnixMilli()})
		src.Ingest(ctx, model.UsageEvent{AppID: "background", Type: model.EventBackground, Timestamp: morning.Add(-time.Second).UnixMilli()})

		Convey("Then the newest foreground transition wins", func() {
			So(d.DetectForegroundApp(ctx), ShouldEqual, "newest")
		})
	})

	Convey("Given no foreground events in the last minute", t, func() {
		ctx := context.Background()
		src := source.NewInMemorySource()
		d := newDetector(src, morning)

		Convey("When the running-app fallback has data", func() {
			src.Ingest(ctx, model.UsageEvent{AppID: "fallback", Type: model.EventBackground, Timestamp: morning.Add(-5 * time.Minute).UnixMilli()})

			So(d.DetectForegroundApp(ctx), ShouldEqual, "fallback")
		})

		Convey("When nothing is available at all", func() {
			So(d.DetectForegroundApp(ctx), ShouldEqual, model.UnknownApp)
		})
	})
}

func TestDetector_ComputeRisk(t *testing.T) {
	Convey("Given a quiet morning and an empty event buffer", t, func() {
		ctx := context.Background()
		src := source.NewInMemorySource()
		d := newDetector(src, morning)

		Convey("Then a low-risk app scores its baseline plus continuity", func() {
			info := d.ComputeRisk(ctx, "org.telegram.messenger")
			// 0.2 base + 0.3*0 intensity + 0.2*0 time + 0.3*0.1 continuity
			So(info.AddictionRisk, ShouldAlmostEqual, 0.23, 0.0001)
			So(info.RiskLevel(), ShouldEqual, "LOW")
			So(info.RiskReason, ShouldEqual, "Low risk - healthy usage pattern")
		})

		Convey("Then a social app carries the social continuity term", func() {
			info := d.ComputeRisk(ctx, "com.instagram.android")
			// 0.8 base + 0.3*0.3 continuity
			So(info.AddictionRisk, ShouldAlmostEqual, 0.89, 0.0001)
			So(info.RiskLevel(), ShouldEqual, "HIGH")
			So(info.RiskReason, ShouldStartWith, "High addiction risk - ")
		})
	})

	Convey("Given a late night hour", t, func() {
		ctx := context.Background()
		src := source.NewInMemorySource()
		lateNight := time.Date(2025, 6, 2, 23, 0, 0, 0, time.UTC)
		d := newDetector(src, lateNight)

		Convey("Then the time-of-day term raises the composite", func() {
			info := d.ComputeRisk(ctx, "org.telegram.messenger")
			// 0.2 base + 0.2*0.3 time + 0.3*0.1 continuity
			So(info.AddictionRisk, ShouldAlmostEqual, 0.29, 0.0001)
		})
	})

	Convey("Given heavy recent usage", t, func() {
		ctx := context.Background()
		src := source.NewInMemorySource()
		d := newDetector(src, morning)

		// 300 events in 30 minutes saturates the intensity signal
		for i := 0; i < 300; i++ {
			src.Ingest(ctx, model.UsageEvent{
				AppID: "com.instagram.android", Type: model.EventForeground,
				Timestamp: morning.Add(-time.Duration(i) * 5 * time.Second).UnixMilli(),
			})
		}

		Convey("Then the composite clamps at 1", func() {
			info := d.ComputeRisk(ctx, "com.instagram.android")
			So(info.AddictionRisk, ShouldEqual, 1.0)
		})
	})

	Convey("Given an unreadable event source", t, func() {
		ctx := context.Background()
		src := source.NewInMemorySource()
		src.SetFailure(source.ErrPermissionDenied)
		d := newDetector(src, morning)

		Convey("Then intensity degrades to the moderate default", func() {
			info := d.ComputeRisk(ctx, "org.telegram.messenger")
			// 0.2 base + 0.3*0.2 default intensity + 0.3*0.1 continuity
			So(info.AddictionRisk, ShouldAlmostEqual, 0.29, 0.0001)
		})
	})
}

func TestDetector_CurrentAppInfo(t *testing.T) {
	Convey("Given an undetectable foreground app", t, func() {
		ctx := context.Background()
		src := source.NewInMemorySource()
		d := newDetector(src, morning)

		info := d.CurrentAppInfo(ctx)

		Convey("Then the zero-risk unknown info is returned", func() {
			So(info.AppID, ShouldEqual, model.UnknownApp)
			So(info.DisplayName, ShouldEqual, "Unknown App")
			So(info.AddictionRisk, ShouldEqual, 0.0)
			So(info.RiskReason, ShouldEqual, "No active app detected")
		})
	})

	Convey("Given an app without a resolver entry", t, func() {
		ctx := context.Background()
		src := source.NewInMemorySource()
		d := newDetector(src, morning)

		src.Ingest(ctx, model.UsageEvent{AppID: "com.example.mycoolapp", Type: model.EventForeground, Timestamp: morning.Add(-time.Second).UnixMilli()})
		info := d.CurrentAppInfo(ctx)

		Convey("Then the display name falls back to the last path segment", func() {
			So(info.DisplayName, ShouldEqual, "mycoolapp")
		})
	})
}
