package repository_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/okian/neuropulse/internal/adapters/repository"
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

func storedSession(app string, ts int64) (model.SessionRecord, model.Prediction) {
	rec := model.NewSessionRecord(model.SessionRecord{
		UserID:            "u1",
		AppName:           app,
		AppCategory:       model.CategorySocial,
		SessionDurationMS: 90_000,
		ScrollsPerMinute:  12.5,
		Timestamp:         ts,
	})
	pred := model.NewPrediction(model.Prediction{
		DopamineRisk:    0.75,
		AddictionLevel:  1,
		Confidence:      0.8,
		PrimaryReason:   "High-stimulation social media usage",
		Recommendations: []string{"Monitor your usage time", "Consider taking short breaks"},
		Insights:        []string{"Session duration: 1 minutes"},
	})
	return rec, pred
}

func TestSQLiteStore(t *testing.T) {
	Convey("Given an in-memory sqlite store", t, func() {
		ctx := context.Background()
		store, err := repository.NewSQLiteStore(ctx, "")
		So(err, ShouldBeNil)
		defer func() { _ = store.Close() }()

		Convey("When sessions are inserted", func() {
			for i, app := range []string{"app-a", "app-b", "app-c"} {
				rec, pred := storedSession(app, int64(1000+i))
				So(store.InsertSession(ctx, rec, pred), ShouldBeNil)
			}

			Convey("Then they read back newest first", func() {
				got, err := store.RecentSessions(ctx, 2)
				So(err, ShouldBeNil)
				So(got, ShouldHaveLength, 2)
				So(got[0].Record.AppName, ShouldEqual, "app-c")
				So(got[1].Record.AppName, ShouldEqual, "app-b")
			})

			Convey("Then the prediction survives the round trip", func() {
				got, err := store.RecentSessions(ctx, 1)
				So(err, ShouldBeNil)
				So(got[0].Prediction.DopamineRisk, ShouldEqual, 0.75)
				So(got[0].Prediction.AddictionLevel, ShouldEqual, 1)
				So(got[0].Prediction.PrimaryReason, ShouldEqual, "High-stimulation social media usage")
				So(got[0].Prediction.Recommendations, ShouldResemble, []string{
					"Monitor your usage time", "Consider taking short breaks",
				})
				So(got[0].Prediction.Insights, ShouldResemble, []string{"Session duration: 1 minutes"})
			})

			Convey("Then the count matches", func() {
				So(store.Count(ctx), ShouldEqual, 3)
			})
		})

		Convey("When a marker is inserted", func() {
			rec := model.NewSessionRecord(model.SessionRecord{
				UserID:            "u1",
				AppName:           "Instagram",
				AppCategory:       model.CategorySocial,
				DopamineSpikeFlag: 1,
				AddictionFlag:     2,
				Timestamp:         2000,
			})
			So(store.InsertMarker(ctx, rec), ShouldBeNil)

			Convey("Then it reads back flagged with an empty prediction", func() {
				got, err := store.RecentSessions(ctx, 1)
				So(err, ShouldBeNil)
				So(got[0].Marker, ShouldBeTrue)
				So(got[0].Record.DopamineSpikeFlag, ShouldEqual, 1)
				So(got[0].Record.AddictionFlag, ShouldEqual, 2)
				So(got[0].Prediction.Recommendations, ShouldBeNil)
			})
		})

		Convey("When reading with a non-positive limit", func() {
			_, err := store.RecentSessions(ctx, 0)
			So(err, ShouldEqual, repository.ErrInvalidLimit)
		})
	})
}

func TestSQLiteStore_Persistence(t *testing.T) {
	Convey("Given a file-backed sqlite store", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "sessions.db")

		store, err := repository.NewSQLiteStore(ctx, path)
		So(err, ShouldBeNil)

		rec, pred := storedSession("app-a", 1000)
		So(store.InsertSession(ctx, rec, pred), ShouldBeNil)
		So(store.Close(), ShouldBeNil)

		Convey("When the database is reopened", func() {
			reopened, err := repository.NewSQLiteStore(ctx, path)
			So(err, ShouldBeNil)
			defer func() { _ = reopened.Close() }()

			Convey("Then the session survived the restart", func() {
				So(reopened.Count(ctx), ShouldEqual, 1)

				got, err := reopened.RecentSessions(ctx, 10)
				So(err, ShouldBeNil)
				So(got[0].Record.AppName, ShouldEqual, "app-a")
			})
		})
	})
}
