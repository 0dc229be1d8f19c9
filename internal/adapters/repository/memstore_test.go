package repository_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/okian/neuropulse/internal/adapters/repository"
	"github.com/okian/neuropulse/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func session(app string) (model.SessionRecord, model.Prediction) {
	rec := model.NewSessionRecord(model.SessionRecord{
		UserID:            "u1",
		AppName:           app,
		AppCategory:       model.CategorySocial,
		SessionDurationMS: 60_000,
	})
	pred := model.NewPrediction(model.Prediction{DopamineRisk: 0.5, Confidence: 0.8})
	return rec, pred
}

func TestMemoryStore_Insert(t *testing.T) {
	Convey("Given an empty store", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()

		Convey("When sessions are inserted", func() {
			for i := 0; i < 3; i++ {
				rec, pred := session(fmt.Sprintf("app-%d", i))
				So(store.InsertSession(ctx, rec, pred), ShouldBeNil)
			}

			Convey("Then ids are assigned in insertion order", func() {
				got, err := store.RecentSessions(ctx, 10)
				So(err, ShouldBeNil)
				So(got, ShouldHaveLength, 3)
				So(got[0].ID, ShouldEqual, 3)
				So(got[2].ID, ShouldEqual, 1)
			})

			Convey("Then the count reflects the inserts", func() {
				So(store.Count(ctx), ShouldEqual, 3)
			})
		})

		Convey("When a marker is inserted", func() {
			rec, _ := session("marker-app")
			So(store.InsertMarker(ctx, rec), ShouldBeNil)

			got, err := store.RecentSessions(ctx, 1)
			So(err, ShouldBeNil)
			So(got[0].Marker, ShouldBeTrue)
		})

		Convey("When the context is already cancelled", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()

			rec, pred := session("late")
			So(store.InsertSession(cancelled, rec, pred), ShouldNotBeNil)
			So(store.Count(ctx), ShouldEqual, 0)
		})
	})
}

func TestMemoryStore_RecentSessions(t *testing.T) {
	Convey("Given a store with sessions", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		for i := 0; i < 5; i++ {
			rec, pred := session(fmt.Sprintf("app-%d", i))
			So(store.InsertSession(ctx, rec, pred), ShouldBeNil)
		}

		Convey("Then results come newest first", func() {
			got, err := store.RecentSessions(ctx, 2)
			So(err, ShouldBeNil)
			So(got, ShouldHaveLength, 2)
			So(got[0].Record.AppName, ShouldEqual, "app-4")
			So(got[1].Record.AppName, ShouldEqual, "app-3")
		})

		Convey("Then a limit beyond the stored count is truncated", func() {
			got, err := store.RecentSessions(ctx, 100)
			So(err, ShouldBeNil)
			So(got, ShouldHaveLength, 5)
		})

		Convey("Then a non-positive limit is rejected", func() {
			_, err := store.RecentSessions(ctx, 0)
			So(err, ShouldEqual, repository.ErrInvalidLimit)
		})
	})
}

func TestMemoryStore_Capacity(t *testing.T) {
	Convey("Given a store bounded to three sessions", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore(repository.WithMemoryCapacity(3))

		for i := 0; i < 5; i++ {
			rec, pred := session(fmt.Sprintf("app-%d", i))
			So(store.InsertSession(ctx, rec, pred), ShouldBeNil)
		}

		Convey("Then only the newest three survive", func() {
			So(store.Count(ctx), ShouldEqual, 3)

			got, err := store.RecentSessions(ctx, 10)
			So(err, ShouldBeNil)
			So(got[0].Record.AppName, ShouldEqual, "app-4")
			So(got[2].Record.AppName, ShouldEqual, "app-2")
		})

		Convey("Then ids keep increasing across evictions", func() {
			got, err := store.RecentSessions(ctx, 1)
			So(err, ShouldBeNil)
			So(got[0].ID, ShouldEqual, 5)
		})
	})
}
