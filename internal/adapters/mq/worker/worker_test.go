package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/neuropulse/internal/adapters/mq/queue"
	worker "github.com/okian/neuropulse/internal/adapters/mq/worker"
	repository "github.com/okian/neuropulse/internal/adapters/repository"
	model "github.com/okian/neuropulse/internal/domain/model"
	logging "github.com/okian/neuropulse/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing.
type mockQueue struct {
	jobChan chan queue.Job
}

func newMockQueue() *mockQueue {
	return &mockQueue{
		jobChan: make(chan queue.Job, 10),
	}
}

func (mq *mockQueue) Dequeue(ctx context.Context) <-chan queue.Job {
	return mq.jobChan
}

func (mq *mockQueue) close() {
	close(mq.jobChan)
}

func (mq *mockQueue) addJob(j queue.Job) {
	mq.jobChan <- j
}

type failingStore struct {
	err   error
	mu    sync.Mutex
	calls int
}

func (s *failingStore) InsertSession(ctx context.Context, record model.SessionRecord, prediction model.Prediction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.err
}

func (s *failingStore) InsertMarker(ctx context.Context, record model.SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.err
}

func (s *failingStore) RecentSessions(ctx context.Context, limit int) ([]repository.StoredSession, error) {
	return nil, s.err
}

func (s *failingStore) Count(ctx context.Context) int { return 0 }

func (s *failingStore) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func sessionJob(app string) queue.Job {
	return queue.Job{
		Record:     model.SessionRecord{UserID: "u1", AppName: app, SessionDurationMS: 60_000},
		Prediction: model.Prediction{DopamineRisk: 0.5, Confidence: 0.8},
	}
}

func TestPersistWorker(t *testing.T) {
	convey.Convey("Given a new PersistWorker", t, func() {
		// Initialize logging for tests
		_ = logging.Init()

		q := newMockQueue()
		store := repository.NewMemoryStore()

		convey.Convey("When creating a worker with default options", func() {
			w := worker.NewPersistWorker(q, store)

			convey.Convey("Then it should be created successfully", func() {
				convey.So(w, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When creating a worker with custom options", func() {
			w := worker.NewPersistWorker(q, store, worker.WithName("test-worker"))

			convey.Convey("Then it should be created successfully", func() {
				convey.So(w, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When running a worker", func() {
			w := worker.NewPersistWorker(q, store)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			// Start worker in goroutine
			go w.Run(ctx)

			// Give worker time to start
			time.Sleep(10 * time.Millisecond)

			convey.Convey("And when processing session jobs", func() {
				q.addJob(sessionJob("com.instagram.android"))

				// Give worker time to process
				time.Sleep(50 * time.Millisecond)

				convey.Convey("Then the session reaches the store", func() {
					convey.So(store.Count(ctx), convey.ShouldEqual, 1)

					got, err := store.RecentSessions(ctx, 1)
					convey.So(err, convey.ShouldBeNil)
					convey.So(got[0].Record.AppName, convey.ShouldEqual, "com.instagram.android")
					convey.So(got[0].Marker, convey.ShouldBeFalse)
				})
			})

			convey.Convey("And when processing marker jobs", func() {
				q.addJob(queue.Job{
					Record: model.SessionRecord{UserID: "u1", AppName: "marked", DopamineSpikeFlag: 1},
					Marker: true,
				})

				// Give worker time to process
				time.Sleep(50 * time.Millisecond)

				convey.Convey("Then the marker flag is preserved", func() {
					got, err := store.RecentSessions(ctx, 1)
					convey.So(err, convey.ShouldBeNil)
					convey.So(got[0].Marker, convey.ShouldBeTrue)
				})
			})

			convey.Convey("And when shutting down", func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer shutdownCancel()

				err := w.Shutdown(shutdownCtx)

				convey.Convey("Then it should shutdown gracefully", func() {
					convey.So(err, convey.ShouldBeNil)
				})
			})
		})

		convey.Convey("When context is cancelled", func() {
			w := worker.NewPersistWorker(q, store)
			ctx, cancel := context.WithCancel(context.Background())

			go w.Run(ctx)
			time.Sleep(10 * time.Millisecond)

			cancel()

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer shutdownCancel()

			convey.Convey("Then the worker stops and shutdown returns", func() {
				convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
			})
		})
	})
}

func TestPersistWorkerErrorHandling(t *testing.T) {
	convey.Convey("Given a worker over a failing store", t, func() {
		// Initialize logging for tests
		_ = logging.Init()

		q := newMockQueue()
		store := &failingStore{err: errors.New("disk full")}

		w := worker.NewPersistWorker(q, store)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		go w.Run(ctx)
		time.Sleep(10 * time.Millisecond)

		convey.Convey("When writes consistently fail", func() {
			q.addJob(sessionJob("app1"))
			q.addJob(sessionJob("app2"))

			// Give worker time to process
			time.Sleep(50 * time.Millisecond)

			convey.Convey("Then the worker keeps draining the queue", func() {
				convey.So(store.callCount(), convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When the queue channel is closed", func() {
			q.close()

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer shutdownCancel()

			convey.Convey("Then the worker stops on its own", func() {
				convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
			})
		})
	})
}
