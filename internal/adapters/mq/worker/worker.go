// Package worker drains the persistence queue into the session store.
//
// A single worker keeps writes ordered the way scoring produced them.
// Storage failures are logged and counted, never propagated back into
// the scoring pipeline.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/neuropulse/internal/adapters/mq/queue"
	"github.com/okian/neuropulse/internal/adapters/repository"
	"github.com/okian/neuropulse/pkg/logger"
	"github.com/okian/neuropulse/pkg/metrics"
)

// Queue defines how the worker receives persistence jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker processes persistence jobs until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	// It will process any remaining jobs before stopping.
	Shutdown(ctx context.Context) error
}

// PersistWorker implements Worker over a repository.Store.
type PersistWorker struct {
	queue Queue
	store repository.Store
	name  string

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	// Logging
	logger logger.Logger
}

// NewPersistWorker creates a new worker with configuration options.
func NewPersistWorker(q Queue, store repository.Store, opts ...Option) *PersistWorker {
	w := &PersistWorker{
		queue:    q,
		store:    store,
		name:     "persist-worker", // default name
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"), // will be updated by options
	}

	// Apply all options
	for _, opt := range opts {
		opt(w)
	}

	if w.name != "persist-worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *PersistWorker) Run(ctx context.Context) {
	defer func() {
		close(w.done)
	}()

	jobChan := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobChan:
			if !ok {
				// Channel closed, worker should stop
				return
			}

			if err := w.processJob(ctx, job); err != nil {
				w.logger.Error(ctx, "error persisting session", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *PersistWorker) Shutdown(ctx context.Context) error {
	// Signal shutdown
	close(w.shutdown)

	// Wait for worker to finish or context to timeout
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processJob writes a single persistence job to the store.
func (w *PersistWorker) processJob(ctx context.Context, job queue.Job) error {
	start := time.Now()

	var err error
	if job.Marker {
		err = w.store.InsertMarker(ctx, job.Record)
	} else {
		err = w.store.InsertSession(ctx, job.Record, job.Prediction)
	}

	metrics.RecordPersistLatency(float64(time.Since(start).Milliseconds()))

	if err != nil {
		metrics.RecordPersistError()
		metrics.RecordErrorByComponent("worker", "persist_error")
		w.logger.Error(ctx, "storage write failed",
			logger.String("app", job.Record.AppName),
			logger.Bool("marker", job.Marker),
			logger.Error(err),
		)
		return fmt.Errorf("persist session for %s: %w", job.Record.AppName, err)
	}

	metrics.RecordSessionPersisted()
	return nil
}
