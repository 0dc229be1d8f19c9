// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the monitoring loop.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/neuropulse/internal/adapters/monitor"
	persistqueue "github.com/okian/neuropulse/internal/adapters/mq/queue"
	persistworker "github.com/okian/neuropulse/internal/adapters/mq/worker"
	"github.com/okian/neuropulse/internal/adapters/repository"
	"github.com/okian/neuropulse/internal/adapters/source"
	"github.com/okian/neuropulse/internal/domain/aggregate"
	"github.com/okian/neuropulse/internal/domain/catalog"
	"github.com/okian/neuropulse/internal/domain/detect"
	"github.com/okian/neuropulse/internal/domain/feature"
	"github.com/okian/neuropulse/internal/domain/model"
	"github.com/okian/neuropulse/internal/domain/predict"
	"github.com/okian/neuropulse/pkg/logger"
)

// Default service configuration constants.
const (
	defaultUserID         = "default_user"
	defaultQueueSize      = 10_000
	defaultSourceCapacity = 100_000
	defaultStoreCapacity  = 10_000
	defaultCacheCapacity  = 100
	defaultSessionsLimit  = 100
	maxSessionsLimit      = 1000
	workerShutdownTimeout = 5 * time.Second
	defaultMonitorBase    = 30 * time.Second
	defaultMonitorMax     = 5 * time.Minute
	defaultInstantCadence = 5 * time.Second
	defaultMonitorRetries = 3
)

// Sentinel kinds for service errors.
var (
	ErrNotStarted    = errors.New("service not started")
	ErrEnqueueFailed = errors.New("persistence enqueue failed")
)

// Service wires the monitoring pipeline together: event source,
// aggregation, detection, feature extraction, prediction, persistence
// queue, and the scheduling loop.
type Service struct {
	mu sync.RWMutex

	// Core components
	src       *source.InMemorySource
	catalog   *catalog.Catalog
	agg       *aggregate.Aggregator
	detector  *detect.Detector
	extractor *feature.Extractor
	predictor *predict.Predictor
	store     repository.Store
	queue     persistqueue.Queue
	worker    *persistworker.PersistWorker
	loop      *monitor.Loop

	// Configuration
	userID         string
	dbPath         string
	queueSize      int
	sourceCapacity int
	storeCapacity  int
	cacheCapacity  int
	monitorBase    time.Duration
	monitorMax     time.Duration
	instantCadence time.Duration
	monitorRetries int
	notifier       monitor.Notifier

	// State
	started bool
	stopCh  chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithUserID sets the user identity attached to scored sessions.
func WithUserID(id string) Option {
	return func(s *Service) {
		if id != "" {
			s.userID = id
		}
	}
}

// WithDBPath sets the SQLite database path. Empty keeps the in-memory
// store.
func WithDBPath(path string) Option {
	return func(s *Service) {
		s.dbPath = path
	}
}

// WithQueueSize sets the persistence queue capacity.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithSourceCapacity bounds the in-memory event source.
func WithSourceCapacity(capacity int) Option {
	return func(s *Service) {
		if capacity > 0 {
			s.sourceCapacity = capacity
		}
	}
}

// WithStoreCapacity bounds the in-memory session store.
func WithStoreCapacity(capacity int) Option {
	return func(s *Service) {
		if capacity > 0 {
			s.storeCapacity = capacity
		}
	}
}

// WithCacheCapacity bounds the prediction result cache.
func WithCacheCapacity(capacity int) Option {
	return func(s *Service) {
		if capacity > 0 {
			s.cacheCapacity = capacity
		}
	}
}

// WithMonitorIntervals sets the full-scoring base/cap and the instant
// assessment cadence.
func WithMonitorIntervals(base, maxInterval, instant time.Duration) Option {
	return func(s *Service) {
		if base > 0 {
			s.monitorBase = base
		}
		if maxInterval > 0 {
			s.monitorMax = maxInterval
		}
		if instant > 0 {
			s.instantCadence = instant
		}
	}
}

// WithMonitorRetries sets the in-tick retry attempt limit.
func WithMonitorRetries(attempts int) Option {
	return func(s *Service) {
		if attempts > 0 {
			s.monitorRetries = attempts
		}
	}
}

// WithNotifier sets the best-effort high-risk notification hook.
func WithNotifier(fn monitor.Notifier) Option {
	return func(s *Service) {
		s.notifier = fn
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		userID:         defaultUserID,
		queueSize:      defaultQueueSize,
		sourceCapacity: defaultSourceCapacity,
		storeCapacity:  defaultStoreCapacity,
		cacheCapacity:  defaultCacheCapacity,
		monitorBase:    defaultMonitorBase,
		monitorMax:     defaultMonitorMax,
		instantCadence: defaultInstantCadence,
		monitorRetries: defaultMonitorRetries,
		stopCh:         make(chan struct{}),
		logger:         nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting monitoring service...")

	// Initialize components
	s.src = source.NewInMemorySource(source.WithCapacity(s.sourceCapacity))
	s.catalog = catalog.New()
	s.agg = aggregate.New(s.src)
	s.detector = detect.New(s.src, s.catalog)
	s.extractor = feature.New(s.agg, s.detector, s.catalog)
	s.predictor = predict.New(predict.WithCacheCapacity(s.cacheCapacity))

	if s.dbPath != "" {
		store, err := repository.NewSQLiteStore(ctx, s.dbPath)
		if err != nil {
			return fmt.Errorf("open session store: %w", err)
		}
		s.store = store
		s.logger.Info(ctx, "using sqlite store", logger.String("path", s.dbPath))
	} else {
		s.store = repository.NewMemoryStore(repository.WithMemoryCapacity(s.storeCapacity))
		s.logger.Info(ctx, "using in-memory store")
	}

	s.queue = persistqueue.NewInMemoryQueue(persistqueue.WithCapacity(s.queueSize))
	s.worker = persistworker.NewPersistWorker(s.queue, s.store)
	go s.worker.Run(ctx)

	s.loop = monitor.New(s, s,
		monitor.WithBaseInterval(s.monitorBase),
		monitor.WithMaxInterval(s.monitorMax),
		monitor.WithInstantInterval(s.instantCadence),
		monitor.WithMaxRetries(s.monitorRetries),
		monitor.WithMarkerFunc(s.enqueueMarker),
		monitor.WithCleanupFunc(s.forceCleanup),
		monitor.WithNotifier(s.notifier),
	)
	s.loop.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "monitoring service started",
		logger.String("userID", s.userID),
		logger.Int("queueSize", s.queueSize),
		logger.Duration("interval", s.monitorBase),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping monitoring service...")

	// Stop the scheduling loop first so no new jobs are produced
	if s.loop != nil {
		s.loop.Stop()
	}

	// Close the queue so the worker drains and exits
	if q, ok := s.queue.(*persistqueue.InMemoryQueue); ok {
		_ = q.Close()
	}
	if s.worker != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, workerShutdownTimeout)
		if err := s.worker.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn(ctx, "worker shutdown incomplete", logger.Error(err))
		}
		cancel()
	}

	// Close the session store
	if closer, ok := s.store.(interface{ Close() error }); ok {
		_ = closer.Close()
	}

	select {
	case <-s.stopCh:
		// Channel already closed
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(ctx, "monitoring service stopped")
}

// Ingest records a usage event into the event source. Returns false
// when the event is invalid or the source rejected it.
func (s *Service) Ingest(ctx context.Context, e model.UsageEvent) bool {
	if e.AppID == "" || e.Timestamp <= 0 {
		s.logger.Debug(ctx, "rejecting malformed event",
			logger.String("appID", e.AppID),
			logger.Int64("timestamp", e.Timestamp),
		)
		return false
	}
	if e.Type != model.EventForeground && e.Type != model.EventBackground {
		return false
	}
	return s.src.Ingest(ctx, e)
}

// ScoreWindow runs one full scoring pass: extract, predict, enqueue.
// Implements the monitor's Scorer contract.
func (s *Service) ScoreWindow(ctx context.Context, start, end time.Time) error {
	record := s.extractor.ExtractWithCurrentApp(ctx, s.userID, start, end)
	prediction := s.predictor.Predict(ctx, &record)

	if !s.queue.Enqueue(ctx, persistqueue.Job{Record: record, Prediction: prediction}) {
		return fmt.Errorf("session for %s: %w", record.AppName, ErrEnqueueFailed)
	}

	s.logger.Debug(ctx, "session scored",
		logger.String("app", record.AppName),
		logger.Float64("risk", prediction.DopamineRisk),
		logger.Int("level", prediction.AddictionLevel),
	)
	return nil
}

// Assess produces the lightweight current-app assessment. Implements
// the monitor's Assessor contract.
func (s *Service) Assess(ctx context.Context) (model.InstantAssessment, error) {
	return s.extractor.InstantAssessment(ctx), nil
}

// enqueueMarker persists a zero-duration high-risk marker through the
// same queue as full sessions.
func (s *Service) enqueueMarker(ctx context.Context, assessment model.InstantAssessment) {
	record := model.NewSessionRecord(model.SessionRecord{
		UserID:            s.userID,
		AppName:           assessment.AppName,
		AppCategory:       s.catalog.Category(assessment.AppID),
		SessionDurationMS: 0,
		TimeOfDay:         float64(time.Now().Hour()) / 24.0,
		DopamineSpikeFlag: 1,
		AddictionFlag:     2,
		Timestamp:         assessment.Timestamp,
	})

	if !s.queue.Enqueue(ctx, persistqueue.Job{Record: record, Marker: true}) {
		s.logger.Warn(ctx, "marker enqueue failed",
			logger.String("app", assessment.AppName))
	}
}

// forceCleanup frees bounded state under sustained scoring failure.
func (s *Service) forceCleanup(ctx context.Context) {
	s.predictor.Reset()
	s.agg.Sweep(time.Now())
	s.logger.Info(ctx, "forced cleanup completed",
		logger.Int("trackers", s.agg.TrackerCount()))
}

// Assessment returns the latest instant assessment.
func (s *Service) Assessment() model.InstantAssessment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.loop == nil {
		return model.InstantAssessment{}
	}
	return s.loop.Latest()
}

// RecentSessions returns up to limit persisted sessions, newest first.
// A non-positive limit uses the default; the cap is enforced.
func (s *Service) RecentSessions(ctx context.Context, limit int) ([]repository.StoredSession, error) {
	s.mu.RLock()
	store := s.store
	s.mu.RUnlock()

	if store == nil {
		return nil, ErrNotStarted
	}
	if limit <= 0 {
		limit = defaultSessionsLimit
	}
	if limit > maxSessionsLimit {
		limit = maxSessionsLimit
	}
	sessions, err := store.RecentSessions(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("read recent sessions: %w", err)
	}
	return sessions, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started": s.started,
		"userID":  s.userID,
	}

	if s.started {
		total, hits := s.predictor.Stats()
		stats["queueLength"] = s.queue.Len(ctx)
		stats["sessionsStored"] = s.store.Count(ctx)
		stats["eventsBuffered"] = s.src.Len()
		stats["predictions"] = total
		stats["cacheHits"] = hits
		stats["cacheSize"] = s.predictor.CacheLen()
		stats["appTrackers"] = s.agg.TrackerCount()
		stats["scoringInterval"] = s.loop.Interval().String()
		stats["consecutiveErrors"] = s.loop.ConsecutiveErrors()
	}

	return stats
}
