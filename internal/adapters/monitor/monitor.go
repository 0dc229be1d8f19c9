// Package monitor runs the two scheduling cadences of the service: a
// full scoring pass at an adaptive interval and a lightweight instant
// assessment every few seconds.
//
// The loop degrades under sustained failure instead of crashing: ticks
// retry with linear backoff, repeated failures stretch the scoring
// interval, and every tenth consecutive error triggers the cleanup hook.
package monitor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/neuropulse/internal/domain/model"
	"github.com/okian/neuropulse/pkg/logger"
	"github.com/okian/neuropulse/pkg/metrics"
)

// Scheduling and failure-handling constants.
const (
	defaultBaseInterval    = 30 * time.Second
	defaultMaxInterval     = 5 * time.Minute
	defaultInstantInterval = 5 * time.Second

	defaultMaxRetryAttempts = 3
	maxConsecutiveErrors    = 5
	cleanupEveryErrors      = 10

	backoffStep = time.Second
	maxBackoff  = 5 * time.Second

	// Instant risk at or above this enqueues a zero-duration marker.
	highRiskThreshold = 0.8
)

// Scorer performs one full scoring pass over the window.
type Scorer interface {
	ScoreWindow(ctx context.Context, start, end time.Time) error
}

// Assessor produces a lightweight current-app assessment.
type Assessor interface {
	Assess(ctx context.Context) (model.InstantAssessment, error)
}

// MarkerFunc receives high-risk assessments to persist as markers.
type MarkerFunc func(ctx context.Context, assessment model.InstantAssessment)

// CleanupFunc is invoked under sustained scoring failure.
type CleanupFunc func(ctx context.Context)

// Notifier receives every high-risk assessment, best effort.
type Notifier func(assessment model.InstantAssessment)

// Loop schedules full scoring and instant assessment ticks.
type Loop struct {
	scorer   Scorer
	assessor Assessor

	baseInterval    time.Duration
	maxInterval     time.Duration
	instantInterval time.Duration
	maxRetries      int

	marker   MarkerFunc
	cleanup  CleanupFunc
	notifier Notifier

	mu                sync.Mutex
	currentInterval   time.Duration
	consecutiveErrors int

	assessMu sync.RWMutex
	latest   model.InstantAssessment

	inFlight atomic.Bool

	startOnce sync.Once
	stopOnce  sync.Once
	cancel    context.CancelFunc
	done      chan struct{}

	logger logger.Logger
}

// New creates a monitoring loop with configuration options.
func New(scorer Scorer, assessor Assessor, opts ...Option) *Loop {
	l := &Loop{
		scorer:          scorer,
		assessor:        assessor,
		baseInterval:    defaultBaseInterval,
		maxInterval:     defaultMaxInterval,
		instantInterval: defaultInstantInterval,
		maxRetries:      defaultMaxRetryAttempts,
		done:            make(chan struct{}),
		logger:          logger.Get().Named("monitor"),
	}

	// Apply all options
	for _, opt := range opts {
		opt(l)
	}

	l.currentInterval = l.baseInterval
	return l
}

// Start launches the scheduler goroutine. Subsequent calls are no-ops.
func (l *Loop) Start(ctx context.Context) {
	l.startOnce.Do(func() {
		runCtx, cancel := context.WithCancel(ctx)
		l.cancel = cancel

		metrics.UpdateScoringInterval(l.baseInterval)
		metrics.UpdateConsecutiveErrors(0)

		go l.run(runCtx)
	})
}

// Stop cancels in-flight work and both cadences. Idempotent.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		if l.cancel != nil {
			l.cancel()
		}
		<-l.done
	})
}

// Latest returns the most recent instant assessment.
func (l *Loop) Latest() model.InstantAssessment {
	l.assessMu.RLock()
	defer l.assessMu.RUnlock()
	return l.latest
}

// Interval returns the current adaptive scoring interval.
func (l *Loop) Interval() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.currentInterval
}

// ConsecutiveErrors returns the cross-tick error count.
func (l *Loop) ConsecutiveErrors() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.consecutiveErrors
}

// run drives both cadences until the context is canceled. Full ticks
// use a timer so the adaptive interval takes effect on rescheduling.
func (l *Loop) run(ctx context.Context) {
	defer close(l.done)

	scoreTimer := time.NewTimer(l.Interval())
	defer scoreTimer.Stop()

	instantTicker := time.NewTicker(l.instantInterval)
	defer instantTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-scoreTimer.C:
			l.dispatchScoreTick(ctx)
			scoreTimer.Reset(l.Interval())
		case <-instantTicker.C:
			l.instantTick(ctx)
		}
	}
}

// dispatchScoreTick starts a scoring pass unless the previous one is
// still running, in which case the tick is skipped and counted.
func (l *Loop) dispatchScoreTick(ctx context.Context) {
	if !l.inFlight.CompareAndSwap(false, true) {
		metrics.RecordTickSkip()
		l.logger.Warn(ctx, "scoring tick skipped, previous task still running")
		return
	}

	go func() {
		defer l.inFlight.Store(false)
		l.scoreTick(ctx)
	}()
}

// scoreTick performs one full scoring pass with in-tick retries, then
// adjusts the adaptive interval based on the outcome.
func (l *Loop) scoreTick(ctx context.Context) {
	end := time.Now()
	start := end.Add(-l.Interval())

	var err error
	for attempt := 1; attempt <= l.maxRetries; attempt++ {
		err = l.scorer.ScoreWindow(ctx, start, end)
		if err == nil {
			l.recordSuccess()
			return
		}

		l.logger.Warn(ctx, "scoring attempt failed",
			logger.Int("attempt", attempt),
			logger.Error(err),
		)
		if attempt == l.maxRetries {
			break
		}
		metrics.RecordTickRetry()

		backoff := time.Duration(attempt) * backoffStep
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
	}

	l.recordFailure(ctx, err)
}

// recordSuccess resets the failure state and restores the base interval.
func (l *Loop) recordSuccess() {
	l.mu.Lock()
	l.consecutiveErrors = 0
	l.currentInterval = l.baseInterval
	l.mu.Unlock()

	metrics.UpdateConsecutiveErrors(0)
	metrics.UpdateScoringInterval(l.baseInterval)
}

// recordFailure advances the cross-tick error count, stretches the
// interval under sustained failure, and fires the periodic cleanup hook.
func (l *Loop) recordFailure(ctx context.Context, err error) {
	l.mu.Lock()
	l.consecutiveErrors++
	errors := l.consecutiveErrors
	if errors >= maxConsecutiveErrors {
		l.currentInterval *= 2
		if l.currentInterval > l.maxInterval {
			l.currentInterval = l.maxInterval
		}
	}
	interval := l.currentInterval
	l.mu.Unlock()

	metrics.UpdateConsecutiveErrors(errors)
	metrics.UpdateScoringInterval(interval)
	metrics.RecordErrorByComponent("monitor", "tick_failed")

	l.logger.Error(ctx, "scoring tick failed after retries",
		logger.Int("consecutiveErrors", errors),
		logger.Duration("interval", interval),
		logger.Error(err),
	)

	if errors%cleanupEveryErrors == 0 && l.cleanup != nil {
		metrics.RecordForcedCleanup()
		l.logger.Warn(ctx, "sustained failures, forcing cleanup",
			logger.Int("consecutiveErrors", errors))
		l.cleanup(ctx)
	}
}

// instantTick refreshes the latest assessment and raises the high-risk
// interrupt when warranted.
func (l *Loop) instantTick(ctx context.Context) {
	assessment, err := l.assessor.Assess(ctx)
	if err != nil {
		l.logger.Debug(ctx, "instant assessment failed", logger.Error(err))
		metrics.RecordErrorByComponent("monitor", "assessment_failed")
		return
	}

	l.assessMu.Lock()
	l.latest = assessment
	l.assessMu.Unlock()

	if assessment.Risk < highRiskThreshold {
		return
	}

	metrics.RecordHighRiskMarker()
	l.logger.Info(ctx, "high risk detected",
		logger.String("app", assessment.AppName),
		logger.Float64("risk", assessment.Risk),
	)
	if l.marker != nil {
		l.marker(ctx, assessment)
	}
	if l.notifier != nil {
		l.notifier(assessment)
	}
}
