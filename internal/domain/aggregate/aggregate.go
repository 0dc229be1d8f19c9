// Package aggregate turns raw usage events in a time window into per-app
// counts, last-seen timestamps, and binge detection.
package aggregate

import (
	"context"
	"sync"
	"time"

	"github.com/okian/neuropulse/internal/adapters/source"
	"github.com/okian/neuropulse/internal/domain/model"
	"github.com/okian/neuropulse/pkg/logger"
	"github.com/okian/neuropulse/pkg/metrics"
)

// Default aggregation configuration constants.
const (
	defaultBingeThreshold = 10               // consecutive qualifying events
	defaultBingeGap       = 10 * time.Minute // max gap between qualifying events
	defaultTrackerTTL     = time.Hour        // idle trackers older than this are evicted
	defaultSweepInterval  = 5 * time.Minute  // minimum spacing between eviction sweeps
)

// Result is the aggregate view of one event window.
type Result struct {
	PerAppCount    map[string]int   // events per app
	PerAppLastSeen map[string]int64 // last event timestamp (ms) per app
	UnlockCount    int              // foreground transitions in the window
	BingeDetected  bool             // sustained same-app usage observed
	Unavailable    bool             // event source could not be read
}

// PrimaryApp returns the app with the most events in the window, or the
// unknown sentinel for an empty window.
func (r Result) PrimaryApp() string {
	primary := model.UnknownApp
	best := 0
	for app, count := range r.PerAppCount {
		if count > best || (count == best && app < primary) {
			primary = app
			best = count
		}
	}
	if best == 0 {
		return model.UnknownApp
	}
	return primary
}

// appTracker holds per-app consecutive usage state across windows.
type appTracker struct {
	lastUsage        int64 // ms epoch
	consecutiveCount int
}

// recordUsage registers one event and reports whether the consecutive
// threshold has been reached.
func (t *appTracker) recordUsage(timestamp int64, gapMS int64, threshold int) bool {
	if t.lastUsage == 0 || timestamp-t.lastUsage > gapMS {
		t.consecutiveCount = 1
	} else {
		t.consecutiveCount++
	}
	t.lastUsage = timestamp
	return t.consecutiveCount >= threshold
}

// Aggregator reads raw usage events for a window and aggregates them.
// The per-app tracker map is shared across calls and safe for concurrent
// use from the scoring and assessment paths.
type Aggregator struct {
	src source.Source

	bingeThreshold int
	bingeGap       time.Duration
	trackerTTL     time.Duration
	sweepInterval  time.Duration

	mu        sync.Mutex
	trackers  map[string]*appTracker
	lastSweep time.Time

	logger logger.Logger
}

// New creates an aggregator reading from src with configuration options.
func New(src source.Source, opts ...Option) *Aggregator {
	a := &Aggregator{
		src:            src,
		bingeThreshold: defaultBingeThreshold,
		bingeGap:       defaultBingeGap,
		trackerTTL:     defaultTrackerTTL,
		sweepInterval:  defaultSweepInterval,
		trackers:       make(map[string]*appTracker),
		lastSweep:      time.Now(),
		logger:         logger.Get().Named("aggregate"),
	}

	// Apply all options
	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Aggregate pulls events in [start, end) and aggregates them. An inverted
// window produces an empty result; a failing event source produces an
// Unavailable result. Neither is an error.
func (a *Aggregator) Aggregate(ctx context.Context, start, end time.Time) Result {
	res := Result{
		PerAppCount:    make(map[string]int),
		PerAppLastSeen: make(map[string]int64),
	}

	if !start.Before(end) {
		return res
	}

	events, err := a.src.QueryEvents(ctx, start, end)
	if err != nil {
		if source.IsUnavailable(err) {
			a.logger.Warn(ctx, "event source unavailable, degrading to empty window", logger.Error(err))
		} else {
			a.logger.Error(ctx, "event query failed", logger.Error(err))
		}
		metrics.RecordErrorByComponent("aggregate", "source_unavailable")
		res.Unavailable = true
		return res
	}

	gapMS := a.bingeGap.Milliseconds()
	a.mu.Lock()
	for _, e := range events {
		res.PerAppCount[e.AppID]++
		if e.Timestamp > res.PerAppLastSeen[e.AppID] {
			res.PerAppLastSeen[e.AppID] = e.Timestamp
		}
		if e.Type == model.EventForeground {
			res.UnlockCount++
		}

		t, ok := a.trackers[e.AppID]
		if !ok {
			t = &appTracker{}
			a.trackers[e.AppID] = t
		}
		if t.recordUsage(e.Timestamp, gapMS, a.bingeThreshold) {
			res.BingeDetected = true
		}
	}
	a.sweepLocked(time.Now())
	a.mu.Unlock()

	if res.BingeDetected {
		metrics.RecordBingeSession()
	}
	return res
}

// TrackerCount returns the number of live per-app trackers.
func (a *Aggregator) TrackerCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.trackers)
}

// Sweep forces an eviction pass over idle trackers.
func (a *Aggregator) Sweep(now time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastSweep = time.Time{} // force the pass
	a.sweepLocked(now)
}

// sweepLocked evicts trackers idle longer than the TTL. Must be called
// with a.mu held; runs at most once per sweep interval.
func (a *Aggregator) sweepLocked(now time.Time) {
	if now.Sub(a.lastSweep) < a.sweepInterval {
		return
	}
	a.lastSweep = now

	cutoff := now.Add(-a.trackerTTL).UnixMilli()
	for app, t := range a.trackers {
		if t.lastUsage < cutoff {
			delete(a.trackers, app)
		}
	}
}
