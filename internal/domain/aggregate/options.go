// Package aggregate turns raw usage events into windowed aggregates.
package aggregate

import (
	"time"

	"github.com/okian/neuropulse/pkg/logger"
)

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithBingeThreshold sets the consecutive-event count that marks a binge.
func WithBingeThreshold(count int) Option {
	return func(a *Aggregator) {
		if count > 0 {
			a.bingeThreshold = count
		}
	}
}

// WithBingeGap sets the maximum gap between events that still counts as
// continuous usage.
func WithBingeGap(gap time.Duration) Option {
	return func(a *Aggregator) {
		if gap > 0 {
			a.bingeGap = gap
		}
	}
}

// WithTrackerTTL sets how long an idle per-app tracker survives before
// eviction.
func WithTrackerTTL(ttl time.Duration) Option {
	return func(a *Aggregator) {
		if ttl > 0 {
			a.trackerTTL = ttl
		}
	}
}

// WithSweepInterval sets the minimum spacing between eviction sweeps.
func WithSweepInterval(interval time.Duration) Option {
	return func(a *Aggregator) {
		if interval > 0 {
			a.sweepInterval = interval
		}
	}
}

// WithLogger sets a custom logger for the aggregator.
func WithLogger(l logger.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.logger = l
		}
	}
}
