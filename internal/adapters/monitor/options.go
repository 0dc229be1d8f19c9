// Package monitor runs the scheduling cadences of the service.
package monitor

import (
	"time"

	"github.com/okian/neuropulse/pkg/logger"
)

// Option applies a configuration option to the Loop.
type Option func(*Loop)

// WithBaseInterval sets the baseline full-scoring interval.
func WithBaseInterval(interval time.Duration) Option {
	return func(l *Loop) {
		if interval > 0 {
			l.baseInterval = interval
		}
	}
}

// WithMaxInterval caps the adaptive full-scoring interval.
func WithMaxInterval(interval time.Duration) Option {
	return func(l *Loop) {
		if interval > 0 {
			l.maxInterval = interval
		}
	}
}

// WithInstantInterval sets the instant assessment cadence.
func WithInstantInterval(interval time.Duration) Option {
	return func(l *Loop) {
		if interval > 0 {
			l.instantInterval = interval
		}
	}
}

// WithMaxRetries sets the in-tick retry attempt limit.
func WithMaxRetries(attempts int) Option {
	return func(l *Loop) {
		if attempts > 0 {
			l.maxRetries = attempts
		}
	}
}

// WithMarkerFunc sets the high-risk marker hook.
func WithMarkerFunc(fn MarkerFunc) Option {
	return func(l *Loop) {
		l.marker = fn
	}
}

// WithCleanupFunc sets the sustained-failure cleanup hook.
func WithCleanupFunc(fn CleanupFunc) Option {
	return func(l *Loop) {
		l.cleanup = fn
	}
}

// WithNotifier sets the best-effort high-risk notifier.
func WithNotifier(fn Notifier) Option {
	return func(l *Loop) {
		l.notifier = fn
	}
}

// WithLogger sets a custom logger for the loop.
func WithLogger(log logger.Logger) Option {
	return func(l *Loop) {
		if log != nil {
			l.logger = log
		}
	}
}
