// Package feature builds normalized session feature records.
package feature

import (
	"time"

	"github.com/okian/neuropulse/pkg/logger"
)

// Option applies a configuration option to the Extractor.
type Option func(*Extractor)

// WithNow sets the clock used for assessment timestamps.
func WithNow(now func() time.Time) Option {
	return func(e *Extractor) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLogger sets a custom logger for the extractor.
func WithLogger(l logger.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.logger = l
		}
	}
}
