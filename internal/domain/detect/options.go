// Package detect identifies the current foreground app and its risk.
package detect

import (
	"time"

	"github.com/okian/neuropulse/pkg/logger"
)

// Option applies a configuration option to the Detector.
type Option func(*Detector)

// WithResolver sets a display-name resolver for app identifiers.
func WithResolver(r Resolver) Option {
	return func(d *Detector) {
		if r != nil {
			d.resolver = r
		}
	}
}

// WithNow sets the clock used for windows and time-of-day risk.
func WithNow(now func() time.Time) Option {
	return func(d *Detector) {
		if now != nil {
			d.now = now
		}
	}
}

// WithLogger sets a custom logger for the detector.
func WithLogger(l logger.Logger) Option {
	return func(d *Detector) {
		if l != nil {
			d.logger = l
		}
	}
}
