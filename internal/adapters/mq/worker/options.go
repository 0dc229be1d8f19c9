// Package worker drains the persistence queue into the session store.
package worker

import (
	"github.com/okian/neuropulse/pkg/logger"
)

// Option applies a configuration option to the PersistWorker.
type Option func(*PersistWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *PersistWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(logger logger.Logger) Option {
	return func(w *PersistWorker) {
		if logger != nil {
			w.logger = logger
		}
	}
}
