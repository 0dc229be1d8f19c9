// Package source defines the contract for querying raw usage events.
//
// The platform event feed is an external collaborator: it may refuse
// access (permission denied) or be temporarily unavailable. Callers must
// treat both conditions identically and fall back to defaults.
package source

import (
	"context"
	"time"

	"github.com/okian/neuropulse/internal/domain/model"
)

// Source provides read access to raw usage events.
type Source interface {
	// QueryEvents returns events with timestamps in [start, end).
	// Returns ErrUnavailable or ErrPermissionDenied instead of a list when
	// the underlying feed cannot be read.
	QueryEvents(ctx context.Context, start, end time.Time) ([]model.UsageEvent, error)

	// RunningApp is the secondary detection strategy: the app most
	// recently known to be running, regardless of transition type.
	// Returns ErrUnavailable when no such information exists.
	RunningApp(ctx context.Context) (string, error)
}
