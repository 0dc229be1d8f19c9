// Package repository defines the session store interface and errors.
//
// Storage is fire-and-forget from the core's perspective: write failures
// are logged by the caller, never surfaced as crashes into the scoring
// pipeline.
package repository

import (
	"context"

	"github.com/okian/neuropulse/internal/domain/model"
)

// StoredSession is one persisted session row with its prediction.
type StoredSession struct {
	ID         int64               `json:"id"`
	Record     model.SessionRecord `json:"record"`
	Prediction model.Prediction    `json:"prediction"`
	Marker     bool                `json:"marker"` // zero-duration high-risk marker
}

// Store provides write/read access to persisted sessions.
type Store interface {
	// InsertSession persists a scored session together with its prediction.
	InsertSession(ctx context.Context, record model.SessionRecord, prediction model.Prediction) error

	// InsertMarker persists a zero-duration high-risk marker record.
	InsertMarker(ctx context.Context, record model.SessionRecord) error

	// RecentSessions returns up to limit sessions, newest first.
	RecentSessions(ctx context.Context, limit int) ([]StoredSession, error)

	// Count returns the number of persisted sessions.
	Count(ctx context.Context) int
}
