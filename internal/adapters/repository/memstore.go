package repository

import (
	"context"
	"sync"

	"github.com/okian/neuropulse/internal/domain/model"
)

// Default memory store configuration constants.
const (
	defaultMemoryCapacity = 10_000
)

// MemoryStore implements Store over a bounded in-memory ring. The oldest
// sessions are discarded once the bound is reached. Used for tests and
// ephemeral runs without a database path.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions []StoredSession
	capacity int
	nextID   int64
}

// MemoryOption applies a configuration option to the MemoryStore.
type MemoryOption func(*MemoryStore)

// WithMemoryCapacity bounds the number of retained sessions.
func WithMemoryCapacity(capacity int) MemoryOption {
	return func(s *MemoryStore) {
		if capacity > 0 {
			s.capacity = capacity
		}
	}
}

// NewMemoryStore creates an in-memory session store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		capacity: defaultMemoryCapacity,
		nextID:   1,
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// InsertSession persists a scored session.
func (s *MemoryStore) InsertSession(ctx context.Context, record model.SessionRecord, prediction model.Prediction) error {
	return s.insert(ctx, StoredSession{Record: record, Prediction: prediction})
}

// InsertMarker persists a zero-duration high-risk marker.
func (s *MemoryStore) InsertMarker(ctx context.Context, record model.SessionRecord) error {
	return s.insert(ctx, StoredSession{Record: record, Marker: true})
}

func (s *MemoryStore) insert(ctx context.Context, stored StoredSession) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored.ID = s.nextID
	s.nextID++

	if len(s.sessions) >= s.capacity {
		copy(s.sessions, s.sessions[1:])
		s.sessions = s.sessions[:len(s.sessions)-1]
	}
	s.sessions = append(s.sessions, stored)
	return nil
}

// RecentSessions returns up to limit sessions, newest first.
func (s *MemoryStore) RecentSessions(ctx context.Context, limit int) ([]StoredSession, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	if limit < 1 {
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.sessions)
	if limit > n {
		limit = n
	}
	out := make([]StoredSession, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, s.sessions[i])
	}
	return out, nil
}

// Count returns the number of retained sessions.
func (s *MemoryStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
