package source

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/okian/neuropulse/internal/domain/model"
)

// Default in-memory source configuration constants.
const (
	defaultCapacity = 100_000
)

// InMemorySource implements Source over a bounded in-memory buffer of
// ingested events. The oldest events are discarded once the buffer is
// full. It backs the HTTP ingest path and tests.
type InMemorySource struct {
	mu       sync.RWMutex
	events   []model.UsageEvent
	capacity int

	// When set, all reads fail with this error. Used to exercise the
	// permission-denied and unavailable fallback paths.
	failWith error
}

// NewInMemorySource creates a new in-memory event source with
// configuration options.
func NewInMemorySource(opts ...Option) *InMemorySource {
	s := &InMemorySource{
		capacity: defaultCapacity,
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	s.events = make([]model.UsageEvent, 0, min(s.capacity, 1024))
	return s
}

// Ingest appends an event to the buffer, evicting the oldest entry when
// the buffer is at capacity. Returns false only when ctx is done.
func (s *InMemorySource) Ingest(ctx context.Context, e model.UsageEvent) bool {
	select {
	case <-ctx.Done():
		return false
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.events) >= s.capacity {
		copy(s.events, s.events[1:])
		s.events = s.events[:len(s.events)-1]
	}
	s.events = append(s.events, e)
	return true
}

// QueryEvents returns events in [start, end), ordered by timestamp.
func (s *InMemorySource) QueryEvents(ctx context.Context, start, end time.Time) ([]model.UsageEvent, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.failWith != nil {
		return nil, s.failWith
	}

	startMS := start.UnixMilli()
	endMS := end.UnixMilli()

	out := make([]model.UsageEvent, 0)
	for _, e := range s.events {
		if e.Timestamp >= startMS && e.Timestamp < endMS {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out, nil
}

// RunningApp returns the app of the most recently ingested event.
func (s *InMemorySource) RunningApp(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.failWith != nil {
		return "", s.failWith
	}
	if len(s.events) == 0 {
		return "", ErrUnavailable
	}
	return s.events[len(s.events)-1].AppID, nil
}

// Len returns the current number of buffered events.
func (s *InMemorySource) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// SetFailure makes all subsequent reads fail with err. Passing nil
// restores normal operation.
func (s *InMemorySource) SetFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}
