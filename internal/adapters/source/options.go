package source

// Option applies a configuration option to the InMemorySource.
type Option func(*InMemorySource)

// WithCapacity bounds the number of buffered events. Older events are
// evicted first once the bound is reached.
func WithCapacity(capacity int) Option {
	return func(s *InMemorySource) {
		if capacity > 0 {
			s.capacity = capacity
		}
	}
}
