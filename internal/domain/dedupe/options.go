// Package dedupe tracks submission ids for intake idempotency.
package dedupe

// Option applies a configuration option to the in-memory deduper.
type Option func(*inMemoryDeduper)

// WithMaxSize sets the maximum number of ids to keep in memory.
// maxSize > 0 bounds the cache with FIFO eviction; maxSize <= 0 keeps
// every id.
func WithMaxSize(maxSize int) Option {
	return func(d *inMemoryDeduper) {
		d.maxSize = maxSize
	}
}
