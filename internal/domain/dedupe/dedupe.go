// Package dedupe tracks submission ids for intake idempotency.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Deduper records seen submission ids so a retried intake request is
// acknowledged without a second store write.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if
	// not. Returns true if id was already seen.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord removes an id from the seen set. Used when a submission
	// was marked seen but failed to persist, so the client can retry.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// inMemoryDeduper implements Deduper with a map plus a FIFO ring.
// In bounded mode (maxSize > 0) the ring evicts the oldest id once the
// cache is full; unbounded mode (maxSize <= 0) keeps everything.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	ring    []string // FIFO eviction order; "" marks an unrecorded hole
	next    int      // ring index reused on the next insert
	maxSize int
	size    atomic.Int64
}

// NewInMemoryDeduper creates a deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: 50000,
	}
	for _, opt := range opts {
		opt(d)
	}

	d.seen = make(map[string]struct{})
	if d.maxSize > 0 {
		d.ring = make([]string, d.maxSize)
	}
	return d
}

// SeenAndRecord atomically checks if id was seen and records it if not.
func (d *inMemoryDeduper) SeenAndRecord(ctx context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}

	if d.maxSize > 0 {
		// Evict whatever occupies the ring slot about to be reused.
		if old := d.ring[d.next]; old != "" {
			delete(d.seen, old)
			d.size.Add(-1)
		}
		d.ring[d.next] = id
		d.next = (d.next + 1) % d.maxSize
	}

	d.seen[id] = struct{}{}
	d.size.Add(1)
	return false
}

// Unrecord removes an id from the seen set.
func (d *inMemoryDeduper) Unrecord(ctx context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; !ok {
		return
	}
	delete(d.seen, id)
	d.size.Add(-1)

	// Leave a hole in the ring; eviction skips it when the slot comes
	// around again.
	for i, v := range d.ring {
		if v == id {
			d.ring[i] = ""
			break
		}
	}
}

// Size returns the current number of tracked ids.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
