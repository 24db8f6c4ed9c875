// Package dedupe defines the interface for idempotency tracking.
//
// The evaluation contract requires every song/listener pair to be evaluated
// at most once per run; the deduper guards that invariant against duplicate
// catalog entries.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Deduper records seen pair IDs to ensure at-most-once evaluation.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	// This is the ONLY method for deduplication - thread-safe and atomic.
	SeenAndRecord(ctx context.Context, id string) bool

	Size() int64
}

// inMemoryDeduper implements Deduper with a plain map. A run's pair count
// is bounded by the catalogs, so no eviction is needed.
type inMemoryDeduper struct {
	mu   sync.Mutex
	seen map[string]struct{}
	size atomic.Int64
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{}

	cfg := options{sizeHint: defaultSizeHint}
	for _, opt := range opts {
		opt(&cfg)
	}

	d.seen = make(map[string]struct{}, cfg.sizeHint)
	return d
}

// SeenAndRecord atomically checks if id was seen and records it if not.
func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[id]; exists {
		return true
	}
	d.seen[id] = struct{}{}
	d.size.Add(1)
	return false
}

// Size returns the current number of entries in the deduper.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
