// Package queue defines the contract for feeding song/listener pairs to
// the evaluation worker pool.
package queue

import (
	"context"
	"sync"

	"github.com/auralab/stemscore/internal/domain/types"
	"github.com/auralab/stemscore/pkg/metrics"
)

// defaultCapacity bounds the queue when no explicit capacity is set. A
// run's driver sizes the queue to its pair list, so the default only
// matters for ad-hoc use.
const defaultCapacity = 4096

// Pair is the payload type flowing through the queue.
type Pair = types.Pair

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a pair to the queue.
	// Returns false if the queue is full or closed and the pair was not enqueued.
	Enqueue(ctx context.Context, p Pair) bool

	// Dequeue returns a channel that will receive pairs as they become available.
	// The channel is closed when the queue is closed and drained.
	Dequeue(ctx context.Context) <-chan Pair

	// Len returns the current number of queued pairs.
	Len(ctx context.Context) int

	// Close gracefully shuts down the queue.
	// After closing, no new pairs can be enqueued and the dequeue channel drains.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	pairs    chan Pair
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultCapacity,
	}

	// Apply all options
	for _, opt := range opts {
		opt(q)
	}

	q.pairs = make(chan Pair, q.capacity)

	metrics.UpdateQueueSize(0)

	return q
}

// Enqueue adds a pair to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, p Pair) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return false
	}

	select {
	case q.pairs <- p:
		metrics.UpdateQueueSize(len(q.pairs))
		return true
	case <-ctx.Done():
		return false
	default:
		return false // queue is full
	}
}

// Dequeue returns a channel that will receive pairs as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Pair {
	out := make(chan Pair)
	go func() {
		defer close(out)
		for p := range q.pairs {
			// Cancellation that preceded this pull always wins, even if a
			// receiver is already waiting on out.
			select {
			case <-ctx.Done():
				return
			default:
			}
			select {
			case out <- p:
				metrics.UpdateQueueSize(len(q.pairs))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued pairs.
func (q *InMemoryQueue) Len(_ context.Context) int {
	return len(q.pairs)
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil // already closed
	}

	close(q.pairs)
	q.closed = true

	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
