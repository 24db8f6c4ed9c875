// Package worker runs song/listener pair evaluations on a bounded pool,
// funneling completed records through a single collector so report writes
// stay serialized.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/auralab/stemscore/internal/adapters/mq/queue"
	"github.com/auralab/stemscore/internal/domain/types"
	"github.com/auralab/stemscore/pkg/logger"
	"github.com/auralab/stemscore/pkg/metrics"
)

// Evaluator produces one completed record for a pair. The per-song seed is
// derived inside the evaluation, so workers stay deterministic per song
// regardless of scheduling.
type Evaluator interface {
	Evaluate(ctx context.Context, pair types.Pair) (types.ScoreRecord, error)
}

// Sink receives completed records. Only the pool's collector goroutine
// calls it, which keeps row appends serialized.
type Sink interface {
	Append(rec types.ScoreRecord) error
}

// result pairs a completed record with its evaluation error.
type result struct {
	record types.ScoreRecord
	err    error
}

// Worker consumes pairs off the queue and evaluates them.
type Worker struct {
	queue     queue.Queue
	evaluator Evaluator
	name      string
	logger    logger.Logger
}

// NewWorker creates a worker with configuration options.
func NewWorker(q queue.Queue, evaluator Evaluator, opts ...Option) *Worker {
	w := &Worker{
		queue:     q,
		evaluator: evaluator,
		name:      "worker",
	}

	// Apply all options
	for _, opt := range opts {
		opt(w)
	}

	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}

	return w
}

// run evaluates pairs until the queue drains or ctx is cancelled.
func (w *Worker) run(ctx context.Context, results chan<- result) {
	for pair := range w.queue.Dequeue(ctx) {
		rec, err := w.evaluator.Evaluate(ctx, pair)
		if err != nil {
			w.logger.Error(ctx, "pair evaluation failed",
				logger.String("song", pair.Song),
				logger.String("listener", pair.Listener),
				logger.Error(err),
			)
		}
		select {
		case results <- result{record: rec, err: err}:
		case <-ctx.Done():
			return
		}
	}
}

// Pool manages the workers and the collector for one run.
type Pool struct {
	workers   []*Worker
	queue     queue.Queue
	evaluator Evaluator
	sink      Sink
	logger    logger.Logger
}

// NewPool creates a pool of workerCount workers.
func NewPool(workerCount int, q queue.Queue, evaluator Evaluator, sink Sink, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}

	pool := &Pool{
		workers:   make([]*Worker, workerCount),
		queue:     q,
		evaluator: evaluator,
		sink:      sink,
		logger:    logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		workerOpts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		pool.workers[i] = NewWorker(q, evaluator, workerOpts...)
	}

	metrics.UpdateWorkerCount(workerCount)

	return pool
}

// Run feeds the pairs through the pool and appends completed records via
// the collector. Row order in the report is completion order. The first
// fatal error cancels the remaining work and is returned; no partial-pair
// record is ever appended.
func (p *Pool) Run(ctx context.Context, pairs []types.Pair) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan result)

	var wg sync.WaitGroup
	for _, w := range p.workers {
		wg.Add(1)
		go func(w *Worker) {
			defer wg.Done()
			w.run(ctx, results)
		}(w)
	}

	// Feeder: the queue should be sized to the pair list, so a refused
	// enqueue outside cancellation means dropped pairs and fails the run.
	var feedErr error
	go func() {
		defer func() { _ = p.queue.Close() }()
		for _, pair := range pairs {
			if p.queue.Enqueue(ctx, pair) {
				continue
			}
			if ctx.Err() == nil {
				feedErr = fmt.Errorf("%w: %s/%s", ErrEnqueueRefused, pair.Listener, pair.Song)
			}
			return
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var firstErr error
	for res := range results {
		if res.err != nil {
			if firstErr == nil {
				firstErr = res.err
				cancel()
			}
			continue
		}
		if firstErr != nil {
			// A fatal error already aborted the run; completions that
			// were in flight are discarded.
			continue
		}
		if err := p.sink.Append(res.record); err != nil {
			firstErr = err
			cancel()
		}
	}

	// The feeder has finished once results drains: it closes the queue,
	// the workers exit on the drained queue, and their wait group gates
	// the close above. Reading feedErr here is therefore ordered.
	if firstErr == nil {
		firstErr = feedErr
	}

	return firstErr
}
