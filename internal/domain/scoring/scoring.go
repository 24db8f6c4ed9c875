// Package scoring defines the contract for the external perceptual quality
// metric and the adaptation from listener audiograms to its input domain.
package scoring

import (
	"context"
	"fmt"
	"time"

	"github.com/auralab/stemscore/internal/domain/types"
	"github.com/auralab/stemscore/pkg/metrics"
)

// CanonicalBands lists the audiogram center frequencies (Hz) the metric
// supports. A listener's audiogram is restricted to this set before any
// invocation.
var CanonicalBands = []float64{250, 500, 1000, 2000, 4000, 6000} //nolint:gochecknoglobals // fixed metric contract

// DefaultEqualisation is the equalisation mode passed on every invocation.
const DefaultEqualisation = 1

// Request carries one metric invocation: reference and processed waveforms
// with their rates, the band-filtered hearing-loss levels for one ear, the
// equalisation mode, and (optionally) the per-song deterministic seed.
type Request struct {
	Reference     []float64 `json:"reference"`
	ReferenceRate int       `json:"reference_rate"`
	Processed     []float64 `json:"processed"`
	ProcessedRate int       `json:"processed_rate"`
	HearingLoss   []float64 `json:"hearing_loss"`
	Equalisation  int       `json:"equalisation"`
	Seed          *int64    `json:"seed,omitempty"`
}

// Metric is the external objective quality metric. Implementations return
// the single quality score; auxiliary diagnostics stay on their side of the
// boundary. A failure is fatal for the run and is propagated unchanged.
type Metric interface {
	Score(ctx context.Context, req Request) (float64, error)
}

// MetricFunc adapts a plain function to the Metric interface.
type MetricFunc func(ctx context.Context, req Request) (float64, error)

// Score implements Metric.
func (f MetricFunc) Score(ctx context.Context, req Request) (float64, error) {
	return f(ctx, req)
}

// FilterAudiogram restricts hearing-loss levels to the canonical bands,
// preserving the order of the listener's own frequency list. Levels whose
// frequency is outside the canonical set are dropped; if the listener's
// list lacks a canonical band the result is simply shorter.
func FilterAudiogram(levels, frequencies []float64) []float64 {
	filtered := make([]float64, 0, len(CanonicalBands))
	for i, freq := range frequencies {
		if i >= len(levels) {
			break
		}
		for _, band := range CanonicalBands {
			if freq == band {
				filtered = append(filtered, levels[i])
				break
			}
		}
	}
	return filtered
}

// Option applies a configuration option to the Adapter.
type Option func(*Adapter)

// WithEqualisation overrides the equalisation mode sent to the metric.
func WithEqualisation(mode int) Option {
	return func(a *Adapter) {
		if mode > 0 {
			a.equalisation = mode
		}
	}
}

// Adapter maps listener audiometric data into the metric's expected
// frequency domain and invokes it per channel.
type Adapter struct {
	metric       Metric
	equalisation int
}

// NewAdapter creates an Adapter around the given metric.
func NewAdapter(metric Metric, opts ...Option) *Adapter {
	a := &Adapter{
		metric:       metric,
		equalisation: DefaultEqualisation,
	}

	// Apply all options
	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Score filters the audiogram for one ear and invokes the metric with the
// enhanced signal against the reference. The seed, when non-nil, is
// threaded explicitly into the invocation rather than mutating any global
// random source.
func (a *Adapter) Score(ctx context.Context, enhanced, reference types.Mono, levels, frequencies []float64, seed *int64) (float64, error) {
	req := Request{
		Reference:     reference.Samples,
		ReferenceRate: reference.Rate,
		Processed:     enhanced.Samples,
		ProcessedRate: enhanced.Rate,
		HearingLoss:   FilterAudiogram(levels, frequencies),
		Equalisation:  a.equalisation,
		Seed:          seed,
	}

	start := time.Now()
	score, err := a.metric.Score(ctx, req)
	metrics.RecordMetricLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordMetricError()
		return 0, fmt.Errorf("%w: %v", ErrMetricFailure, err)
	}

	metrics.ObserveChannelScore(score)
	return score, nil
}

// Aggregate combines the 8 per-channel scores into the arithmetic mean.
// A map missing any of the fixed keys is a precondition violation and
// yields ErrIncompleteScores.
func Aggregate(scores map[types.ScoreKey]float64) (float64, error) {
	keys := types.ScoreKeys()
	if len(scores) != len(keys) {
		return 0, fmt.Errorf("%w: have %d of %d scores", ErrIncompleteScores, len(scores), len(keys))
	}

	var sum float64
	for _, k := range keys {
		v, ok := scores[k]
		if !ok {
			return 0, fmt.Errorf("%w: missing %s", ErrIncompleteScores, k.Column())
		}
		sum += v
	}
	return sum / float64(len(keys)), nil
}
