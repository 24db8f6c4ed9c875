// Package dedupe defines the interface for idempotency tracking.
package dedupe

// defaultSizeHint pre-sizes the seen map for a typical run.
const defaultSizeHint = 1024

type options struct {
	sizeHint int
}

// Option applies a configuration option to the in-memory deduper.
type Option func(*options)

// WithSizeHint pre-sizes the seen map for the expected number of pairs.
func WithSizeHint(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.sizeHint = n
		}
	}
}
