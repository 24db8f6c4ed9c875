package scoring

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrMetricFailure    = errors.New("metric computation failed")
	ErrIncompleteScores = errors.New("incomplete channel scores")
)
