package report

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrOpenReport       = errors.New("open report failed")
	ErrAppendReport     = errors.New("append report failed")
	ErrIncompleteRecord = errors.New("incomplete score record")
)
