package haaqiexec

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrNoCommand     = errors.New("no metric command configured")
	ErrBridgeFailure = errors.New("metric bridge failed")
)
