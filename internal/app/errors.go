package service

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrUnknownPair = errors.New("pair references an unknown song or listener")
	ErrNoMetric    = errors.New("no metric configured")
)
