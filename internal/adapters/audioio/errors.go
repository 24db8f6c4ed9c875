package audioio

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrMissingInput       = errors.New("audio file missing")
	ErrBadEncoding        = errors.New("audio file undecodable")
	ErrBadChannelCount    = errors.New("unexpected channel count")
	ErrSampleRateMismatch = errors.New("sample rate mismatch")
)
