package catalog

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrMissingCatalog   = errors.New("catalog file missing")
	ErrMalformedCatalog = errors.New("catalog file malformed")
)
