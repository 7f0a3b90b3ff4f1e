package datasource

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrReadFailed    = errors.New("read csv failed")
	ErrMissingHeader = errors.New("missing csv header")
)
