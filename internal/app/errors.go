package service

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrNotStarted  = errors.New("service not started")
	ErrInvalidUser = errors.New("invalid user id")
	ErrQueueFull   = errors.New("feedback queue full")
)
