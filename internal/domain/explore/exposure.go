package explore

import (
	"math"
	"sync"
)

// Default exposure damping constants.
const (
	defaultExposureCap = 50
	defaultPenaltyRate = 0.0005
)

// ExposureTracker counts how often each user surfaced in a returned top-K
// and converts over-exposure into a score penalty. Counts live for the
// process lifetime only; they are not persisted.
type ExposureTracker struct {
	mu    sync.Mutex
	seen  map[int64]int
	cap   int
	rate  float64
}

// ExposureOption applies a configuration option to the ExposureTracker.
type ExposureOption func(*ExposureTracker)

// WithExposureCap sets the impression count above which the penalty starts.
func WithExposureCap(cap int) ExposureOption {
	return func(t *ExposureTracker) {
		if cap >= 0 {
			t.cap = cap
		}
	}
}

// WithPenaltyRate sets the per-impression penalty beyond the cap.
func WithPenaltyRate(rate float64) ExposureOption {
	return func(t *ExposureTracker) {
		if rate >= 0 {
			t.rate = rate
		}
	}
}

// NewExposureTracker creates a tracker with configuration options.
func NewExposureTracker(opts ...ExposureOption) *ExposureTracker {
	t := &ExposureTracker{
		seen: make(map[int64]int),
		cap:  defaultExposureCap,
		rate: defaultPenaltyRate,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Penalty returns max(0, (impressions-cap)*rate) for the user. A user at or
// below the cap incurs zero penalty.
func (t *ExposureTracker) Penalty(userID int64) float64 {
	t.mu.Lock()
	n := t.seen[userID]
	t.mu.Unlock()
	return math.Max(0, float64(n-t.cap)*t.rate)
}

// Record increments the impression count for users that actually landed in
// the returned top-K of a call.
func (t *ExposureTracker) Record(userIDs []int64) {
	t.mu.Lock()
	for _, id := range userIDs {
		t.seen[id]++
	}
	t.mu.Unlock()
}

// Count returns the current impression count for a user.
func (t *ExposureTracker) Count(userID int64) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.seen[userID]
}

// Tracked returns the number of users with at least one impression.
func (t *ExposureTracker) Tracked() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.seen)
}
