// Package explore layers exploration and fairness mechanisms over the
// ranked list: reward-learning bandit arms, exposure-based damping, and
// epsilon-greedy perturbation.
package explore

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
)

// Default bandit configuration constants.
const (
	defaultDecay      = 0.98
	initialAlpha      = 1.0
	initialBeta       = 1.0
	defaultBanditSeed = 42
)

// ArmState holds the Beta pseudo-counts for one user's arm.
// Both values stay strictly positive: decay is multiplicative and updates
// only add.
type ArmState struct {
	Alpha float64
	Beta  float64
}

// Store persists arm state across process restarts. Persistence is
// single-writer, last-write-wins: concurrent updates from two processes can
// lose a decay/increment cycle. One process owns the store.
type Store interface {
	// LoadAll returns every persisted arm.
	LoadAll(ctx context.Context) (map[int64]ArmState, error)

	// Save upserts one arm's state.
	Save(ctx context.Context, userID int64, state ArmState) error
}

// Bandit keeps one Beta-distributed arm per user id and learns from action
// rewards. In-process access is mutex-guarded; cross-process serialization
// is the Store's documented limitation, not silently fixed here.
type Bandit struct {
	mu    sync.Mutex
	arms  map[int64]ArmState
	decay float64
	store Store
	rng   *rand.Rand
}

// BanditOption applies a configuration option to the Bandit.
type BanditOption func(*Bandit)

// WithDecay sets the multiplicative recency decay applied before each
// update. Values outside (0,1] keep the default.
func WithDecay(decay float64) BanditOption {
	return func(b *Bandit) {
		if decay > 0 && decay <= 1 {
			b.decay = decay
		}
	}
}

// WithStore sets the persistence backend. Without a store the bandit is
// process-lifetime only.
func WithStore(store Store) BanditOption {
	return func(b *Bandit) { b.store = store }
}

// WithBanditSeed seeds the sampler for deterministic tests.
func WithBanditSeed(seed int64) BanditOption {
	return func(b *Bandit) {
		b.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic seed for reproducible sampling
	}
}

// NewBandit creates a bandit with configuration options.
func NewBandit(opts ...BanditOption) *Bandit {
	b := &Bandit{
		arms:  make(map[int64]ArmState),
		decay: defaultDecay,
		rng:   rand.New(rand.NewSource(defaultBanditSeed)), //nolint:gosec // non-cryptographic sampling
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Load replaces in-memory arms with the persisted state. Called once at
// startup; a missing store is a no-op.
func (b *Bandit) Load(ctx context.Context) error {
	if b.store == nil {
		return nil
	}
	arms, err := b.store.LoadAll(ctx)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, s := range arms {
		if s.Alpha > 0 && s.Beta > 0 {
			b.arms[id] = s
		}
	}
	return nil
}

// Arm returns the current state for a user, defaulting to the uniform prior.
func (b *Bandit) Arm(userID int64) ArmState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.armLocked(userID)
}

func (b *Bandit) armLocked(userID int64) ArmState {
	s, ok := b.arms[userID]
	if !ok {
		s = ArmState{Alpha: initialAlpha, Beta: initialBeta}
		b.arms[userID] = s
	}
	return s
}

// Sample draws a Beta(alpha, beta) variate for the user's arm, usable as an
// exploration bonus. The result is always in [0,1].
func (b *Bandit) Sample(userID int64) float64 {
	b.mu.Lock()
	s := b.armLocked(userID)
	v := betaSample(b.rng, s.Alpha, s.Beta)
	b.mu.Unlock()
	return v
}

// Update decays both pseudo-counts toward the uniform prior, then credits
// the reward: positive rewards grow alpha by the reward value, everything
// else grows beta by 1. The new state is written through to the store. A
// Save failure is returned so the caller can surface it; the in-memory
// update still holds.
func (b *Bandit) Update(ctx context.Context, userID int64, reward float64) (ArmState, error) {
	b.mu.Lock()
	s := b.armLocked(userID)
	s.Alpha *= b.decay
	s.Beta *= b.decay
	if reward > 0 {
		s.Alpha += reward
	} else {
		s.Beta += 1.0
	}
	b.arms[userID] = s
	store := b.store
	b.mu.Unlock()

	if store != nil {
		// Last write wins; see Store contract.
		if err := store.Save(ctx, userID, s); err != nil {
			return s, fmt.Errorf("persist arm for user %d: %w", userID, err)
		}
	}
	return s, nil
}

// ArmCount returns the number of tracked arms.
func (b *Bandit) ArmCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.arms)
}

// betaSample draws from Beta(a, b) via two Gamma variates.
func betaSample(rng *rand.Rand, a, b float64) float64 {
	x := gammaSample(rng, a)
	y := gammaSample(rng, b)
	if x+y == 0 {
		return 0.5
	}
	return x / (x + y)
}

// gammaSample draws from Gamma(shape, 1) using Marsaglia-Tsang, with the
// standard boost for shape < 1.
func gammaSample(rng *rand.Rand, shape float64) float64 {
	if shape <= 0 {
		return 0
	}
	if shape < 1 {
		u := rng.Float64()
		for u == 0 {
			u = rng.Float64()
		}
		return gammaSample(rng, shape+1) * math.Pow(u, 1/shape)
	}
	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9*d)
	for {
		x := rng.NormFloat64()
		v := 1 + c*x
		if v <= 0 {
			continue
		}
		v = v * v * v
		u := rng.Float64()
		if u < 1-0.0331*x*x*x*x {
			return d * v
		}
		if u > 0 && math.Log(u) < 0.5*x*x+d*(1-v+math.Log(v)) {
			return d * v
		}
	}
}
