package explore

import (
	"math/rand"

	"github.com/Ishita-2210/teamforge-recommender/internal/domain/model"
)

// Default perturbation constants.
const (
	defaultEpsilon     = 0.05
	defaultSamplePool  = 100
	defaultEpsilonSeed = 1
)

// Perturber applies epsilon-greedy list perturbation: with probability
// epsilon the top-ranked slot is replaced by a uniformly random pick from
// the widest top slice, shifting the rest down by one. This is ranking-level
// exploration, independent of the bandit.
type Perturber struct {
	epsilon  float64
	poolSize int
	rng      *rand.Rand
}

// PerturberOption applies a configuration option to the Perturber.
type PerturberOption func(*Perturber)

// WithEpsilon sets the perturbation probability. Values outside [0,1] keep
// the default.
func WithEpsilon(epsilon float64) PerturberOption {
	return func(p *Perturber) {
		if epsilon >= 0 && epsilon <= 1 {
			p.epsilon = epsilon
		}
	}
}

// WithSamplePool sets how many top candidates the random pick draws from.
func WithSamplePool(size int) PerturberOption {
	return func(p *Perturber) {
		if size > 0 {
			p.poolSize = size
		}
	}
}

// WithPerturberSeed seeds the picker for deterministic tests.
func WithPerturberSeed(seed int64) PerturberOption {
	return func(p *Perturber) {
		p.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic seed for reproducible tests
	}
}

// NewPerturber creates a perturber with configuration options.
func NewPerturber(opts ...PerturberOption) *Perturber {
	p := &Perturber{
		epsilon:  defaultEpsilon,
		poolSize: defaultSamplePool,
		rng:      rand.New(rand.NewSource(defaultEpsilonSeed)), //nolint:gosec // non-cryptographic exploration
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Apply truncates the sorted list to topK, perturbing the head slot with
// probability epsilon. The perturbed list keeps the original order below the
// head.
func (p *Perturber) Apply(sorted []model.Recommendation, topK int) []model.Recommendation {
	if topK > len(sorted) {
		topK = len(sorted)
	}
	if topK <= 0 {
		return nil
	}

	if p.rng.Float64() >= p.epsilon {
		out := make([]model.Recommendation, topK)
		copy(out, sorted[:topK])
		return out
	}

	pool := p.poolSize
	if pool > len(sorted) {
		pool = len(sorted)
	}
	pick := sorted[p.rng.Intn(pool)]

	out := make([]model.Recommendation, 0, topK)
	out = append(out, pick)
	out = append(out, sorted[:topK-1]...)
	return out
}
