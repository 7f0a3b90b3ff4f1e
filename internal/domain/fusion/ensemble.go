package fusion

// Default blend weights. They deliberately do not sum to 1: both model
// outputs are min-max normalized to [0,1] per batch before blending, so the
// fused score stays in [0,1] whenever w1+w2 <= 1. Callers configuring larger
// weights lose that bound; the pair is applied literally, never renormalized.
const (
	defaultPrimaryWeight   = 0.45
	defaultSecondaryWeight = 0.55
)

// Engine combines the per-candidate feature triples through the two ranking
// models and blends their calibrated outputs.
type Engine struct {
	primary   *Model
	secondary *Model
	w1        float64
	w2        float64
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithPrimary sets the primary ranking model. A nil model is valid and
// predicts 0.0 for every candidate.
func WithPrimary(m *Model) Option {
	return func(e *Engine) { e.primary = m }
}

// WithSecondary sets the secondary ranking model.
func WithSecondary(m *Model) Option {
	return func(e *Engine) { e.secondary = m }
}

// WithBlendWeights sets the (w1, w2) blend pair. Negative values keep the
// defaults.
func WithBlendWeights(w1, w2 float64) Option {
	return func(e *Engine) {
		if w1 >= 0 {
			e.w1 = w1
		}
		if w2 >= 0 {
			e.w2 = w2
		}
	}
}

// New constructs an Engine with default configuration.
func New(opts ...Option) *Engine {
	e := &Engine{
		w1: defaultPrimaryWeight,
		w2: defaultSecondaryWeight,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enabled reports whether at least one model is loaded. With no models the
// pipeline takes the simple weighted-sum path instead.
func (e *Engine) Enabled() bool {
	return e != nil && (e.primary != nil || e.secondary != nil)
}

// Result carries the fused scores plus both raw model outputs for
// diagnostics and explanations.
type Result struct {
	Fused        []float64
	PrimaryRaw   []float64
	SecondaryRaw []float64
}

// Fuse scores a batch of feature rows (skill, semantic, graph per row).
//
// Each model sees features scaled by its own training-time transform when
// available, else by min-max over the current batch. Raw outputs are then
// independently min-max normalized across the batch, so the blend is
// relative to the current candidate pool rather than globally calibrated
// (bounded output, no comparability across batches). A batch of size 0
// or 1 produces 0.0 for all entries (degenerate normalization).
func (e *Engine) Fuse(features [][]float64) Result {
	res := Result{
		Fused:        make([]float64, len(features)),
		PrimaryRaw:   e.predict(e.primary, features),
		SecondaryRaw: e.predict(e.secondary, features),
	}

	norm1 := minMaxVector(res.PrimaryRaw)
	norm2 := minMaxVector(res.SecondaryRaw)
	for i := range res.Fused {
		res.Fused[i] = e.w1*norm1[i] + e.w2*norm2[i]
	}
	return res
}

func (e *Engine) predict(m *Model, features [][]float64) []float64 {
	if m == nil {
		return make([]float64, len(features))
	}
	var scaled [][]float64
	if s := m.Scaler(); s != nil {
		scaled = s.Transform(features)
	} else {
		scaled = minMaxColumns(features)
	}
	return m.PredictBatch(scaled)
}
