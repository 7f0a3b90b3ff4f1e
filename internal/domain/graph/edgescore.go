package graph

import "math"

// Default edge scoring constants.
const (
	defaultChannelCap   = 5.0
	defaultCollabWeight = 0.5
	defaultSkillWeight  = 0.3
	defaultDomainWeight = 0.15
	defaultFeedbWeight  = 0.05
)

// EdgeScorer converts the direct edge between an anchor and a candidate into
// a bounded [0,1] score. Channels are capped to prevent a single signal from
// dominating, then combined with fixed weights and normalized by the maximum
// attainable weighted sum under the same caps.
type EdgeScorer struct {
	caps    [4]float64 // collab, skill, domain, feedback
	weights [4]float64
}

// EdgeScorerOption applies a configuration option to the EdgeScorer.
type EdgeScorerOption func(*EdgeScorer)

// WithChannelCaps sets the per-channel ceilings (collab, skill, domain,
// feedback). Non-positive values keep the default.
func WithChannelCaps(collab, skill, domain, feedback float64) EdgeScorerOption {
	return func(s *EdgeScorer) {
		for i, c := range []float64{collab, skill, domain, feedback} {
			if c > 0 {
				s.caps[i] = c
			}
		}
	}
}

// WithChannelWeights sets the per-channel blend weights.
// Non-positive values keep the default.
func WithChannelWeights(collab, skill, domain, feedback float64) EdgeScorerOption {
	return func(s *EdgeScorer) {
		for i, w := range []float64{collab, skill, domain, feedback} {
			if w > 0 {
				s.weights[i] = w
			}
		}
	}
}

// NewEdgeScorer creates an edge scorer with configuration options.
func NewEdgeScorer(opts ...EdgeScorerOption) *EdgeScorer {
	s := &EdgeScorer{
		caps:    [4]float64{defaultChannelCap, defaultChannelCap, defaultChannelCap, defaultChannelCap},
		weights: [4]float64{defaultCollabWeight, defaultSkillWeight, defaultDomainWeight, defaultFeedbWeight},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score returns the [0,1] edge score between anchor and candidate.
// No anchor, no graph, or no edge yields 0.0; any malformed channel value
// degrades to 0.0 instead of propagating.
func (s *EdgeScorer) Score(g *Graph, anchor, candidate int64) float64 {
	if g == nil || anchor <= 0 {
		return 0.0
	}
	e, ok := g.Edge(anchor, candidate)
	if !ok {
		return 0.0
	}

	channels := [4]float64{e.Collab, e.Skill, e.Domain, e.Feedback}
	total := 0.0
	norm := 0.0
	for i := range channels {
		v := channels[i]
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			v = 0
		}
		total += s.weights[i] * math.Min(v, s.caps[i])
		norm += s.weights[i] * s.caps[i]
	}
	if norm <= 0 {
		return 0.0
	}
	return math.Max(0.0, math.Min(1.0, total/norm))
}
