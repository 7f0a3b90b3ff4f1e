package embedding

// Method selects how structural similarity is computed from raw vectors.
type Method string

// Supported similarity methods. Cosine and dot operate on the raw vectors;
// inverse-Euclidean is 1/(1+L2), bounding the result to (0,1].
const (
	MethodCosine    Method = "cosine"
	MethodDot       Method = "dot"
	MethodEuclidean Method = "euclidean"
)

// StructuralProvider serves node-proximity similarity between an anchor user
// and candidates, from structural embeddings learned over the relationship
// graph.
type StructuralProvider struct {
	users *Repository
}

// NewStructuralProvider wraps the structural user-embedding repository.
// A nil repository is valid and degrades every lookup to 0.0.
func NewStructuralProvider(users *Repository) *StructuralProvider {
	return &StructuralProvider{users: users}
}

// Loaded reports whether the structural matrix is available.
func (p *StructuralProvider) Loaded() bool {
	return p != nil && p.users != nil && p.users.Len() > 0
}

// BatchSimilarity scores every candidate against the anchor. An anchor with
// no stored embedding yields 0.0 for every candidate, a fallback rather
// than an error. Candidates without an embedding are treated as the zero
// vector so their similarity degrades instead of erroring.
func (p *StructuralProvider) BatchSimilarity(anchor int64, candidates []int64, method Method) map[int64]float64 {
	out := make(map[int64]float64, len(candidates))
	if !p.Loaded() {
		for _, c := range candidates {
			out[c] = 0.0
		}
		return out
	}
	anchorVec, ok := p.users.Vector(anchor)
	if !ok {
		for _, c := range candidates {
			out[c] = 0.0
		}
		return out
	}

	zero := make([]float32, p.users.Dim())
	for _, c := range candidates {
		vec, ok := p.users.Vector(c)
		if !ok {
			vec = zero
		}
		out[c] = similarity(anchorVec, vec, method)
	}
	return out
}

// Similarity scores a single anchor/candidate pair.
func (p *StructuralProvider) Similarity(anchor, candidate int64, method Method) float64 {
	scores := p.BatchSimilarity(anchor, []int64{candidate}, method)
	return scores[candidate]
}

func similarity(a, b []float32, method Method) float64 {
	switch method {
	case MethodDot:
		return Dot(a, b)
	case MethodEuclidean:
		return InverseEuclidean(a, b)
	default:
		// Unknown methods fall back to cosine.
		return Cosine(a, b)
	}
}
