// Package embedding loads precomputed dense-vector artifacts and serves
// similarity lookups for the ranking pipeline.
package embedding

import "math"

// Cosine returns the cosine similarity of two vectors. Mismatched lengths or
// a zero vector yield 0.0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Dot returns the raw dot product of two vectors. Mismatched lengths yield
// 0.0.
func Dot(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0.0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}

// InverseEuclidean returns 1/(1+d) where d is the L2 distance, bounding the
// result to (0,1]. Mismatched lengths yield 0.0.
func InverseEuclidean(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0.0
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return 1.0 / (1.0 + math.Sqrt(sum))
}
