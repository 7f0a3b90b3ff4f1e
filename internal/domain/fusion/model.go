// Package fusion blends the outputs of two independently trained ranking
// models into a single [0,1] score per candidate.
package fusion

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Feature column order consumed by the models: skill, semantic, graph.
const FeatureCount = 3

// Model kinds supported by the artifact format.
const (
	kindLinear = "linear"
	kindTrees  = "trees"
)

// Sentinel error kinds for model loading.
var (
	ErrUnknownKind = errors.New("unknown model kind")
	ErrBadArtifact = errors.New("malformed model artifact")
)

// treeNode is one node of a dumped regression tree. A node with Feature < 0
// is a leaf and contributes Value.
type treeNode struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
}

// tree is a single regression tree addressed by node index, root at 0.
type tree struct {
	Nodes []treeNode `json:"nodes"`
}

// eval walks the tree for one feature row.
func (t *tree) eval(row []float64) float64 {
	i := 0
	for {
		if i < 0 || i >= len(t.Nodes) {
			return 0.0 // malformed child index degrades to a zero leaf
		}
		n := t.Nodes[i]
		if n.Feature < 0 {
			return n.Value
		}
		if n.Feature >= len(row) {
			return 0.0
		}
		if row[n.Feature] < n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// modelArtifact mirrors the JSON layout of a dumped ranking model.
type modelArtifact struct {
	Kind      string    `json:"type"`
	Weights   []float64 `json:"weights"`
	Bias      float64   `json:"bias"`
	Trees     []tree    `json:"trees"`
	BaseScore float64   `json:"base_score"`
}

// Model is one loaded ranking model, optionally paired with the feature
// scaler fit at training time.
type Model struct {
	kind      string
	weights   []float64
	bias      float64
	trees     []tree
	baseScore float64
	scaler    *Scaler
}

// LoadModel reads a model artifact from disk. scalerPath may be empty; a
// missing scaler makes the engine fall back to batch min-max normalization.
func LoadModel(modelPath, scalerPath string) (*Model, error) {
	raw, err := os.ReadFile(modelPath)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}
	var art modelArtifact
	if err := json.Unmarshal(raw, &art); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadArtifact, err)
	}

	m := &Model{
		kind:      art.Kind,
		weights:   art.Weights,
		bias:      art.Bias,
		trees:     art.Trees,
		baseScore: art.BaseScore,
	}
	switch art.Kind {
	case kindLinear:
		if len(art.Weights) != FeatureCount {
			return nil, fmt.Errorf("%w: linear model wants %d weights, got %d", ErrBadArtifact, FeatureCount, len(art.Weights))
		}
	case kindTrees:
		if len(art.Trees) == 0 {
			return nil, fmt.Errorf("%w: tree model has no trees", ErrBadArtifact)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, art.Kind)
	}

	if scalerPath != "" {
		scaler, err := LoadScaler(scalerPath)
		if err == nil {
			m.scaler = scaler
		}
		// A broken scaler is a missing-artifact condition, not a hard
		// failure: the engine normalizes over the batch instead.
	}
	return m, nil
}

// Scaler returns the training-time feature transform, or nil.
func (m *Model) Scaler() *Scaler {
	if m == nil {
		return nil
	}
	return m.scaler
}

// Predict scores one already-scaled feature row.
func (m *Model) Predict(row []float64) float64 {
	if m == nil {
		return 0.0
	}
	switch m.kind {
	case kindLinear:
		out := m.bias
		for i, w := range m.weights {
			if i < len(row) {
				out += w * row[i]
			}
		}
		return out
	case kindTrees:
		out := m.baseScore
		for i := range m.trees {
			out += m.trees[i].eval(row)
		}
		return out
	default:
		return 0.0
	}
}

// PredictBatch scores every row. A nil model deterministically returns 0.0
// for each candidate so the pipeline always produces a ranked list.
func (m *Model) PredictBatch(rows [][]float64) []float64 {
	out := make([]float64, len(rows))
	if m == nil {
		return out
	}
	for i, row := range rows {
		out[i] = m.Predict(row)
	}
	return out
}
