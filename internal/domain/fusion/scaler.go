package fusion

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// Scaler is an affine column-wise feature transform fit at training time:
// scaled = (x - Mean) / Scale per column.
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// LoadScaler reads a scaler artifact from disk.
func LoadScaler(path string) (*Scaler, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scaler artifact: %w", err)
	}
	var s Scaler
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadArtifact, err)
	}
	if len(s.Mean) != len(s.Scale) {
		return nil, fmt.Errorf("%w: scaler mean/scale length mismatch", ErrBadArtifact)
	}
	return &s, nil
}

// Transform applies the affine transform to every row, returning new rows.
// Columns beyond the scaler's width pass through unchanged; a zero scale
// entry divides by 1 instead.
func (s *Scaler) Transform(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		scaled := make([]float64, len(row))
		for j, v := range row {
			if j < len(s.Mean) {
				denom := s.Scale[j]
				if denom == 0 {
					denom = 1
				}
				scaled[j] = (v - s.Mean[j]) / denom
			} else {
				scaled[j] = v
			}
		}
		out[i] = scaled
	}
	return out
}

// minMaxColumns normalizes each column of the batch to [0,1]. A constant
// column maps to all zeros. This is the fallback when a model has no
// training-time scaler.
func minMaxColumns(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	if len(rows) == 0 {
		return out
	}
	width := len(rows[0])
	mins := make([]float64, width)
	maxs := make([]float64, width)
	for j := 0; j < width; j++ {
		mins[j] = math.Inf(1)
		maxs[j] = math.Inf(-1)
	}
	for _, row := range rows {
		for j := 0; j < width && j < len(row); j++ {
			mins[j] = math.Min(mins[j], row[j])
			maxs[j] = math.Max(maxs[j], row[j])
		}
	}
	for i, row := range rows {
		scaled := make([]float64, len(row))
		for j := 0; j < len(row); j++ {
			if j < width && maxs[j] > mins[j] {
				scaled[j] = (row[j] - mins[j]) / (maxs[j] - mins[j])
			} else {
				scaled[j] = 0.0
			}
		}
		out[i] = scaled
	}
	return out
}

// minMaxVector normalizes a score vector to [0,1] over the batch. Batches of
// size 0 or 1, and constant batches, map to all zeros: with min == max the
// normalization is degenerate and the defined result is 0.0 for every entry.
func minMaxVector(scores []float64) []float64 {
	out := make([]float64, len(scores))
	if len(scores) < 2 {
		return out
	}
	mn := math.Inf(1)
	mx := math.Inf(-1)
	for _, v := range scores {
		mn = math.Min(mn, v)
		mx = math.Max(mx, v)
	}
	if mx <= mn {
		return out
	}
	for i, v := range scores {
		out[i] = (v - mn) / (mx - mn)
	}
	return out
}
