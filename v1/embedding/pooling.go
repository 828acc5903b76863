package embedding

import (
	"errors"
	"fmt"
)

// ErrEmptyEmbedding is returned by MeanPool for a tensor without tokens.
var ErrEmptyEmbedding = errors.New("embedding: cannot pool a tensor with zero tokens")

// MeanPool collapses a multi-vector tensor into a single vector by averaging
// across the token axis. All token rows must have the same width.
func MeanPool(t Tensor) ([]float32, error) {
	if len(t) == 0 {
		return nil, ErrEmptyEmbedding
	}

	width := len(t[0])
	if width == 0 {
		return nil, fmt.Errorf("embedding: token vectors have zero width")
	}

	// Accumulate in float64; long documents would otherwise lose precision.
	sum := make([]float64, width)
	for i, row := range t {
		if len(row) != width {
			return nil, fmt.Errorf("embedding: token %d has width %d, expected %d", i, len(row), width)
		}
		for j, v := range row {
			sum[j] += float64(v)
		}
	}

	n := float64(len(t))
	out := make([]float32, width)
	for j, s := range sum {
		out[j] = float32(s / n)
	}
	return out, nil
}
