package ltf

import (
	"fmt"

	"github.com/katalvlaran/pufcma/matrix"
)

// Delays returns the delay differences Δ = F·w of one chain for a feature
// matrix F produced by Features.
//
// Errors: ErrDimensionMismatch if len(w) != F.Cols().
// Complexity: O(rows·n).
func Delays(f *matrix.Dense, w []float64) ([]float64, error) {
	if f == nil {
		return nil, ErrEmptyBatch
	}
	if len(w) != f.Cols() {
		return nil, fmt.Errorf("delays: len(w)=%d cols=%d: %w", len(w), f.Cols(), ErrDimensionMismatch)
	}
	d, err := matrix.MatVec(f, w)
	if err != nil {
		return nil, fmt.Errorf("delays: %w", err)
	}

	return d, nil
}

// Sign maps a delay to a response bit: +1 for x ≥ 0, −1 otherwise.
func Sign(x float64) int8 {
	if x < 0 {
		return -1
	}

	return 1
}

// Signs applies Sign elementwise.
func Signs(x []float64) []int8 {
	out := make([]int8, len(x))
	var i int
	for i = range x {
		out[i] = Sign(x[i])
	}

	return out
}
