// SPDX-License-Identifier: MIT

// Package matrix - vector statistics.
//
// Purpose:
//   - Pearson correlation between two samples, the fitness primitive of the
//     reliability attack.
//   - Degenerate inputs (a constant sample) are reported with ErrZeroVariance
//     instead of producing NaN, so callers can decide on a replacement value.

package matrix

import (
	"fmt"
	"math"
)

const (
	opMean    = "Mean"
	opPearson = "Pearson"
)

// Mean returns the arithmetic mean of x.
//
// Errors: ErrNilMatrix for a nil or empty vector.
// Complexity: Time O(n), Space O(1).
func Mean(x []float64) (float64, error) {
	if len(x) == 0 {
		return 0, matrixErrorf(opMean, ErrNilMatrix)
	}
	var (
		sum float64
		v   float64
	)
	for _, v = range x {
		sum += v
	}

	return sum / float64(len(x)), nil
}

// Pearson computes the sample correlation coefficient of x and y.
//
// Implementation:
//   - Stage 1: Validate equal lengths ≥ 2.
//   - Stage 2: Center both samples around their means (two-pass, stable).
//   - Stage 3: r = Σ(dx·dy) / √(Σdx²·Σdy²), clamped to [-1, 1] against rounding.
//
// Errors:
//   - ErrNilMatrix (nil input), ErrDimensionMismatch (length mismatch or n < 2),
//     ErrNaNInf (non-finite sample), ErrZeroVariance (either sample constant).
//
// Complexity:
//   - Time O(n), Space O(1).
//
// Notes:
//   - Scale-invariant: Pearson(α·x, y) == Pearson(x, y) for α > 0.
func Pearson(x, y []float64) (float64, error) {
	if x == nil || y == nil {
		return 0, matrixErrorf(opPearson, ErrNilMatrix)
	}
	n := len(x)
	if len(y) != n || n < 2 {
		return 0, matrixErrorf(opPearson, ErrDimensionMismatch)
	}

	var (
		i            int
		mx, my       float64
		dx, dy       float64
		sxy, sxx, sy float64
	)
	for i = 0; i < n; i++ {
		mx += x[i]
		my += y[i]
	}
	if math.IsNaN(mx) || math.IsInf(mx, 0) || math.IsNaN(my) || math.IsInf(my, 0) {
		return 0, matrixErrorf(opPearson, ErrNaNInf)
	}
	mx /= float64(n)
	my /= float64(n)

	for i = 0; i < n; i++ {
		dx = x[i] - mx
		dy = y[i] - my
		sxy += dx * dy
		sxx += dx * dx
		sy += dy * dy
	}
	if sxx == 0 {
		return 0, matrixErrorf(opPearson, fmt.Errorf("first sample: %w", ErrZeroVariance))
	}
	if sy == 0 {
		return 0, matrixErrorf(opPearson, fmt.Errorf("second sample: %w", ErrZeroVariance))
	}

	r := sxy / math.Sqrt(sxx*sy)
	// Rounding can push |r| a hair above 1.
	return math.Max(-1, math.Min(1, r)), nil
}
