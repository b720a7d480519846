// SPDX-License-Identifier: MIT

package matrix

import "math"

// Dot returns Σ x[i]·y[i], or ErrDimensionMismatch if the lengths differ.
// Complexity: O(n).
func Dot(x, y []float64) (float64, error) {
	if len(x) != len(y) {
		return 0, ErrDimensionMismatch
	}
	var (
		i   int
		acc = ZeroSum
	)
	for i = range x {
		acc += x[i] * y[i]
	}

	return acc, nil
}

// Norm2 returns the Euclidean norm of x.
// Complexity: O(n).
func Norm2(x []float64) float64 {
	var (
		v   float64
		acc = NormZero
	)
	for _, v = range x {
		acc += v * v
	}

	return math.Sqrt(acc)
}

// Axpy performs y += alpha·x in place.
// Returns ErrDimensionMismatch if the lengths differ.
// Complexity: O(n).
func Axpy(alpha float64, x, y []float64) error {
	if len(x) != len(y) {
		return ErrDimensionMismatch
	}
	var i int
	for i = range x {
		y[i] += alpha * x[i]
	}

	return nil
}
