// SPDX-License-Identifier: MIT

// Package matrix: sentinel errors.
//
// Kernels never panic on bad input. They return one of these sentinels,
// usually wrapped as "<Op>: <cause>", and callers match with errors.Is.

package matrix

import "errors"

var (
	// ErrInvalidDimensions: a requested shape has a non-positive side.
	ErrInvalidDimensions = errors.New("matrix: dimensions must be > 0")

	// ErrOutOfRange: an index falls outside the shape.
	ErrOutOfRange = errors.New("matrix: index out of range")

	// ErrDimensionMismatch: operand shapes or vector lengths disagree.
	ErrDimensionMismatch = errors.New("matrix: dimension mismatch")

	// ErrAsymmetry: a matrix required to be symmetric is not, within tolerance.
	ErrAsymmetry = errors.New("matrix: matrix is not symmetric within eps")

	// ErrNaNInf: a NaN or ±Inf where only finite values are allowed.
	ErrNaNInf = errors.New("matrix: NaN or Inf encountered")

	// ErrNilMatrix: a nil matrix or nil vector argument.
	ErrNilMatrix = errors.New("matrix: nil receiver")

	// ErrMatrixEigenFailed: the symmetric eigen-solver did not converge.
	ErrMatrixEigenFailed = errors.New("matrix: eigen decomposition failed")

	// ErrNotPositiveDefinite: NewSpectrum met a non-positive eigenvalue.
	ErrNotPositiveDefinite = errors.New("matrix: matrix is not positive definite")

	// ErrZeroVariance: Pearson got a constant sample.
	ErrZeroVariance = errors.New("matrix: zero variance")
)
