// SPDX-License-Identifier: MIT

// Package matrix - argument guards shared by the kernels.
//
// Each guard returns a sentinel wrapped with the guard's name; kernels wrap
// again with their own op tag, so a failure reads "Eigen: ValidateSymmetric:
// matrix: matrix is not symmetric within eps" and still matches errors.Is.

package matrix

import (
	"fmt"
	"math"
)

func guardErr(name string, err error) error {
	return fmt.Errorf("%s: %w", name, err)
}

// ValidateNotNil rejects a nil interface and a typed nil *Dense.
func ValidateNotNil(m Matrix) error {
	if d, ok := m.(*Dense); m == nil || (ok && d == nil) {
		return guardErr("ValidateNotNil", ErrNilMatrix)
	}

	return nil
}

// ValidateSquare requires a non-nil matrix with Rows == Cols.
func ValidateSquare(m Matrix) error {
	if err := ValidateNotNil(m); err != nil {
		return guardErr("ValidateSquare", err)
	}
	if m.Rows() != m.Cols() {
		return guardErr("ValidateSquare", ErrDimensionMismatch)
	}

	return nil
}

// ValidateVecLen requires a non-nil x of length n.
func ValidateVecLen(x []float64, n int) error {
	switch {
	case x == nil:
		return guardErr("ValidateVecLen", ErrNilMatrix)
	case len(x) != n:
		return guardErr("ValidateVecLen", ErrDimensionMismatch)
	}

	return nil
}

// ValidateMulCompatible requires non-nil a, b with a.Cols == b.Rows.
func ValidateMulCompatible(a, b Matrix) error {
	for _, m := range [...]Matrix{a, b} {
		if err := ValidateNotNil(m); err != nil {
			return guardErr("ValidateMulCompatible", err)
		}
	}
	if a.Cols() != b.Rows() {
		return guardErr("ValidateMulCompatible", ErrDimensionMismatch)
	}

	return nil
}

// ValidateSymmetric requires a square matrix with finite entries and
// |m[i,j] − m[j,i]| ≤ |tol| for every pair. tol 0 demands exact symmetry.
//
// Errors: ErrNilMatrix, ErrDimensionMismatch, ErrNaNInf (entry or tol),
// ErrAsymmetry.
func ValidateSymmetric(m Matrix, tol float64) error {
	if err := ValidateSquare(m); err != nil {
		return guardErr("ValidateSymmetric", err)
	}
	if !finite(tol) {
		return guardErr("ValidateSymmetric", ErrNaNInf)
	}
	tol = math.Abs(tol)

	n := m.Rows()
	for i := 0; i < n; i++ {
		if v, _ := m.At(i, i); !finite(v) {
			return guardErr("ValidateSymmetric", ErrNaNInf)
		}
		for j := i + 1; j < n; j++ {
			upper, _ := m.At(i, j)
			lower, _ := m.At(j, i)
			if !finite(upper) || !finite(lower) {
				return guardErr("ValidateSymmetric", ErrNaNInf)
			}
			if math.Abs(upper-lower) > tol {
				return guardErr("ValidateSymmetric", ErrAsymmetry)
			}
		}
	}

	return nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
