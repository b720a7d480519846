// SPDX-License-Identifier: MIT

// Package matrix - Spectrum of a symmetric positive-definite matrix.
//
// One decomposition A = Q·Λ·Qᵀ serves both directions a Gaussian search needs:
// MulSqrt colours white noise (B·z with B = Q·Λ^(1/2), B·Bᵀ = A) and
// MulInvSqrt whitens a step (A^(-1/2)·x). Both are O(n²) once the O(n³)
// factorisation is done.

package matrix

import (
	"fmt"
	"math"
)

// Spectrum is an immutable eigen-decomposition A = Q·diag(λ)·Qᵀ with every
// λ > 0. It is safe for concurrent use.
type Spectrum struct {
	values  []float64 // λ, ascending
	roots   []float64 // √λ
	vectors *Dense    // Q, eigenvectors as columns
}

// NewSpectrum decomposes a symmetric positive-definite matrix. Entries that
// differ from their mirror by at most tol count as symmetric.
//
// Errors: everything Eigen returns, plus ErrNotPositiveDefinite when
// max(λ) ≤ 0 or some λ ≤ MinEigenRatio·max(λ).
// Complexity: O(n³).
func NewSpectrum(m Matrix, tol float64) (*Spectrum, error) {
	eigs, q, err := Eigen(m, tol)
	if err != nil {
		return nil, matrixErrorf(opSpectrum, err)
	}
	peak := math.Inf(-1)
	for _, v := range eigs {
		peak = math.Max(peak, v)
	}
	if !(peak > 0) {
		return nil, matrixErrorf(opSpectrum, fmt.Errorf("largest eigenvalue %g: %w", peak, ErrNotPositiveDefinite))
	}
	roots := make([]float64, len(eigs))
	for k, v := range eigs {
		if v <= MinEigenRatio*peak {
			return nil, matrixErrorf(opSpectrum, fmt.Errorf("eigenvalue %d = %g: %w", k, v, ErrNotPositiveDefinite))
		}
		roots[k] = math.Sqrt(v)
	}

	return &Spectrum{values: eigs, roots: roots, vectors: q}, nil
}

// Dim returns n.
func (s *Spectrum) Dim() int { return len(s.values) }

// Values returns a copy of the eigenvalues in ascending order.
func (s *Spectrum) Values() []float64 { return append([]float64(nil), s.values...) }

// Vectors returns a copy of Q.
func (s *Spectrum) Vectors() *Dense { return s.vectors.clone() }

// MulSqrt returns Q·diag(√λ)·z. For z ~ N(0, I) the result is ~ N(0, A).
func (s *Spectrum) MulSqrt(z []float64) ([]float64, error) {
	n := s.Dim()
	if err := ValidateVecLen(z, n); err != nil {
		return nil, matrixErrorf(opSpectrum, err)
	}
	scaled := make([]float64, n)
	var k int
	for k = range z {
		scaled[k] = s.roots[k] * z[k]
	}

	return s.mulQ(scaled), nil
}

// MulInvSqrt returns A^(-1/2)·x = Q·diag(1/√λ)·Qᵀ·x.
func (s *Spectrum) MulInvSqrt(x []float64) ([]float64, error) {
	n := s.Dim()
	if err := ValidateVecLen(x, n); err != nil {
		return nil, matrixErrorf(opSpectrum, err)
	}
	proj := make([]float64, n)
	var (
		i, k int
		q    = s.vectors.data
	)
	for i = 0; i < n; i++ {
		for k = 0; k < n; k++ {
			proj[k] += q[i*n+k] * x[i]
		}
	}
	for k = range proj {
		proj[k] /= s.roots[k]
	}

	return s.mulQ(proj), nil
}

// mulQ returns Q·v.
func (s *Spectrum) mulQ(v []float64) []float64 {
	n := s.Dim()
	out := make([]float64, n)
	var (
		i, k int
		acc  float64
		q    = s.vectors.data
	)
	for i = 0; i < n; i++ {
		acc = ZeroSum
		for k = 0; k < n; k++ {
			acc += q[i*n+k] * v[k]
		}
		out[i] = acc
	}

	return out
}
