// Package matrix provides the dense linear-algebra substrate used by the
// evolution strategy: row-major matrices with safe accessors, rank-1 updates,
// the spectrum of a covariance matrix and vector statistics. The eigen-solver
// itself is gonum's mat.EigenSym; this package keeps the checked Dense API
// around it.
//
// The package is deliberately small and deterministic:
//
//   - Dense is a contiguous row-major buffer; At/Set never panic and return
//     sentinel errors (ErrOutOfRange, ErrNaNInf) instead.
//   - Every kernel validates its operands through validators.go and wraps
//     failures with an operation tag ("Eigen: matrix: ...") so callers can
//     match the sentinel with errors.Is.
//   - Loop orders are fixed; identical inputs produce identical bits.
//
// Spectral routines:
//
//	Eigen        — A = Q·diag(λ)·Qᵀ for symmetric A (gonum EigenSym).
//	NewSpectrum  — Eigen restricted to positive-definite A, rejecting λ ≤ 0.
//	MulSqrt      — Q·diag(√λ)·z, turning N(0, I) noise into N(0, A).
//	MulInvSqrt   — A^(-1/2)·x = Q·diag(1/√λ)·Qᵀ·x.
//
// Statistics:
//
//	Pearson      — sample correlation of two equal-length vectors;
//	               ErrZeroVariance when either side is constant.
//
// Complexity is documented per function. Decomposition is O(n³); applying a
// Spectrum to a vector is O(n²).
package matrix
