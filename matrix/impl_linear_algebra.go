// SPDX-License-Identifier: MIT
// Package matrix provides the linear-algebra kernels the evolution strategy is
// built on: multiplication, transpose, scaling, matrix-vector products, rank-1
// updates and the symmetric eigen-decomposition behind Spectrum. All functions
// perform strict fail-fast validation and return wrapped sentinels on
// dimension or numeric failures.

package matrix

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// NormZero is the additive identity for norm and accumulation operations.
const NormZero = 0.0

// ZeroSum is the initial sum value for dot products and similar accumulations.
const ZeroSum = 0.0

// MinEigenRatio bounds the condition number accepted by NewSpectrum: an
// eigenvalue λ with λ ≤ MinEigenRatio·λmax is treated as non-positive.
const MinEigenRatio = 1e-14

// Operation name constants for unified error wrapping and reducing magic strings.
const (
	opMul       = "Mul"
	opTranspose = "Transpose"
	opScale     = "Scale"
	opMatVec    = "MatVec"
	opAddOuter  = "AddOuter"
	opAddScaled = "AddScaled"
	opEigen     = "Eigen"
	opSpectrum  = "Spectrum"
)

// matrixErrorf wraps err with an operation tag, preserving the original error via %w.
// Use only when err != nil to avoid creating a non-nil wrapper around a nil cause.
func matrixErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// toDense returns m as *Dense, copying through At when m is another implementation.
// Kernels use it so their hot loops only ever touch flat row-major buffers.
func toDense(m Matrix) (*Dense, error) {
	if d, ok := m.(*Dense); ok {
		return d, nil
	}
	r, c := m.Rows(), m.Cols()
	out, err := NewDense(r, c)
	if err != nil {
		return nil, err
	}
	var (
		i, j int
		v    float64
	)
	for i = 0; i < r; i++ {
		for j = 0; j < c; j++ {
			if v, err = m.At(i, j); err != nil {
				return nil, fmt.Errorf("At(%d,%d): %w", i, j, err)
			}
			out.data[i*c+j] = v
		}
	}

	return out, nil
}

// Mul performs standard matrix multiplication C = A × B (no aliasing).
//
// Implementation:
//   - Stage 1: Validate A,B (not nil) and inner dimensions (A.Cols == B.Rows).
//   - Stage 2: i→k→j loop over row-major buffers, skipping zero A[i,k].
//
// Errors:
//   - ErrNilMatrix (nil input), ErrDimensionMismatch (inner mismatch).
//
// Complexity:
//   - Time O(r*n*c), Space O(r*c).
func Mul(a, b Matrix) (*Dense, error) {
	if err := ValidateMulCompatible(a, b); err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	da, err := toDense(a)
	if err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	db, err := toDense(b)
	if err != nil {
		return nil, matrixErrorf(opMul, err)
	}

	aRows, aCols, bCols := da.r, da.c, db.c
	res, err := NewDense(aRows, bCols)
	if err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	var (
		i, j, k                            int
		av                                 float64
		rowOffsetA, rowOffsetB, rowOffsetR int
	)
	for i = 0; i < aRows; i++ {
		rowOffsetA = i * aCols
		rowOffsetR = i * bCols
		for k = 0; k < aCols; k++ {
			av = da.data[rowOffsetA+k]
			if av == 0 {
				continue // skip zero for performance
			}
			rowOffsetB = k * bCols
			for j = 0; j < bCols; j++ {
				res.data[rowOffsetR+j] += av * db.data[rowOffsetB+j]
			}
		}
	}

	return res, nil
}

// Transpose returns a new matrix with rows and columns swapped (mᵀ).
// The original matrix is never mutated.
//
// Complexity: Time O(r*c), Space O(r*c).
func Transpose(m Matrix) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opTranspose, err)
	}
	d, err := toDense(m)
	if err != nil {
		return nil, matrixErrorf(opTranspose, err)
	}
	res, err := NewDense(d.c, d.r)
	if err != nil {
		return nil, matrixErrorf(opTranspose, err)
	}
	var i, j int
	for i = 0; i < d.r; i++ {
		for j = 0; j < d.c; j++ {
			res.data[j*d.r+i] = d.data[i*d.c+j]
		}
	}

	return res, nil
}

// Scale returns a new matrix whose elements are alpha * m[i,j].
//
// Errors: ErrNilMatrix; ErrNaNInf if alpha is not finite.
// Complexity: Time O(r*c), Space O(r*c).
func Scale(m Matrix, alpha float64) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opScale, err)
	}
	if math.IsNaN(alpha) || math.IsInf(alpha, 0) {
		return nil, matrixErrorf(opScale, ErrNaNInf)
	}
	d, err := toDense(m)
	if err != nil {
		return nil, matrixErrorf(opScale, err)
	}
	res := d.clone()
	var k int
	for k = range res.data {
		res.data[k] *= alpha
	}

	return res, nil
}

// MatVec computes y = m * x for a column vector x.
//
// Contract: m non-nil; x non-nil; len(x) == m.Cols().
// Determinism: fixed i→j loop order.
// Complexity: Time O(r*c), Space O(r) for y.
func MatVec(m Matrix, x []float64) ([]float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	if err := ValidateVecLen(x, m.Cols()); err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	d, err := toDense(m)
	if err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}

	y := make([]float64, d.r)
	var (
		i, j, base int
		acc, xv    float64
	)
	for i = 0; i < d.r; i++ {
		acc = ZeroSum
		base = i * d.c
		for j = 0; j < d.c; j++ {
			xv = x[j]
			if xv != 0 { // skip zero multiplications
				acc += d.data[base+j] * xv
			}
		}
		y[i] = acc
	}

	return y, nil
}

// AddOuter performs the in-place rank-1 update m += alpha · x·yᵀ.
//
// Contract: m is r×c, len(x) == r, len(y) == c.
// When x and y are the same slice, the update preserves exact symmetry of a
// symmetric m: both (i,j) and (j,i) receive the bit-identical product.
//
// Errors: ErrNilMatrix, ErrDimensionMismatch, ErrNaNInf (alpha not finite).
// Complexity: Time O(r*c), Space O(1).
func (m *Dense) AddOuter(alpha float64, x, y []float64) error {
	if m == nil {
		return matrixErrorf(opAddOuter, ErrNilMatrix)
	}
	if err := ValidateVecLen(x, m.r); err != nil {
		return matrixErrorf(opAddOuter, err)
	}
	if err := ValidateVecLen(y, m.c); err != nil {
		return matrixErrorf(opAddOuter, err)
	}
	if math.IsNaN(alpha) || math.IsInf(alpha, 0) {
		return matrixErrorf(opAddOuter, ErrNaNInf)
	}
	var (
		i, j, base int
		xi         float64
	)
	for i = 0; i < m.r; i++ {
		xi = x[i]
		if xi == 0 {
			continue
		}
		base = i * m.c
		for j = 0; j < m.c; j++ {
			// alpha·(x_i·y_j): the inner product commutes, so (i,j) and (j,i) match bit for bit.
			m.data[base+j] += alpha * (xi * y[j])
		}
	}

	return nil
}

// AddScaled performs the in-place update m += alpha · b.
//
// Errors: ErrNilMatrix, ErrDimensionMismatch (shape differs), ErrNaNInf (alpha not finite).
// Complexity: Time O(r*c), Space O(1) for *Dense operands.
func (m *Dense) AddScaled(alpha float64, b Matrix) error {
	if m == nil {
		return matrixErrorf(opAddScaled, ErrNilMatrix)
	}
	if err := ValidateNotNil(b); err != nil {
		return matrixErrorf(opAddScaled, err)
	}
	if b.Rows() != m.r || b.Cols() != m.c {
		return matrixErrorf(opAddScaled, ErrDimensionMismatch)
	}
	if math.IsNaN(alpha) || math.IsInf(alpha, 0) {
		return matrixErrorf(opAddScaled, ErrNaNInf)
	}
	bd, err := toDense(b)
	if err != nil {
		return matrixErrorf(opAddScaled, err)
	}
	var k int
	for k = range m.data {
		m.data[k] += alpha * bd.data[k]
	}

	return nil
}

// ScaleInPlace multiplies every element by alpha.
//
// Errors: ErrNilMatrix, ErrNaNInf (alpha not finite).
// Complexity: Time O(r*c), Space O(1).
func (m *Dense) ScaleInPlace(alpha float64) error {
	if m == nil {
		return matrixErrorf(opScale, ErrNilMatrix)
	}
	if math.IsNaN(alpha) || math.IsInf(alpha, 0) {
		return matrixErrorf(opScale, ErrNaNInf)
	}
	var k int
	for k = range m.data {
		m.data[k] *= alpha
	}

	return nil
}

// Eigen computes the eigen-decomposition A = Q·diag(λ)·Qᵀ of a symmetric
// matrix with gonum's EigenSym.
//
// Implementation:
//   - Stage 1: Validate symmetric square input within tol.
//   - Stage 2: Copy the averaged pair (A[i,j]+A[j,i])/2 into a mat.SymDense.
//   - Stage 3: Factorize with eigenvectors and copy Q back into a Dense.
//
// Returns:
//   - []float64: eigenvalues in ascending order.
//   - *Dense: Q whose columns are the matching orthonormal eigenvectors.
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch, ErrNaNInf, ErrAsymmetry,
//     ErrMatrixEigenFailed (LAPACK did not converge or produced non-finite output).
//
// Complexity:
//   - Time O(n³), Space O(n²).
func Eigen(m Matrix, tol float64) ([]float64, *Dense, error) {
	if err := ValidateSymmetric(m, tol); err != nil {
		return nil, nil, matrixErrorf(opEigen, err)
	}
	src, err := toDense(m)
	if err != nil {
		return nil, nil, matrixErrorf(opEigen, err)
	}
	n := src.r
	sym := mat.NewSymDense(n, nil)
	var i, j int
	for i = 0; i < n; i++ {
		for j = i; j < n; j++ {
			sym.SetSym(i, j, 0.5*(src.data[i*n+j]+src.data[j*n+i]))
		}
	}

	var es mat.EigenSym
	if !es.Factorize(sym, true) {
		return nil, nil, matrixErrorf(opEigen, ErrMatrixEigenFailed)
	}
	eigs := es.Values(nil)
	var vecs mat.Dense
	es.VectorsTo(&vecs)

	q, err := NewDense(n, n)
	if err != nil {
		return nil, nil, matrixErrorf(opEigen, err)
	}
	for i = 0; i < n; i++ {
		if !finite(eigs[i]) {
			return nil, nil, matrixErrorf(opEigen, ErrMatrixEigenFailed)
		}
		for j = 0; j < n; j++ {
			q.data[i*n+j] = vecs.At(i, j)
		}
	}
	if !q.IsFinite() {
		return nil, nil, matrixErrorf(opEigen, ErrMatrixEigenFailed)
	}

	return eigs, q, nil
}
