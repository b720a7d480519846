// SPDX-License-Identifier: MIT
// Package matrix_test contains test helpers
//
// Purpose:
//   - Provide small, deterministic fixtures for the spectral kernels.
//   - Keep all data finite and well-formed to avoid numeric-policy interference.

package matrix_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/katalvlaran/pufcma/matrix"
	"github.com/stretchr/testify/require"
)

// tolSpectral is the comparison tolerance for reconstructed spectral products.
const tolSpectral = 1e-9

// hide wraps any Matrix to hide its concrete type from type assertions,
// forcing kernels through their interface fallback path.
type hide struct{ matrix.Matrix }

// MustDense returns an r×c zero matrix or fails the test.
func MustDense(t testing.TB, r, c int) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewDense(r, c)
	require.NoError(t, err)

	return m
}

// MustFrom builds a matrix from a 2D literal or fails the test.
func MustFrom(t testing.TB, rows [][]float64) *matrix.Dense {
	t.Helper()
	r, c := len(rows), len(rows[0])
	flat := make([]float64, 0, r*c)
	var row []float64
	for _, row = range rows {
		require.Len(t, row, c)
		flat = append(flat, row...)
	}
	m, err := matrix.NewDenseFrom(r, c, flat)
	require.NoError(t, err)

	return m
}

// MustAt reads m[i,j] or fails the test.
func MustAt(t testing.TB, m matrix.Matrix, i, j int) float64 {
	t.Helper()
	v, err := m.At(i, j)
	require.NoError(t, err)

	return v
}

// RandomSPD returns a symmetric positive-definite n×n matrix B·Bᵀ + n·I
// drawn from a seeded source.
func RandomSPD(t testing.TB, n int, seed int64) *matrix.Dense {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	b := MustDense(t, n, n)
	var i, j int
	for i = 0; i < n; i++ {
		for j = 0; j < n; j++ {
			require.NoError(t, b.Set(i, j, rng.NormFloat64()))
		}
	}
	bt, err := matrix.Transpose(b)
	require.NoError(t, err)
	a, err := matrix.Mul(b, bt)
	require.NoError(t, err)
	// Mirror the upper triangle so the fixture is exactly symmetric.
	var v float64
	for i = 0; i < n; i++ {
		for j = i + 1; j < n; j++ {
			v = MustAt(t, a, i, j)
			require.NoError(t, a.Set(j, i, v))
		}
		v = MustAt(t, a, i, i)
		require.NoError(t, a.Set(i, i, v+float64(n)))
	}

	return a
}

// RequireClose asserts that a and b have the same shape and agree entrywise within tol.
func RequireClose(t testing.TB, a, b matrix.Matrix, tol float64) {
	t.Helper()
	require.Equal(t, a.Rows(), b.Rows(), "row count")
	require.Equal(t, a.Cols(), b.Cols(), "col count")
	var i, j int
	for i = 0; i < a.Rows(); i++ {
		for j = 0; j < a.Cols(); j++ {
			require.InDeltaf(t, MustAt(t, a, i, j), MustAt(t, b, i, j), tol, "mismatch at (%d,%d)", i, j)
		}
	}
}

// RequireSymmetric asserts bit-exact symmetry.
func RequireSymmetric(t testing.TB, m matrix.Matrix) {
	t.Helper()
	require.Equal(t, m.Rows(), m.Cols())
	var i, j int
	for i = 0; i < m.Rows(); i++ {
		for j = i + 1; j < m.Cols(); j++ {
			require.Equalf(t, MustAt(t, m, i, j), MustAt(t, m, j, i), "asymmetric at (%d,%d)", i, j)
		}
	}
}

// isFinite reports whether v is neither NaN nor ±Inf.
func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
