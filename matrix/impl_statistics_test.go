// SPDX-License-Identifier: MIT
// Package matrix_test contains unit tests for vector statistics.
package matrix_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/katalvlaran/pufcma/matrix"
	"github.com/stretchr/testify/require"
)

func TestMean(t *testing.T) {
	t.Parallel()

	m, err := matrix.Mean([]float64{1, 2, 3, 6})
	require.NoError(t, err)
	require.Equal(t, 3.0, m)

	_, err = matrix.Mean(nil)
	require.ErrorIs(t, err, matrix.ErrNilMatrix)
}

func TestPearson_KnownValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		x, y []float64
		want float64
	}{
		{"perfect", []float64{1, 2, 3, 4}, []float64{2, 4, 6, 8}, 1},
		{"anti", []float64{1, 2, 3, 4}, []float64{4, 3, 2, 1}, -1},
		{"binary vs graded", []float64{0, 0, 1, 1}, []float64{0, 0.5, 0.5, 1}, 1 / math.Sqrt2},
		{"orthogonal", []float64{1, -1, 1, -1}, []float64{1, 1, -1, -1}, 0},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			r, err := matrix.Pearson(tc.x, tc.y)
			require.NoError(t, err)
			require.InDelta(t, tc.want, r, 1e-12)
		})
	}
}

func TestPearson_RangeAndScaleInvariance(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	x := make([]float64, 200)
	y := make([]float64, 200)
	sx := make([]float64, 200)
	var (
		trial, i int
		r, rs    float64
		err      error
	)
	for trial = 0; trial < 20; trial++ {
		for i = range x {
			x[i] = rng.NormFloat64()
			y[i] = 0.5*x[i] + rng.NormFloat64()
			sx[i] = 3.5*x[i] + 10
		}
		r, err = matrix.Pearson(x, y)
		require.NoError(t, err)
		require.True(t, isFinite(r))
		require.GreaterOrEqual(t, r, -1.0)
		require.LessOrEqual(t, r, 1.0)

		rs, err = matrix.Pearson(sx, y)
		require.NoError(t, err)
		require.InDelta(t, r, rs, 1e-12)
	}
}

func TestPearson_Errors(t *testing.T) {
	t.Parallel()

	_, err := matrix.Pearson([]float64{1, 1, 1}, []float64{1, 2, 3})
	require.ErrorIs(t, err, matrix.ErrZeroVariance)
	_, err = matrix.Pearson([]float64{1, 2, 3}, []float64{0, 0, 0})
	require.ErrorIs(t, err, matrix.ErrZeroVariance)
	_, err = matrix.Pearson([]float64{1, 2}, []float64{1, 2, 3})
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
	_, err = matrix.Pearson([]float64{1}, []float64{1})
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
	_, err = matrix.Pearson(nil, []float64{1, 2})
	require.ErrorIs(t, err, matrix.ErrNilMatrix)
	_, err = matrix.Pearson([]float64{1, math.NaN()}, []float64{1, 2})
	require.ErrorIs(t, err, matrix.ErrNaNInf)
}

func TestVectorKernels(t *testing.T) {
	t.Parallel()

	d, err := matrix.Dot([]float64{1, 2, 3}, []float64{4, -5, 6})
	require.NoError(t, err)
	require.Equal(t, 12.0, d)
	_, err = matrix.Dot([]float64{1}, []float64{1, 2})
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)

	require.Equal(t, 5.0, matrix.Norm2([]float64{3, 4}))
	require.Zero(t, matrix.Norm2(nil))

	y := []float64{1, 1}
	require.NoError(t, matrix.Axpy(2, []float64{1, -1}, y))
	require.Equal(t, []float64{3, -1}, y)
	require.ErrorIs(t, matrix.Axpy(1, []float64{1}, y), matrix.ErrDimensionMismatch)
}
