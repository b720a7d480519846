// SPDX-License-Identifier: MIT

// Package matrix - row-major Dense storage.
//
// Element (i, j) lives at data[i*c+j]. Accessors never panic: out-of-range
// indices and non-finite writes come back as wrapped sentinels. Every stored
// value is finite, so kernels can skip per-element NaN checks on input they
// built themselves.
//
// Costs: NewDense, Clone O(r·c); At, Set O(1); Row O(c).

package matrix

import (
	"fmt"
	"math"
	"strings"
)

// Dense is a concrete row-major matrix.
type Dense struct {
	r, c int
	data []float64 // len == r*c
}

var (
	_ Matrix       = (*Dense)(nil)
	_ fmt.Stringer = (*Dense)(nil)
)

// cellErrorf tags err with the accessor name and the offending cell.
func cellErrorf(method string, i, j int, err error) error {
	return fmt.Errorf("Dense.%s(%d,%d): %w", method, i, j, err)
}

// NewDense returns a zero rows×cols matrix, or ErrInvalidDimensions unless
// both sizes are positive.
func NewDense(rows, cols int) (*Dense, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}

	return &Dense{r: rows, c: cols, data: make([]float64, rows*cols)}, nil
}

// NewIdentity returns the n×n identity.
func NewIdentity(n int) (*Dense, error) {
	m, err := NewDense(n, n)
	if err != nil {
		return nil, err
	}
	for k := 0; k < n*n; k += n + 1 {
		m.data[k] = 1
	}

	return m, nil
}

// NewDenseFrom copies vals (row-major, len rows*cols) into a new matrix.
//
// Errors: ErrInvalidDimensions, ErrDimensionMismatch for a wrong length,
// ErrNaNInf for a non-finite value.
func NewDenseFrom(rows, cols int, vals []float64) (*Dense, error) {
	m, err := NewDense(rows, cols)
	if err != nil {
		return nil, err
	}
	if len(vals) != len(m.data) {
		return nil, ErrDimensionMismatch
	}
	for k, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, cellErrorf("From", k/cols, k%cols, ErrNaNInf)
		}
	}
	copy(m.data, vals)

	return m, nil
}

func (m *Dense) Rows() int { return m.r }

func (m *Dense) Cols() int { return m.c }

// Shape returns (Rows, Cols).
func (m *Dense) Shape() (rows, cols int) { return m.r, m.c }

func (m *Dense) inBounds(i, j int) bool {
	return i >= 0 && i < m.r && j >= 0 && j < m.c
}

// At returns element (i, j).
func (m *Dense) At(i, j int) (float64, error) {
	if !m.inBounds(i, j) {
		return 0, cellErrorf("At", i, j, ErrOutOfRange)
	}

	return m.data[i*m.c+j], nil
}

// Set stores v at (i, j). Non-finite values are rejected.
func (m *Dense) Set(i, j int, v float64) error {
	if !m.inBounds(i, j) {
		return cellErrorf("Set", i, j, ErrOutOfRange)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return cellErrorf("Set", i, j, ErrNaNInf)
	}
	m.data[i*m.c+j] = v

	return nil
}

// Clone returns a deep copy.
func (m *Dense) Clone() Matrix { return m.clone() }

func (m *Dense) clone() *Dense {
	return &Dense{r: m.r, c: m.c, data: append([]float64(nil), m.data...)}
}

// Row returns a copy of row i.
func (m *Dense) Row(i int) ([]float64, error) {
	if i < 0 || i >= m.r {
		return nil, cellErrorf("Row", i, 0, ErrOutOfRange)
	}

	return append([]float64(nil), m.data[i*m.c:(i+1)*m.c]...), nil
}

// IsFinite reports whether no element is NaN or ±Inf. Kernels that write the
// buffer directly use it to check their output.
func (m *Dense) IsFinite() bool {
	for _, v := range m.data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}

	return true
}

// String prints one bracketed row per line.
func (m *Dense) String() string {
	var b strings.Builder
	for i := 0; i < m.r; i++ {
		b.WriteByte('[')
		for j, v := range m.data[i*m.c : (i+1)*m.c] {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%g", v)
		}
		b.WriteString("]\n")
	}

	return b.String()
}
