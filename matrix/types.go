// SPDX-License-Identifier: MIT

// Package matrix: the Matrix interface every kernel accepts.
package matrix

// Matrix is a rows×cols grid of finite float64 values with checked access.
// *Dense is the only implementation; kernels type-assert to it for direct
// buffer access and fall back to At/Set otherwise.
type Matrix interface {
	// Rows and Cols report the shape.
	Rows() int
	Cols() int

	// At reads element (i, j); ErrOutOfRange outside the shape.
	At(i, j int) (float64, error)

	// Set writes element (i, j); ErrOutOfRange outside the shape,
	// ErrNaNInf for a non-finite v.
	Set(i, j int, v float64) error

	// Clone returns an independent deep copy.
	Clone() Matrix
}
