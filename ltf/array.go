package ltf

import (
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/pufcma/matrix"
)

// ErrNoChains is returned when an Array is built from zero chains.
var ErrNoChains = errors.New("ltf: array needs at least one chain")

// Evaluator is anything that answers a batch of challenges with ±1 responses.
type Evaluator interface {
	Eval(batch [][]int8) ([]int8, error)
}

// Array is a k-chain XOR arbiter PUF over challenges of length n.
// It is immutable after construction and safe for concurrent use.
type Array struct {
	weights   [][]float64 // k rows of n weights
	transform Transform
	n         int
}

var _ Evaluator = (*Array)(nil)

// NewArray copies weights (k rows of equal length n) into a new Array.
//
// Errors: ErrNoChains, ErrDimensionMismatch (ragged or empty rows),
// ErrUnknownTransform, matrix.ErrNaNInf (non-finite weight).
func NewArray(weights [][]float64, t Transform) (*Array, error) {
	if len(weights) == 0 {
		return nil, ErrNoChains
	}
	if !t.Valid() {
		return nil, ErrUnknownTransform
	}
	n := len(weights[0])
	if n == 0 {
		return nil, fmt.Errorf("array: empty chain: %w", ErrDimensionMismatch)
	}
	cp := make([][]float64, len(weights))
	var (
		l, i int
		w    []float64
	)
	for l, w = range weights {
		if len(w) != n {
			return nil, fmt.Errorf("array: chain %d has %d weights, want %d: %w", l, len(w), n, ErrDimensionMismatch)
		}
		for i = range w {
			if math.IsNaN(w[i]) || math.IsInf(w[i], 0) {
				return nil, fmt.Errorf("array: chain %d weight %d: %w", l, i, matrix.ErrNaNInf)
			}
		}
		cp[l] = append([]float64(nil), w...)
	}

	return &Array{weights: cp, transform: t, n: n}, nil
}

// N returns the challenge length.
func (a *Array) N() int { return a.n }

// K returns the number of chains.
func (a *Array) K() int { return len(a.weights) }

// Transform returns the input transform shared by all chains.
func (a *Array) Transform() Transform { return a.transform }

// Weights returns a deep copy of the chain weights.
func (a *Array) Weights() [][]float64 {
	out := make([][]float64, len(a.weights))
	var l int
	for l = range a.weights {
		out[l] = append([]float64(nil), a.weights[l]...)
	}

	return out
}

// ValFeatures returns Π_l Δ_l for a precomputed feature matrix.
//
// Complexity: O(k·rows·n).
func (a *Array) ValFeatures(f *matrix.Dense) ([]float64, error) {
	var (
		l, i int
		prod []float64
		d    []float64
		err  error
	)
	for l = range a.weights {
		if d, err = Delays(f, a.weights[l]); err != nil {
			return nil, fmt.Errorf("chain %d: %w", l, err)
		}
		if prod == nil {
			prod = d
			continue
		}
		for i = range prod {
			prod[i] *= d[i]
		}
	}

	return prod, nil
}

// Val returns the real-valued XOR product Π_l Δ_l(c) for every challenge in batch.
func (a *Array) Val(batch [][]int8) ([]float64, error) {
	if len(batch) > 0 && len(batch[0]) != a.n {
		return nil, fmt.Errorf("val: challenge length %d, want %d: %w", len(batch[0]), a.n, ErrDimensionMismatch)
	}
	f, err := Features(batch, a.transform)
	if err != nil {
		return nil, fmt.Errorf("val: %w", err)
	}

	return a.ValFeatures(f)
}

// Eval returns the ±1 response for every challenge in batch.
func (a *Array) Eval(batch [][]int8) ([]int8, error) {
	v, err := a.Val(batch)
	if err != nil {
		return nil, err
	}

	return Signs(v), nil
}
