package cmaes

import (
	"fmt"
	"math"

	"github.com/katalvlaran/pufcma/matrix"
)

// Instance is the attacked PUF: a k-chain XOR arbiter PUF over challenges of
// length N whose Eval may answer the same challenge differently across calls.
type Instance interface {
	N() int
	K() int
	Eval(batch [][]int8) ([]int8, error)
}

// MeasureReliability queries inst repeat times on batch and returns, per
// challenge, |Σ responses| / repeat: 1 for a stable challenge, near 0 for a
// coin flip.
func MeasureReliability(inst Instance, batch [][]int8, repeat int) ([]float64, error) {
	if repeat <= 0 {
		return nil, configErrorf("repeat > 0", "repeat=%d", repeat)
	}
	sum := make([]float64, len(batch))
	var (
		r, i int
		resp []int8
		err  error
	)
	for r = 0; r < repeat; r++ {
		if resp, err = inst.Eval(batch); err != nil {
			return nil, fmt.Errorf("measure: round %d: %w", r, err)
		}
		if len(resp) != len(batch) {
			return nil, fmt.Errorf("measure: %d responses for %d challenges: %w", len(resp), len(batch), matrix.ErrDimensionMismatch)
		}
		for i = range resp {
			sum[i] += float64(resp[i])
		}
	}
	for i = range sum {
		sum[i] = math.Abs(sum[i]) / float64(repeat)
	}

	return sum, nil
}
