package cmaes

import (
	"fmt"

	"github.com/katalvlaran/pufcma/ltf"
	"github.com/katalvlaran/pufcma/matrix"
)

// Two chains are functionally distinct when their responses disagree on a
// fraction of challenges inside [DistinctLow, DistinctHigh]. Below means the
// same chain, above means the same chain with flipped sign.
const (
	DistinctLow  = 0.25
	DistinctHigh = 0.75
)

// IsDistinct reports whether candidate differs from every chain in accepted.
// Chains carry a trailing ε, which is ignored: only the response sign
// sign(⟨w, φ(c)⟩) is compared on batch. The first chain is always distinct.
//
// Complexity: O(len(accepted)·n·len(batch)).
func IsDistinct(candidate []float64, accepted [][]float64, batch [][]int8, t ltf.Transform) (bool, error) {
	if len(accepted) == 0 {
		return true, nil
	}
	f, err := ltf.Features(batch, t)
	if err != nil {
		return false, fmt.Errorf("dedup: %w", err)
	}
	want, err := chainResponses(f, candidate)
	if err != nil {
		return false, fmt.Errorf("dedup: candidate: %w", err)
	}
	var (
		i    int
		got  []int8
		frac float64
	)
	for i = range accepted {
		if got, err = chainResponses(f, accepted[i]); err != nil {
			return false, fmt.Errorf("dedup: chain %d: %w", i, err)
		}
		if frac, err = ltf.Disagreement(want, got); err != nil {
			return false, fmt.Errorf("dedup: chain %d: %w", i, err)
		}
		if frac < DistinctLow || frac > DistinctHigh {
			return false, nil
		}
	}

	return true, nil
}

// chainResponses evaluates a chain (weights followed by ε) on features f.
func chainResponses(f *matrix.Dense, chain []float64) ([]int8, error) {
	if len(chain) != f.Cols()+1 {
		return nil, fmt.Errorf("chain length %d for %d features: %w", len(chain), f.Cols(), ltf.ErrDimensionMismatch)
	}
	d, err := ltf.Delays(f, chain[:len(chain)-1])
	if err != nil {
		return nil, err
	}

	return ltf.Signs(d), nil
}
