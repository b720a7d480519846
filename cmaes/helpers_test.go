package cmaes_test

import (
	"math/rand"
	"testing"

	"github.com/katalvlaran/pufcma/cmaes"
	"github.com/katalvlaran/pufcma/ltf"
	"github.com/katalvlaran/pufcma/simulation"
	"github.com/stretchr/testify/require"
)

// noiseless returns a deterministic k-chain instance of length n.
func noiseless(t testing.TB, n, k int, seed int64) *simulation.NoisyXOR {
	t.Helper()
	p, err := simulation.New(n, k, ltf.ATF, 0, seed)
	require.NoError(t, err)

	return p
}

// flipper answers +1 and −1 on alternating calls, whatever the challenge.
type flipper struct {
	n, k  int
	calls int
}

func (f *flipper) N() int { return f.n }
func (f *flipper) K() int { return f.k }
func (f *flipper) Eval(batch [][]int8) ([]int8, error) {
	f.calls++
	out := make([]int8, len(batch))
	for i := range out {
		if f.calls%2 == 1 {
			out[i] = 1
		} else {
			out[i] = -1
		}
	}

	return out, nil
}

var _ cmaes.Instance = (*flipper)(nil)

// randomChains draws count chains of n weights plus ε.
func randomChains(rng *rand.Rand, count, n int) [][]float64 {
	out := make([][]float64, count)
	for i := range out {
		out[i] = make([]float64, n+1)
		for j := range out[i] {
			out[i][j] = rng.NormFloat64()
		}
	}

	return out
}

// fastOptions converge on the first generation against a noiseless instance:
// every fitness is 0 there, and 0 > −1.
func fastOptions() cmaes.Options {
	o := cmaes.DefaultOptions()
	o.ChallengeNum = 32
	o.Repeat = 2
	o.Precision = -1
	o.Seed = 7

	return o
}
