package cmaes_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/katalvlaran/pufcma/cmaes"
	"github.com/katalvlaran/pufcma/matrix"
	"github.com/stretchr/testify/require"
)

func TestNewDistribution_InitialState(t *testing.T) {
	t.Parallel()

	d, err := cmaes.NewDistribution(5)
	require.NoError(t, err)
	require.Equal(t, 5, d.Dim())
	require.Equal(t, 1.0, d.Sigma)
	require.Equal(t, make([]float64, 5), d.Mean)
	require.Equal(t, make([]float64, 5), d.PathC)
	require.Equal(t, make([]float64, 5), d.PathS)
	for i := 0; i < 5; i++ {
		for j := 0; j < 5; j++ {
			v, err := d.Cov.At(i, j)
			require.NoError(t, err)
			if i == j {
				require.Equal(t, 1.0, v)
			} else {
				require.Zero(t, v)
			}
		}
	}

	_, err = cmaes.NewDistribution(0)
	require.ErrorIs(t, err, cmaes.ErrConfiguration)
}

func TestDistribution_SampleShape(t *testing.T) {
	t.Parallel()

	d, err := cmaes.NewDistribution(9)
	require.NoError(t, err)
	d.Mean = []float64{1, -1, 2, 0, 0, 3, 0.5, -0.5, 4}
	d.Sigma = 0.25

	for _, p := range []int{1, 10, 30} {
		pop, err := d.Sample(rand.New(rand.NewSource(int64(p))), p)
		require.NoError(t, err)
		require.Equal(t, p, pop.Len())
		require.Len(t, pop.Steps, p)
		for i := range pop.Chains {
			require.Len(t, pop.Chains[i], 9)
			for j := range pop.Chains[i] {
				require.InDelta(t, d.Mean[j]+d.Sigma*pop.Steps[i][j], pop.Chains[i][j], 1e-12)
			}
		}
	}

	_, err = d.Sample(rand.New(rand.NewSource(1)), 0)
	require.ErrorIs(t, err, cmaes.ErrConfiguration)
}

func TestDistribution_SampleDiffersAcrossSeeds(t *testing.T) {
	t.Parallel()

	d, err := cmaes.NewDistribution(9)
	require.NoError(t, err)
	a, err := d.Sample(rand.New(rand.NewSource(1)), 30)
	require.NoError(t, err)
	b, err := d.Sample(rand.New(rand.NewSource(2)), 30)
	require.NoError(t, err)
	c, err := d.Sample(rand.New(rand.NewSource(1)), 30)
	require.NoError(t, err)
	require.NotEqual(t, a.Chains, b.Chains)
	require.Equal(t, a.Chains, c.Chains)
}

func TestDistribution_SampleFollowsCovariance(t *testing.T) {
	t.Parallel()

	d, err := cmaes.NewDistribution(2)
	require.NoError(t, err)
	require.NoError(t, d.Cov.Set(0, 0, 4))
	require.NoError(t, d.Cov.Set(1, 1, 0.25))

	pop, err := d.Sample(rand.New(rand.NewSource(3)), 20000)
	require.NoError(t, err)
	var v0, v1 float64
	for _, y := range pop.Steps {
		v0 += y[0] * y[0]
		v1 += y[1] * y[1]
	}
	require.InDelta(t, 4, v0/20000, 0.2)
	require.InDelta(t, 0.25, v1/20000, 0.0125)
}

func TestDistribution_SampleRejectsIndefinite(t *testing.T) {
	t.Parallel()

	d, err := cmaes.NewDistribution(2)
	require.NoError(t, err)
	require.NoError(t, d.Cov.Set(0, 1, 2))
	require.NoError(t, d.Cov.Set(1, 0, 2))
	_, err = d.Sample(rand.New(rand.NewSource(1)), 5)
	require.ErrorIs(t, err, cmaes.ErrNumericalDegeneracy)
	require.ErrorIs(t, err, matrix.ErrNotPositiveDefinite)
}

func TestRecombineAndRankMu(t *testing.T) {
	t.Parallel()

	ranked := [][]float64{{1, 0}, {0, 2}, {9, 9}}
	w := []float64{0.75, 0.25}
	parent, err := cmaes.Recombine(ranked, w)
	require.NoError(t, err)
	require.Equal(t, []float64{0.75, 0.5}, parent)

	m, err := cmaes.RankMu(ranked, w)
	require.NoError(t, err)
	want := [][]float64{{0.75, 0}, {0, 1}}
	for i := range want {
		for j := range want[i] {
			v, err := m.At(i, j)
			require.NoError(t, err)
			require.InDelta(t, want[i][j], v, 1e-15)
		}
	}

	_, err = cmaes.Recombine(ranked[:1], w)
	require.ErrorIs(t, err, cmaes.ErrConfiguration)
	_, err = cmaes.RankMu(ranked[:1], w)
	require.ErrorIs(t, err, cmaes.ErrConfiguration)
}

// TestDistribution_UpdateNeutralStep checks every stage against hand-computed
// values for a zero parent and an identity rank-μ term.
func TestDistribution_UpdateNeutralStep(t *testing.T) {
	t.Parallel()

	const dim = 9
	c, err := cmaes.NewConstants(dim, cmaes.LinearPriorities(10))
	require.NoError(t, err)
	d, err := cmaes.NewDistribution(dim)
	require.NoError(t, err)
	id, err := matrix.NewIdentity(dim)
	require.NoError(t, err)

	next, err := d.Update(make([]float64, dim), id, c)
	require.NoError(t, err)
	require.Equal(t, make([]float64, dim), next.Mean)
	require.Equal(t, make([]float64, dim), next.PathC)
	require.Equal(t, make([]float64, dim), next.PathS)
	require.InDelta(t, math.Exp(-c.CSigma/c.DSigma), next.Sigma, 1e-15)
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			v, err := next.Cov.At(i, j)
			require.NoError(t, err)
			if i == j {
				require.InDelta(t, 1-c.C1, v, 1e-15)
			} else {
				require.Zero(t, v)
			}
		}
	}

	// The receiver is untouched.
	require.Equal(t, 1.0, d.Sigma)
}

func TestDistribution_UpdateStallGuard(t *testing.T) {
	t.Parallel()

	const dim = 4
	c, err := cmaes.NewConstants(dim, []float64{1})
	require.NoError(t, err)
	id, err := matrix.NewIdentity(dim)
	require.NoError(t, err)
	parent := []float64{0.1, 0.1, 0.1, 0.1}

	free, err := cmaes.NewDistribution(dim)
	require.NoError(t, err)
	next, err := free.Update(parent, id, c)
	require.NoError(t, err)
	inj := math.Sqrt(1-(1-c.CC)*(1-c.CC)) * math.Sqrt(c.MuW)
	for i := range next.PathC {
		require.InDelta(t, inj*0.1, next.PathC[i], 1e-15)
	}
	// Mean moves by σ·parent.
	require.InDelta(t, 0.1, next.Mean[0], 1e-15)

	stalled, err := cmaes.NewDistribution(dim)
	require.NoError(t, err)
	// ‖p_σ‖ = 4 ≥ 1.5·√4.
	stalled.PathS = []float64{2, 2, 2, 2}
	next, err = stalled.Update(parent, id, c)
	require.NoError(t, err)
	require.Equal(t, make([]float64, dim), next.PathC)
}

// TestDistribution_UpdateKeepsSymmetryAndPositiveSigma drives the distribution
// through random rankings and checks the invariants after every step.
func TestDistribution_UpdateKeepsSymmetryAndPositiveSigma(t *testing.T) {
	t.Parallel()

	const dim = 9
	w := cmaes.LinearPriorities(10)
	c, err := cmaes.NewConstants(dim, w)
	require.NoError(t, err)
	d, err := cmaes.NewDistribution(dim)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(99))

	for gen := 0; gen < 60; gen++ {
		pop, err := d.Sample(rng, 30)
		require.NoError(t, err)
		perm := rng.Perm(30)
		ranked := make([][]float64, len(w))
		for i := range ranked {
			ranked[i] = pop.Steps[perm[i]]
		}
		parent, err := cmaes.Recombine(ranked, w)
		require.NoError(t, err)
		cmMu, err := cmaes.RankMu(ranked, w)
		require.NoError(t, err)

		d, err = d.Update(parent, cmMu, c)
		require.NoError(t, err, "generation %d", gen)
		require.NoError(t, matrix.ValidateSymmetric(d.Cov, 0), "generation %d", gen)
		require.Greater(t, d.Sigma, 0.0)
		require.False(t, math.IsInf(d.Sigma, 0))
	}
}

func TestDistribution_UpdateSigmaPositiveForAnyPath(t *testing.T) {
	t.Parallel()

	const dim = 6
	c, err := cmaes.NewConstants(dim, cmaes.LinearPriorities(3))
	require.NoError(t, err)
	id, err := matrix.NewIdentity(dim)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(5))

	for trial := 0; trial < 200; trial++ {
		d, err := cmaes.NewDistribution(dim)
		require.NoError(t, err)
		d.Sigma = math.Exp(rng.NormFloat64() * 3)
		scale := math.Exp(rng.NormFloat64() * 2)
		parent := make([]float64, dim)
		for i := range d.PathS {
			d.PathS[i] = rng.NormFloat64() * scale
			parent[i] = rng.NormFloat64()
		}
		next, err := d.Update(parent, id, c)
		require.NoError(t, err)
		require.Greater(t, next.Sigma, 0.0)
	}
}

func TestDistribution_UpdateRejectsDegenerateCovariance(t *testing.T) {
	t.Parallel()

	const dim = 3
	c, err := cmaes.NewConstants(dim, []float64{1})
	require.NoError(t, err)
	d, err := cmaes.NewDistribution(dim)
	require.NoError(t, err)
	// Rank-one covariance.
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			require.NoError(t, d.Cov.Set(i, j, 1))
		}
	}
	id, err := matrix.NewIdentity(dim)
	require.NoError(t, err)
	_, err = d.Update([]float64{1, 0, 0}, id, c)
	require.ErrorIs(t, err, cmaes.ErrNumericalDegeneracy)

	_, err = d.Update([]float64{1, 0}, id, c)
	require.ErrorIs(t, err, cmaes.ErrConfiguration)
}

// TestDistribution_SampleAfterUpdate draws from a state returned by Update,
// whose covariance 0.25·I + 0.25·diag(15, 0) = diag(4, 0.25) differs from the
// identity it was derived from.
func TestDistribution_SampleAfterUpdate(t *testing.T) {
	t.Parallel()

	c, err := cmaes.NewConstants(2, []float64{1})
	require.NoError(t, err)
	cmMu, err := matrix.NewDenseFrom(2, 2, []float64{15, 0, 0, 0})
	require.NoError(t, err)
	d, err := cmaes.NewDistribution(2)
	require.NoError(t, err)
	next, err := d.Update(make([]float64, 2), cmMu, c)
	require.NoError(t, err)
	v, err := next.Cov.At(0, 0)
	require.NoError(t, err)
	require.InDelta(t, 4, v, 1e-12)

	pop, err := next.Sample(rand.New(rand.NewSource(8)), 20000)
	require.NoError(t, err)
	var v0, v1, cross float64
	for _, y := range pop.Steps {
		v0 += y[0] * y[0]
		v1 += y[1] * y[1]
		cross += y[0] * y[1]
	}
	require.InDelta(t, 4, v0/20000, 0.2)
	require.InDelta(t, 0.25, v1/20000, 0.0125)
	require.InDelta(t, 0, cross/20000, 0.05)
}
