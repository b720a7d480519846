package cmaes_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/katalvlaran/pufcma/challenge"
	"github.com/katalvlaran/pufcma/cmaes"
	"github.com/katalvlaran/pufcma/ltf"
	"github.com/katalvlaran/pufcma/matrix"
	"github.com/stretchr/testify/require"
)

func TestFitness_RangeAndOrder(t *testing.T) {
	t.Parallel()

	const n = 12
	rng := rand.New(rand.NewSource(1))
	batch, err := challenge.Sample(rng, n, 300)
	require.NoError(t, err)
	measured := make([]float64, len(batch))
	for i := range measured {
		measured[i] = float64(rng.Intn(6)) / 5
	}
	chains := randomChains(rng, 40, n)

	seq, err := cmaes.NewEvaluator(ltf.ATF, 1).Fitness(context.Background(), chains, batch, measured)
	require.NoError(t, err)
	par, err := cmaes.NewEvaluator(ltf.ATF, 8).Fitness(context.Background(), chains, batch, measured)
	require.NoError(t, err)
	require.Equal(t, seq, par)
	require.Len(t, seq, 40)
	for _, f := range seq {
		require.GreaterOrEqual(t, f, -1.0)
		require.LessOrEqual(t, f, 1.0)
	}
}

// TestFitness_ConstantPredictionIsZero forces an all-reliable prediction with a
// huge threshold and an all-unreliable one with ε = 0.
func TestFitness_ConstantPredictionIsZero(t *testing.T) {
	t.Parallel()

	const n = 8
	rng := rand.New(rand.NewSource(2))
	batch, err := challenge.Sample(rng, n, 100)
	require.NoError(t, err)
	measured := make([]float64, len(batch))
	for i := range measured {
		measured[i] = rng.Float64()
	}
	w := []float64{0.31, -1.2, 0.77, 0.05, -0.4, 1.9, -0.66, 0.13}
	huge := append(append([]float64(nil), w...), 1e6)
	zero := append(append([]float64(nil), w...), 0)

	fit, err := cmaes.NewEvaluator(ltf.ATF, 0).Fitness(context.Background(), [][]float64{huge, zero}, batch, measured)
	require.NoError(t, err)
	require.Equal(t, []float64{0, 0}, fit)
}

func TestFitness_PerfectPrediction(t *testing.T) {
	t.Parallel()

	const n = 10
	rng := rand.New(rand.NewSource(3))
	batch, err := challenge.Sample(rng, n, 200)
	require.NoError(t, err)
	chain := randomChains(rng, 1, n)[0]
	chain[n] = 1.5

	f, err := ltf.Features(batch, ltf.ATF)
	require.NoError(t, err)
	pred, err := cmaes.PredictedSignature(f, chain)
	require.NoError(t, err)
	for _, v := range pred {
		require.True(t, v == 0 || v == 1)
	}

	fit, err := cmaes.NewEvaluator(ltf.ATF, 2).Fitness(context.Background(), [][]float64{chain}, batch, pred)
	require.NoError(t, err)
	require.InDelta(t, 1, fit[0], 1e-12)

	// Scaling the whole chain, ε included, leaves the prediction unchanged.
	scaled := make([]float64, len(chain))
	for i := range chain {
		scaled[i] = -3 * chain[i]
	}
	fit, err = cmaes.NewEvaluator(ltf.ATF, 2).Fitness(context.Background(), [][]float64{scaled}, batch, pred)
	require.NoError(t, err)
	require.InDelta(t, 1, fit[0], 1e-12)
}

func TestFitness_Errors(t *testing.T) {
	t.Parallel()

	batch, err := challenge.Sample(challenge.FromSeed(1), 4, 10)
	require.NoError(t, err)
	ev := cmaes.NewEvaluator(ltf.ATF, 1)

	_, err = ev.Fitness(context.Background(), [][]float64{{1, 1, 1, 1, 0}}, batch, make([]float64, 9))
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)

	_, err = ev.Fitness(context.Background(), [][]float64{{1, 1, 1, 0}}, batch, make([]float64, 10))
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ev.Fitness(ctx, [][]float64{{1, 1, 1, 1, 0}}, batch, make([]float64, 10))
	require.ErrorIs(t, err, context.Canceled)
}

func TestCorrelation_ConstantMeasured(t *testing.T) {
	t.Parallel()

	r, err := cmaes.Correlation([]float64{0, 1, 1}, []float64{1, 1, 1})
	require.NoError(t, err)
	require.Zero(t, r)

	_, err = cmaes.Correlation([]float64{0, 1}, []float64{1, 1, 1})
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}

func TestMeasureReliability(t *testing.T) {
	t.Parallel()

	batch, err := challenge.Sample(challenge.FromSeed(4), 8, 16)
	require.NoError(t, err)

	stable, err := cmaes.MeasureReliability(noiseless(t, 8, 2, 1), batch, 5)
	require.NoError(t, err)
	for _, v := range stable {
		require.Equal(t, 1.0, v)
	}

	f := &flipper{n: 8, k: 1}
	coin, err := cmaes.MeasureReliability(f, batch, 4)
	require.NoError(t, err)
	for _, v := range coin {
		require.Zero(t, v)
	}
	require.Equal(t, 4, f.calls)

	// An odd number of alternating answers leaves one unpaired vote.
	odd, err := cmaes.MeasureReliability(&flipper{n: 8, k: 1}, batch, 5)
	require.NoError(t, err)
	require.InDelta(t, 0.2, odd[0], 1e-15)

	_, err = cmaes.MeasureReliability(f, batch, 0)
	require.ErrorIs(t, err, cmaes.ErrConfiguration)
}
