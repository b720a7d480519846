package cmaes

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/pufcma/ltf"
	"github.com/katalvlaran/pufcma/matrix"
)

// Evaluator scores candidate chains against a measured reliability signature.
// A candidate is n weights followed by the threshold ε.
type Evaluator struct {
	transform ltf.Transform
	workers   int
}

// NewEvaluator returns an Evaluator using transform for the candidate chains
// and up to workers goroutines (0 means GOMAXPROCS).
func NewEvaluator(transform ltf.Transform, workers int) *Evaluator {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	return &Evaluator{transform: transform, workers: workers}
}

// Fitness returns the fitness of every candidate on batch.
//
// Candidates are independent, so they are scored concurrently into
// index-addressed slots; the result order matches chains.
func (e *Evaluator) Fitness(ctx context.Context, chains [][]float64, batch [][]int8, measured []float64) ([]float64, error) {
	if len(measured) != len(batch) {
		return nil, fmt.Errorf("fitness: %d measurements for %d challenges: %w", len(measured), len(batch), matrix.ErrDimensionMismatch)
	}
	f, err := ltf.Features(batch, e.transform)
	if err != nil {
		return nil, fmt.Errorf("fitness: %w", err)
	}

	out := make([]float64, len(chains))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i := range chains {
		i := i
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			predicted, err := PredictedSignature(f, chains[i])
			if err != nil {
				return fmt.Errorf("individual %d: %w", i, err)
			}
			if out[i], err = Correlation(predicted, measured); err != nil {
				return fmt.Errorf("individual %d: %w", i, err)
			}

			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return nil, fmt.Errorf("fitness: %w", err)
	}

	return out, nil
}

// PredictedSignature binarizes a candidate's delays on the feature matrix f:
// 1 where |Δ(c)| > |ε|, 0 otherwise. The candidate holds f.Cols() weights
// followed by ε.
func PredictedSignature(f *matrix.Dense, candidate []float64) ([]float64, error) {
	n := len(candidate) - 1
	if n < 1 || n != f.Cols() {
		return nil, fmt.Errorf("predict: candidate length %d for %d features: %w", len(candidate), f.Cols(), matrix.ErrDimensionMismatch)
	}
	delays, err := ltf.Delays(f, candidate[:n])
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	eps := math.Abs(candidate[n])
	var i int
	for i = range delays {
		if math.Abs(delays[i]) > eps {
			delays[i] = 1
		} else {
			delays[i] = 0
		}
	}

	return delays, nil
}

// Correlation is the fitness of a predicted signature: the Pearson coefficient
// with measured, or 0 when either side is constant.
func Correlation(predicted, measured []float64) (float64, error) {
	r, err := matrix.Pearson(predicted, measured)
	if errors.Is(err, matrix.ErrZeroVariance) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	return r, nil
}
