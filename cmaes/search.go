package cmaes

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"

	"github.com/katalvlaran/pufcma/challenge"
	"github.com/katalvlaran/pufcma/matrix"
)

// Stream ids derived from Options.Seed.
const (
	streamSampling  uint64 = 1
	streamChallenge uint64 = 2
)

// SearchResult is the outcome of one chain search.
type SearchResult struct {
	// Chain is the winning candidate: n weights followed by ε.
	Chain []float64
	// Fitness of Chain on the generation it won.
	Fitness float64
	// Generations evaluated, including the winning one.
	Generations int
}

// Search runs CMA-ES chain searches against one instance. Every Run starts
// from a fresh Distribution; the random streams continue across runs.
// A Search is not safe for concurrent use.
type Search struct {
	inst   Instance
	opts   Options
	consts Constants
	eval   *Evaluator
	rng    *rand.Rand
	source *challenge.Source
	log    *slog.Logger
}

// NewSearch validates opts against inst and prepares the random streams.
//
// Errors: ErrNilInstance, ErrConfiguration.
func NewSearch(inst Instance, opts Options) (*Search, error) {
	if inst == nil {
		return nil, ErrNilInstance
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if inst.N() <= 0 || inst.K() <= 0 {
		return nil, configErrorf("n > 0 and k > 0", "n=%d k=%d", inst.N(), inst.K())
	}
	opts = opts.withDefaults()
	consts, err := NewConstants(inst.N()+1, opts.Priorities)
	if err != nil {
		return nil, err
	}
	source, err := challenge.NewSource(challenge.Stream(opts.Seed, streamChallenge), inst.N())
	if err != nil {
		return nil, fmt.Errorf("new search: %w", err)
	}

	return &Search{
		inst:   inst,
		opts:   opts,
		consts: consts,
		eval:   NewEvaluator(opts.Transform, opts.Workers),
		rng:    challenge.Stream(opts.Seed, streamSampling),
		source: source,
		log:    opts.Logger,
	}, nil
}

// Constants returns the learning rates used by every run.
func (s *Search) Constants() Constants { return s.consts }

// Run searches for one chain whose fitness exceeds Options.Precision.
//
// Each generation samples a population, measures the instance's reliability
// on a fresh challenge batch, scores the population and either returns the
// fittest individual or updates the distribution from the ranking.
//
// Errors:
//   - *ExhaustedError (ErrSearchExhausted) when MaxGenerations is reached.
//   - ErrNumericalDegeneracy when the covariance breaks down.
//   - ctx.Err() on cancellation, checked once per generation.
//
// The returned SearchResult always carries the best individual seen so far.
func (s *Search) Run(ctx context.Context) (SearchResult, error) {
	dist, err := NewDistribution(s.consts.Dim)
	if err != nil {
		return SearchResult{}, err
	}
	var (
		best     SearchResult
		gen      int
		pop      *Population
		batch    [][]int8
		measured []float64
		fitness  []float64
		order    []int
		ranked   [][]float64
		parent   []float64
		cmMu     *matrix.Dense
	)
	for gen = 1; ; gen++ {
		if err = ctx.Err(); err != nil {
			return best, err
		}
		if s.opts.MaxGenerations > 0 && gen > s.opts.MaxGenerations {
			s.log.Warn("chain search exhausted",
				slog.Int("generations", best.Generations),
				slog.Float64("best_fitness", best.Fitness))
			return best, &ExhaustedError{Generations: best.Generations, BestFitness: best.Fitness}
		}

		if pop, err = dist.Sample(s.rng, s.opts.PopSize); err != nil {
			s.log.Warn("covariance degenerated", slog.Int("generation", gen), slog.Any("error", err))
			return best, err
		}
		if batch, err = s.source.Next(s.opts.ChallengeNum); err != nil {
			return best, fmt.Errorf("generation %d: %w", gen, err)
		}
		if measured, err = MeasureReliability(s.inst, batch, s.opts.Repeat); err != nil {
			return best, fmt.Errorf("generation %d: %w", gen, err)
		}
		if fitness, err = s.eval.Fitness(ctx, pop.Chains, batch, measured); err != nil {
			return best, fmt.Errorf("generation %d: %w", gen, err)
		}
		recordGeneration(ctx)

		order = rankDescending(fitness)
		if gen == 1 || fitness[order[0]] > best.Fitness {
			best.Chain = append([]float64(nil), pop.Chains[order[0]]...)
			best.Fitness = fitness[order[0]]
		}
		best.Generations = gen
		s.log.Debug("generation",
			slog.Int("generation", gen),
			slog.Float64("best_fitness", fitness[order[0]]),
			slog.Float64("step_size", dist.Sigma))

		if fitness[order[0]] > s.opts.Precision {
			return SearchResult{
				Chain:       append([]float64(nil), pop.Chains[order[0]]...),
				Fitness:     fitness[order[0]],
				Generations: gen,
			}, nil
		}

		ranked = make([][]float64, s.opts.ParentSize)
		for i := range ranked {
			ranked[i] = pop.Steps[order[i]]
		}
		if parent, err = Recombine(ranked, s.opts.Priorities); err != nil {
			return best, err
		}
		if cmMu, err = RankMu(ranked, s.opts.Priorities); err != nil {
			return best, err
		}
		if dist, err = dist.Update(parent, cmMu, s.consts); err != nil {
			s.log.Warn("covariance degenerated", slog.Int("generation", gen), slog.Any("error", err))
			return best, err
		}
	}
}

// rankDescending returns the indices of fitness ordered from fittest to
// least fit; ties keep their sampling order.
func rankDescending(fitness []float64) []int {
	idx := make([]int, len(fitness))
	var i int
	for i = range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return fitness[idx[a]] > fitness[idx[b]]
	})

	return idx
}
