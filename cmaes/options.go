package cmaes

import (
	"log/slog"
	"math"

	"github.com/katalvlaran/pufcma/ltf"
)

// Recommended defaults for the attack.
const (
	DefaultPopSize            = 30
	DefaultParentSize         = 10
	DefaultChallengeNum       = 256
	DefaultRepeat             = 5
	DefaultPrecision          = 0.9
	DefaultPolarityChallenges = 10

	// PriorityTolerance bounds |Σ priorities − 1|.
	PriorityTolerance = 1e-9
)

// Options configures a Learner.
//
// Fields:
//   - PopSize         — individuals sampled per generation (λ).
//   - ParentSize      — fittest individuals recombined per generation (μ ≤ λ).
//   - Priorities      — μ positive recombination weights summing to 1, fittest first.
//   - ChallengeNum    — challenges per generation for the reliability signature (≥ 2).
//   - Repeat          — oracle queries per challenge when measuring reliability.
//   - Unreliability   — expected share of unstable challenges in [0, 1]; reported only.
//   - Precision       — a search converges once some fitness exceeds this value.
//   - MaxGenerations  — per-search generation bound; 0 means unbounded.
//   - MaxAttempts     — bound on chain searches in Learn; 0 means unbounded.
//   - PolarityChallenges — batch size of the final polarity check.
//   - DedupChallenges — batch size of the deduplication check; 0 means ChallengeNum.
//   - Transform       — input transform of learned chains and the emitted model.
//   - Workers         — goroutines evaluating fitness; 1 is sequential, 0 means GOMAXPROCS.
//   - Seed            — root of every random stream; 0 selects the fixed default seed.
//   - Logger          — structured logger; nil discards.
type Options struct {
	PopSize            int
	ParentSize         int
	Priorities         []float64
	ChallengeNum       int
	Repeat             int
	Unreliability      float64
	Precision          float64
	MaxGenerations     int
	MaxAttempts        int
	PolarityChallenges int
	DedupChallenges    int
	Transform          ltf.Transform
	Workers            int
	Seed               int64
	Logger             *slog.Logger
}

// DefaultOptions returns the recommended parameters: λ=30, μ=10 with linear
// priorities, 256 challenges measured 5 times each, precision 0.9, ATF chains
// and unbounded search.
func DefaultOptions() Options {
	return Options{
		PopSize:            DefaultPopSize,
		ParentSize:         DefaultParentSize,
		Priorities:         LinearPriorities(DefaultParentSize),
		ChallengeNum:       DefaultChallengeNum,
		Repeat:             DefaultRepeat,
		Precision:          DefaultPrecision,
		PolarityChallenges: DefaultPolarityChallenges,
		Transform:          ltf.ATF,
		Workers:            1,
	}
}

// LinearPriorities returns μ linearly decreasing weights w_i ∝ μ − i,
// normalised to sum 1. Returns nil for μ ≤ 0.
func LinearPriorities(mu int) []float64 {
	if mu <= 0 {
		return nil
	}
	w := make([]float64, mu)
	total := float64(mu*(mu+1)) / 2
	var i int
	for i = 0; i < mu; i++ {
		w[i] = float64(mu-i) / total
	}

	return w
}

// Validate checks every invariant that does not depend on the challenge
// length. NewLearner additionally checks the learning-rate bound via
// NewConstants.
func (o Options) Validate() error {
	if o.PopSize <= 0 {
		return configErrorf("pop_size > 0", "pop_size=%d", o.PopSize)
	}
	if o.ParentSize <= 0 {
		return configErrorf("parent_size > 0", "parent_size=%d", o.ParentSize)
	}
	if o.ParentSize > o.PopSize {
		return configErrorf("parent_size <= pop_size", "parent_size=%d pop_size=%d", o.ParentSize, o.PopSize)
	}
	if len(o.Priorities) != o.ParentSize {
		return configErrorf("len(priorities) == parent_size", "len(priorities)=%d parent_size=%d", len(o.Priorities), o.ParentSize)
	}
	var (
		i   int
		w   float64
		sum float64
	)
	for i, w = range o.Priorities {
		if math.IsNaN(w) || math.IsInf(w, 0) || w <= 0 {
			return configErrorf("priorities > 0", "priorities[%d]=%g", i, w)
		}
		sum += w
	}
	if math.Abs(sum-1) > PriorityTolerance {
		return configErrorf("sum(priorities) == 1", "sum=%.12g", sum)
	}
	if o.ChallengeNum < 2 {
		return configErrorf("challenge_num >= 2", "challenge_num=%d", o.ChallengeNum)
	}
	if o.Repeat <= 0 {
		return configErrorf("repeat > 0", "repeat=%d", o.Repeat)
	}
	if math.IsNaN(o.Unreliability) || o.Unreliability < 0 || o.Unreliability > 1 {
		return configErrorf("0 <= unreliability <= 1", "unreliability=%g", o.Unreliability)
	}
	if math.IsNaN(o.Precision) || o.Precision < -1 || o.Precision >= 1 {
		return configErrorf("-1 <= precision < 1", "precision=%g", o.Precision)
	}
	if o.MaxGenerations < 0 {
		return configErrorf("max_generations >= 0", "max_generations=%d", o.MaxGenerations)
	}
	if o.MaxAttempts < 0 {
		return configErrorf("max_attempts >= 0", "max_attempts=%d", o.MaxAttempts)
	}
	if o.PolarityChallenges <= 0 {
		return configErrorf("polarity_challenges > 0", "polarity_challenges=%d", o.PolarityChallenges)
	}
	if o.DedupChallenges < 0 {
		return configErrorf("dedup_challenges >= 0", "dedup_challenges=%d", o.DedupChallenges)
	}
	if !o.Transform.Valid() {
		return configErrorf("known transform", "transform=%s", o.Transform)
	}
	if o.Workers < 0 {
		return configErrorf("workers >= 0", "workers=%d", o.Workers)
	}

	return nil
}

// withDefaults fills the zero-value fields that have a derived default.
func (o Options) withDefaults() Options {
	if o.DedupChallenges == 0 {
		o.DedupChallenges = o.ChallengeNum
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	o.Priorities = append([]float64(nil), o.Priorities...)

	return o
}
