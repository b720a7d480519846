package cmaes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/katalvlaran/pufcma/challenge"
	"github.com/katalvlaran/pufcma/ltf"
)

// streamPolarity feeds the dedup and polarity batches.
const streamPolarity uint64 = 3

// Result is the outcome of Learn.
type Result struct {
	// Model is the XOR of the learned chains, thresholds dropped.
	Model *ltf.Array
	// Chains are the accepted chains (weights followed by ε) after the
	// polarity fix, in acceptance order.
	Chains [][]float64
	// Searches is the number of chain searches run, accepted or not.
	Searches int
	// Duplicates is the number of searches rejected by IsDistinct.
	Duplicates int
	// Generations summed over all searches.
	Generations int
	// PolarityFlipped reports whether the first chain was negated.
	PolarityFlipped bool
}

// Learner recovers the chains of an XOR arbiter PUF from its reliability.
type Learner struct {
	inst   Instance
	opts   Options
	search *Search
	source *challenge.Source
	log    *slog.Logger
}

// NewLearner validates opts against inst. No sampling happens before every
// invariant has been checked.
//
// Errors: ErrNilInstance, ErrConfiguration (the message names the invariant).
func NewLearner(inst Instance, opts Options) (*Learner, error) {
	search, err := NewSearch(inst, opts)
	if err != nil {
		return nil, err
	}
	opts = search.opts
	source, err := challenge.NewSource(challenge.Stream(opts.Seed, streamPolarity), inst.N())
	if err != nil {
		return nil, fmt.Errorf("new learner: %w", err)
	}

	return &Learner{
		inst:   inst,
		opts:   opts,
		search: search,
		source: source,
		log:    opts.Logger,
	}, nil
}

// Learn runs chain searches until K functionally distinct chains are found,
// fixes the overall polarity against the instance and returns the model.
//
// A search that exhausts MaxGenerations or degenerates ends Learn with that
// error; duplicates are retried until MaxAttempts searches have run.
func (l *Learner) Learn(ctx context.Context) (*Result, error) {
	k := l.inst.K()
	ctx, span := startLearnSpan(ctx, l.inst.N(), k, l.opts)
	defer span.End()

	res := &Result{Chains: make([][]float64, 0, k)}
	fail := func(err error) (*Result, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return res, err
	}
	var (
		last     SearchResult
		err      error
		distinct bool
		batch    [][]int8
	)
	for len(res.Chains) < k {
		if l.opts.MaxAttempts > 0 && res.Searches >= l.opts.MaxAttempts {
			err = &ExhaustedError{Generations: last.Generations, Attempts: res.Searches, BestFitness: last.Fitness}
			l.log.Warn("chain search attempts exhausted",
				slog.Int("attempts", res.Searches),
				slog.Int("accepted", len(res.Chains)))
			return fail(err)
		}
		res.Searches++

		sctx, sspan := startSearchSpan(ctx, res.Searches, len(res.Chains))
		last, err = l.search.Run(sctx)
		res.Generations += last.Generations
		if err == nil {
			if batch, err = l.source.Next(l.opts.DedupChallenges); err == nil {
				distinct, err = IsDistinct(last.Chain, res.Chains, batch, l.opts.Transform)
			}
		}
		if err != nil {
			endSearch(ctx, sspan, last, searchOutcome(err), err)
			return fail(fmt.Errorf("chain search %d: %w", res.Searches, err))
		}

		outcome := outcomeAccepted
		if distinct {
			res.Chains = append(res.Chains, last.Chain)
		} else {
			outcome = outcomeDuplicate
			res.Duplicates++
		}
		endSearch(ctx, sspan, last, outcome, nil)
		l.log.Info("chain search finished",
			slog.String("outcome", outcome),
			slog.Int("attempt", res.Searches),
			slog.Int("accepted", len(res.Chains)),
			slog.Int("generations", last.Generations),
			slog.Float64("fitness", last.Fitness))
	}

	if batch, err = l.source.Next(l.opts.PolarityChallenges); err != nil {
		return fail(fmt.Errorf("polarity: %w", err))
	}
	fixed, flipped, err := FixPolarity(l.inst, res.Chains, batch, l.opts.Transform)
	if err != nil {
		return fail(err)
	}
	res.Chains, res.PolarityFlipped = fixed, flipped
	if res.Model, err = ltf.NewArray(dropThresholds(res.Chains), l.opts.Transform); err != nil {
		return fail(fmt.Errorf("model: %w", err))
	}
	span.SetAttributes(
		attribute.Int("cmaes.searches", res.Searches),
		attribute.Int("cmaes.duplicates", res.Duplicates),
		attribute.Int("cmaes.generations", res.Generations),
		attribute.Bool("cmaes.polarity_flipped", res.PolarityFlipped),
	)
	l.log.Info("attack finished",
		slog.Int("chains", len(res.Chains)),
		slog.Int("searches", res.Searches),
		slog.Int("duplicates", res.Duplicates),
		slog.Bool("polarity_flipped", res.PolarityFlipped))

	return res, nil
}

// Learn is a one-shot wrapper around NewLearner and Learner.Learn that
// returns only the model.
func Learn(ctx context.Context, inst Instance, opts Options) (*ltf.Array, error) {
	l, err := NewLearner(inst, opts)
	if err != nil {
		return nil, err
	}
	res, err := l.Learn(ctx)
	if err != nil {
		return nil, err
	}

	return res.Model, nil
}

// FixPolarity compares the XOR of chains with inst on batch. If more than half
// of the responses disagree, it returns a copy of chains with the first chain
// negated: flipping one chain flips every XOR response.
func FixPolarity(inst Instance, chains [][]float64, batch [][]int8, t ltf.Transform) ([][]float64, bool, error) {
	if len(chains) == 0 {
		return nil, false, fmt.Errorf("polarity: %w", ltf.ErrNoChains)
	}
	model, err := ltf.NewArray(dropThresholds(chains), t)
	if err != nil {
		return nil, false, fmt.Errorf("polarity: %w", err)
	}
	got, err := model.Eval(batch)
	if err != nil {
		return nil, false, fmt.Errorf("polarity: model: %w", err)
	}
	want, err := inst.Eval(batch)
	if err != nil {
		return nil, false, fmt.Errorf("polarity: instance: %w", err)
	}
	frac, err := ltf.Disagreement(got, want)
	if err != nil {
		return nil, false, fmt.Errorf("polarity: %w", err)
	}

	out := make([][]float64, len(chains))
	var i int
	for i = range chains {
		out[i] = append([]float64(nil), chains[i]...)
	}
	if frac <= 0.5 {
		return out, false, nil
	}
	for i = range out[0] {
		out[0][i] = -out[0][i]
	}

	return out, true, nil
}

// dropThresholds strips the trailing ε of every chain.
func dropThresholds(chains [][]float64) [][]float64 {
	out := make([][]float64, len(chains))
	var i int
	for i = range chains {
		out[i] = chains[i][:len(chains[i])-1]
	}

	return out
}

// searchOutcome classifies a failed search for spans and metrics.
func searchOutcome(err error) string {
	switch {
	case errors.Is(err, ErrSearchExhausted):
		return outcomeExhausted
	case errors.Is(err, ErrNumericalDegeneracy):
		return outcomeDegenerate
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return outcomeCanceled
	default:
		return "error"
	}
}
