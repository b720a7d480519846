package cmaes

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for the attack.
var (
	tracer = otel.Tracer("pufcma.cmaes")
	meter  = otel.Meter("pufcma.cmaes")
)

// Search outcomes recorded on spans and metrics.
const (
	outcomeAccepted   = "accepted"
	outcomeDuplicate  = "duplicate"
	outcomeExhausted  = "exhausted"
	outcomeDegenerate = "degenerate"
	outcomeCanceled   = "canceled"
)

// Metrics for chain searches.
var (
	generationsTotal metric.Int64Counter
	searchesTotal    metric.Int64Counter
	bestFitness      metric.Float64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		generationsTotal, err = meter.Int64Counter(
			"cmaes_generations_total",
			metric.WithDescription("Total number of CMA-ES generations evaluated"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		searchesTotal, err = meter.Int64Counter(
			"cmaes_chain_searches_total",
			metric.WithDescription("Total number of chain searches by outcome"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		bestFitness, err = meter.Float64Histogram(
			"cmaes_best_fitness",
			metric.WithDescription("Best fitness reached by a chain search"),
			metric.WithExplicitBucketBoundaries(-0.5, 0, 0.25, 0.5, 0.6, 0.7, 0.8, 0.9, 0.95, 1),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// startLearnSpan creates the root span of a Learn call.
func startLearnSpan(ctx context.Context, n, k int, o Options) (context.Context, trace.Span) {
	return tracer.Start(ctx, "cmaes.Learn",
		trace.WithAttributes(
			attribute.Int("puf.n", n),
			attribute.Int("puf.k", k),
			attribute.Int("cmaes.pop_size", o.PopSize),
			attribute.Int("cmaes.parent_size", o.ParentSize),
			attribute.Int("cmaes.challenge_num", o.ChallengeNum),
			attribute.Int("cmaes.repeat", o.Repeat),
			attribute.Float64("cmaes.unreliability", o.Unreliability),
			attribute.Float64("cmaes.precision", o.Precision),
			attribute.String("cmaes.transform", o.Transform.String()),
		),
	)
}

// startSearchSpan creates a span for one chain search.
func startSearchSpan(ctx context.Context, attempt, accepted int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "cmaes.Search",
		trace.WithAttributes(
			attribute.Int("cmaes.attempt", attempt),
			attribute.Int("cmaes.chains_accepted", accepted),
		),
	)
}

// setSearchSpanResult sets the result attributes on a search span.
func setSearchSpanResult(span trace.Span, res SearchResult, outcome string) {
	span.SetAttributes(
		attribute.Int("cmaes.generations", res.Generations),
		attribute.Float64("cmaes.best_fitness", res.Fitness),
		attribute.String("cmaes.outcome", outcome),
	)
}

// endSearch closes a search span with its outcome and, for a failed search,
// the error, then records the search metrics.
func endSearch(ctx context.Context, span trace.Span, res SearchResult, outcome string, err error) {
	setSearchSpanResult(span, res, outcome)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
	recordSearch(ctx, outcome, res.Fitness)
}

// recordGeneration counts one evaluated generation.
func recordGeneration(ctx context.Context) {
	if err := initMetrics(); err != nil {
		return
	}
	generationsTotal.Add(ctx, 1)
}

// recordSearch records the outcome of one chain search.
func recordSearch(ctx context.Context, outcome string, fitness float64) {
	if err := initMetrics(); err != nil {
		return
	}
	searchesTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
	bestFitness.Record(ctx, fitness)
}
