package cmaes

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestEndSearch(t *testing.T) {
	t.Parallel()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	tr := tp.Tracer("test")
	ctx := context.Background()
	res := SearchResult{Fitness: 0.42, Generations: 7}

	_, accepted := tr.Start(ctx, "accepted")
	endSearch(ctx, accepted, res, outcomeDuplicate, nil)

	failure := fmt.Errorf("dedup: %w", ErrConfiguration)
	_, failed := tr.Start(ctx, "failed")
	endSearch(ctx, failed, res, searchOutcome(failure), failure)

	ended := sr.Ended()
	require.Len(t, ended, 2)

	attrs := func(s sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
		m := make(map[attribute.Key]attribute.Value)
		for _, kv := range s.Attributes() {
			m[kv.Key] = kv.Value
		}
		return m
	}

	first := attrs(ended[0])
	require.Equal(t, outcomeDuplicate, first["cmaes.outcome"].AsString())
	require.Equal(t, int64(7), first["cmaes.generations"].AsInt64())
	require.Equal(t, codes.Unset, ended[0].Status().Code)
	require.Empty(t, ended[0].Events())

	second := attrs(ended[1])
	require.Equal(t, "error", second["cmaes.outcome"].AsString())
	require.Equal(t, codes.Error, ended[1].Status().Code)
	require.Equal(t, failure.Error(), ended[1].Status().Description)
	require.Len(t, ended[1].Events(), 1)
	require.Equal(t, "exception", ended[1].Events()[0].Name)
}

func TestSearchOutcome(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{&ExhaustedError{Generations: 3}, outcomeExhausted},
		{degenerate("update", ErrConfiguration), outcomeDegenerate},
		{fmt.Errorf("search: %w", context.Canceled), outcomeCanceled},
		{context.DeadlineExceeded, outcomeCanceled},
		{ErrConfiguration, "error"},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, searchOutcome(tc.err), "%v", tc.err)
	}
}
