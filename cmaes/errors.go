package cmaes

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is returned by NewLearner and NewConstants when the
	// parameters violate an invariant. The wrapped message names the invariant.
	ErrConfiguration = errors.New("cmaes: invalid configuration")

	// ErrNumericalDegeneracy is returned when the covariance matrix loses
	// positive-definiteness or its eigen-decomposition fails.
	ErrNumericalDegeneracy = errors.New("cmaes: numerical degeneracy")

	// ErrSearchExhausted is returned when a caller-imposed bound on generations
	// or chain-search attempts is exceeded.
	ErrSearchExhausted = errors.New("cmaes: search exhausted")

	// ErrNilInstance is returned when no target instance is supplied.
	ErrNilInstance = errors.New("cmaes: nil instance")
)

// ExhaustedError reports a search that hit its bound without converging.
type ExhaustedError struct {
	// Generations run by the last search.
	Generations int
	// Attempts is the number of chain searches started by the Learner
	// (0 when returned by a single Search).
	Attempts int
	// BestFitness seen by the last search.
	BestFitness float64
}

// Error implements error.
func (e *ExhaustedError) Error() string {
	if e.Attempts > 0 {
		return fmt.Sprintf("%s after %d attempts (last search: %d generations, best fitness %.4f)",
			ErrSearchExhausted, e.Attempts, e.Generations, e.BestFitness)
	}

	return fmt.Sprintf("%s after %d generations (best fitness %.4f)", ErrSearchExhausted, e.Generations, e.BestFitness)
}

// Unwrap lets errors.Is match ErrSearchExhausted.
func (e *ExhaustedError) Unwrap() error { return ErrSearchExhausted }

// configErrorf wraps ErrConfiguration with the violated invariant.
func configErrorf(invariant, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrConfiguration, invariant, fmt.Sprintf(format, args...))
}

// degenerate wraps a matrix failure as ErrNumericalDegeneracy, keeping the cause matchable.
func degenerate(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrNumericalDegeneracy, err)
}
