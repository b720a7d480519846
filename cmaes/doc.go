// Package cmaes implements the reliability-based CMA-ES attack on XOR arbiter
// PUFs.
//
// The attacker queries a noisy PUF repeatedly on the same challenges and
// records how stable each answer is. Challenges close to a chain's decision
// boundary flip under noise, so the measured reliability pattern leaks the
// chain's weights. A covariance-matrix-adaptation evolution strategy searches
// for a weight vector (plus a threshold ε) whose predicted unstable set
// |Δ(c)| ≤ |ε| correlates best with the measured pattern. Each successful
// search yields one chain; the Learner repeats searches until it holds k
// functionally distinct chains, fixes the overall polarity and returns an
// ltf.Array model.
//
// Components:
//
//	Options       attack parameters, validated before any sampling.
//	Constants     CMA-ES learning rates derived from dimension and priorities.
//	Distribution  mean, covariance, step size and the two evolution paths.
//	Evaluator     correlation fitness of a population, parallel across workers.
//	Search        one chain search, generation by generation.
//	IsDistinct    functional deduplication of learned chains.
//	Learner       the orchestrator: search, deduplicate, fix polarity.
//
// Termination:
//
// A search runs until some individual's fitness exceeds Options.Precision.
// MaxGenerations and MaxAttempts bound the work when non-zero, and ctx
// cancellation is checked once per generation. Hitting a bound returns an
// *ExhaustedError that matches ErrSearchExhausted.
//
// Determinism:
//
// All random draws happen on the orchestrating goroutine from streams derived
// from Options.Seed, so a fixed seed and a deterministic instance reproduce a
// run exactly regardless of Options.Workers.
package cmaes
