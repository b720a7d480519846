// Package pufcma models XOR arbiter PUFs from response reliability.
//
// An arbiter PUF answers a ±1 challenge with the sign of a linear delay
// difference; a k-XOR PUF multiplies k such chains. Noise flips responses for
// challenges close to a chain's decision boundary, and repeated queries
// expose that unstable set chain by chain. pufcma recovers the chains with a
// covariance matrix adaptation evolution strategy (CMA-ES).
//
// Packages:
//
//	matrix/      — dense matrices, gonum-backed eigen-decomposition, Spectrum, Pearson
//	challenge/   — seeded random ±1 challenge batches and derived RNG streams
//	ltf/         — linear threshold functions, feature transforms, XOR arrays
//	simulation/  — noisy XOR arbiter PUF for experiments and tests
//	cmaes/       — the attack: options, distribution, fitness, search, learner
//	cmd/pufcma   — CLI running a simulated attack from YAML configuration
//
// Quick start:
//
//	token, _ := simulation.New(16, 1, ltf.ATF, 0.3, 1)
//	opts := cmaes.DefaultOptions()
//	opts.Precision = 0.7
//	model, err := cmaes.Learn(ctx, token, opts)
//
// See examples/ for a complete 2-XOR scenario.
package pufcma
