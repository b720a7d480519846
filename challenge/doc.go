// Package challenge generates the ±1 challenge vectors fed to arbiter PUFs and
// owns the deterministic random streams the attack draws from.
//
// A challenge of length n is a []int8 whose entries are all −1 or +1. Batches
// are [][]int8 with one challenge per row.
//
// Determinism:
//   - FromSeed(0) maps to a fixed default seed; any other seed is used verbatim.
//   - Stream(seed, id) gives each consumer its own sub-stream, so the sampler,
//     the oracle noise and the challenge source never share state.
//
// Concurrency:
//   - math/rand.Rand is NOT goroutine-safe. Source serializes access with a mutex;
//     raw *rand.Rand values returned by FromSeed and Stream must not be shared.
package challenge
