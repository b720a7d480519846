package challenge

import "math/rand"

// defaultSeed replaces a zero seed so that the zero Options value is still
// reproducible.
const defaultSeed int64 = 1

// golden is the SplitMix64 increment (2^64 / φ).
const golden uint64 = 0x9e3779b97f4a7c15

// FromSeed returns a stream seeded with seed, or with the default seed when
// seed is 0.
func FromSeed(seed int64) *rand.Rand {
	if seed == 0 {
		seed = defaultSeed
	}
	return rand.New(rand.NewSource(seed))
}

// StreamSeed maps (seed, id) to the seed of sub-stream id. Distinct ids of
// the same seed land far apart in seed space.
func StreamSeed(seed int64, id uint64) int64 {
	if seed == 0 {
		seed = defaultSeed
	}
	return int64(splitmix64(uint64(seed) + golden*(id+1)))
}

// Stream returns sub-stream id of seed. It depends only on its arguments, so
// callers may create streams in any order.
func Stream(seed int64, id uint64) *rand.Rand {
	return rand.New(rand.NewSource(StreamSeed(seed, id)))
}

// splitmix64 is the SplitMix64 output function.
func splitmix64(z uint64) uint64 {
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
