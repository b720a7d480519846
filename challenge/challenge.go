package challenge

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
)

var (
	// ErrInvalidLength is returned when a challenge length or batch size is not positive,
	// or a challenge does not have the expected length.
	ErrInvalidLength = errors.New("challenge: invalid length")

	// ErrInvalidBit is returned when a challenge entry is neither −1 nor +1.
	ErrInvalidBit = errors.New("challenge: entries must be -1 or +1")
)

// Sample draws count challenges of length n, each bit uniform over {−1, +1}.
//
// Errors: ErrInvalidLength if n ≤ 0 or count ≤ 0.
// Complexity: O(n·count).
func Sample(rng *rand.Rand, n, count int) ([][]int8, error) {
	if n <= 0 || count <= 0 {
		return nil, fmt.Errorf("sample n=%d count=%d: %w", n, count, ErrInvalidLength)
	}
	if rng == nil {
		rng = FromSeed(0)
	}
	// One backing array keeps the batch contiguous.
	flat := make([]int8, n*count)
	out := make([][]int8, count)
	var (
		i, j int
		bits int64
		left int
	)
	for i = 0; i < count; i++ {
		row := flat[i*n : (i+1)*n : (i+1)*n]
		for j = 0; j < n; j++ {
			if left == 0 {
				bits, left = rng.Int63(), 63
			}
			if bits&1 == 1 {
				row[j] = 1
			} else {
				row[j] = -1
			}
			bits >>= 1
			left--
		}
		out[i] = row
	}

	return out, nil
}

// Validate checks that every challenge in batch has length n and ±1 entries.
//
// Complexity: O(n·len(batch)).
func Validate(batch [][]int8, n int) error {
	var (
		i, j int
		c    []int8
	)
	for i, c = range batch {
		if len(c) != n {
			return fmt.Errorf("challenge %d has length %d, want %d: %w", i, len(c), n, ErrInvalidLength)
		}
		for j = range c {
			if c[j] != 1 && c[j] != -1 {
				return fmt.Errorf("challenge %d bit %d = %d: %w", i, j, c[j], ErrInvalidBit)
			}
		}
	}

	return nil
}

// Source is a goroutine-safe challenge generator for a fixed length n.
type Source struct {
	mu  sync.Mutex
	rng *rand.Rand
	n   int
}

// NewSource returns a Source producing challenges of length n from rng.
// The Source takes ownership of rng.
func NewSource(rng *rand.Rand, n int) (*Source, error) {
	if n <= 0 {
		return nil, fmt.Errorf("source n=%d: %w", n, ErrInvalidLength)
	}
	if rng == nil {
		rng = FromSeed(0)
	}

	return &Source{rng: rng, n: n}, nil
}

// N returns the challenge length.
func (s *Source) N() int { return s.n }

// Next draws a fresh batch of count challenges.
func (s *Source) Next(count int) ([][]int8, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Sample(s.rng, s.n, count)
}
