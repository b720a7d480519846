package ltf

import (
	"errors"
	"fmt"
	"strings"

	"github.com/katalvlaran/pufcma/matrix"
)

// Transform selects the mapping from challenge bits to chain features.
type Transform int

const (
	// Identity feeds challenge bits to the chain unchanged.
	Identity Transform = iota

	// ATF applies the arbiter-chain transform φ(c)ᵢ = Π_{j ≥ i} cⱼ.
	ATF
)

var (
	// ErrUnknownTransform is returned for a Transform value outside the known set.
	ErrUnknownTransform = errors.New("ltf: unknown input transform")

	// ErrDimensionMismatch is returned when challenge and weight lengths disagree.
	ErrDimensionMismatch = errors.New("ltf: dimension mismatch")

	// ErrEmptyBatch is returned when a batch contains no challenges.
	ErrEmptyBatch = errors.New("ltf: empty challenge batch")
)

// String returns the canonical lowercase name of t.
func (t Transform) String() string {
	switch t {
	case Identity:
		return "id"
	case ATF:
		return "atf"
	default:
		return fmt.Sprintf("Transform(%d)", int(t))
	}
}

// ParseTransform maps "id"/"identity" and "atf" (case-insensitive) to a Transform.
func ParseTransform(s string) (Transform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "id", "identity":
		return Identity, nil
	case "atf":
		return ATF, nil
	default:
		return 0, fmt.Errorf("%q: %w", s, ErrUnknownTransform)
	}
}

// Valid reports whether t is a known transform.
func (t Transform) Valid() bool { return t == Identity || t == ATF }

// Apply writes φ(c) into dst, which must have len(c) entries.
//
// ATF is computed as a suffix product from the last bit backwards.
// Complexity: O(n).
func (t Transform) Apply(c []int8, dst []float64) error {
	if len(dst) != len(c) {
		return fmt.Errorf("apply %s: len(dst)=%d len(c)=%d: %w", t, len(dst), len(c), ErrDimensionMismatch)
	}
	var i int
	switch t {
	case Identity:
		for i = range c {
			dst[i] = float64(c[i])
		}
	case ATF:
		acc := 1.0
		for i = len(c) - 1; i >= 0; i-- {
			acc *= float64(c[i])
			dst[i] = acc
		}
	default:
		return ErrUnknownTransform
	}

	return nil
}

// Features applies t to every challenge in batch and returns the
// len(batch) × n feature matrix, n = len(batch[0]).
//
// Errors: ErrEmptyBatch, ErrDimensionMismatch (ragged batch), ErrUnknownTransform.
// Complexity: O(n·len(batch)).
func Features(batch [][]int8, t Transform) (*matrix.Dense, error) {
	if len(batch) == 0 || len(batch[0]) == 0 {
		return nil, ErrEmptyBatch
	}
	if !t.Valid() {
		return nil, ErrUnknownTransform
	}
	n := len(batch[0])
	f, err := matrix.NewDense(len(batch), n)
	if err != nil {
		return nil, fmt.Errorf("features: %w", err)
	}
	row := make([]float64, n)
	var (
		i, j int
		c    []int8
	)
	for i, c = range batch {
		if err = t.Apply(c, row); err != nil {
			return nil, fmt.Errorf("features: challenge %d: %w", i, err)
		}
		for j = 0; j < n; j++ {
			// Entries are ±1, so Set cannot fail the NaN policy; bounds hold by construction.
			if err = f.Set(i, j, row[j]); err != nil {
				return nil, fmt.Errorf("features: %w", err)
			}
		}
	}

	return f, nil
}
