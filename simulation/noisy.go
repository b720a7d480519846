package simulation

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/katalvlaran/pufcma/challenge"
	"github.com/katalvlaran/pufcma/ltf"
)

var (
	// ErrInvalidShape is returned for non-positive n or k.
	ErrInvalidShape = errors.New("simulation: n and k must be positive")

	// ErrInvalidNoise is returned for a negative or non-finite noise level.
	ErrInvalidNoise = errors.New("simulation: noise must be finite and non-negative")
)

// DefaultWeightSigma is the standard deviation of the simulated chain weights.
const DefaultWeightSigma = 1.0

// NoiseSigma returns the delay noise standard deviation for a chain of
// length n: noisiness · √n · weightSigma. With weights ~ N(0, weightSigma²)
// a chain's delay has standard deviation √n · weightSigma, so noisiness is
// the noise-to-signal ratio.
func NoiseSigma(n int, weightSigma, noisiness float64) float64 {
	return noisiness * math.Sqrt(float64(n)) * weightSigma
}

// NoisyXOR is a k-chain XOR arbiter PUF with additive Gaussian delay noise.
// Eval is safe for concurrent use.
type NoisyXOR struct {
	model      *ltf.Array
	noiseSigma float64

	mu  sync.Mutex
	rng *rand.Rand // noise stream
}

// Stream ids of seed; kept clear of the ids cmaes uses so that an instance
// and an attack sharing a seed stay uncorrelated.
const (
	streamWeights uint64 = 100
	streamNoise   uint64 = 101
)

// New draws a random k-chain instance over challenges of length n with weights
// ~ N(0, DefaultWeightSigma²) from a sub-stream of seed. Noise is drawn
// from an independent stream.
func New(n, k int, transform ltf.Transform, noisiness float64, seed int64) (*NoisyXOR, error) {
	if n <= 0 || k <= 0 {
		return nil, fmt.Errorf("new n=%d k=%d: %w", n, k, ErrInvalidShape)
	}
	wrng := challenge.Stream(seed, streamWeights)
	weights := make([][]float64, k)
	var l, i int
	for l = 0; l < k; l++ {
		weights[l] = make([]float64, n)
		for i = 0; i < n; i++ {
			weights[l][i] = wrng.NormFloat64() * DefaultWeightSigma
		}
	}

	return FromWeights(weights, transform, NoiseSigma(n, DefaultWeightSigma, noisiness), challenge.Stream(seed, streamNoise))
}

// FromWeights builds an instance from explicit chain weights and an absolute
// noise standard deviation. rng drives the noise; nil selects the default stream.
func FromWeights(weights [][]float64, transform ltf.Transform, noiseSigma float64, rng *rand.Rand) (*NoisyXOR, error) {
	if math.IsNaN(noiseSigma) || math.IsInf(noiseSigma, 0) || noiseSigma < 0 {
		return nil, fmt.Errorf("noise sigma %g: %w", noiseSigma, ErrInvalidNoise)
	}
	model, err := ltf.NewArray(weights, transform)
	if err != nil {
		return nil, fmt.Errorf("simulation: %w", err)
	}
	if rng == nil {
		rng = challenge.FromSeed(0)
	}

	return &NoisyXOR{model: model, noiseSigma: noiseSigma, rng: rng}, nil
}

// N returns the challenge length.
func (p *NoisyXOR) N() int { return p.model.N() }

// K returns the number of chains.
func (p *NoisyXOR) K() int { return p.model.K() }

// NoiseSigma returns the per-chain delay noise standard deviation.
func (p *NoisyXOR) NoiseSigma() float64 { return p.noiseSigma }

// Noiseless returns the underlying noise-free XOR arbiter PUF.
func (p *NoisyXOR) Noiseless() *ltf.Array { return p.model }

// Eval answers every challenge in batch with fresh noise on every chain.
//
// Complexity: O(k·n·len(batch)).
func (p *NoisyXOR) Eval(batch [][]int8) ([]int8, error) {
	if len(batch) > 0 && len(batch[0]) != p.N() {
		return nil, fmt.Errorf("eval: challenge length %d, want %d: %w", len(batch[0]), p.N(), ltf.ErrDimensionMismatch)
	}
	f, err := ltf.Features(batch, p.model.Transform())
	if err != nil {
		return nil, fmt.Errorf("eval: %w", err)
	}
	weights := p.model.Weights()

	var (
		l, i  int
		prod  []float64
		delay []float64
	)
	prod = make([]float64, len(batch))
	for i = range prod {
		prod[i] = 1
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for l = range weights {
		if delay, err = ltf.Delays(f, weights[l]); err != nil {
			return nil, fmt.Errorf("eval: chain %d: %w", l, err)
		}
		if p.noiseSigma > 0 {
			for i = range delay {
				delay[i] += p.rng.NormFloat64() * p.noiseSigma
			}
		}
		for i = range prod {
			prod[i] *= delay[i]
		}
	}

	return ltf.Signs(prod), nil
}
