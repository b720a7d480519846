package cmaes

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/katalvlaran/pufcma/matrix"
)

const (
	// symmetryRelTol is the accepted asymmetry of the covariance matrix
	// relative to its largest diagonal entry.
	symmetryRelTol = 1e-12

	// stallFactor gates the rank-1 path: path_c only receives the new
	// direction while ‖path_σ‖ < stallFactor·√dim.
	stallFactor = 1.5
)

// Distribution is the CMA-ES search distribution N(mean, σ²·C) together with
// its two evolution paths. Update never mutates its receiver; it returns the
// next state, so a Distribution can be shared read-only across goroutines.
//
// A state returned by Update carries the eigen-decomposition of its Cov, which
// Sample and the next Update reuse; treat that Cov as read-only. The state
// from NewDistribution decomposes Cov on demand, so it may be edited.
type Distribution struct {
	Mean  []float64
	Cov   *matrix.Dense
	Sigma float64
	PathC []float64
	PathS []float64

	spectrum *matrix.Spectrum // of Cov; nil until Update computes it
}

// Population is one generation. Chains[i] = Mean + Sigma·Steps[i] with
// Steps[i] ~ N(0, C).
type Population struct {
	Chains [][]float64
	Steps  [][]float64
}

// Len returns the number of individuals.
func (p *Population) Len() int { return len(p.Chains) }

// NewDistribution returns the initial state for dimension dim: zero mean,
// identity covariance, unit step size and zero paths.
func NewDistribution(dim int) (*Distribution, error) {
	if dim <= 0 {
		return nil, configErrorf("dimension > 0", "dimension=%d", dim)
	}
	cov, err := matrix.NewIdentity(dim)
	if err != nil {
		return nil, fmt.Errorf("new distribution: %w", err)
	}

	return &Distribution{
		Mean:  make([]float64, dim),
		Cov:   cov,
		Sigma: 1,
		PathC: make([]float64, dim),
		PathS: make([]float64, dim),
	}, nil
}

// Dim returns the search dimension.
func (d *Distribution) Dim() int { return len(d.Mean) }

// Sample draws popSize individuals x = mean + σ·B·z with z ~ N(0, I) and
// B = Q·diag(√λ) from C = Q·diag(λ)·Qᵀ, so that B·Bᵀ = C.
//
// Errors: ErrNumericalDegeneracy if C is not positive definite.
// Complexity: O(popSize·dim²), plus O(dim³) when C is not yet decomposed.
func (d *Distribution) Sample(rng *rand.Rand, popSize int) (*Population, error) {
	if popSize <= 0 {
		return nil, configErrorf("pop_size > 0", "pop_size=%d", popSize)
	}
	spec, err := d.decomposition()
	if err != nil {
		return nil, degenerate("sample", err)
	}
	dim := d.Dim()
	pop := &Population{
		Chains: make([][]float64, popSize),
		Steps:  make([][]float64, popSize),
	}
	z := make([]float64, dim)
	var (
		i, j int
		y, x []float64
	)
	for i = 0; i < popSize; i++ {
		for j = range z {
			z[j] = rng.NormFloat64()
		}
		if y, err = spec.MulSqrt(z); err != nil {
			return nil, fmt.Errorf("sample: %w", err)
		}
		x = make([]float64, dim)
		for j = range x {
			x[j] = d.Mean[j] + d.Sigma*y[j]
		}
		pop.Steps[i] = y
		pop.Chains[i] = x
	}

	return pop, nil
}

// Recombine returns the priority-weighted sum Σ wᵢ·ranked[i] over the first
// len(priorities) vectors of ranked (fittest first).
func Recombine(ranked [][]float64, priorities []float64) ([]float64, error) {
	if len(ranked) < len(priorities) || len(priorities) == 0 {
		return nil, configErrorf("parent_size <= pop_size", "%d ranked, %d priorities", len(ranked), len(priorities))
	}
	out := make([]float64, len(ranked[0]))
	var i int
	for i = range priorities {
		if err := matrix.Axpy(priorities[i], ranked[i], out); err != nil {
			return nil, fmt.Errorf("recombine: individual %d: %w", i, err)
		}
	}

	return out, nil
}

// RankMu returns the rank-μ matrix Σ wᵢ·yᵢ·yᵢᵀ over the first len(priorities)
// vectors of ranked. The result is exactly symmetric.
func RankMu(ranked [][]float64, priorities []float64) (*matrix.Dense, error) {
	if len(ranked) < len(priorities) || len(priorities) == 0 {
		return nil, configErrorf("parent_size <= pop_size", "%d ranked, %d priorities", len(ranked), len(priorities))
	}
	dim := len(ranked[0])
	m, err := matrix.NewDense(dim, dim)
	if err != nil {
		return nil, fmt.Errorf("rank-mu: %w", err)
	}
	var i int
	for i = range priorities {
		if err = m.AddOuter(priorities[i], ranked[i], ranked[i]); err != nil {
			return nil, fmt.Errorf("rank-mu: individual %d: %w", i, err)
		}
	}

	return m, nil
}

// Update returns the next distribution from the recombined step parent
// (Recombine over the ranked steps) and the rank-μ matrix cmMu (RankMu over
// the same ranking). All five stages read the receiver's pre-update state:
//
//  1. mean'  = mean + σ·parent
//  2. p_c'   = (1−c_c)·p_c + √(1−(1−c_c)²)·√μ_w·parent, the second term only
//     while ‖p_σ‖ < 1.5·√dim
//  3. p_σ'   = (1−c_σ)·p_σ + √(1−(1−c_σ)²)·√μ_w·C^(−1/2)·parent
//  4. C'     = (1−c_1−c_μ)·C + c_1·p_c'·p_c'ᵀ + c_μ·cmMu
//  5. σ'     = σ·exp((c_σ/d_σ)·(‖p_σ'‖/√dim − 1))
//
// parent and cmMu are built from the ranked steps yᵢ = (xᵢ − mean)/σ, not from
// the absolute individuals xᵢ; with absolute positions stage 1 would read
// mean' = (1+σ)·mean + … and the mean would grow geometrically.
//
// The returned state carries the eigen-decomposition of C', which is also the
// positive-definiteness check of the new covariance.
//
// Errors: ErrNumericalDegeneracy when C or C' is not positive definite, or when
// C' or σ' is not finite; ErrConfiguration on dimension mismatch.
// Complexity: O(dim³) for the one eigen-decomposition of C'.
func (d *Distribution) Update(parent []float64, cmMu *matrix.Dense, c Constants) (*Distribution, error) {
	dim := d.Dim()
	if len(parent) != dim || cmMu == nil || cmMu.Rows() != dim || cmMu.Cols() != dim || c.Dim != dim {
		return nil, configErrorf("fixed dimension", "dimension=%d parent=%d constants=%d", dim, len(parent), c.Dim)
	}
	sqrtMuW := math.Sqrt(c.MuW)
	sqrtDim := math.Sqrt(float64(dim))
	next := &Distribution{
		Mean:  make([]float64, dim),
		PathC: make([]float64, dim),
		PathS: make([]float64, dim),
	}
	var i int

	// 1. Mean.
	for i = range parent {
		next.Mean[i] = d.Mean[i] + d.Sigma*parent[i]
	}

	// 2. Rank-1 path with stall guard on the current step-size path.
	stalled := matrix.Norm2(d.PathS) >= stallFactor*sqrtDim
	injC := pathFactor(c.CC) * sqrtMuW
	for i = range parent {
		next.PathC[i] = (1 - c.CC) * d.PathC[i]
		if !stalled {
			next.PathC[i] += injC * parent[i]
		}
	}

	// 3. Step-size path through C^(−1/2) of the current covariance.
	spec, err := d.decomposition()
	if err != nil {
		return nil, degenerate("update", err)
	}
	white, err := spec.MulInvSqrt(parent)
	if err != nil {
		return nil, fmt.Errorf("update: %w", err)
	}
	injS := pathFactor(c.CSigma) * sqrtMuW
	for i = range white {
		next.PathS[i] = (1-c.CSigma)*d.PathS[i] + injS*white[i]
	}

	// 4. Covariance: decay, rank-1 and rank-μ. Each term is exactly symmetric.
	cov, err := matrix.Scale(d.Cov, 1-c.C1-c.CMu)
	if err != nil {
		return nil, fmt.Errorf("update: %w", err)
	}
	if err = cov.AddOuter(c.C1, next.PathC, next.PathC); err != nil {
		return nil, fmt.Errorf("update: %w", err)
	}
	if err = cov.AddScaled(c.CMu, cmMu); err != nil {
		return nil, fmt.Errorf("update: %w", err)
	}
	if !cov.IsFinite() {
		return nil, degenerate("update", matrix.ErrNaNInf)
	}
	if next.spectrum, err = matrix.NewSpectrum(cov, symmetryTolerance(cov)); err != nil {
		return nil, degenerate("update", err)
	}
	next.Cov = cov

	// 5. Step size.
	next.Sigma = d.Sigma * math.Exp((c.CSigma/c.DSigma)*(matrix.Norm2(next.PathS)/sqrtDim-1))
	if !(next.Sigma > 0) || math.IsInf(next.Sigma, 0) {
		return nil, degenerate("update", fmt.Errorf("step size %g: %w", next.Sigma, matrix.ErrNaNInf))
	}

	return next, nil
}

// decomposition returns the spectrum of Cov, computing it when the state does
// not carry one. The receiver is not modified.
func (d *Distribution) decomposition() (*matrix.Spectrum, error) {
	if d.spectrum != nil {
		return d.spectrum, nil
	}

	return matrix.NewSpectrum(d.Cov, symmetryTolerance(d.Cov))
}

// symmetryTolerance scales symmetryRelTol by the largest diagonal entry of c.
func symmetryTolerance(c *matrix.Dense) float64 {
	var (
		i    int
		v    float64
		peak float64
	)
	for i = 0; i < c.Rows(); i++ {
		v, _ = c.At(i, i)
		if math.Abs(v) > peak {
			peak = math.Abs(v)
		}
	}
	if peak == 0 {
		peak = 1
	}

	return symmetryRelTol * peak
}
