package cmaes

import "math"

// Constants are the CMA-ES learning rates for one search dimension.
//
// With dimension n (challenge length + 1) and μ_w = 1/Σw²:
//
//	c_μ = μ_w / n²        rank-μ learning rate
//	c_1 = 2 / n²          rank-1 learning rate
//	c_c = c_σ = 4 / n     path cumulation rates
//	d_σ = 1 + √(μ_w / n)  step-size damping
type Constants struct {
	Dim    int
	MuW    float64
	CMu    float64
	C1     float64
	CC     float64
	CSigma float64
	DSigma float64
}

// NewConstants derives the learning rates for dim and priorities.
//
// Errors: ErrConfiguration if dim < 2, priorities is empty, or c_1 + c_μ > 1.
func NewConstants(dim int, priorities []float64) (Constants, error) {
	if dim < 2 {
		return Constants{}, configErrorf("challenge length >= 1", "dimension=%d", dim)
	}
	if len(priorities) == 0 {
		return Constants{}, configErrorf("len(priorities) == parent_size", "no priorities")
	}
	var (
		sq float64
		w  float64
	)
	for _, w = range priorities {
		sq += w * w
	}
	n := float64(dim)
	c := Constants{
		Dim:    dim,
		MuW:    1 / sq,
		C1:     2 / (n * n),
		CC:     4 / n,
		CSigma: 4 / n,
	}
	c.CMu = c.MuW / (n * n)
	c.DSigma = 1 + math.Sqrt(c.MuW/n)
	if c.C1+c.CMu > 1 {
		return Constants{}, configErrorf("c_1 + c_mu <= 1", "c_1=%.4g c_mu=%.4g dimension=%d", c.C1, c.CMu, dim)
	}

	return c, nil
}

// pathFactor is √(1 − (1 − c)²), the normalisation of a cumulation with rate c.
func pathFactor(c float64) float64 {
	return math.Sqrt(1 - (1-c)*(1-c))
}
