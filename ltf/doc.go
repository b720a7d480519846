// Package ltf models arbiter PUF chains as linear threshold functions and
// combines k of them into an XOR arbiter PUF.
//
// A chain of length n is a weight vector w ∈ ℝⁿ. For a challenge c ∈ {−1,+1}ⁿ
// the chain's delay difference is Δ(c) = ⟨w, φ(c)⟩, where φ is the input
// transform:
//
//	Identity   φ(c)ᵢ = cᵢ
//	ATF        φ(c)ᵢ = Π_{j ≥ i} cⱼ     (additive delay model of an arbiter chain)
//
// An Array of k chains answers sign(Π_l Δ_l(c)) ∈ {−1,+1}, the XOR of the
// individual chain responses. Array is the model type returned by the attack.
//
// Batch evaluation goes through Features: φ is applied once per challenge into
// a challenge_num × n matrix, and every chain's delays are one MatVec away.
package ltf
