// Package simulation provides a noisy XOR arbiter PUF that stands in for
// physical hardware: every evaluation adds fresh Gaussian noise to each
// chain's delay difference before the XOR, so repeated queries of the same
// challenge can disagree. The noiseless part is an ltf.Array and is exposed
// for scoring learned models.
package simulation
