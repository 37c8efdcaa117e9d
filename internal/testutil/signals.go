package testutil

import (
	"math"
	"math/rand/v2"
)

// Sine generates n samples of a sine wave at freq Hz with the given amplitude.
func Sine(n int, freq, amplitude float64, sampleRate int) []float64 {
	out := make([]float64, n)
	step := 2 * math.Pi * freq / float64(sampleRate)
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// Constant generates n samples of value v.
func Constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// Noise generates n samples of uniform white noise in [-amplitude, amplitude].
// The same seed always yields the same samples.
func Noise(n int, amplitude float64, seed uint64) []float64 {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]float64, n)
	for i := range out {
		out[i] = amplitude * (2*rng.Float64() - 1)
	}
	return out
}
