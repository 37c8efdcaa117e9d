// Package filter provides the filter design used by the mixer: window
// functions for the resampler and the feature extractor, and Butterworth
// IIR filters applied zero-phase for the effects stage.
package filter

import (
	"math"

	"github.com/tphakala/go-stem-mixer/internal/mathutil"
)

const (
	windowNormalizationFactor = 2.0
	hannHalf                  = 0.5
)

// KaiserWindow generates a Kaiser window of the specified length and β parameter.
//
// The Kaiser window trades main lobe width against sidelobe level through
// a single parameter. β is typically 0-15; higher values give more
// stopband attenuation and a wider main lobe.
//
// The window is symmetric, w[i] = w[length-1-i], and peaks at 1.0 in the
// centre.
func KaiserWindow(length int, beta float64) []float64 {
	if length < 1 {
		return []float64{}
	}

	window := make([]float64, length)
	if length == 1 {
		window[0] = 1.0
		return window
	}

	// w[n] = I₀(β·sqrt(1 - ((n - α)/α)²)) / I₀(β), α = (N-1)/2
	alpha := float64(length-1) / windowNormalizationFactor
	i0Beta := mathutil.BesselI0(beta)

	for n := range length {
		x := (float64(n) - alpha) / alpha
		window[n] = mathutil.BesselI0(beta*math.Sqrt(math.Max(0, 1.0-x*x))) / i0Beta
	}

	return window
}

// HannWindow generates a Hann window of the given length.
//
// A periodic window (denominator N) is the one used for STFT analysis, as
// successive frames then overlap-add to a constant. A symmetric window
// (denominator N-1) is the classic filter-design form.
func HannWindow(length int, periodic bool) []float64 {
	if length < 1 {
		return []float64{}
	}

	window := make([]float64, length)
	if length == 1 {
		window[0] = 1.0
		return window
	}

	denom := float64(length - 1)
	if periodic {
		denom = float64(length)
	}
	for n := range length {
		window[n] = hannHalf - hannHalf*math.Cos(2*math.Pi*float64(n)/denom)
	}
	return window
}
