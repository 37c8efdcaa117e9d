// Package mathutil provides the numeric helpers shared by the mixing
// pipeline: Bessel/Kaiser window maths for the resampler and level
// conversions for the effects and predictor stages.
package mathutil

import (
	"math"
)

// BesselI0 computes the modified Bessel function of the first kind, order zero: I₀(x).
// It drives the Kaiser window used by the sinc resampler.
//
// Polynomial approximations from Abramowitz & Stegun 9.8.1 and 9.8.2:
//   - |x| < 3.75: power series in (x/3.75)²
//   - otherwise: exponentially scaled expansion in 3.75/|x|
//
// Relative accuracy is about 1e-7, well below the quantization floor of
// 24-bit audio.
func BesselI0(x float64) float64 {
	ax := math.Abs(x)

	if ax < besselSmallArgThreshold {
		t := x / besselSmallArgThreshold
		t *= t
		return 1.0 + t*(besselI0Coeff1+t*(besselI0Coeff2+t*(besselI0Coeff3+
			t*(besselI0Coeff4+t*(besselI0Coeff5+t*besselI0Coeff6)))))
	}

	t := besselSmallArgThreshold / ax
	poly := besselI0AsympCoeff0 + t*(besselI0AsympCoeff1+t*(besselI0AsympCoeff2+
		t*(besselI0AsympCoeff3+t*(besselI0AsympCoeff4+t*(besselI0AsympCoeff5+
			t*(besselI0AsympCoeff6+t*(besselI0AsympCoeff7+t*besselI0AsympCoeff8)))))))

	return math.Exp(ax) * poly / math.Sqrt(ax)
}

// KaiserBeta returns the Kaiser window β that achieves the requested
// stopband attenuation in dB (Kaiser & Schafer empirical formula).
// Attenuations below 21 dB need no shaping and return 0.
func KaiserBeta(attenuation float64) float64 {
	switch {
	case attenuation > kaiserAttHigh:
		return kaiserBetaHighCoeff * (attenuation - kaiserBetaHighOffset)
	case attenuation >= kaiserAttMedium:
		delta := attenuation - kaiserAttMedium
		return kaiserBetaMediumCoeff1*math.Pow(delta, kaiserBetaMediumPower) + kaiserBetaMediumCoeff2*delta
	default:
		return 0
	}
}

// Sinc is the normalized sinc function sin(πx)/(πx), with Sinc(0) = 1.
func Sinc(x float64) float64 {
	if math.Abs(x) < sincZeroThreshold {
		return 1.0
	}
	px := math.Pi * x
	return math.Sin(px) / px
}
