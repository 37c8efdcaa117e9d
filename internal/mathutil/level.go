package mathutil

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// DBToLinear converts an amplitude ratio in decibels to a linear factor.
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/amplitudeDBFactor)
}

// LinearToDB converts a linear amplitude factor to decibels.
// Non-positive inputs map to -Inf.
func LinearToDB(v float64) float64 {
	if v <= 0 {
		return math.Inf(-1)
	}
	return amplitudeDBFactor * math.Log10(v)
}

// PowerToDB converts a power value to decibels relative to ref, flooring
// both at amin so silence stays finite.
func PowerToDB(p, ref, amin float64) float64 {
	return powerDBFactor*math.Log10(math.Max(amin, p)) - powerDBFactor*math.Log10(math.Max(amin, ref))
}

// Clamp limits v to [lo, hi]. NaN is returned unchanged.
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Mean returns the arithmetic mean of x, or 0 for an empty slice.
func Mean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return stat.Mean(x, nil)
}

// StdDev returns the population standard deviation of x (divisor N).
func StdDev(x []float64) float64 {
	n := len(x)
	if n < 2 {
		return 0
	}
	// stat.MeanVariance is the unbiased estimator; rescale to N.
	_, variance := stat.MeanVariance(x, nil)
	return math.Sqrt(variance * float64(n-1) / float64(n))
}
