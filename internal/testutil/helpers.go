// Package testutil provides reusable test helpers for the mixer packages:
// tolerance assertions, deterministic test signals and WAV fixtures.
package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Tolerances shared by the package tests.
const (
	DefaultTolerance = 1e-10
	SampleTolerance  = 1e-9
	DBTolerance      = 0.01
)

// AssertNoNaNOrInf fails on the first non-finite sample.
func AssertNoNaNOrInf(t testing.TB, s []float64, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return assert.Fail(t, "non-finite sample", "sample %d is %v", i, v)
		}
	}
	return true
}

// AssertAllInRange fails on the first sample outside [minVal, maxVal].
func AssertAllInRange(t testing.TB, s []float64, minVal, maxVal float64, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if v < minVal || v > maxVal {
			return assert.Fail(t, "value out of range",
				"sample %d = %g not in [%g, %g]", i, v, minVal, maxVal)
		}
	}
	return true
}

// CopyChannels returns a deep copy of per-channel sample slices.
func CopyChannels(channels [][]float64) [][]float64 {
	out := make([][]float64, len(channels))
	for ch, data := range channels {
		out[ch] = append([]float64(nil), data...)
	}
	return out
}

// AssertSlicesInDelta verifies two slices have equal length and agree
// element-wise within tolerance. Only the first mismatch is reported.
func AssertSlicesInDelta(t testing.TB, expected, actual []float64, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	if !assert.Len(t, actual, len(expected), msgAndArgs...) {
		return false
	}
	for i := range expected {
		if math.Abs(expected[i]-actual[i]) > tolerance {
			return assert.Fail(t, "slices differ",
				"index %d: expected %g, got %g (tolerance %g)", i, expected[i], actual[i], tolerance)
		}
	}
	return true
}

// AssertRelativeError compares |actual-expected|/|expected| against
// tolerance, falling back to an absolute delta when expected is zero.
func AssertRelativeError(t testing.TB, expected, actual, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	if expected == 0 {
		return assert.InDelta(t, expected, actual, tolerance, msgAndArgs...)
	}
	relError := math.Abs(actual-expected) / math.Abs(expected)
	return assert.LessOrEqual(t, relError, tolerance,
		"relative error %e exceeds tolerance %e (expected=%f, actual=%f)",
		relError, tolerance, expected, actual)
}

// AssertInRange checks minVal <= value <= maxVal.
func AssertInRange(t testing.TB, value, minVal, maxVal float64, msgAndArgs ...any) bool {
	t.Helper()
	if value < minVal || value > maxVal {
		return assert.Fail(t, "value out of range",
			"%g not in [%g, %g]", value, minVal, maxVal)
	}
	return true
}

// Peak returns the maximum absolute value of s.
func Peak(s []float64) float64 {
	var peak float64
	for _, v := range s {
		peak = math.Max(peak, math.Abs(v))
	}
	return peak
}

// RMS returns the root-mean-square level of s.
func RMS(s []float64) float64 {
	if len(s) == 0 {
		return 0
	}
	var sum float64
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(s)))
}
