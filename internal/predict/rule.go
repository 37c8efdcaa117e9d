// Package predict estimates a per-stem gain in dB from acoustic
// features. The estimate is a bounded correction around a per-label
// baseline: quiet stems are lifted, loud ones cut, bright vocals pulled
// back and highly dynamic material compensated.
package predict

import (
	"math"

	"github.com/tphakala/go-stem-mixer/internal/features"
	"github.com/tphakala/go-stem-mixer/internal/mathutil"
)

// Gain bounds of every prediction, dB.
const (
	MinGainDB = -6.0
	MaxGainDB = 6.0
)

const (
	loudnessTarget = 0.5
	loudnessScale  = 10.0
	loudnessLimit  = 3.0

	brightnessPivot = 0.15
	brightnessScale = 5.0
	brightnessLimit = 2.0

	compressionPivot = 0.5
	compressionScale = 2.0
	compressionMin   = -2.0
	compressionMax   = 1.0

	// LabelVocals is the only label that receives the brightness term.
	LabelVocals = "vocals"
)

// baselines holds the starting gain per stem label. Unknown labels use
// defaultBaseline.
var baselines = map[string]float64{
	"drums":     -2.0,
	"bass":      -1.5,
	LabelVocals: 0.0,
	"synth":     -2.5,
}

const defaultBaseline = -1.5

// Baseline returns the starting gain for a stem label.
func Baseline(label string) float64 {
	if b, ok := baselines[label]; ok {
		return b
	}
	return defaultBaseline
}

// Compute applies the rule-based formula to a feature vector:
//
//	baseline(label)
//	+ clamp((0.5 - rms)·10, -3, 3)
//	+ clamp((centroid - 0.15)·5, -2, 2)     vocals only
//	+ clamp((0.5 - dynamic range)·2, -2, 1)
//
// clamped to [-6, 6]. Missing or NaN features contribute nothing, so the
// result is always a finite value in range.
func Compute(v features.Vector, label string) float64 {
	gain := Baseline(label)
	gain += term((loudnessTarget-v.RMS())*loudnessScale, -loudnessLimit, loudnessLimit)
	if label == LabelVocals {
		gain += term((v.Centroid()-brightnessPivot)*brightnessScale, -brightnessLimit, brightnessLimit)
	}
	gain += term((compressionPivot-v.DynamicRange())*compressionScale, compressionMin, compressionMax)
	return mathutil.Clamp(gain, MinGainDB, MaxGainDB)
}

func term(x, lo, hi float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	return mathutil.Clamp(x, lo, hi)
}
