package mixer

import (
	"github.com/tphakala/go-stem-mixer/internal/features"
)

// GainModel is a learned gain estimator used by PredictorLearnedModel.
//
// features holds RMS, spectral centroid, rolloff, zero-crossing rate,
// bandwidth, the MFCC means and the dynamic-range ratio, in that order.
// melMean and melStd summarize the log-mel spectrogram in dB. The
// returned gain is clamped to ±6 dB. Implementations must be safe for
// concurrent use when stems are processed in parallel.
type GainModel interface {
	PredictGain(stem string, features []float64, melMean, melStd float64) (float64, error)
}

// GainModelFunc adapts a plain function to GainModel.
type GainModelFunc func(stem string, features []float64, melMean, melStd float64) (float64, error)

// PredictGain calls f.
func (f GainModelFunc) PredictGain(stem string, features []float64, melMean, melStd float64) (float64, error) {
	return f(stem, features, melMean, melStd)
}

type modelAdapter struct {
	model GainModel
}

func (a modelAdapter) PredictGain(v features.Vector, mel features.MelStats, label string) (float64, error) {
	return a.model.PredictGain(label, v, mel.Mean, mel.Std)
}
