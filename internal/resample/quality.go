package resample

import (
	"fmt"
	"strings"
)

// Quality selects the interpolation kernel. Higher presets use longer
// kernels with deeper stopband attenuation and a passband reaching closer
// to Nyquist, at proportionally higher cost.
type Quality int

const (
	QualityQuick Quality = iota
	QualityLow
	QualityMedium
	QualityHigh
	QualityVeryHigh
)

// DefaultQuality is used when the caller expresses no preference.
const DefaultQuality = QualityHigh

// kernelSpec describes one windowed-sinc kernel.
type kernelSpec struct {
	zeroCrossings int     // sinc lobes on each side of the centre tap
	attenuation   float64 // Kaiser stopband attenuation, dB
	rolloff       float64 // passband edge as a fraction of the output Nyquist
}

var kernelSpecs = [...]kernelSpec{
	QualityQuick:    {zeroCrossings: 8, attenuation: 60, rolloff: 0.85},
	QualityLow:      {zeroCrossings: 16, attenuation: 80, rolloff: 0.85},
	QualityMedium:   {zeroCrossings: 32, attenuation: 100, rolloff: 0.9},
	QualityHigh:     {zeroCrossings: 64, attenuation: 140, rolloff: 0.9475},
	QualityVeryHigh: {zeroCrossings: 128, attenuation: 160, rolloff: 0.97},
}

var qualityNames = [...]string{
	QualityQuick:    "quick",
	QualityLow:      "low",
	QualityMedium:   "medium",
	QualityHigh:     "high",
	QualityVeryHigh: "veryhigh",
}

// Valid reports whether q names a known preset.
func (q Quality) Valid() bool {
	return q >= QualityQuick && q <= QualityVeryHigh
}

func (q Quality) String() string {
	if !q.Valid() {
		return fmt.Sprintf("Quality(%d)", int(q))
	}
	return qualityNames[q]
}

// ParseQuality converts a preset name (quick, low, medium, high,
// veryhigh) to a Quality. Matching ignores case.
func ParseQuality(name string) (Quality, error) {
	lower := strings.ToLower(strings.TrimSpace(name))
	for q, n := range qualityNames {
		if n == lower {
			return Quality(q), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidQuality, name)
}
