package mixer

import (
	"fmt"
	"strings"

	"github.com/tphakala/go-stem-mixer/internal/effects"
	"github.com/tphakala/go-stem-mixer/internal/features"
	"github.com/tphakala/go-stem-mixer/internal/predict"
	"github.com/tphakala/go-stem-mixer/internal/resample"
)

// Quality selects the resampling kernel. Higher presets use longer
// windowed-sinc kernels with stronger stopband attenuation.
type Quality = resample.Quality

// Resampling quality presets.
const (
	QualityQuick    = resample.QualityQuick
	QualityLow      = resample.QualityLow
	QualityMedium   = resample.QualityMedium
	QualityHigh     = resample.QualityHigh
	QualityVeryHigh = resample.QualityVeryHigh
)

// ParseQuality maps a preset name ("quick", "low", "medium", "high",
// "veryhigh") to its Quality.
func ParseQuality(name string) (Quality, error) {
	q, err := resample.ParseQuality(name)
	if err != nil {
		return q, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return q, nil
}

// PredictorKind selects how automatic gains are estimated.
type PredictorKind = predict.Kind

// Gain predictors.
const (
	// PredictorRuleBased scores RMS, spectral centroid and dynamic range.
	PredictorRuleBased = predict.KindRuleBased
	// PredictorSpectrogram also summarizes the log-mel spectrogram and
	// falls back to the rule for the gain itself.
	PredictorSpectrogram = predict.KindSpectrogram
	// PredictorLearnedModel delegates to the GainModel given with
	// WithGainModel.
	PredictorLearnedModel = predict.KindLearnedModel
)

var predictorNames = map[string]PredictorKind{
	"rule-based":    PredictorRuleBased,
	"rule":          PredictorRuleBased,
	"spectrogram":   PredictorSpectrogram,
	"alternate":     PredictorSpectrogram,
	"learned-model": PredictorLearnedModel,
	"model":         PredictorLearnedModel,
}

// ParsePredictorKind maps a predictor name to its kind. Accepted names
// are the String forms ("rule-based", "spectrogram", "learned-model")
// and the short aliases "rule", "alternate" and "model".
func ParsePredictorKind(name string) (PredictorKind, error) {
	k, ok := predictorNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return PredictorRuleBased, fmt.Errorf("%w: unknown predictor %q", ErrConfiguration, name)
	}
	return k, nil
}

// StemSettings is the processing applied to one stem. The zero value
// leaves the level alone, pans to centre and disables both filters.
type StemSettings struct {
	// GainDB is applied before panning. Ignored when AutoGain is set.
	GainDB float64

	// Pan places the stem from -1 (hard left) to 1 (hard right) with an
	// equal-power law.
	Pan float64

	// HighPassHz removes content below the cutoff. Nil disables it.
	HighPassHz *float64

	// LowPassHz removes content above the cutoff. Nil disables it.
	LowPassHz *float64
}

// Hz returns a pointer to v, for filling in the optional cutoffs.
func Hz(v float64) *float64 {
	return &v
}

func (s StemSettings) effects(gainDB float64) effects.Settings {
	return effects.Settings{
		GainDB:     gainDB,
		Pan:        s.Pan,
		HighPassHz: s.HighPassHz,
		LowPassHz:  s.LowPassHz,
	}
}

// Config holds the mix settings.
type Config struct {
	// SampleRate is the working and output rate. Every stem is resampled
	// to it before processing.
	SampleRate int

	// Stems maps stem names to their processing. Stems without an entry
	// get the zero StemSettings.
	Stems map[string]StemSettings

	// NormalizeOutput scales the mix down to a peak of 1 when it would
	// otherwise clip.
	NormalizeOutput bool

	// AutoGain replaces every manual gain with a predicted one.
	AutoGain bool

	// Predictor selects the gain predictor used when AutoGain is set.
	Predictor PredictorKind

	// Quality selects the resampling kernel.
	Quality Quality

	// Parallel processes stems concurrently. Output is identical either
	// way.
	Parallel bool

	// MFCC is the number of cepstral coefficients in the prediction
	// features.
	MFCC int
}

// DefaultConfig returns a Config with standard settings: 44.1 kHz,
// normalization on, manual gains, high-quality resampling and parallel
// processing.
func DefaultConfig() Config {
	return Config{
		SampleRate:      DefaultSampleRate,
		Stems:           map[string]StemSettings{},
		NormalizeOutput: true,
		Predictor:       PredictorRuleBased,
		Quality:         resample.DefaultQuality,
		Parallel:        true,
		MFCC:            DefaultMFCC,
	}
}

// Stem returns the settings for name, or the zero settings.
func (c *Config) Stem(name string) StemSettings {
	return c.Stems[name]
}

// Validate checks the configuration. Every problem is reported as
// ErrConfiguration.
func (c *Config) Validate() error {
	if c.SampleRate <= 0 || c.SampleRate > maxSampleRate {
		return fmt.Errorf("%w: sample rate %d must be in (0, %d]", ErrConfiguration, c.SampleRate, maxSampleRate)
	}
	if !c.Quality.Valid() {
		return fmt.Errorf("%w: unknown quality %d", ErrConfiguration, int(c.Quality))
	}
	switch c.Predictor {
	case PredictorRuleBased, PredictorSpectrogram, PredictorLearnedModel:
	default:
		return fmt.Errorf("%w: unknown predictor %d", ErrConfiguration, int(c.Predictor))
	}
	if c.MFCC < 1 || c.MFCC > maxMFCC {
		return fmt.Errorf("%w: MFCC count %d must be in [1, %d]", ErrConfiguration, c.MFCC, maxMFCC)
	}

	for name, s := range c.Stems {
		if err := s.effects(s.GainDB).Validate(c.SampleRate); err != nil {
			return fmt.Errorf("%w: stem %q: %w", ErrConfiguration, name, err)
		}
	}
	return nil
}

func (c *Config) featureConfig() features.Config {
	fc := features.DefaultConfig()
	fc.NumMFCC = c.MFCC
	return fc
}
