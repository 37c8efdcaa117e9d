package mixer

import (
	"time"

	"github.com/tphakala/go-stem-mixer/internal/audio"
)

// Buffer holds planar samples, one slice per channel.
type Buffer = audio.Buffer

// StemReport describes what happened to one stem.
type StemReport struct {
	Name string
	Path string

	// SourceRate and SourceFrames describe the file before resampling.
	SourceRate   int
	SourceFrames int

	// GainDB is the gain that was applied, manual or predicted.
	GainDB    float64
	Predicted bool

	// Features is the vector the prediction was made from. Nil for
	// manual gains.
	Features []float64
}

// Result is a finished mix.
type Result struct {
	// Buffer is the stereo mix at SampleRate.
	Buffer     *Buffer
	SampleRate int

	// Gains maps each stem to the gain applied to it in dB.
	Gains map[string]float64

	// AutoGain reports whether Gains were predicted, and Predictor which
	// predictor produced them.
	AutoGain  bool
	Predictor PredictorKind

	// Peak is the absolute peak of the sum before normalization.
	Peak       float64
	Normalized bool

	// Stems lists per-stem details in mix order.
	Stems []StemReport
}

// Frames returns the mix length in frames.
func (r *Result) Frames() int {
	return r.Buffer.Frames()
}

// Duration returns the mix length.
func (r *Result) Duration() time.Duration {
	if r.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(r.Frames()) / float64(r.SampleRate) * float64(time.Second))
}

// Save writes the mix as a PCM WAV file. bitDepth is 16, 24 or 32; zero
// selects 16. Samples are clamped to [-1, 1] before quantization.
func (r *Result) Save(path string, bitDepth int) error {
	return SaveWAV(r.Buffer, r.SampleRate, path, bitDepth)
}
