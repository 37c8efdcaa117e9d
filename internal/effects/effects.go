// Package effects implements the per-stem processing chain: gain, pan,
// high-pass and low-pass, always applied in that order.
package effects

import (
	"errors"
	"fmt"
	"math"

	"github.com/tphakala/go-stem-mixer/internal/audio"
	"github.com/tphakala/go-stem-mixer/internal/filter"
	"github.com/tphakala/go-stem-mixer/internal/mathutil"
)

// Errors returned for out-of-range effect parameters.
var (
	ErrInvalidPan    = errors.New("pan must be within [-1, 1]")
	ErrInvalidGain   = errors.New("gain must be finite")
	ErrInvalidCutoff = errors.New("cutoff must lie strictly between 0 and Nyquist")
	ErrInvalidRate   = errors.New("sample rate must be positive")
)

const (
	// FilterOrder is the Butterworth order of the shelving filters.
	FilterOrder = 4

	stereoChannels = 2
	panQuarterPi   = math.Pi / 4
)

// Settings describes the processing of one stem. A nil cutoff disables
// the corresponding filter.
type Settings struct {
	GainDB     float64
	Pan        float64
	HighPassHz *float64
	LowPassHz  *float64
}

// Validate checks the settings against the sample rate they will run at.
func (s Settings) Validate(sampleRate int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidRate, sampleRate)
	}
	if math.IsNaN(s.GainDB) || math.IsInf(s.GainDB, 0) {
		return fmt.Errorf("%w: %v dB", ErrInvalidGain, s.GainDB)
	}
	if !(s.Pan >= -1 && s.Pan <= 1) {
		return fmt.Errorf("%w: %v", ErrInvalidPan, s.Pan)
	}
	nyquist := float64(sampleRate) / 2
	for _, c := range []*float64{s.HighPassHz, s.LowPassHz} {
		if c != nil && !(*c > 0 && *c < nyquist) {
			return fmt.Errorf("%w: %v Hz at %d Hz", ErrInvalidCutoff, *c, sampleRate)
		}
	}
	return nil
}

// Apply runs the full chain on buf in place: gain, pan, high-pass,
// low-pass. Settings are validated first; on error buf is untouched.
func Apply(buf *audio.Buffer, s Settings, sampleRate int) error {
	if err := s.Validate(sampleRate); err != nil {
		return err
	}

	Gain(buf, s.GainDB)
	Pan(buf, s.Pan)
	if s.HighPassHz != nil {
		if err := HighPass(buf, *s.HighPassHz, sampleRate); err != nil {
			return err
		}
	}
	if s.LowPassHz != nil {
		if err := LowPass(buf, *s.LowPassHz, sampleRate); err != nil {
			return err
		}
	}
	return nil
}

// Gain scales buf by db decibels in place. 0 dB leaves the samples
// bit-identical.
func Gain(buf *audio.Buffer, db float64) {
	if db == 0 {
		return
	}
	buf.Scale(mathutil.DBToLinear(db))
}

// PanGains returns the equal-power channel gains for pan position p in
// [-1, 1]: cos((p+1)·π/4) for the left channel and sin((p+1)·π/4) for the
// right. The centre position gives √2/2 on both sides.
func PanGains(p float64) (left, right float64) {
	angle := (p + 1) * panQuarterPi
	return math.Cos(angle), math.Sin(angle)
}

// Pan applies equal-power panning to a stereo buffer in place. Buffers
// that are not stereo are left untouched.
func Pan(buf *audio.Buffer, p float64) {
	if buf.NumChannels() != stereoChannels {
		return
	}
	left, right := PanGains(p)
	audio.FromChannels(buf.Channels[0]).Scale(left)
	audio.FromChannels(buf.Channels[1]).Scale(right)
}

// HighPass removes content below cutoffHz with a zero-phase 4th-order
// Butterworth filter.
func HighPass(buf *audio.Buffer, cutoffHz float64, sampleRate int) error {
	return shelve(buf, filter.HighPass, cutoffHz, sampleRate)
}

// LowPass removes content above cutoffHz with a zero-phase 4th-order
// Butterworth filter.
func LowPass(buf *audio.Buffer, cutoffHz float64, sampleRate int) error {
	return shelve(buf, filter.LowPass, cutoffHz, sampleRate)
}

func shelve(buf *audio.Buffer, kind filter.Kind, cutoffHz float64, sampleRate int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidRate, sampleRate)
	}
	cascade, err := filter.Butterworth(FilterOrder, kind, cutoffHz, float64(sampleRate))
	if err != nil {
		return fmt.Errorf("%w: %s at %v Hz: %w", ErrInvalidCutoff, kind, cutoffHz, err)
	}

	for ch, data := range buf.Channels {
		buf.Channels[ch] = cascade.FiltFilt(data)
	}
	return nil
}
