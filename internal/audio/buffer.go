// Package audio holds the sample store of the mixer: the planar float
// buffer every stage operates on, WAV decode/encode, channel layout
// normalization and length alignment.
package audio

import (
	"fmt"
	"math"

	"github.com/tphakala/simd/f64"
)

// Buffer is a block of float samples stored planar: Channels[ch][frame].
// Every channel has the same length. Samples are nominally in [-1, 1];
// intermediate results may exceed that until the mix is normalized.
type Buffer struct {
	Channels [][]float64
}

// NewBuffer allocates a silent buffer.
func NewBuffer(channels, frames int) *Buffer {
	b := &Buffer{Channels: make([][]float64, channels)}
	for ch := range b.Channels {
		b.Channels[ch] = make([]float64, frames)
	}
	return b
}

// FromChannels wraps existing channel slices without copying.
func FromChannels(channels ...[]float64) *Buffer {
	return &Buffer{Channels: channels}
}

// NumChannels returns the channel count.
func (b *Buffer) NumChannels() int {
	return len(b.Channels)
}

// Frames returns the number of frames (samples per channel).
func (b *Buffer) Frames() int {
	if len(b.Channels) == 0 {
		return 0
	}
	return len(b.Channels[0])
}

// At returns the sample at the given frame and channel.
func (b *Buffer) At(frame, ch int) float64 {
	return b.Channels[ch][frame]
}

// Mono averages all channels into a single slice.
func (b *Buffer) Mono() []float64 {
	frames := b.Frames()
	mono := make([]float64, frames)
	switch len(b.Channels) {
	case 0:
		return mono
	case 1:
		copy(mono, b.Channels[0])
		return mono
	}

	for _, data := range b.Channels {
		for i, v := range data {
			mono[i] += v
		}
	}
	f64.Scale(mono, mono, 1/float64(len(b.Channels)))
	return mono
}

// Peak returns the largest absolute sample value across all channels.
func (b *Buffer) Peak() float64 {
	var peak float64
	for _, data := range b.Channels {
		for _, v := range data {
			if a := math.Abs(v); a > peak {
				peak = a
			}
		}
	}
	return peak
}

// Scale multiplies every sample by factor in place.
func (b *Buffer) Scale(factor float64) {
	for _, data := range b.Channels {
		f64.Scale(data, data, factor)
	}
}

// Add accumulates other into b sample by sample. Both buffers must have
// the same shape.
func (b *Buffer) Add(other *Buffer) error {
	if other.NumChannels() != b.NumChannels() || other.Frames() != b.Frames() {
		return fmt.Errorf("%w: cannot add %dx%d buffer to %dx%d",
			ErrShapeMismatch, other.NumChannels(), other.Frames(), b.NumChannels(), b.Frames())
	}
	for ch, data := range b.Channels {
		src := other.Channels[ch]
		for i := range data {
			data[i] += src[i]
		}
	}
	return nil
}

// Normalize divides the buffer by its peak when the peak exceeds 1.0 and
// returns the peak measured before scaling. Buffers already within
// [-1, 1] are left untouched, so normalizing twice is the same as once.
func (b *Buffer) Normalize() float64 {
	peak := b.Peak()
	if peak > 1.0 {
		b.Scale(1 / peak)
	}
	return peak
}

// ToStereo returns a two-channel view of b. Mono input is duplicated into
// both channels; stereo input is returned as is. Anything else is
// rejected.
func ToStereo(b *Buffer) (*Buffer, error) {
	switch b.NumChannels() {
	case StereoChannels:
		return b, nil
	case monoChannels:
		left := b.Channels[0]
		return FromChannels(left, append([]float64(nil), left...)), nil
	default:
		return nil, fmt.Errorf("%w: %d channels", ErrUnsupportedChannels, b.NumChannels())
	}
}
