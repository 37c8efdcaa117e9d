// Package resample converts audio between sample rates by band-limited
// interpolation with a Kaiser-windowed sinc kernel.
//
// The whole signal is available up front, so every output sample is
// computed directly from its input neighbourhood: there is no streaming
// state, no latency to compensate and the output length is exact.
package resample

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/tphakala/go-stem-mixer/internal/audio"
	"github.com/tphakala/simd/f64"
)

// Errors returned by the resampler.
var (
	ErrInvalidRate    = errors.New("invalid sample rate")
	ErrInvalidQuality = errors.New("invalid quality preset")
)

// maxRatio bounds the conversion ratio in either direction.
const maxRatio = 256.0

// OutputLength returns the number of frames produced when resampling
// frames samples from one rate to another: round(frames·to/from).
func OutputLength(frames, from, to int) int {
	return int(math.Round(float64(frames) * float64(to) / float64(from)))
}

func validateRates(from, to int) error {
	if from <= 0 || to <= 0 {
		return fmt.Errorf("%w: %d Hz -> %d Hz", ErrInvalidRate, from, to)
	}
	ratio := float64(to) / float64(from)
	if ratio > maxRatio || ratio < 1/maxRatio {
		return fmt.Errorf("%w: ratio %g outside [1/%g, %g]", ErrInvalidRate, ratio, maxRatio, maxRatio)
	}
	return nil
}

// ResampleChannel resamples a single channel from one rate to another.
// Equal rates return a copy of x.
func ResampleChannel(x []float64, from, to int, quality Quality) ([]float64, error) {
	if err := validateRates(from, to); err != nil {
		return nil, err
	}
	if !quality.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidQuality, int(quality))
	}
	if from == to {
		return append([]float64(nil), x...), nil
	}
	return interpolate(x, from, to, kernelFor(quality)), nil
}

// Resample converts every channel of buf from one rate to another,
// processing channels concurrently. The channel count is preserved and
// each channel has exactly OutputLength frames. Equal rates return buf
// itself.
func Resample(buf *audio.Buffer, from, to int, quality Quality) (*audio.Buffer, error) {
	if err := validateRates(from, to); err != nil {
		return nil, err
	}
	if !quality.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidQuality, int(quality))
	}
	if from == to {
		return buf, nil
	}

	k := kernelFor(quality)
	out := &audio.Buffer{Channels: make([][]float64, buf.NumChannels())}

	var wg sync.WaitGroup
	for ch, data := range buf.Channels {
		wg.Add(1)
		go func(channel int, x []float64) {
			defer wg.Done()
			out.Channels[channel] = interpolate(x, from, to, k)
		}(ch, data)
	}
	wg.Wait()

	return out, nil
}

// interpolate evaluates the band-limited reconstruction of x at the
// output sample instants. When downsampling, the kernel is stretched by
// the rate ratio so its cutoff follows the output Nyquist frequency.
func interpolate(x []float64, from, to int, k *kernel) []float64 {
	nOut := OutputLength(len(x), from, to)
	y := make([]float64, nOut)
	if len(x) == 0 {
		return y
	}

	ratio := float64(to) / float64(from)
	scale := math.Min(1, ratio)
	reach := float64(k.zeroCrossings) / scale
	last := len(x) - 1

	coeffs := make([]float64, 2*int(math.Ceil(reach))+2)

	for t := range y {
		pos := float64(t) * float64(from) / float64(to)
		lo := max(0, int(math.Ceil(pos-reach)))
		hi := min(last, int(math.Floor(pos+reach)))
		if hi < lo {
			continue
		}

		taps := coeffs[:hi-lo+1]
		for j := range taps {
			taps[j] = k.at(math.Abs(pos-float64(lo+j)) * scale)
		}
		y[t] = scale * f64.DotProductUnsafe(taps, x[lo:hi+1])
	}

	return y
}
