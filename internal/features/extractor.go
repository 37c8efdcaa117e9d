// Package features computes the acoustic feature vector the gain
// predictor works from: frame RMS, spectral centroid, rolloff and
// bandwidth, zero-crossing rate, MFCCs and a dynamic-range ratio.
//
// Frames are centred on multiples of the hop length by reflect-padding
// the signal by half a frame at both ends. Spectra come from a periodic
// Hann window and gonum's real FFT.
package features

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"

	"github.com/tphakala/go-stem-mixer/internal/audio"
	"github.com/tphakala/go-stem-mixer/internal/filter"
	"github.com/tphakala/go-stem-mixer/internal/mathutil"
)

// Errors returned by the extractor.
var (
	ErrEmptyInput    = errors.New("empty input")
	ErrInvalidConfig = errors.New("invalid feature configuration")
)

// Config controls the analysis resolution.
type Config struct {
	FrameLength int
	HopLength   int
	NumMFCC     int
	NumMels     int
}

// DefaultConfig returns the standard 2048/512 analysis with 13 MFCCs over
// 128 mel bands.
func DefaultConfig() Config {
	return Config{
		FrameLength: DefaultFrameLength,
		HopLength:   DefaultHopLength,
		NumMFCC:     DefaultMFCC,
		NumMels:     DefaultMels,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.FrameLength < 2 || c.FrameLength%2 != 0 {
		return fmt.Errorf("%w: frame length %d must be even and at least 2", ErrInvalidConfig, c.FrameLength)
	}
	if c.HopLength < 1 {
		return fmt.Errorf("%w: hop length %d", ErrInvalidConfig, c.HopLength)
	}
	if c.NumMels < 1 {
		return fmt.Errorf("%w: %d mel bands", ErrInvalidConfig, c.NumMels)
	}
	if c.NumMFCC < 1 || c.NumMFCC > c.NumMels {
		return fmt.Errorf("%w: %d MFCCs (must be 1-%d)", ErrInvalidConfig, c.NumMFCC, c.NumMels)
	}
	return nil
}

// MelStats summarizes a log-power mel spectrogram in dB relative to its
// loudest cell.
type MelStats struct {
	Mean float64
	Std  float64
}

// Extractor computes feature vectors. It holds no mutable state and is
// safe for concurrent use.
type Extractor struct {
	cfg    Config
	window []float64
	dct    [][]float64
}

// NewExtractor validates cfg and precomputes the analysis window and DCT
// basis.
func NewExtractor(cfg Config) (*Extractor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Extractor{
		cfg:    cfg,
		window: filter.HannWindow(cfg.FrameLength, true),
		dct:    dctBasis(cfg.NumMFCC, cfg.NumMels),
	}, nil
}

// Extract computes the feature vector of buf. Channels are averaged to
// mono first.
func (e *Extractor) Extract(buf *audio.Buffer, sampleRate int) (Vector, error) {
	v, _, err := e.Analyze(buf, sampleRate)
	return v, err
}

// MelSummary returns the mean and standard deviation of the log-power mel
// spectrogram of buf, in dB relative to its maximum.
func (e *Extractor) MelSummary(buf *audio.Buffer, sampleRate int) (MelStats, error) {
	_, stats, err := e.Analyze(buf, sampleRate)
	return stats, err
}

// Analyze computes the feature vector and the mel summary in a single
// pass over the signal.
func (e *Extractor) Analyze(buf *audio.Buffer, sampleRate int) (Vector, MelStats, error) {
	if buf == nil || buf.Frames() == 0 {
		return nil, MelStats{}, ErrEmptyInput
	}
	if sampleRate <= 0 {
		return nil, MelStats{}, fmt.Errorf("%w: sample rate %d", ErrInvalidConfig, sampleRate)
	}

	mono := buf.Mono()
	a := e.analyzeFrames(mono, sampleRate)
	nyquist := float64(sampleRate) / 2

	v := make(Vector, Len(e.cfg.NumMFCC))
	v[idxRMS] = a.rms
	v[idxCentroid] = a.centroid / nyquist
	v[idxRolloff] = a.rolloff / nyquist
	v[idxZCR] = a.zcr
	v[idxBandwidth] = a.bandwidth / nyquist
	copy(v[idxMFCC:], e.mfcc(a.mel))
	v[len(v)-1] = dynamicRange(mono)

	return v, melStats(a.mel), nil
}

// frameAnalysis holds frame-averaged scalars and the mel power matrix.
type frameAnalysis struct {
	rms, centroid, rolloff, zcr, bandwidth float64
	mel                                    [][]float64
}

func (e *Extractor) analyzeFrames(mono []float64, sampleRate int) frameAnalysis {
	n := e.cfg.FrameLength
	hop := e.cfg.HopLength
	padded := centrePad(mono, n)
	numFrames := 1 + (len(padded)-n)/hop

	bins := n/2 + 1
	freqs := make([]float64, bins)
	for k := range freqs {
		freqs[k] = float64(k) * float64(sampleRate) / float64(n)
	}
	bank := melFilterbank(e.cfg.NumMels, n, sampleRate)

	fft := fourier.NewFFT(n)
	windowed := make([]float64, n)
	coeffs := make([]complex128, bins)
	mag := make([]float64, bins)
	power := make([]float64, bins)

	var sums frameAnalysis
	sums.mel = make([][]float64, numFrames)

	for f := range numFrames {
		seg := padded[f*hop : f*hop+n]

		sums.rms += math.Sqrt(floats.Dot(seg, seg) / float64(n))
		sums.zcr += zeroCrossingRate(seg)

		floats.MulTo(windowed, seg, e.window)
		coeffs = fft.Coefficients(coeffs, windowed)
		for k, c := range coeffs {
			mag[k] = cmplx.Abs(c)
			power[k] = mag[k] * mag[k]
		}

		centroid := spectralCentroid(mag, freqs)
		sums.centroid += centroid
		sums.rolloff += spectralRolloff(mag, freqs)
		sums.bandwidth += spectralBandwidth(mag, freqs, centroid)

		row := make([]float64, len(bank))
		for m, band := range bank {
			row[m] = band.apply(power)
		}
		sums.mel[f] = row
	}

	count := float64(numFrames)
	sums.rms /= count
	sums.zcr /= count
	sums.centroid /= count
	sums.rolloff /= count
	sums.bandwidth /= count
	return sums
}

// centrePad zero-pads signals shorter than one frame to a full frame,
// then reflect-pads half a frame on both sides so frame f is centred on
// sample f·hop.
func centrePad(x []float64, frameLength int) []float64 {
	if len(x) < frameLength {
		short := make([]float64, frameLength)
		copy(short, x)
		x = short
	}

	half := frameLength / 2
	n := len(x)
	out := make([]float64, n+2*half)
	for i := range half {
		out[half-1-i] = x[i+1]
		out[half+n+i] = x[n-2-i]
	}
	copy(out[half:], x)
	return out
}

// zeroCrossingRate counts sign changes between consecutive samples,
// treating values within the threshold as zero and zero as positive.
func zeroCrossingRate(seg []float64) float64 {
	crossings := 0
	prev := negative(seg[0])
	for _, v := range seg[1:] {
		cur := negative(v)
		if cur != prev {
			crossings++
		}
		prev = cur
	}
	return float64(crossings) / float64(len(seg))
}

func negative(v float64) bool {
	return v < -zeroCrossingThreshold
}

func spectralCentroid(mag, freqs []float64) float64 {
	total := floats.Sum(mag)
	if total == 0 {
		return 0
	}
	return floats.Dot(mag, freqs) / total
}

// spectralRolloff returns the lowest frequency below which rolloffPercent
// of the magnitude sum lies.
func spectralRolloff(mag, freqs []float64) float64 {
	threshold := rolloffPercent * floats.Sum(mag)
	var cum float64
	for k, m := range mag {
		cum += m
		if cum >= threshold {
			return freqs[k]
		}
	}
	return freqs[len(freqs)-1]
}

func spectralBandwidth(mag, freqs []float64, centroid float64) float64 {
	total := floats.Sum(mag)
	if total == 0 {
		return 0
	}
	var acc float64
	for k, m := range mag {
		d := freqs[k] - centroid
		acc += m * d * d
	}
	return math.Sqrt(acc / total)
}

// mfcc converts the mel power matrix to dB (floored at powerFloor,
// clipped topDB below the global peak), takes the orthonormal DCT-II of
// every frame and averages the coefficients over frames.
func (e *Extractor) mfcc(mel [][]float64) []float64 {
	db := toDB(mel, 1.0)
	out := make([]float64, e.cfg.NumMFCC)
	for _, row := range db {
		for k, basis := range e.dct {
			out[k] += floats.Dot(basis, row)
		}
	}
	floats.Scale(1/float64(len(db)), out)
	return out
}

// toDB returns 10·log10(max(p, floor)/ref) for every cell, clipped to at
// most topDB below the loudest cell.
func toDB(mel [][]float64, ref float64) [][]float64 {
	out := make([][]float64, len(mel))
	peak := math.Inf(-1)
	for f, row := range mel {
		out[f] = make([]float64, len(row))
		for m, p := range row {
			v := mathutil.PowerToDB(p, ref, powerFloor)
			out[f][m] = v
			peak = math.Max(peak, v)
		}
	}
	floor := peak - topDB
	for _, row := range out {
		for m, v := range row {
			row[m] = math.Max(v, floor)
		}
	}
	return out
}

func melStats(mel [][]float64) MelStats {
	var ref float64
	for _, row := range mel {
		ref = math.Max(ref, floats.Max(row))
	}
	db := toDB(mel, ref)

	flat := make([]float64, 0, len(db)*len(mel[0]))
	for _, row := range db {
		flat = append(flat, row...)
	}
	return MelStats{Mean: mathutil.Mean(flat), Std: mathutil.StdDev(flat)}
}

// dynamicRange is stddev(x) / (mean|x| + ε); larger values mean a more
// dynamic, less compressed signal.
func dynamicRange(mono []float64) float64 {
	abs := make([]float64, len(mono))
	for i, v := range mono {
		abs[i] = math.Abs(v)
	}
	return mathutil.StdDev(mono) / (mathutil.Mean(abs) + dynamicRangeEpsilon)
}
