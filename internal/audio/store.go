package audio

import (
	"fmt"
	"math"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/tphakala/simd/f64"
)

// Load decodes an integer PCM WAV file and returns it as a stereo buffer together
// with the file's sample rate. Integer samples are scaled to [-1, 1] by
// the full-scale value of their bit depth. Mono files are duplicated to
// two channels; files with more than two channels fail with
// ErrUnsupportedChannels. Read and decode failures wrap ErrIO.
func Load(path string) (*Buffer, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: open %s: %w", ErrIO, path, err)
	}
	defer func() { _ = f.Close() }()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("%w: invalid WAV file: %s", ErrIO, path)
	}
	// Extensible headers carry their sample type in a subformat the
	// decoder does not expose; they are read as integer PCM.
	if f := dec.WavAudioFormat; f != wavFormatPCM && f != wavFormatExtensible {
		return nil, 0, fmt.Errorf("%w: %s: unsupported WAV format %d, want integer PCM", ErrIO, path, f)
	}

	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: decode %s: %w", ErrIO, path, err)
	}
	if pcm == nil || pcm.Format == nil || pcm.Format.NumChannels < 1 {
		return nil, 0, fmt.Errorf("%w: missing format in %s", ErrIO, path)
	}
	if pcm.Format.SampleRate <= 0 {
		return nil, 0, fmt.Errorf("%w: invalid sample rate %d in %s", ErrIO, pcm.Format.SampleRate, path)
	}

	channels := pcm.Format.NumChannels
	if channels > StereoChannels {
		return nil, 0, fmt.Errorf("%w: %s has %d channels", ErrUnsupportedChannels, path, channels)
	}

	bitDepth := int(dec.BitDepth)
	fullScale, err := fullScaleFor(bitDepth)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %s: %w", ErrIO, path, err)
	}

	buf := deinterleave(pcm.Data, channels, bitDepth, 1/fullScale)
	stereo, err := ToStereo(buf)
	if err != nil {
		return nil, 0, err
	}
	return stereo, pcm.Format.SampleRate, nil
}

// deinterleave converts interleaved integer PCM into a planar float
// buffer. A trailing partial frame is dropped.
func deinterleave(data []int, channels, bitDepth int, scale float64) *Buffer {
	frames := len(data) / channels
	buf := NewBuffer(channels, frames)

	offset := 0
	if bitDepth == bitDepth8 {
		offset = uint8Offset
	}
	for i := range frames {
		base := i * channels
		for ch := range channels {
			buf.Channels[ch][i] = float64(data[base+ch]-offset) * scale
		}
	}
	return buf
}

// Save encodes buf as a PCM WAV file at path, overwriting any existing
// file. Samples are clamped to [-1, 1] before quantization. bitDepth may
// be 16, 24 or 32; 0 selects DefaultBitDepth. Failures wrap ErrIO.
func Save(buf *Buffer, sampleRate int, path string, bitDepth int) error {
	if bitDepth == 0 {
		bitDepth = DefaultBitDepth
	}
	if bitDepth == bitDepth8 {
		return fmt.Errorf("%w: %d-bit output", ErrUnsupportedBitDepth, bitDepth)
	}
	fullScale, err := fullScaleFor(bitDepth)
	if err != nil {
		return err
	}
	if sampleRate <= 0 {
		return fmt.Errorf("%w: invalid sample rate %d", ErrIO, sampleRate)
	}
	channels := buf.NumChannels()
	if channels < monoChannels || channels > StereoChannels {
		return fmt.Errorf("%w: %d channels", ErrUnsupportedChannels, channels)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: create %s: %w", ErrIO, path, err)
	}

	enc := wav.NewEncoder(f, sampleRate, bitDepth, channels, wavFormatPCM)
	pcm := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           quantize(interleave(buf), fullScale),
		SourceBitDepth: bitDepth,
	}

	if err := enc.Write(pcm); err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: write %s: %w", ErrIO, path, err)
	}
	if err := enc.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: finalize %s: %w", ErrIO, path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", ErrIO, path, err)
	}
	return nil
}

func interleave(buf *Buffer) []float64 {
	frames := buf.Frames()
	if buf.NumChannels() == monoChannels {
		return buf.Channels[0]
	}
	out := make([]float64, frames*StereoChannels)
	f64.Interleave2(out, buf.Channels[0], buf.Channels[1])
	return out
}

func quantize(samples []float64, fullScale float64) []int {
	out := make([]int, len(samples))
	for i, v := range samples {
		if math.IsNaN(v) {
			continue
		}
		v = math.Max(-1, math.Min(1, v))
		out[i] = int(math.Round(v * fullScale))
	}
	return out
}

func fullScaleFor(bitDepth int) (float64, error) {
	switch bitDepth {
	case bitDepth8:
		return maxInt8 + 1, nil
	case bitDepth16:
		return maxInt16, nil
	case bitDepth24:
		return maxInt24, nil
	case bitDepth32:
		return maxInt32, nil
	default:
		return 0, fmt.Errorf("%w: %d-bit", ErrUnsupportedBitDepth, bitDepth)
	}
}
