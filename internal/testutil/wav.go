package testutil

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/require"
)

const (
	bitDepth16   = 16
	maxInt16     = 32767
	wavFormatPCM = 1
)

// WriteWAV writes planar float channels as a 16-bit PCM WAV file named
// name inside dir and returns its path. All channels must share a length.
func WriteWAV(t testing.TB, dir, name string, sampleRate int, channels ...[]float64) string {
	t.Helper()
	require.NotEmpty(t, channels, "at least one channel required")

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	frames := len(channels[0])
	data := make([]int, 0, frames*len(channels))
	for i := range frames {
		for _, ch := range channels {
			require.Len(t, ch, frames, "ragged channels")
			v := math.Max(-1, math.Min(1, ch[i]))
			data = append(data, int(math.Round(v*maxInt16)))
		}
	}

	enc := wav.NewEncoder(f, sampleRate, bitDepth16, len(channels), wavFormatPCM)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: len(channels), SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: bitDepth16,
	}
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())
	return path
}

// Quantize16 rounds samples to the 16-bit grid WriteWAV stores, so tests
// can compare decoded audio against the exact values on disk.
func Quantize16(s []float64) []float64 {
	out := make([]float64, len(s))
	for i, v := range s {
		v = math.Max(-1, math.Min(1, v))
		out[i] = math.Round(v*maxInt16) / maxInt16
	}
	return out
}
