package audio

import (
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/go-stem-mixer/internal/testutil"
)

const (
	testSampleRate = 44100
	testFrames     = 1000
)

func TestLoad_Stereo(t *testing.T) {
	dir := t.TempDir()
	left := testutil.Sine(testFrames, 440, 0.5, testSampleRate)
	right := testutil.Sine(testFrames, 660, 0.25, testSampleRate)
	path := testutil.WriteWAV(t, dir, "stereo.wav", testSampleRate, left, right)

	buf, rate, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, testSampleRate, rate)
	assert.Equal(t, 2, buf.NumChannels())
	assert.Equal(t, testFrames, buf.Frames())
	testutil.AssertSlicesInDelta(t, testutil.Quantize16(left), buf.Channels[0], 1e-12)
	testutil.AssertSlicesInDelta(t, testutil.Quantize16(right), buf.Channels[1], 1e-12)
}

func TestLoad_MonoIsDuplicated(t *testing.T) {
	dir := t.TempDir()
	mono := testutil.Sine(testFrames, 220, 0.8, 22050)
	path := testutil.WriteWAV(t, dir, "mono.wav", 22050, mono)

	buf, rate, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 22050, rate)
	require.Equal(t, 2, buf.NumChannels())
	assert.Equal(t, buf.Channels[0], buf.Channels[1])
	testutil.AssertSlicesInDelta(t, testutil.Quantize16(mono), buf.Channels[0], 1e-12)
}

func TestLoad_RejectsMultichannel(t *testing.T) {
	dir := t.TempDir()
	ch := testutil.Constant(16, 0.1)
	path := testutil.WriteWAV(t, dir, "quad.wav", testSampleRate, ch, ch, ch, ch)

	_, _, err := Load(path)
	require.ErrorIs(t, err, ErrUnsupportedChannels)
}

func TestLoad_RejectsFloatFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "float.wav")
	f, err := os.Create(path)
	require.NoError(t, err)

	enc := wav.NewEncoder(f, testSampleRate, bitDepth32, monoChannels, wavFormatIEEEFloat)
	require.NoError(t, enc.Write(&goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: monoChannels, SampleRate: testSampleRate},
		Data:           make([]int, 64),
		SourceBitDepth: bitDepth32,
	}))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())

	_, _, err = Load(path)
	require.ErrorIs(t, err, ErrIO)
	assert.Contains(t, err.Error(), "unsupported WAV format 3")
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, _, err := Load(filepath.Join(dir, "missing.wav"))
	require.ErrorIs(t, err, ErrIO)

	garbage := filepath.Join(dir, "garbage.wav")
	require.NoError(t, os.WriteFile(garbage, []byte("definitely not RIFF data"), 0o600))
	_, _, err = Load(garbage)
	require.ErrorIs(t, err, ErrIO)
}

func TestSave_RoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		bitDepth  int
		tolerance float64
	}{
		{"16-bit", 16, 1.0 / maxInt16},
		{"24-bit", 24, 1.0 / maxInt24},
		{"32-bit", 32, 1.0 / maxInt32 * 2},
		{"default", 0, 1.0 / maxInt16},
	}

	left := testutil.Sine(testFrames, 1000, 0.9, testSampleRate)
	right := testutil.Noise(testFrames, 0.5, 3)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out.wav")
			require.NoError(t, Save(FromChannels(left, right), testSampleRate, path, tt.bitDepth))

			buf, rate, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, testSampleRate, rate)
			testutil.AssertSlicesInDelta(t, left, buf.Channels[0], tt.tolerance)
			testutil.AssertSlicesInDelta(t, right, buf.Channels[1], tt.tolerance)
		})
	}
}

func TestSave_ClampsAndOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loud.wav")
	require.NoError(t, os.WriteFile(path, []byte("old contents"), 0o600))

	loud := FromChannels([]float64{2, -3, 0.5}, []float64{1.5, -1.5, 0})
	require.NoError(t, Save(loud, testSampleRate, path, 16))

	buf, _, err := Load(path)
	require.NoError(t, err)
	testutil.AssertSlicesInDelta(t, []float64{1, -1, 0.5}, buf.Channels[0], 1/maxInt16)
	testutil.AssertSlicesInDelta(t, []float64{1, -1, 0}, buf.Channels[1], 1/maxInt16)
}

func TestSave_Errors(t *testing.T) {
	buf := FromChannels([]float64{0}, []float64{0})
	dir := t.TempDir()

	err := Save(buf, testSampleRate, filepath.Join(dir, "x.wav"), 12)
	require.ErrorIs(t, err, ErrUnsupportedBitDepth)

	err = Save(buf, testSampleRate, filepath.Join(dir, "x.wav"), 8)
	require.ErrorIs(t, err, ErrUnsupportedBitDepth)

	err = Save(buf, 0, filepath.Join(dir, "x.wav"), 16)
	require.ErrorIs(t, err, ErrIO)

	err = Save(buf, testSampleRate, filepath.Join(dir, "no", "such", "dir.wav"), 16)
	require.ErrorIs(t, err, ErrIO)

	err = Save(NewBuffer(3, 1), testSampleRate, filepath.Join(dir, "x.wav"), 16)
	require.ErrorIs(t, err, ErrUnsupportedChannels)
}
