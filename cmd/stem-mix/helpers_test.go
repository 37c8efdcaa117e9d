package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mixer "github.com/tphakala/go-stem-mixer"
	"github.com/tphakala/go-stem-mixer/internal/audio"
	"github.com/tphakala/go-stem-mixer/internal/testutil"
)

const (
	testRate   = 44100
	testFrames = 2205
)

func noEnv(string) string { return "" }

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func writeStems(t *testing.T, dir string, names ...string) {
	t.Helper()
	for i, name := range names {
		freq := 110.0 * float64(i+1)
		testutil.WriteWAV(t, dir, name+".wav", testRate, testutil.Sine(testFrames, freq, 0.3, testRate))
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestStemFlag(t *testing.T) {
	s := stemFlag{}
	require.NoError(t, s.Set("vocals=takes/v.wav"))
	require.NoError(t, s.Set(" bass = b.wav "))
	assert.Equal(t, stemFlag{"vocals": "takes/v.wav", "bass": "b.wav"}, s)

	for _, bad := range []string{"vocals", "=v.wav", "vocals="} {
		assert.Error(t, s.Set(bad), bad)
	}
}

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags([]string{"-stem", "a=a.wav", "-stem", "b=b.wav", "-auto", "-bits", "24"}, io.Discard)
	require.NoError(t, err)
	assert.Len(t, opts.stems, 2)
	assert.True(t, opts.auto)
	assert.Equal(t, 24, opts.bitDepth)
	assert.True(t, opts.set["bits"])
	assert.False(t, opts.set["quality"])

	_, err = parseFlags([]string{"stray.wav"}, io.Discard)
	require.Error(t, err)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "mix.yaml", `
sample_rate: 48000
normalize_output: false
auto_gain: true
use_alternate_predictor: true
quality: medium
output: out/mix.wav
bit_depth: 24
stems:
  vocals:
    path: v.wav
    gain_db: 2
    pan: -0.5
    highpass_hz: 120
  drums:
    lowpass_hz: 9000
`)

	fc, err := loadConfigFile(path)
	require.NoError(t, err)

	j, err := fc.apply(dir)
	require.NoError(t, err)
	assert.Equal(t, 48000, j.cfg.SampleRate)
	assert.False(t, j.cfg.NormalizeOutput)
	assert.True(t, j.cfg.AutoGain)
	assert.Equal(t, mixer.PredictorSpectrogram, j.cfg.Predictor)
	assert.Equal(t, mixer.QualityMedium, j.cfg.Quality)
	assert.Equal(t, filepath.Join(dir, "out", "mix.wav"), j.output)
	assert.Equal(t, 24, j.bitDepth)
	assert.Equal(t, map[string]string{"vocals": filepath.Join(dir, "v.wav")}, j.stems)

	vocals := j.cfg.Stem("vocals")
	assert.Equal(t, 2.0, vocals.GainDB)
	assert.Equal(t, -0.5, vocals.Pan)
	require.NotNil(t, vocals.HighPassHz)
	assert.Equal(t, 120.0, *vocals.HighPassHz)
	require.NotNil(t, j.cfg.Stem("drums").LowPassHz)
	require.NoError(t, j.cfg.Validate())
}

func TestLoadConfigFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := loadConfigFile(filepath.Join(dir, "missing.yaml"))
	require.ErrorIs(t, err, mixer.ErrIO)

	_, err = loadConfigFile(writeFile(t, dir, "typo.yaml", "sample_rte: 48000\n"))
	require.ErrorIs(t, err, mixer.ErrConfiguration)

	fc, err := loadConfigFile(writeFile(t, dir, "bad.yaml", "predictor: oracle\n"))
	require.NoError(t, err)
	_, err = fc.apply(dir)
	require.ErrorIs(t, err, mixer.ErrConfiguration)

	fc, err = loadConfigFile(writeFile(t, dir, "empty.yaml", ""))
	require.NoError(t, err)
	j, err := fc.apply(dir)
	require.NoError(t, err)
	assert.Equal(t, mixer.DefaultConfig().SampleRate, j.cfg.SampleRate)
}

func TestBuildJob_Precedence(t *testing.T) {
	dir := t.TempDir()
	writeStems(t, dir, mixer.StemDrums, mixer.StemVocals)
	cfgPath := writeFile(t, dir, "mix.yaml", "sample_rate: 48000\nquality: low\nbit_depth: 24\n")

	opts, err := parseFlags([]string{
		"-config", cfgPath,
		"-dir", dir,
		"-stem", "vocals=/elsewhere/vocals.wav",
		"-quality", "veryhigh",
	}, io.Discard)
	require.NoError(t, err)

	j, err := buildJob(opts, env(map[string]string{envBitDepth: "32"}))
	require.NoError(t, err)
	assert.Equal(t, 48000, j.cfg.SampleRate, "file value kept when flag not given")
	assert.Equal(t, mixer.QualityVeryHigh, j.cfg.Quality, "explicit flag beats file")
	assert.Equal(t, 32, j.bitDepth, "environment beats file")
	assert.Equal(t, "/elsewhere/vocals.wav", j.stems[mixer.StemVocals], "-stem beats -dir")
	assert.Equal(t, filepath.Join(dir, "drums.wav"), j.stems[mixer.StemDrums])
	assert.Equal(t, defaultOutput, j.output)
}

func TestBuildJob_StemsStartUnprocessed(t *testing.T) {
	opts, err := parseFlags([]string{"-stem", "vocals=v.wav", "-rate", "22.05", "-no-normalize"}, io.Discard)
	require.NoError(t, err)

	j, err := buildJob(opts, noEnv)
	require.NoError(t, err)
	assert.Equal(t, 22050, j.cfg.SampleRate)
	assert.False(t, j.cfg.NormalizeOutput)
	assert.Empty(t, j.cfg.Stems)
	assert.Equal(t, mixer.StemSettings{}, j.cfg.Stem(mixer.StemVocals))
}

func TestBuildJob_Preset(t *testing.T) {
	dir := t.TempDir()
	writeStems(t, dir, mixer.StemDrums)
	preset := mixer.DefaultPreset().Stems

	tests := []struct {
		name string
		args []string
		want map[string]mixer.StemSettings
	}{
		{"dir applies preset", []string{"-dir", dir}, preset},
		{"explicit preset with stems", []string{"-stem", "vocals=v.wav", "-preset"}, preset},
		{"preset disabled for dir", []string{"-dir", dir, "-preset=false"}, map[string]mixer.StemSettings{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := parseFlags(tt.args, io.Discard)
			require.NoError(t, err)
			j, err := buildJob(opts, noEnv)
			require.NoError(t, err)
			assert.Equal(t, tt.want, j.cfg.Stems)
		})
	}
}

func TestBuildJob_FileSettingsBeatPreset(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "mix.yaml", "stems:\n  drums:\n    path: d.wav\n    gain_db: -1\n")

	opts, err := parseFlags([]string{"-config", cfgPath, "-preset"}, io.Discard)
	require.NoError(t, err)
	j, err := buildJob(opts, noEnv)
	require.NoError(t, err)

	assert.Equal(t, mixer.StemSettings{GainDB: -1}, j.cfg.Stem(mixer.StemDrums))
	assert.Equal(t, mixer.DefaultPreset().Stems[mixer.StemVocals], j.cfg.Stem(mixer.StemVocals))
}

func TestApplyEnv(t *testing.T) {
	j := &job{cfg: mixer.DefaultConfig()}
	require.NoError(t, applyEnv(j, env(map[string]string{envSampleRate: "96000", envBitDepth: "24"})))
	assert.Equal(t, 96000, j.cfg.SampleRate)
	assert.Equal(t, 24, j.bitDepth)

	err := applyEnv(j, env(map[string]string{envSampleRate: "fast"}))
	require.ErrorIs(t, err, mixer.ErrConfiguration)
}

func TestRun_Mix(t *testing.T) {
	dir := t.TempDir()
	writeStems(t, dir, mixer.StemDrums, mixer.StemBass, mixer.StemVocals)
	out := filepath.Join(dir, "mix.wav")

	var stdout bytes.Buffer
	err := run([]string{"-dir", dir, "-o", out, "-bits", "24", "-no-progress"}, &stdout, io.Discard, noEnv)
	require.NoError(t, err)

	assert.Contains(t, stdout.String(), "Mixed 3 stems")
	assert.Contains(t, stdout.String(), "vocals")

	buf, rate, err := audio.Load(out)
	require.NoError(t, err)
	assert.Equal(t, testRate, rate)
	assert.Equal(t, testFrames, buf.Frames())
}

func TestRun_LowRateWithExplicitStems(t *testing.T) {
	dir := t.TempDir()
	writeStems(t, dir, mixer.StemDrums)
	drums := filepath.Join(dir, "drums.wav")
	out := filepath.Join(dir, "low.wav")

	err := run([]string{"-stem", "drums=" + drums, "-rate", "16", "-o", out, "-no-progress"}, io.Discard, io.Discard, noEnv)
	require.NoError(t, err)
	_, rate, err := audio.Load(out)
	require.NoError(t, err)
	assert.Equal(t, 16000, rate)

	// The preset low-passes drums at 10 kHz, above Nyquist at 16 kHz.
	err = run([]string{"-stem", "drums=" + drums, "-rate", "16", "-preset", "-o", out, "-no-progress"}, io.Discard, io.Discard, noEnv)
	require.ErrorIs(t, err, mixer.ErrConfiguration)
}

func TestRun_Predict(t *testing.T) {
	dir := t.TempDir()
	writeStems(t, dir, mixer.StemBass, mixer.StemSynth)

	var stdout bytes.Buffer
	err := run([]string{"-dir", dir, "-predict", "-no-progress"}, &stdout, io.Discard, noEnv)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "bass")
	assert.Contains(t, stdout.String(), "synth")
	assert.NoFileExists(t, filepath.Join(dir, defaultOutput))
}

func TestRun_VerboseLogging(t *testing.T) {
	dir := t.TempDir()
	writeStems(t, dir, mixer.StemDrums)

	var stderr bytes.Buffer
	err := run([]string{"-dir", dir, "-o", filepath.Join(dir, "m.wav"), "-v", "-no-progress"}, io.Discard, &stderr, noEnv)
	require.NoError(t, err)
	assert.Contains(t, stderr.String(), "mix complete")
}

func TestRun_Errors(t *testing.T) {
	err := run([]string{"-no-progress"}, io.Discard, io.Discard, noEnv)
	require.ErrorIs(t, err, errUsage)

	dir := t.TempDir()
	err = run([]string{"-stem", "x=" + filepath.Join(dir, "none.wav"), "-o", filepath.Join(dir, "o.wav")},
		io.Discard, io.Discard, noEnv)
	require.ErrorIs(t, err, mixer.ErrIO, "failed mix must not hang the progress bar")

	err = run([]string{"-dir", dir}, io.Discard, io.Discard, noEnv)
	require.ErrorIs(t, err, mixer.ErrNoStems)
}

func TestProgress(t *testing.T) {
	p := newProgress(io.Discard, 2, true)
	for range 2 * progressStages {
		p.update(mixer.StageLoaded, "x")
	}
	p.finish(true)

	aborted := newProgress(io.Discard, 3, true)
	aborted.update(mixer.StageLoaded, "x")
	aborted.finish(false)

	disabled := newProgress(io.Discard, 3, false)
	disabled.update(mixer.StageLoaded, "x")
	disabled.finish(true)
}

func TestRun_Help(t *testing.T) {
	var stderr bytes.Buffer
	require.NoError(t, run([]string{"-h"}, io.Discard, &stderr, noEnv))
	assert.Contains(t, stderr.String(), "Usage: stem-mix")
}
