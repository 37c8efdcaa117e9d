package mixer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tphakala/go-stem-mixer/internal/audio"
)

// StandardStems lists the stem names DiscoverStems looks for.
var StandardStems = []string{StemDrums, StemBass, StemSynth, StemVocals}

// DefaultPreset returns DefaultConfig with the house settings for the
// standard stems: vocals lifted and high-passed at 80 Hz, synth tucked
// under and high-passed at 60 Hz, bass slightly down, and drums
// low-passed at 10 kHz.
func DefaultPreset() Config {
	cfg := DefaultConfig()
	cfg.Stems = map[string]StemSettings{
		StemDrums:  {GainDB: presetDrumsGainDB, LowPassHz: Hz(presetDrumsLowPassHz)},
		StemBass:   {GainDB: presetBassGainDB},
		StemSynth:  {GainDB: presetSynthGainDB, HighPassHz: Hz(presetSynthHighPassHz)},
		StemVocals: {GainDB: presetVocalsGainDB, HighPassHz: Hz(presetVocalsHighPassHz)},
	}
	return cfg
}

// DiscoverStems looks for drums.wav, bass.wav, synth.wav and vocals.wav in
// dir and returns the ones that exist. It returns ErrNoStems when none are
// found.
func DiscoverStems(dir string) (map[string]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrIO, dir)
	}

	stems := make(map[string]string, len(StandardStems))
	for _, name := range StandardStems {
		path := filepath.Join(dir, name+stemFileExt)
		st, err := os.Stat(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			continue
		case err != nil:
			return nil, fmt.Errorf("%w: %w", ErrIO, err)
		case st.IsDir():
			continue
		}
		stems[name] = path
	}

	if len(stems) == 0 {
		return nil, fmt.Errorf("%w: none of %v found in %s", ErrNoStems, StandardStems, dir)
	}
	return stems, nil
}

// MixFiles mixes stems with cfg and writes the result to outPath.
func MixFiles(stems map[string]string, cfg Config, outPath string, bitDepth int, opts ...Option) (*Result, error) {
	res, err := New(opts...).Mix(stems, cfg)
	if err != nil {
		return nil, err
	}
	if err := res.Save(outPath, bitDepth); err != nil {
		return nil, err
	}
	return res, nil
}

// FromChannels wraps planar channel slices in a Buffer without copying.
func FromChannels(channels ...[]float64) *Buffer {
	return audio.FromChannels(channels...)
}

// LoadWAV reads a PCM WAV file as a stereo buffer scaled to [-1, 1] and
// returns it with its sample rate. Mono files are duplicated.
func LoadWAV(path string) (*Buffer, int, error) {
	return audio.Load(path)
}

// SaveWAV writes buf as a PCM WAV file. bitDepth is 16, 24 or 32; zero
// selects 16.
func SaveWAV(buf *Buffer, sampleRate int, path string, bitDepth int) error {
	return audio.Save(buf, sampleRate, path, bitDepth)
}
