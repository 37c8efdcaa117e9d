package mixer

// Common working sample rates.
const (
	// RateCD is the CD quality sample rate and the default working rate.
	RateCD = 44100

	// RateDAT is the DAT/DVD sample rate.
	RateDAT = 48000

	// RateHiRes96 is the high-resolution 2x DAT sample rate.
	RateHiRes96 = 96000
)

const (
	// DefaultSampleRate is the working rate stems are resampled to.
	DefaultSampleRate = RateCD

	// DefaultBitDepth is the PCM bit depth used when saving mixes.
	DefaultBitDepth = 16

	// DefaultMFCC is the number of cepstral coefficients extracted for gain
	// prediction.
	DefaultMFCC = 13

	maxSampleRate = 768000
	maxMFCC       = 128
)

// Stem names recognized by the default preset and the gain baselines.
const (
	StemDrums  = "drums"
	StemBass   = "bass"
	StemSynth  = "synth"
	StemVocals = "vocals"
)

// Default preset levels and filter corners.
const (
	presetDrumsGainDB  = 0.0
	presetBassGainDB   = -1.0
	presetSynthGainDB  = -2.0
	presetVocalsGainDB = 1.0

	presetVocalsHighPassHz = 80.0
	presetSynthHighPassHz  = 60.0
	presetDrumsLowPassHz   = 10000.0
)

const stemFileExt = ".wav"
