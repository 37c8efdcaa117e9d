package mixer

import (
	"errors"
	"fmt"

	"github.com/tphakala/go-stem-mixer/internal/audio"
	"github.com/tphakala/go-stem-mixer/internal/features"
)

// Errors returned by the mixer. Use errors.Is to test for them; most are
// wrapped with context, and per-stem failures arrive inside a
// *StemError.
var (
	// ErrIO reports a stem or output file that cannot be read, decoded or
	// written.
	ErrIO = audio.ErrIO

	// ErrConfiguration reports invalid mix settings: cutoffs outside
	// (0, Nyquist), pan outside [-1, 1], non-finite gains, a bad working
	// rate or an unknown predictor.
	ErrConfiguration = errors.New("invalid mix configuration")

	// ErrNoStems is returned when a mix is requested without any stems.
	ErrNoStems = errors.New("no stems to mix")

	// ErrUnsupportedChannels is returned for stems with more than two
	// channels.
	ErrUnsupportedChannels = audio.ErrUnsupportedChannels

	// ErrEmptyInput is returned when gain prediction is asked to analyze
	// a stem without any samples.
	ErrEmptyInput = features.ErrEmptyInput

	// ErrUnsupportedBitDepth is returned by Result.Save for bit depths
	// other than 16, 24 and 32.
	ErrUnsupportedBitDepth = audio.ErrUnsupportedBitDepth
)

// StemError records which stem failed and in which step.
type StemError struct {
	Stem string
	Op   string
	Err  error
}

func (e *StemError) Error() string {
	return fmt.Sprintf("stem %q: %s: %v", e.Stem, e.Op, e.Err)
}

func (e *StemError) Unwrap() error {
	return e.Err
}

// Pipeline steps reported in StemError.Op.
const (
	opLoad     = "load"
	opResample = "resample"
	opPredict  = "predict"
	opEffects  = "effects"
)
