package filter

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design/pass"
)

// Kind selects the response of a Butterworth design.
type Kind int

const (
	// LowPass passes frequencies below the cutoff.
	LowPass Kind = iota
	// HighPass passes frequencies above the cutoff.
	HighPass
)

// String returns the name of the filter kind.
func (k Kind) String() string {
	switch k {
	case LowPass:
		return "lowpass"
	case HighPass:
		return "highpass"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Errors returned by filter design.
var (
	ErrInvalidCutoff = errors.New("cutoff must lie strictly between 0 and Nyquist")
	ErrInvalidOrder  = errors.New("invalid filter order")
	ErrInvalidKind   = errors.New("invalid filter kind")
)

const maxOrder = 16

// Cascade is a chain of second-order sections applied in order.
// First-order stages leave B2 and A2 at zero.
type Cascade []biquad.Coefficients

// Butterworth designs a digital Butterworth filter of the given order with
// its -3 dB point at cutoffHz. The cutoff must lie strictly between 0 and
// the Nyquist frequency of sampleRate.
func Butterworth(order int, kind Kind, cutoffHz, sampleRate float64) (Cascade, error) {
	if order < 1 || order > maxOrder {
		return nil, fmt.Errorf("%w: %d (must be 1-%d)", ErrInvalidOrder, order, maxOrder)
	}
	if !(sampleRate > 0) {
		return nil, fmt.Errorf("%w: sample rate %g", ErrInvalidCutoff, sampleRate)
	}
	if !(cutoffHz > 0 && cutoffHz < sampleRate/2) {
		return nil, fmt.Errorf("%w: %g Hz at %g Hz", ErrInvalidCutoff, cutoffHz, sampleRate)
	}

	switch kind {
	case LowPass:
		return pass.ButterworthLP(cutoffHz, order, sampleRate), nil
	case HighPass:
		return pass.ButterworthHP(cutoffHz, order, sampleRate), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidKind, int(kind))
	}
}
