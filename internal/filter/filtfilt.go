package filter

import "github.com/cwbudde/algo-dsp/dsp/filter/biquad"

// padTapsFactor scales the effective tap count into the edge padding
// applied before forward-backward filtering.
const padTapsFactor = 3

// steadyState returns per-section initial conditions for a unit step, so
// a filter started on a constant input produces that constant's
// steady-state response immediately. Each section's state is scaled by
// the DC gain of the sections before it.
func (c Cascade) steadyState() [][2]float64 {
	zi := make([][2]float64, len(c))
	scale := 1.0
	for s, sec := range c {
		// Solve (I - Aᵀ)·z = b[1:] - a[1:]·b0 for the 2x2 companion system.
		r0 := sec.B1 - sec.A1*sec.B0
		r1 := sec.B2 - sec.A2*sec.B0
		z0 := (r0 + r1) / (1 + sec.A1 + sec.A2)
		z1 := r1 - sec.A2*z0

		zi[s] = [2]float64{scale * z0, scale * z1}
		scale *= (sec.B0 + sec.B1 + sec.B2) / (1 + sec.A1 + sec.A2)
	}
	return zi
}

// padLength is the number of samples of odd extension added at each end.
func (c Cascade) padLength() int {
	taps := 2*len(c) + 1
	zeroB, zeroA := 0, 0
	for _, sec := range c {
		if sec.B2 == 0 {
			zeroB++
		}
		if sec.A2 == 0 {
			zeroA++
		}
	}
	return padTapsFactor * (taps - min(zeroB, zeroA))
}

// run filters x in place through chain, starting every section from the
// unit-step state zi scaled by x[0].
func run(chain *biquad.Chain, zi [][2]float64, x []float64) {
	state := make([][2]float64, len(zi))
	for s, z := range zi {
		state[s] = [2]float64{z[0] * x[0], z[1] * x[0]}
	}
	chain.SetState(state)
	chain.ProcessBlock(x)
}

// FiltFilt applies the cascade forward and then backward over x, giving a
// zero-phase response whose magnitude is the square of the single-pass
// response. The input is extended at both ends by odd reflection about
// the end samples, and each pass starts from steady-state initial
// conditions, which keeps edge transients out of the result.
//
// The returned slice has the length of x; x is not modified.
func (c Cascade) FiltFilt(x []float64) []float64 {
	n := len(x)
	out := make([]float64, n)
	if n == 0 {
		return out
	}
	if len(c) == 0 {
		copy(out, x)
		return out
	}

	pad := min(c.padLength(), n-1)
	ext := oddExtend(x, pad)
	zi := c.steadyState()
	chain := biquad.NewChain(c)

	run(chain, zi, ext)
	reverse(ext)
	run(chain, zi, ext)
	reverse(ext)

	copy(out, ext[pad:pad+n])
	return out
}

// oddExtend returns x with pad samples on each side reflected through the
// end points: 2·x[0] - x[pad..1] before, 2·x[n-1] - x[n-2..] after.
func oddExtend(x []float64, pad int) []float64 {
	n := len(x)
	ext := make([]float64, n+2*pad)
	first, last := x[0], x[n-1]
	for i := range pad {
		ext[i] = 2*first - x[pad-i]
		ext[pad+n+i] = 2*last - x[n-2-i]
	}
	copy(ext[pad:], x)
	return ext
}

func reverse(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}
