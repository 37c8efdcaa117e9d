package features

import "math"

// melFilter is one triangular band stored sparsely: weights apply to the
// spectrum bins starting at start.
type melFilter struct {
	start   int
	weights []float64
}

func hzToMel(hz float64) float64 {
	if hz < melBreakHz {
		return hz / melLinearStep
	}
	return melBreakHz/melLinearStep + math.Log(hz/melBreakHz)/melLogStep
}

func melToHz(mel float64) float64 {
	breakMel := melBreakHz / melLinearStep
	if mel < breakMel {
		return mel * melLinearStep
	}
	return melBreakHz * math.Exp(melLogStep*(mel-breakMel))
}

// melFilterbank builds nMels Slaney-normalized triangular filters spanning
// 0 Hz to Nyquist over the nFFT/2+1 spectrum bins. Each filter is scaled
// by 2/(upper-lower) so bands carry equal energy.
func melFilterbank(nMels, nFFT, sampleRate int) []melFilter {
	bins := nFFT/2 + 1
	fftFreqs := make([]float64, bins)
	for k := range fftFreqs {
		fftFreqs[k] = float64(k) * float64(sampleRate) / float64(nFFT)
	}

	maxMel := hzToMel(float64(sampleRate) / 2)
	edges := make([]float64, nMels+2)
	for i := range edges {
		edges[i] = melToHz(maxMel * float64(i) / float64(nMels+1))
	}

	filters := make([]melFilter, nMels)
	for m := range filters {
		lower, centre, upper := edges[m], edges[m+1], edges[m+2]
		norm := 2 / (upper - lower)

		start := 0
		var weights []float64
		for k, f := range fftFreqs {
			rising := (f - lower) / (centre - lower)
			falling := (upper - f) / (upper - centre)
			w := math.Max(0, math.Min(rising, falling))
			if w > 0 {
				if weights == nil {
					start = k
				}
				weights = append(weights, w*norm)
			} else if weights != nil {
				break
			}
		}
		filters[m] = melFilter{start: start, weights: weights}
	}
	return filters
}

// apply returns the filter's weighted sum over the power spectrum.
func (f melFilter) apply(power []float64) float64 {
	var sum float64
	for i, w := range f.weights {
		sum += w * power[f.start+i]
	}
	return sum
}

// dctBasis returns the orthonormal DCT-II rows 0..n-1 for inputs of
// length size.
func dctBasis(n, size int) [][]float64 {
	basis := make([][]float64, n)
	for k := range basis {
		row := make([]float64, size)
		scale := math.Sqrt(2 / float64(size))
		if k == 0 {
			scale = math.Sqrt(1 / float64(size))
		}
		for i := range row {
			row[i] = scale * math.Cos(math.Pi*float64(k)*(2*float64(i)+1)/(2*float64(size)))
		}
		basis[k] = row
	}
	return basis
}
