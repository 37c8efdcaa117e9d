package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tphakala/go-stem-mixer/internal/testutil"
)

func TestMelScale(t *testing.T) {
	assert.InDelta(t, 15.0, hzToMel(1000), 1e-12)
	assert.InDelta(t, 7.5, hzToMel(500), 1e-12)

	for _, hz := range []float64{0, 200, 999, 1000, 4000, 22050} {
		assert.InDelta(t, hz, melToHz(hzToMel(hz)), 1e-9*(1+hz), "round trip %v Hz", hz)
	}
}

func TestMelFilterbank(t *testing.T) {
	bank := melFilterbank(DefaultMels, DefaultFrameLength, testRate)
	assert.Len(t, bank, DefaultMels)

	binHz := float64(testRate) / DefaultFrameLength
	prevStart := -1
	for m, f := range bank {
		if !assert.NotEmpty(t, f.weights, "band %d empty", m) {
			continue
		}
		assert.GreaterOrEqual(t, f.start, prevStart, "bands ascend")
		prevStart = f.start
		assert.LessOrEqual(t, f.start+len(f.weights), DefaultFrameLength/2+1)
		testutil.AssertAllInRange(t, f.weights, 0, 1)

		// Slaney normalization gives each triangle unit area in Hz.
		if m > 10 {
			var sum float64
			for _, w := range f.weights {
				sum += w
			}
			testutil.AssertRelativeError(t, 1.0, sum*binHz, 0.15)
		}
	}
}

func TestDCTBasis_Orthonormal(t *testing.T) {
	const size = 16
	basis := dctBasis(size, size)
	for i := range basis {
		for j := range basis {
			var dot float64
			for k := range size {
				dot += basis[i][k] * basis[j][k]
			}
			want := 0.0
			if i == j {
				want = 1.0
			}
			assert.InDelta(t, want, dot, 1e-12, "rows %d,%d", i, j)
		}
	}
}
