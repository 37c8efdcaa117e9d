package resample

import (
	"sync"

	"github.com/tphakala/go-stem-mixer/internal/filter"
	"github.com/tphakala/go-stem-mixer/internal/mathutil"
)

// tablePrecision is the number of table entries per sinc zero crossing.
// Values between entries are linearly interpolated.
const tablePrecision = 512

// kernel holds the right half of a Kaiser-windowed sinc, sampled at
// tablePrecision points per zero crossing. The left half is its mirror.
type kernel struct {
	table         []float64
	delta         []float64
	zeroCrossings int
}

var (
	kernelMu    sync.Mutex
	kernelCache = map[Quality]*kernel{}
)

// kernelFor returns the shared kernel for q, building it on first use.
func kernelFor(q Quality) *kernel {
	kernelMu.Lock()
	defer kernelMu.Unlock()

	if k, ok := kernelCache[q]; ok {
		return k
	}
	k := newKernel(kernelSpecs[q])
	kernelCache[q] = k
	return k
}

func newKernel(spec kernelSpec) *kernel {
	n := spec.zeroCrossings*tablePrecision + 1

	// Right half of a symmetric window centred on table[0].
	window := filter.KaiserWindow(2*n-1, mathutil.KaiserBeta(spec.attenuation))[n-1:]

	table := make([]float64, n)
	for i := range table {
		x := float64(i) / tablePrecision
		table[i] = spec.rolloff * mathutil.Sinc(spec.rolloff*x) * window[i]
	}

	delta := make([]float64, n)
	for i := range n - 1 {
		delta[i] = table[i+1] - table[i]
	}

	return &kernel{table: table, delta: delta, zeroCrossings: spec.zeroCrossings}
}

// at evaluates the kernel at distance d from the centre, measured in
// zero crossings. Distances beyond the table are zero.
func (k *kernel) at(d float64) float64 {
	p := d * tablePrecision
	i := int(p)
	if i >= len(k.table)-1 {
		return 0
	}
	return k.table[i] + (p-float64(i))*k.delta[i]
}
