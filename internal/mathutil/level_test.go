package mathutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

const levelTolerance = 1e-12

func TestDBToLinear(t *testing.T) {
	tests := []struct {
		db       float64
		expected float64
	}{
		{0, 1},
		{20, 10},
		{-20, 0.1},
		{6, 1.9952623149688795},
		{-6, 0.5011872336272722},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.expected, DBToLinear(tt.db), levelTolerance, "dB=%v", tt.db)
		assert.InDelta(t, tt.db, LinearToDB(DBToLinear(tt.db)), 1e-9, "round trip dB=%v", tt.db)
	}
	assert.True(t, math.IsInf(LinearToDB(0), -1))
}

func TestPowerToDB(t *testing.T) {
	assert.InDelta(t, 0.0, PowerToDB(1, 1, 1e-10), levelTolerance)
	assert.InDelta(t, -100.0, PowerToDB(0, 1, 1e-10), levelTolerance, "silence floors at amin")
	assert.InDelta(t, -10.0, PowerToDB(0.1, 1, 1e-10), levelTolerance)
	assert.InDelta(t, -20.0, PowerToDB(1, 100, 1e-10), levelTolerance)
}

func TestClamp(t *testing.T) {
	assert.InDelta(t, -3.0, Clamp(-7, -3, 3), 0)
	assert.InDelta(t, 3.0, Clamp(math.Inf(1), -3, 3), 0)
	assert.InDelta(t, 1.5, Clamp(1.5, -3, 3), 0)
	assert.True(t, math.IsNaN(Clamp(math.NaN(), -3, 3)))
}

func TestMeanStdDev(t *testing.T) {
	x := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	assert.InDelta(t, 5.0, Mean(x), levelTolerance)
	assert.InDelta(t, 2.0, StdDev(x), levelTolerance, "population std")

	assert.Zero(t, Mean(nil))
	assert.Zero(t, StdDev([]float64{3}))
}
