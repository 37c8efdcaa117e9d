package audio

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func copyChannels(channels [][]float64) [][]float64 {
	out := make([][]float64, len(channels))
	for ch, data := range channels {
		out[ch] = append([]float64(nil), data...)
	}
	return out
}

func TestBuffer_Accessors(t *testing.T) {
	b := FromChannels([]float64{1, 2, 3}, []float64{4, 5, 6})

	assert.Equal(t, 2, b.NumChannels())
	assert.Equal(t, 3, b.Frames())
	assert.InDelta(t, 5.0, b.At(1, 1), 0)
	assert.Equal(t, 0, (&Buffer{}).Frames())
}

func TestBuffer_Mono(t *testing.T) {
	b := FromChannels([]float64{1, -1, 0.5}, []float64{0, 1, 0.5})
	assert.Equal(t, []float64{0.5, 0, 0.5}, b.Mono())

	single := FromChannels([]float64{0.25, 0.75})
	m := single.Mono()
	assert.Equal(t, []float64{0.25, 0.75}, m)
	m[0] = 1
	assert.InDelta(t, 0.25, single.Channels[0][0], 0, "mono must not alias the source")
}

func TestBuffer_AddAndShapeMismatch(t *testing.T) {
	a := FromChannels([]float64{1, 2}, []float64{3, 4})
	require.NoError(t, a.Add(FromChannels([]float64{0.5, 0.5}, []float64{-1, -1})))
	assert.Equal(t, [][]float64{{1.5, 2.5}, {2, 3}}, a.Channels)

	err := a.Add(FromChannels([]float64{1, 2, 3}, []float64{1, 2, 3}))
	require.ErrorIs(t, err, ErrShapeMismatch)
	err = a.Add(FromChannels([]float64{1, 2}))
	require.ErrorIs(t, err, ErrShapeMismatch)
}

func TestBuffer_Normalize(t *testing.T) {
	t.Run("over full scale", func(t *testing.T) {
		b := FromChannels([]float64{0.5, -2}, []float64{1, 1.5})
		peak := b.Normalize()

		assert.InDelta(t, 2.0, peak, 0)
		assert.InDelta(t, 1.0, b.Peak(), 1e-15)
		assert.InDelta(t, 0.25, b.Channels[0][0], 1e-15)

		before := copyChannels(b.Channels)
		assert.InDelta(t, 1.0, b.Normalize(), 1e-15)
		assert.Equal(t, before, b.Channels, "normalizing twice equals normalizing once")
	})

	t.Run("within full scale untouched", func(t *testing.T) {
		b := FromChannels([]float64{0.5, -0.9}, []float64{0.1, 0.2})
		before := copyChannels(b.Channels)
		assert.InDelta(t, 0.9, b.Normalize(), 0)
		assert.Equal(t, before, b.Channels)
	})
}

func TestBuffer_Scale(t *testing.T) {
	b := FromChannels([]float64{1, -2}, []float64{0.5, 0})
	b.Scale(0.5)
	assert.Equal(t, [][]float64{{0.5, -1}, {0.25, 0}}, b.Channels)
}

func TestToStereo(t *testing.T) {
	mono := FromChannels([]float64{0.1, 0.2, 0.3})
	s, err := ToStereo(mono)
	require.NoError(t, err)
	assert.Equal(t, 2, s.NumChannels())
	assert.Equal(t, s.Channels[0], s.Channels[1])

	s.Channels[1][0] = 9
	assert.InDelta(t, 0.1, s.Channels[0][0], 0, "duplicated channels must not share storage")

	stereo := FromChannels([]float64{1}, []float64{2})
	same, err := ToStereo(stereo)
	require.NoError(t, err)
	assert.Same(t, stereo, same)

	_, err = ToStereo(NewBuffer(3, 4))
	require.ErrorIs(t, err, ErrUnsupportedChannels)
	_, err = ToStereo(&Buffer{})
	require.ErrorIs(t, err, ErrUnsupportedChannels)
}

func TestAlign(t *testing.T) {
	src := FromChannels([]float64{1, 2, 3, 4}, []float64{5, 6, 7, 8})

	t.Run("equal length returns input", func(t *testing.T) {
		assert.Same(t, src, Align(src, 4))
	})

	t.Run("truncate drops tail", func(t *testing.T) {
		out := Align(src, 2)
		assert.Equal(t, [][]float64{{1, 2}, {5, 6}}, out.Channels)
		assert.Equal(t, 4, src.Frames(), "source untouched")
	})

	t.Run("pad appends silence", func(t *testing.T) {
		out := Align(src, 6)
		assert.Equal(t, [][]float64{{1, 2, 3, 4, 0, 0}, {5, 6, 7, 8, 0, 0}}, out.Channels)
	})

	t.Run("pad then truncate round trips", func(t *testing.T) {
		back := Align(Align(src, 10), 4)
		assert.Equal(t, src.Channels, back.Channels)
	})

	t.Run("align to zero", func(t *testing.T) {
		out := Align(src, 0)
		assert.Equal(t, 0, out.Frames())
		assert.Equal(t, 2, out.NumChannels())
	})
}

func TestBuffer_PeakIgnoresSign(t *testing.T) {
	b := FromChannels([]float64{0.1, -0.8}, []float64{math.Copysign(0.3, -1), 0.2})
	assert.InDelta(t, 0.8, b.Peak(), 0)
}
