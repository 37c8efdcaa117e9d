package audio

// Align returns b with every channel cut or zero-padded at the tail to
// exactly frames samples. A buffer that already has the right length is
// returned as is; otherwise a new buffer is allocated and b is left
// unchanged. Content is never resampled.
func Align(b *Buffer, frames int) *Buffer {
	if b.Frames() == frames {
		return b
	}

	out := NewBuffer(b.NumChannels(), frames)
	for ch, data := range b.Channels {
		copy(out.Channels[ch], data)
	}
	return out
}
