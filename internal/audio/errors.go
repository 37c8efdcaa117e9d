package audio

import "errors"

// Errors returned by the sample store.
var (
	// ErrIO wraps every failure to read or write an audio file.
	ErrIO = errors.New("audio I/O error")

	// ErrUnsupportedChannels is returned for sources that are neither
	// mono nor stereo.
	ErrUnsupportedChannels = errors.New("unsupported channel count")

	// ErrUnsupportedBitDepth is returned when encoding to a bit depth the
	// WAV writer does not support.
	ErrUnsupportedBitDepth = errors.New("unsupported bit depth")

	// ErrShapeMismatch is returned when combining buffers of different
	// channel counts or lengths.
	ErrShapeMismatch = errors.New("buffer shape mismatch")
)
