package audio

// StereoChannels is the channel count of every loaded stem and mix.
const StereoChannels = 2

const (
	monoChannels = 1

	bitDepth8  = 8
	bitDepth16 = 16
	bitDepth24 = 24
	bitDepth32 = 32

	// DefaultBitDepth is used by Save when no bit depth is given.
	DefaultBitDepth = bitDepth16

	// Full-scale values for signed PCM.
	maxInt8  = 127.0
	maxInt16 = 32767.0
	maxInt24 = 8388607.0
	maxInt32 = 2147483647.0

	// 8-bit WAV samples are unsigned with silence at 128.
	uint8Offset = 128

	wavFormatPCM        = 1
	wavFormatIEEEFloat  = 3
	wavFormatExtensible = 0xFFFE
)
