package features

const (
	// DefaultFrameLength is the analysis window in samples.
	DefaultFrameLength = 2048
	// DefaultHopLength is the distance between successive frames.
	DefaultHopLength = 512
	// DefaultMFCC is the number of cepstral coefficients kept.
	DefaultMFCC = 13
	// DefaultMels is the number of mel bands.
	DefaultMels = 128

	rolloffPercent = 0.85

	// Log-power floor and dynamic range of the mel spectrogram.
	powerFloor = 1e-10
	topDB      = 80.0

	dynamicRangeEpsilon   = 1e-8
	zeroCrossingThreshold = 1e-10

	// Slaney mel scale: linear below 1 kHz, logarithmic above.
	melLinearStep = 200.0 / 3
	melBreakHz    = 1000.0
	melLogStep    = 0.06875177742094912 // ln(6.4) / 27
)

// Layout of a feature vector. The MFCC block sits between the five
// spectral/temporal scalars and the trailing dynamic range.
const (
	idxRMS = iota
	idxCentroid
	idxRolloff
	idxZCR
	idxBandwidth
	idxMFCC

	scalarFeatures = idxMFCC
)
