package features

// Vector is the fixed-layout acoustic description of a stem:
//
//	[RMS, centroid/nyq, rolloff/nyq, ZCR, bandwidth/nyq, MFCC₁..MFCCₙ, dynamic range]
//
// Frequency features are normalized by the Nyquist frequency, so all but
// the MFCCs are roughly unit scale.
type Vector []float64

// Len returns the expected vector length for n MFCC coefficients.
func Len(numMFCC int) int {
	return scalarFeatures + numMFCC + 1
}

func (v Vector) at(i int) float64 {
	if i < 0 || i >= len(v) {
		return 0
	}
	return v[i]
}

// RMS is the mean frame RMS level.
func (v Vector) RMS() float64 { return v.at(idxRMS) }

// Centroid is the mean spectral centroid divided by Nyquist.
func (v Vector) Centroid() float64 { return v.at(idxCentroid) }

// Rolloff is the mean 85 % energy rolloff frequency divided by Nyquist.
func (v Vector) Rolloff() float64 { return v.at(idxRolloff) }

// ZCR is the mean zero-crossing rate per sample.
func (v Vector) ZCR() float64 { return v.at(idxZCR) }

// Bandwidth is the mean spectral bandwidth divided by Nyquist.
func (v Vector) Bandwidth() float64 { return v.at(idxBandwidth) }

// MFCC returns the mean cepstral coefficients.
func (v Vector) MFCC() []float64 {
	if len(v) <= idxMFCC+1 {
		return nil
	}
	return v[idxMFCC : len(v)-1]
}

// DynamicRange is stddev(x) / (mean|x| + ε) over the whole mono signal.
func (v Vector) DynamicRange() float64 {
	if len(v) <= idxMFCC {
		return 0
	}
	return v[len(v)-1]
}
