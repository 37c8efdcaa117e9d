package predict

import (
	"errors"
	"fmt"
	"math"

	"github.com/tphakala/go-stem-mixer/internal/audio"
	"github.com/tphakala/go-stem-mixer/internal/features"
)

// Kind identifies which predictor produced a gain.
type Kind int

const (
	// KindRuleBased applies Compute to the feature vector.
	KindRuleBased Kind = iota
	// KindSpectrogram also summarizes the mel spectrogram but, without a
	// model, resolves to the rule-based gain.
	KindSpectrogram
	// KindLearnedModel delegates to an attached Model.
	KindLearnedModel
)

func (k Kind) String() string {
	switch k {
	case KindRuleBased:
		return "rule-based"
	case KindSpectrogram:
		return "spectrogram"
	case KindLearnedModel:
		return "learned-model"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ErrModel wraps failures reported by an attached Model.
var ErrModel = errors.New("gain model failed")

// Prediction is the outcome for one stem.
type Prediction struct {
	GainDB   float64
	Features features.Vector
	Mel      *features.MelStats
	Kind     Kind
}

// Predictor estimates the gain for one stem buffer. Implementations are
// safe for concurrent use.
type Predictor interface {
	Predict(buf *audio.Buffer, sampleRate int, label string) (Prediction, error)
	Kind() Kind
}

// Model is a learned gain estimator. It receives the feature vector and
// the mel summary and returns a gain in dB, which is clamped to the
// prediction bounds.
type Model interface {
	PredictGain(v features.Vector, mel features.MelStats, label string) (float64, error)
}

// RuleBased predicts with Compute.
type RuleBased struct {
	extractor *features.Extractor
}

// NewRuleBased returns a rule-based predictor using the given extractor.
func NewRuleBased(extractor *features.Extractor) *RuleBased {
	return &RuleBased{extractor: extractor}
}

// Kind reports KindRuleBased.
func (r *RuleBased) Kind() Kind { return KindRuleBased }

// Predict extracts features from buf and applies Compute.
func (r *RuleBased) Predict(buf *audio.Buffer, sampleRate int, label string) (Prediction, error) {
	v, err := r.extractor.Extract(buf, sampleRate)
	if err != nil {
		return Prediction{}, err
	}
	return Prediction{GainDB: Compute(v, label), Features: v, Kind: KindRuleBased}, nil
}

// Spectrogram summarizes the log-mel spectrogram alongside the feature
// vector. With a Model attached the model decides the gain; otherwise the
// rule-based formula does.
type Spectrogram struct {
	extractor *features.Extractor
	model     Model
}

// NewSpectrogram returns a spectrogram predictor. model may be nil.
func NewSpectrogram(extractor *features.Extractor, model Model) *Spectrogram {
	return &Spectrogram{extractor: extractor, model: model}
}

// Kind reports KindLearnedModel when a model is attached and
// KindSpectrogram otherwise.
func (s *Spectrogram) Kind() Kind {
	if s.model != nil {
		return KindLearnedModel
	}
	return KindSpectrogram
}

// Predict analyzes buf and returns the model's gain when a model is
// attached, or the rule-based gain otherwise.
func (s *Spectrogram) Predict(buf *audio.Buffer, sampleRate int, label string) (Prediction, error) {
	v, mel, err := s.extractor.Analyze(buf, sampleRate)
	if err != nil {
		return Prediction{}, err
	}

	p := Prediction{Features: v, Mel: &mel, Kind: s.Kind()}
	if s.model == nil {
		p.GainDB = Compute(v, label)
		return p, nil
	}

	gain, err := s.model.PredictGain(v, mel, label)
	if err != nil {
		return Prediction{}, fmt.Errorf("%w: %w", ErrModel, err)
	}
	if math.IsNaN(gain) {
		return Prediction{}, fmt.Errorf("%w: model returned NaN for %q", ErrModel, label)
	}
	p.GainDB = term(gain, MinGainDB, MaxGainDB)
	return p, nil
}

// New returns the predictor for kind. A model is only used by the
// spectrogram and learned-model kinds; KindLearnedModel requires one.
func New(kind Kind, extractor *features.Extractor, model Model) (Predictor, error) {
	switch kind {
	case KindRuleBased:
		return NewRuleBased(extractor), nil
	case KindSpectrogram:
		return NewSpectrogram(extractor, nil), nil
	case KindLearnedModel:
		if model == nil {
			return nil, fmt.Errorf("%w: %s requires a model", ErrModel, kind)
		}
		return NewSpectrogram(extractor, model), nil
	default:
		return nil, fmt.Errorf("unknown predictor kind %d", int(kind))
	}
}
