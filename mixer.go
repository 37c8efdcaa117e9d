package mixer

import (
	"fmt"
	"io"
	"runtime"
	"slices"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/tphakala/go-stem-mixer/internal/audio"
	"github.com/tphakala/go-stem-mixer/internal/effects"
	"github.com/tphakala/go-stem-mixer/internal/features"
	"github.com/tphakala/go-stem-mixer/internal/mathutil"
	"github.com/tphakala/go-stem-mixer/internal/predict"
	"github.com/tphakala/go-stem-mixer/internal/resample"
)

// Stage identifies a step reported to a ProgressFunc.
type Stage string

// Progress stages. Every stem passes StageLoaded and then StageProcessed.
const (
	StageLoaded    Stage = "loaded"
	StageProcessed Stage = "processed"
)

// ProgressFunc is called once per stem and stage. It may be called from
// several goroutines at once.
type ProgressFunc func(stage Stage, stem string)

// Mixer loads, processes and sums stems. A Mixer holds no per-mix state
// and is safe for concurrent use.
type Mixer struct {
	log      logrus.FieldLogger
	workers  int
	model    GainModel
	progress ProgressFunc
}

// Option configures a Mixer.
type Option func(*Mixer)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l logrus.FieldLogger) Option {
	return func(m *Mixer) {
		if l != nil {
			m.log = l
		}
	}
}

// WithWorkers bounds how many stems are processed at once when
// Config.Parallel is set. Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(m *Mixer) {
		if n > 0 {
			m.workers = n
		}
	}
}

// WithGainModel attaches the model used by PredictorLearnedModel.
func WithGainModel(model GainModel) Option {
	return func(m *Mixer) {
		m.model = model
	}
}

// WithProgress registers a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(m *Mixer) {
		m.progress = fn
	}
}

// New returns a Mixer.
func New(opts ...Option) *Mixer {
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)

	m := &Mixer{
		log:     quiet,
		workers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// stem is the working state of one input during a mix.
type stem struct {
	name   string
	path   string
	buf    *audio.Buffer
	rate   int
	frames int
}

// Mix loads every stem, resamples it to cfg.SampleRate, settles its gain,
// aligns it to the longest stem, applies its effects chain and sums the
// result in sorted name order. With cfg.AutoGain the manual gains are
// replaced by predicted ones.
//
// Configuration errors are reported before any file is read. Failures in
// a single stem are returned as *StemError wrapping the cause.
func (m *Mixer) Mix(stems map[string]string, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(stems) == 0 {
		return nil, ErrNoStems
	}

	var predictor predict.Predictor
	if cfg.AutoGain {
		p, err := m.predictor(&cfg)
		if err != nil {
			return nil, err
		}
		predictor = p
	}

	inputs, frames, err := m.prepare(stems, &cfg)
	if err != nil {
		return nil, err
	}

	reports := make([]StemReport, len(inputs))
	err = m.forEach(cfg.Parallel, len(inputs), func(i int) error {
		r, err := m.process(&inputs[i], frames, &cfg, predictor)
		if err != nil {
			return err
		}
		reports[i] = r
		m.report(StageProcessed, inputs[i].name)
		return nil
	})
	if err != nil {
		return nil, err
	}

	mix := audio.NewBuffer(audio.StereoChannels, frames)
	for i := range inputs {
		if err := mix.Add(inputs[i].buf); err != nil {
			return nil, &StemError{Stem: inputs[i].name, Op: opEffects, Err: err}
		}
	}

	res := &Result{
		Buffer:     mix,
		SampleRate: cfg.SampleRate,
		Gains:      make(map[string]float64, len(reports)),
		AutoGain:   cfg.AutoGain,
		Predictor:  cfg.Predictor,
		Peak:       mix.Peak(),
		Stems:      reports,
	}
	if predictor != nil {
		res.Predictor = predictor.Kind()
	}
	for _, r := range reports {
		res.Gains[r.Name] = r.GainDB
	}

	if cfg.NormalizeOutput && res.Peak > 1 {
		mix.Normalize()
		res.Normalized = true
	}

	fields := logrus.Fields{
		"stems":      len(inputs),
		"frames":     frames,
		"rate":       cfg.SampleRate,
		"peak":       res.Peak,
		"normalized": res.Normalized,
	}
	if res.Peak > 0 {
		fields["peak_dbfs"] = mathutil.LinearToDB(res.Peak)
	}
	m.log.WithFields(fields).Info("mix complete")

	return res, nil
}

// PredictGains loads and resamples every stem and returns the predicted
// gain per stem without mixing. cfg.AutoGain is not required. Predictions
// equal the ones Mix would make for the same inputs.
func (m *Mixer) PredictGains(stems map[string]string, cfg Config) (map[string]float64, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(stems) == 0 {
		return nil, ErrNoStems
	}

	predictor, err := m.predictor(&cfg)
	if err != nil {
		return nil, err
	}

	inputs, _, err := m.prepare(stems, &cfg)
	if err != nil {
		return nil, err
	}

	gains := make([]float64, len(inputs))
	err = m.forEach(cfg.Parallel, len(inputs), func(i int) error {
		in := &inputs[i]
		p, err := predictor.Predict(in.buf, cfg.SampleRate, in.name)
		if err != nil {
			return &StemError{Stem: in.name, Op: opPredict, Err: err}
		}
		gains[i] = p.GainDB
		m.log.WithFields(logrus.Fields{
			"stem":      in.name,
			"gain_db":   p.GainDB,
			"predictor": p.Kind.String(),
		}).Info("predicted gain")
		m.report(StageProcessed, in.name)
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make(map[string]float64, len(inputs))
	for i := range inputs {
		out[inputs[i].name] = gains[i]
	}
	return out, nil
}

// predictor builds the gain predictor selected by cfg.
func (m *Mixer) predictor(cfg *Config) (predict.Predictor, error) {
	extractor, err := features.NewExtractor(cfg.featureConfig())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	var model predict.Model
	if m.model != nil {
		model = modelAdapter{model: m.model}
	}
	p, err := predict.New(cfg.Predictor, extractor, model)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return p, nil
}

// prepare loads and resamples every stem and returns them sorted by name
// together with the longest length in frames.
func (m *Mixer) prepare(stems map[string]string, cfg *Config) ([]stem, int, error) {
	names := make([]string, 0, len(stems))
	for name := range stems {
		names = append(names, name)
	}
	slices.Sort(names)

	inputs := make([]stem, len(names))
	for i, name := range names {
		inputs[i] = stem{name: name, path: stems[name]}
	}

	err := m.forEach(cfg.Parallel, len(inputs), func(i int) error {
		if err := m.load(&inputs[i], cfg); err != nil {
			return err
		}
		m.report(StageLoaded, inputs[i].name)
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	frames := 0
	for i := range inputs {
		frames = max(frames, inputs[i].buf.Frames())
	}
	return inputs, frames, nil
}

// load reads one stem and brings it to the working rate.
func (m *Mixer) load(in *stem, cfg *Config) error {
	buf, rate, err := audio.Load(in.path)
	if err != nil {
		return &StemError{Stem: in.name, Op: opLoad, Err: err}
	}
	in.rate = rate
	in.frames = buf.Frames()

	buf, err = resample.Resample(buf, rate, cfg.SampleRate, cfg.Quality)
	if err != nil {
		return &StemError{Stem: in.name, Op: opResample, Err: err}
	}
	in.buf = buf

	m.log.WithFields(logrus.Fields{
		"stem":   in.name,
		"path":   in.path,
		"rate":   rate,
		"frames": in.frames,
	}).Info("loaded stem")
	if rate != cfg.SampleRate {
		m.log.WithFields(logrus.Fields{
			"stem":    in.name,
			"from_hz": rate,
			"to_hz":   cfg.SampleRate,
			"quality": cfg.Quality.String(),
		}).Debug("resampled stem")
	}
	return nil
}

// process settles the gain of one stem, aligns it and runs the effects
// chain. Gains are predicted from the resampled stem before padding, so
// the silence added by alignment never skews the features.
func (m *Mixer) process(in *stem, frames int, cfg *Config, predictor predict.Predictor) (StemReport, error) {
	settings := cfg.Stem(in.name)

	report := StemReport{
		Name:         in.name,
		Path:         in.path,
		SourceRate:   in.rate,
		SourceFrames: in.frames,
		GainDB:       settings.GainDB,
	}

	if predictor != nil {
		p, err := predictor.Predict(in.buf, cfg.SampleRate, in.name)
		if err != nil {
			return report, &StemError{Stem: in.name, Op: opPredict, Err: err}
		}
		report.GainDB = p.GainDB
		report.Predicted = true
		report.Features = p.Features
		m.log.WithFields(logrus.Fields{
			"stem":      in.name,
			"gain_db":   p.GainDB,
			"predictor": p.Kind.String(),
		}).Info("predicted gain")
	}

	in.buf = audio.Align(in.buf, frames)
	if err := effects.Apply(in.buf, settings.effects(report.GainDB), cfg.SampleRate); err != nil {
		return report, &StemError{Stem: in.name, Op: opEffects, Err: err}
	}

	fields := logrus.Fields{
		"stem":    in.name,
		"gain_db": report.GainDB,
		"pan":     settings.Pan,
	}
	if settings.HighPassHz != nil {
		fields["highpass_hz"] = *settings.HighPassHz
	}
	if settings.LowPassHz != nil {
		fields["lowpass_hz"] = *settings.LowPassHz
	}
	m.log.WithFields(fields).Info("applied effects")

	return report, nil
}

func (m *Mixer) report(stage Stage, name string) {
	if m.progress != nil {
		m.progress(stage, name)
	}
}

// forEach runs fn for 0..n-1, concurrently on up to m.workers goroutines
// when parallel is set. The error of the lowest failing index is
// returned so that failures are reported deterministically.
func (m *Mixer) forEach(parallel bool, n int, fn func(i int) error) error {
	if !parallel || m.workers < 2 || n < 2 {
		for i := range n {
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	}

	errs := make([]error, n)
	sem := make(chan struct{}, m.workers)
	var wg sync.WaitGroup

	for i := range n {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()
			errs[idx] = fn(idx)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
