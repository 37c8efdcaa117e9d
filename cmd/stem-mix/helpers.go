package main

import (
	"bytes"
	"fmt"
	"io"
	"maps"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"gopkg.in/yaml.v3"

	mixer "github.com/tphakala/go-stem-mixer"
)

const (
	progressWidth  = 64
	progressStages = 2 // loaded, processed
)

// stemFlag collects repeated -stem name=path flags.
type stemFlag map[string]string

func (s stemFlag) String() string {
	parts := make([]string, 0, len(s))
	for name, path := range s {
		parts = append(parts, name+"="+path)
	}
	return strings.Join(parts, ",")
}

func (s stemFlag) Set(v string) error {
	name, path, ok := strings.Cut(v, "=")
	name, path = strings.TrimSpace(name), strings.TrimSpace(path)
	if !ok || name == "" || path == "" {
		return fmt.Errorf("stem %q: want name=path", v)
	}
	s[name] = path
	return nil
}

// fileConfig is the YAML mix description.
type fileConfig struct {
	SampleRate            int                 `yaml:"sample_rate"`
	NormalizeOutput       *bool               `yaml:"normalize_output"`
	AutoGain              bool                `yaml:"auto_gain"`
	UseAlternatePredictor bool                `yaml:"use_alternate_predictor"`
	Predictor             string              `yaml:"predictor"`
	Quality               string              `yaml:"quality"`
	Parallel              *bool               `yaml:"parallel"`
	MFCC                  int                 `yaml:"mfcc"`
	Preset                bool                `yaml:"preset"`
	Output                string              `yaml:"output"`
	BitDepth              int                 `yaml:"bit_depth"`
	Stems                 map[string]fileStem `yaml:"stems"`
}

type fileStem struct {
	Path       string   `yaml:"path"`
	GainDB     float64  `yaml:"gain_db"`
	Pan        float64  `yaml:"pan"`
	HighPassHz *float64 `yaml:"highpass_hz"`
	LowPassHz  *float64 `yaml:"lowpass_hz"`
}

// loadConfigFile reads a YAML mix description. Unknown keys are errors so
// that typos do not silently fall back to defaults.
func loadConfigFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read config: %w", mixer.ErrIO, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var fc fileConfig
	if err := dec.Decode(&fc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w: parse %s: %w", mixer.ErrConfiguration, path, err)
	}
	return &fc, nil
}

// job is everything one invocation needs.
type job struct {
	cfg      mixer.Config
	stems    map[string]string
	output   string
	bitDepth int
}

// apply builds a job from the file. Relative stem and output paths are
// resolved against base.
func (fc *fileConfig) apply(base string) (*job, error) {
	cfg := mixer.DefaultConfig()
	if fc.Preset {
		cfg = mixer.DefaultPreset()
	}

	if fc.SampleRate != 0 {
		cfg.SampleRate = fc.SampleRate
	}
	if fc.NormalizeOutput != nil {
		cfg.NormalizeOutput = *fc.NormalizeOutput
	}
	if fc.Parallel != nil {
		cfg.Parallel = *fc.Parallel
	}
	if fc.MFCC != 0 {
		cfg.MFCC = fc.MFCC
	}
	cfg.AutoGain = fc.AutoGain

	switch {
	case fc.Predictor != "":
		k, err := mixer.ParsePredictorKind(fc.Predictor)
		if err != nil {
			return nil, err
		}
		cfg.Predictor = k
	case fc.UseAlternatePredictor:
		cfg.Predictor = mixer.PredictorSpectrogram
	}
	if fc.Quality != "" {
		q, err := mixer.ParseQuality(fc.Quality)
		if err != nil {
			return nil, err
		}
		cfg.Quality = q
	}

	j := &job{
		cfg:      cfg,
		stems:    map[string]string{},
		output:   resolve(base, fc.Output),
		bitDepth: fc.BitDepth,
	}
	for name, s := range fc.Stems {
		j.cfg.Stems[name] = mixer.StemSettings{
			GainDB:     s.GainDB,
			Pan:        s.Pan,
			HighPassHz: s.HighPassHz,
			LowPassHz:  s.LowPassHz,
		}
		if s.Path != "" {
			j.stems[name] = resolve(base, s.Path)
		}
	}
	return j, nil
}

func resolve(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

// buildJob merges the config file, the command line and the environment,
// in increasing order of precedence. Stems start with zero settings; the
// house preset fills in stems without settings when -dir is used or
// -preset is given.
func buildJob(opts *options, getenv func(string) string) (*job, error) {
	j := &job{cfg: mixer.DefaultConfig(), stems: map[string]string{}}
	fromFile := opts.configPath != ""
	if fromFile {
		fc, err := loadConfigFile(opts.configPath)
		if err != nil {
			return nil, err
		}
		if j, err = fc.apply(filepath.Dir(opts.configPath)); err != nil {
			return nil, err
		}
	}

	// Flags replace file values only when given explicitly.
	use := func(name string) bool { return !fromFile || opts.set[name] }

	if opts.dir != "" {
		found, err := mixer.DiscoverStems(opts.dir)
		if err != nil {
			return nil, err
		}
		maps.Copy(j.stems, found)
	}
	maps.Copy(j.stems, opts.stems)

	usePreset := opts.dir != ""
	if opts.set["preset"] {
		usePreset = opts.preset
	}
	if usePreset {
		for name, settings := range mixer.DefaultPreset().Stems {
			if _, ok := j.cfg.Stems[name]; !ok {
				j.cfg.Stems[name] = settings
			}
		}
	}

	if use("o") || j.output == "" {
		j.output = opts.output
	}
	if use("bits") || j.bitDepth == 0 {
		j.bitDepth = opts.bitDepth
	}
	if opts.set["auto"] {
		j.cfg.AutoGain = opts.auto
	}
	if use("predictor") {
		k, err := mixer.ParsePredictorKind(opts.predictor)
		if err != nil {
			return nil, err
		}
		j.cfg.Predictor = k
	}
	if use("quality") {
		q, err := mixer.ParseQuality(opts.quality)
		if err != nil {
			return nil, err
		}
		j.cfg.Quality = q
	}
	if opts.rateKHz > 0 {
		j.cfg.SampleRate = int(math.Round(opts.rateKHz * kHzToHz))
	}
	if use("parallel") {
		j.cfg.Parallel = opts.parallel
	}
	if opts.noNorm {
		j.cfg.NormalizeOutput = false
	}

	if err := applyEnv(j, getenv); err != nil {
		return nil, err
	}
	return j, nil
}

// applyEnv applies the STEMMIX_* overrides.
func applyEnv(j *job, getenv func(string) string) error {
	if v := getenv(envSampleRate); v != "" {
		rate, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %w", mixer.ErrConfiguration, envSampleRate, v, err)
		}
		j.cfg.SampleRate = rate
	}
	if v := getenv(envBitDepth); v != "" {
		bits, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %w", mixer.ErrConfiguration, envBitDepth, v, err)
		}
		j.bitDepth = bits
	}
	return nil
}

func newLogger(w io.Writer, opts *options) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.TimeOnly,
	})

	switch {
	case opts.debug:
		log.SetLevel(logrus.DebugLevel)
	case opts.verbose:
		log.SetLevel(logrus.InfoLevel)
	default:
		log.SetLevel(logrus.WarnLevel)
	}
	return log
}

// progress renders one bar tick per stem and stage. The zero value is a
// no-op.
type progress struct {
	p   *mpb.Progress
	bar *mpb.Bar
}

func newProgress(w io.Writer, stems int, enabled bool) *progress {
	if !enabled || stems == 0 {
		return &progress{}
	}

	p := mpb.New(mpb.WithOutput(w), mpb.WithWidth(progressWidth))
	bar := p.AddBar(int64(stems*progressStages),
		mpb.PrependDecorators(
			decor.Name("Mixing: "),
			decor.CountersNoUnit("%d / %d"),
		),
		mpb.AppendDecorators(
			decor.Percentage(),
			decor.Name(" "),
			decor.Elapsed(decor.ET_STYLE_GO),
		),
	)
	return &progress{p: p, bar: bar}
}

func (p *progress) update(mixer.Stage, string) {
	if p.bar != nil {
		p.bar.Increment()
	}
}

// finish waits for the bar to render. A failed run aborts the bar so
// that Wait does not block on the missing ticks.
func (p *progress) finish(ok bool) {
	if p.p == nil {
		return
	}
	if !ok {
		p.bar.Abort(false)
	}
	p.p.Wait()
}
