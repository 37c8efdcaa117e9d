// Command stem-mix mixes WAV stems into a single stereo WAV file.
//
// Usage:
//
//	stem-mix -dir stems/ -o mix.wav                          # drums/bass/synth/vocals.wav with the house preset
//	stem-mix -stem vocals=v.wav -stem drums=d.wav -o mix.wav    # unprocessed, centre-panned
//	stem-mix -stem vocals=v.wav -stem drums=d.wav -preset       # same with the house preset
//	stem-mix -config mix.yaml                                # stems, effects and output from a file
//	stem-mix -dir stems/ -auto -predictor spectrogram        # predicted gains
//	stem-mix -dir stems/ -predict                            # print predicted gains only
//
// Flags given on the command line override the config file. The
// STEMMIX_SAMPLE_RATE and STEMMIX_BIT_DEPTH environment variables override
// both.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/pprof"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	mixer "github.com/tphakala/go-stem-mixer"
)

const (
	kHzToHz = 1000

	defaultOutput = "mix.wav"

	verbosityInfo  = 1
	verbosityDebug = 2

	envSampleRate = "STEMMIX_SAMPLE_RATE"
	envBitDepth   = "STEMMIX_BIT_DEPTH"
)

var errUsage = errors.New("no stems given: use -dir, -stem or -config")

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr, os.Getenv); err != nil {
		fmt.Fprintf(os.Stderr, "stem-mix: %v\n", err)
		os.Exit(1)
	}
}

// options is the parsed command line.
type options struct {
	output     string
	configPath string
	dir        string
	stems      stemFlag
	preset     bool
	auto       bool
	predictor  string
	quality    string
	rateKHz    float64
	bitDepth   int
	parallel   bool
	noNorm     bool
	predict    bool
	verbose    bool
	debug      bool
	noProgress bool
	cpuprofile string

	set map[string]bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{stems: stemFlag{}}
	fs := flag.NewFlagSet("stem-mix", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.output, "o", defaultOutput, "Output WAV file")
	fs.StringVar(&opts.configPath, "config", "", "YAML mix description")
	fs.StringVar(&opts.dir, "dir", "", "Directory holding drums.wav, bass.wav, synth.wav and vocals.wav")
	fs.Var(opts.stems, "stem", "Stem as name=path (repeatable)")
	fs.BoolVar(&opts.preset, "preset", false, "Apply the house preset to stems without settings (default with -dir)")
	fs.BoolVar(&opts.auto, "auto", false, "Predict per-stem gains instead of using the configured ones")
	fs.StringVar(&opts.predictor, "predictor", "rule-based", "Gain predictor: rule-based, spectrogram")
	fs.StringVar(&opts.quality, "quality", "high", "Resampling quality: quick, low, medium, high, veryhigh")
	fs.Float64Var(&opts.rateKHz, "rate", 0, "Working and output sample rate in kHz (default 44.1)")
	fs.IntVar(&opts.bitDepth, "bits", mixer.DefaultBitDepth, "Output bit depth: 16, 24 or 32")
	fs.BoolVar(&opts.parallel, "parallel", true, "Process stems concurrently")
	fs.BoolVar(&opts.noNorm, "no-normalize", false, "Keep peaks above full scale instead of normalizing")
	fs.BoolVar(&opts.predict, "predict", false, "Print predicted gains and exit without mixing")
	fs.BoolVar(&opts.verbose, "v", false, "Verbose output")
	fs.BoolVar(&opts.debug, "vv", false, "Debug output")
	fs.BoolVar(&opts.noProgress, "no-progress", false, "Disable the progress bar")
	fs.StringVar(&opts.cpuprofile, "cpuprofile", "", "Write CPU profile to file (for PGO)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: stem-mix [options]\n\nOptions:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  stem-mix -dir stems -o mix.wav\n")
		fmt.Fprintf(stderr, "  stem-mix -stem vocals=v.wav -stem bass=b.wav -auto\n")
		fmt.Fprintf(stderr, "  stem-mix -config mix.yaml -bits 24\n")
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	opts.set = map[string]bool{}
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })
	return opts, nil
}

func run(args []string, stdout, stderr io.Writer, getenv func(string) string) error {
	opts, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	if opts.cpuprofile != "" {
		f, err := os.Create(opts.cpuprofile)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	job, err := buildJob(opts, getenv)
	if err != nil {
		return err
	}
	if len(job.stems) == 0 {
		return errUsage
	}

	log := newLogger(stderr, opts)
	log.WithFields(logrus.Fields{
		"stems":     len(job.stems),
		"rate":      job.cfg.SampleRate,
		"quality":   job.cfg.Quality.String(),
		"auto_gain": job.cfg.AutoGain,
		"output":    job.output,
	}).Info("starting mix")

	bar := newProgress(stderr, len(job.stems), !opts.noProgress)
	m := mixer.New(mixer.WithLogger(log), mixer.WithProgress(bar.update))

	start := time.Now()
	if opts.predict {
		gains, err := m.PredictGains(job.stems, job.cfg)
		bar.finish(err == nil)
		if err != nil {
			return err
		}
		printGains(stdout, gains)
		return nil
	}

	res, err := m.Mix(job.stems, job.cfg)
	bar.finish(err == nil)
	if err != nil {
		return err
	}
	if err := res.Save(job.output, job.bitDepth); err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Fprintf(stdout, "Mixed %d stems -> %s\n", len(job.stems), filepath.Base(job.output))
	fmt.Fprintf(stdout, "  %d Hz, %d-bit, %.2fs\n", res.SampleRate, bitDepthOrDefault(job.bitDepth), res.Duration().Seconds())
	if res.Normalized {
		fmt.Fprintf(stdout, "  Normalized from peak %.3f\n", res.Peak)
	}
	if res.AutoGain {
		fmt.Fprintf(stdout, "  Gains (%s):\n", res.Predictor)
	} else {
		fmt.Fprintf(stdout, "  Gains:\n")
	}
	printGains(stdout, res.Gains)
	fmt.Fprintf(stdout, "  Elapsed: %.2fs\n", elapsed.Seconds())
	return nil
}

func printGains(w io.Writer, gains map[string]float64) {
	names := make([]string, 0, len(gains))
	for name := range gains {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "    %-10s %+6.2f dB\n", name, gains[name])
	}
}

func bitDepthOrDefault(bits int) int {
	if bits == 0 {
		return mixer.DefaultBitDepth
	}
	return bits
}
