// Package mixer combines independently recorded audio stems (drums,
// bass, vocals, synth, ...) into a single stereo mix.
//
// Every stem is loaded from a WAV file, resampled to a common working
// rate, aligned to the longest stem, passed through a fixed effects chain
// (gain, equal-power pan, zero-phase Butterworth high-pass and low-pass),
// summed and finally peak-normalized. Gains can be given by hand or
// estimated per stem from acoustic features.
//
// # Quick Start
//
//	stems := map[string]string{
//	    "drums":  "stems/drums.wav",
//	    "vocals": "stems/vocals.wav",
//	}
//
//	cfg := mixer.DefaultConfig()
//	cfg.Stems["vocals"] = mixer.StemSettings{GainDB: 1, HighPassHz: mixer.Hz(80)}
//
//	res, err := mixer.New().Mix(stems, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := res.Save("mix.wav", 16); err != nil {
//	    log.Fatal(err)
//	}
//
// # Automatic Gain
//
// With [Config.AutoGain] set, manual gains are ignored and each stem's
// gain comes from a rule over its RMS level, spectral centroid and
// dynamic range, bounded to ±6 dB:
//
//	cfg.AutoGain = true
//	gains, err := mixer.New().PredictGains(stems, cfg)
//
// [PredictorSpectrogram] additionally summarizes the log-mel spectrogram
// but still resolves to the rule. [PredictorLearnedModel] hands the
// features and the mel summary to a [GainModel] supplied with
// [WithGainModel]. [Result.Predictor] records which one was used.
//
// # Determinism
//
// Stems are accumulated in sorted-name order, so the same inputs always
// produce bit-identical output regardless of map iteration order or how
// many workers processed the stems.
//
// # Logging
//
// The mixer is silent by default. Pass a logrus logger with [WithLogger]
// to get a structured transcript of what was loaded and applied. The
// transcript is informational and its wording may change.
package mixer
