// Package config layers TOML file settings and AUTOCUT_ environment
// variables over built-in detection defaults.
package config

import (
	"context"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/sethvargo/go-envconfig"

	"gitlab.com/mathbou/autocut/internal/cut"
)

// Detect holds the silence detection parameters.
type Detect struct {
	ThresholdDB   float64 `toml:"threshold_db" env:"THRESHOLD_DB, overwrite"`
	MinSilenceSec float64 `toml:"min_silence_sec" env:"MIN_SILENCE_SEC, overwrite"`
	MarginFrames  int     `toml:"margin_frames" env:"MARGIN_FRAMES, overwrite"`
}

// Audio holds audio extraction settings.
type Audio struct {
	SampleRate           int     `toml:"sample_rate" env:"SAMPLE_RATE, overwrite"`
	DurationToleranceSec float64 `toml:"duration_tolerance_sec" env:"DURATION_TOLERANCE_SEC, overwrite"`
}

// Tools names the external binaries the pipeline shells out to.
type Tools struct {
	FFmpeg  string `toml:"ffmpeg" env:"FFMPEG, overwrite"`
	FFprobe string `toml:"ffprobe" env:"FFPROBE, overwrite"`
}

// Config carries every tunable the pipeline reads.
type Config struct {
	Detect Detect `toml:"detect" env:", prefix=DETECT_"`
	Audio  Audio  `toml:"audio" env:", prefix=AUDIO_"`
	Tools  Tools  `toml:"tools" env:", prefix=TOOLS_"`
}

// Default returns the built-in settings: cut below -50 dBFS, keep silences
// shorter than 1.75 s, and pad every cut by 4 frames of 48 kHz mono audio.
func Default() Config {
	return Config{
		Detect: Detect{ThresholdDB: -50, MinSilenceSec: 1.75, MarginFrames: 4},
		Audio:  Audio{SampleRate: 48000, DurationToleranceSec: 0.5},
		Tools:  Tools{FFmpeg: "ffmpeg", FFprobe: "ffprobe"},
	}
}

// Load layers the TOML file at path (when given) and AUTOCUT_-prefixed
// environment variables over the defaults, then validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		if err := toml.NewDecoder(file).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := envconfig.ProcessWith(context.Background(), &envconfig.Config{
		Target:   &cfg,
		Lookuper: envconfig.PrefixLookuper("AUTOCUT_", envconfig.OsLookuper()),
	}); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every field against its domain. Errors are
// *cut.ParameterError values, the same type the engine reports, so config
// and flag mistakes read identically.
func (c *Config) Validate() error {
	if c.Detect.ThresholdDB >= 0 {
		return &cut.ParameterError{Param: "threshold", Value: c.Detect.ThresholdDB, Reason: "must be below 0 dBFS"}
	}
	if c.Detect.MinSilenceSec <= 0 {
		return &cut.ParameterError{Param: "min-length", Value: c.Detect.MinSilenceSec, Reason: "must be positive"}
	}
	if c.Detect.MarginFrames < 0 {
		return &cut.ParameterError{Param: "margin", Value: c.Detect.MarginFrames, Reason: "must not be negative"}
	}
	if c.Audio.SampleRate < 8000 || c.Audio.SampleRate > 192000 {
		return &cut.ParameterError{Param: "sample-rate", Value: c.Audio.SampleRate, Reason: "must be between 8000 and 192000 Hz"}
	}
	if c.Audio.DurationToleranceSec < 0 {
		return &cut.ParameterError{Param: "duration-tolerance", Value: c.Audio.DurationToleranceSec, Reason: "must not be negative"}
	}
	if c.Tools.FFmpeg == "" {
		return &cut.ParameterError{Param: "ffmpeg", Value: c.Tools.FFmpeg, Reason: "binary name must not be empty"}
	}
	if c.Tools.FFprobe == "" {
		return &cut.ParameterError{Param: "ffprobe", Value: c.Tools.FFprobe, Reason: "binary name must not be empty"}
	}
	return nil
}
