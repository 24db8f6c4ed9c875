package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if STEMSCORE_CONFIG is set
//  3. env (prefix STEMSCORE_)
func Load(_ context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("STEMSCORE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: STEMSCORE_SAMPLE_RATE, STEMSCORE_MUSIC_DIR, ...
	// Map env keys like STEMSCORE_SAMPLE_RATE -> sample_rate (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("STEMSCORE_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "stemscore_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate enforces the basic shape of a runnable configuration.
func validate(cfg *Config) error {
	if cfg.SampleRate <= 0 {
		return fmt.Errorf("%w: sample_rate must be positive, got %d", ErrInvalidConfig, cfg.SampleRate)
	}
	if cfg.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalidConfig, cfg.Workers)
	}
	if cfg.Equalisation < 1 {
		return fmt.Errorf("%w: equalisation must be at least 1, got %d", ErrInvalidConfig, cfg.Equalisation)
	}
	if cfg.ResultsFile == "" {
		return fmt.Errorf("%w: results_file must not be empty", ErrInvalidConfig)
	}
	if cfg.SongsFile == "" || cfg.ListenersFile == "" {
		return fmt.Errorf("%w: songs_file and listeners_file must not be empty", ErrInvalidConfig)
	}
	return nil
}
