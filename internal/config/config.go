// Package config defines harness configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// SampleRate is the expected sample rate (Hz) of every signal.
	SampleRate int `koanf:"sample_rate"`

	// MusicDir is the root of the reference stems: <music_dir>/<split>/<song>/<instrument>.wav.
	MusicDir string `koanf:"music_dir"`

	// EnhancedDir holds the enhanced mono signals produced upstream.
	EnhancedDir string `koanf:"enhanced_dir"`

	// SongsFile is the JSON song catalog.
	SongsFile string `koanf:"songs_file"`

	// ListenersFile is the JSON listener audiogram catalog.
	ListenersFile string `koanf:"listeners_file"`

	// ResultsFile is the CSV report destination.
	ResultsFile string `koanf:"results_file"`

	// SmallTest keeps every 15th pair for fast smoke runs.
	SmallTest bool `koanf:"small_test"`

	// SetRandomSeed enables per-song deterministic seeding of the metric.
	SetRandomSeed bool `koanf:"set_random_seed"`

	// Workers sets the evaluation concurrency. 1 keeps the run fully
	// sequential in enumeration order; above 1 the report row order is
	// completion order.
	Workers int `koanf:"workers"`

	// MetricsAddr serves Prometheus metrics while the run is in flight
	// when non-empty, e.g. ":9090".
	MetricsAddr string `koanf:"metrics_addr"`

	// MetricCmd is the external HAAQI scorer command line.
	MetricCmd string `koanf:"metric_cmd"`

	// Equalisation is the equalisation mode passed to the metric.
	Equalisation int `koanf:"equalisation"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:      "info",
		SampleRate:    44100,
		MusicDir:      "music",
		EnhancedDir:   "enhanced_signals",
		SongsFile:     "musdb18.valid.json",
		ListenersFile: "listeners.valid.json",
		ResultsFile:   "scores.csv",
		SmallTest:     false,
		SetRandomSeed: true,
		Workers:       1,
		Equalisation:  1,
	}
}
