// Package audioio loads and validates the reference stems and enhanced
// signals an evaluation run consumes.
package audioio

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-audio/wav"

	"github.com/auralab/stemscore/internal/domain/types"
	"github.com/auralab/stemscore/pkg/metrics"
)

// signalExt is the on-disk sample encoding for all benchmark audio.
const signalExt = ".wav"

// Loader reads benchmark audio from the music and enhanced-signal trees.
type Loader struct {
	musicDir    string
	enhancedDir string
}

// Option applies a configuration option to the Loader.
type Option func(*Loader)

// WithMusicDir sets the root directory of the reference stems.
func WithMusicDir(dir string) Option {
	return func(l *Loader) {
		if dir != "" {
			l.musicDir = dir
		}
	}
}

// WithEnhancedDir sets the directory holding enhanced mono signals.
func WithEnhancedDir(dir string) Option {
	return func(l *Loader) {
		if dir != "" {
			l.enhancedDir = dir
		}
	}
}

// NewLoader creates a Loader with configuration options.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		musicDir:    "music",
		enhancedDir: "enhanced_signals",
	}

	// Apply all options
	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Reference loads the stereo reference stem for one song and instrument:
// <music_dir>/<split>/<song>/<instrument>.wav.
func (l *Loader) Reference(split, song string, instrument types.Instrument) (types.Stereo, error) {
	path := filepath.Join(l.musicDir, split, song, string(instrument)+signalExt)

	rate, channels, samples, err := decodeFile(path)
	if err != nil {
		return types.Stereo{}, err
	}
	if channels != 2 {
		metrics.RecordAudioError()
		return types.Stereo{}, fmt.Errorf("%w: %s: expected stereo, got %d channel(s)", ErrBadChannelCount, path, channels)
	}

	left := make([]float64, len(samples)/2)
	right := make([]float64, len(samples)/2)
	for i := range left {
		left[i] = samples[2*i]
		right[i] = samples[2*i+1]
	}

	metrics.RecordSignalLoaded()
	return types.Stereo{
		Left:  types.Mono{Rate: rate, Samples: left},
		Right: types.Mono{Rate: rate, Samples: right},
	}, nil
}

// Enhanced loads one enhanced mono channel:
// <enhanced_dir>/<listener>_<song>_<channel>_<instrument>.wav.
func (l *Loader) Enhanced(listener, song string, channel types.Channel, instrument types.Instrument) (types.Mono, error) {
	name := fmt.Sprintf("%s_%s_%s_%s%s", listener, song, channel, instrument, signalExt)
	path := filepath.Join(l.enhancedDir, name)

	rate, channels, samples, err := decodeFile(path)
	if err != nil {
		return types.Mono{}, err
	}
	if channels != 1 {
		metrics.RecordAudioError()
		return types.Mono{}, fmt.Errorf("%w: %s: expected mono, got %d channel(s)", ErrBadChannelCount, path, channels)
	}

	metrics.RecordSignalLoaded()
	return types.Mono{Rate: rate, Samples: samples}, nil
}

// ValidateRates checks that the reference stem and both enhanced channels
// share the configured sample rate. Called before any metric computation
// for the instrument.
func ValidateRates(want int, reference types.Stereo, left, right types.Mono) error {
	if reference.Rate() != want || left.Rate != want || right.Rate != want {
		metrics.RecordAudioError()
		return fmt.Errorf("%w: reference=%d left=%d right=%d, configured=%d",
			ErrSampleRateMismatch, reference.Rate(), left.Rate, right.Rate, want)
	}
	if reference.Left.Rate != reference.Right.Rate {
		metrics.RecordAudioError()
		return fmt.Errorf("%w: reference channels disagree: %d vs %d",
			ErrSampleRateMismatch, reference.Left.Rate, reference.Right.Rate)
	}
	return nil
}

// decodeFile decodes a WAV file into normalized float64 samples
// (interleaved for multi-channel sources), dividing by the full-scale
// magnitude of the source bit depth.
func decodeFile(path string) (rate, channels int, samples []float64, err error) {
	f, err := os.Open(path)
	if err != nil {
		metrics.RecordAudioError()
		return 0, 0, nil, fmt.Errorf("%w: %s: %v", ErrMissingInput, path, err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		metrics.RecordAudioError()
		return 0, 0, nil, fmt.Errorf("%w: %s: not a valid wav file", ErrBadEncoding, path)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		metrics.RecordAudioError()
		return 0, 0, nil, fmt.Errorf("%w: %s: %v", ErrBadEncoding, path, err)
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth <= 0 {
		bitDepth = int(decoder.BitDepth)
	}
	if bitDepth <= 0 || bitDepth > 32 {
		metrics.RecordAudioError()
		return 0, 0, nil, fmt.Errorf("%w: %s: unsupported bit depth %d", ErrBadEncoding, path, bitDepth)
	}

	// Full-scale magnitude of the source format, e.g. 32768 for 16-bit.
	fullScale := float64(int64(1) << (bitDepth - 1))
	samples = make([]float64, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = float64(v) / fullScale
	}

	return buf.Format.SampleRate, buf.Format.NumChannels, samples, nil
}
