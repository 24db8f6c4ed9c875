// Package fixtures generates a synthetic benchmark tree: song and listener
// catalogs plus matching reference stems and enhanced signals. It exists so
// the full evaluation path can be smoke-tested without the real dataset.
package fixtures

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/auralab/stemscore/internal/domain/catalog"
	"github.com/auralab/stemscore/internal/domain/types"
	"github.com/auralab/stemscore/pkg/logger"
)

// Tone frequencies per instrument keep the synthetic stems distinguishable.
var instrumentTones = map[types.Instrument]float64{ //nolint:gochecknoglobals // fixed fixture layout
	types.Drums:  110,
	types.Bass:   220,
	types.Other:  440,
	types.Vocals: 880,
}

// bitDepth of all generated fixtures.
const bitDepth = 16

// Generator writes one synthetic benchmark tree.
type Generator struct {
	root       string
	sampleRate int
	seconds    float64
	songs      int
	listeners  int
	amplitude  float64
	logger     logger.Logger
}

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithRoot sets the output directory.
func WithRoot(dir string) Option {
	return func(g *Generator) {
		if dir != "" {
			g.root = dir
		}
	}
}

// WithSampleRate sets the sample rate of generated signals.
func WithSampleRate(rate int) Option {
	return func(g *Generator) {
		if rate > 0 {
			g.sampleRate = rate
		}
	}
}

// WithDuration sets the length of generated signals in seconds.
func WithDuration(seconds float64) Option {
	return func(g *Generator) {
		if seconds > 0 {
			g.seconds = seconds
		}
	}
}

// WithSongs sets the number of generated songs.
func WithSongs(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.songs = n
		}
	}
}

// WithListeners sets the number of generated listeners.
func WithListeners(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.listeners = n
		}
	}
}

// WithLogger sets a custom logger for the generator.
func WithLogger(l logger.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// New creates a Generator with configuration options.
func New(opts ...Option) *Generator {
	g := &Generator{
		root:       "fixtures",
		sampleRate: 44100,
		seconds:    0.25,
		songs:      2,
		listeners:  2,
		amplitude:  0.5,
	}

	// Apply all options
	for _, opt := range opts {
		opt(g)
	}

	if g.logger == nil {
		g.logger = logger.Get().Named("fixtures")
	}

	return g
}

// SongsPath returns the generated song catalog path.
func (g *Generator) SongsPath() string { return filepath.Join(g.root, "songs.json") }

// ListenersPath returns the generated listener catalog path.
func (g *Generator) ListenersPath() string { return filepath.Join(g.root, "listeners.json") }

// MusicDir returns the generated reference tree root.
func (g *Generator) MusicDir() string { return filepath.Join(g.root, "music") }

// EnhancedDir returns the generated enhanced-signals directory.
func (g *Generator) EnhancedDir() string { return filepath.Join(g.root, "enhanced_signals") }

// Generate writes catalogs, reference stems, and enhanced signals. The
// enhanced signals are byte-identical to the matching reference channel,
// so a correct metric should report its perfect-match score everywhere.
func (g *Generator) Generate(ctx context.Context) error {
	songs := make([]catalog.Song, g.songs)
	for i := range songs {
		songs[i] = catalog.Song{Name: fmt.Sprintf("song%02d", i+1), Split: catalog.SplitTrain}
	}

	listenerIDs := make([]string, g.listeners)
	for i := range listenerIDs {
		listenerIDs[i] = fmt.Sprintf("L%04d", i+1)
	}

	if err := g.writeCatalogs(songs, listenerIDs); err != nil {
		return err
	}

	for _, song := range songs {
		for inst, tone := range instrumentTones {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := g.writeSignals(song, inst, tone, listenerIDs); err != nil {
				return err
			}
		}
		g.logger.Info(ctx, "generated song", logger.String("song", song.Name))
	}

	return nil
}

func (g *Generator) writeCatalogs(songs []catalog.Song, listenerIDs []string) error {
	if err := os.MkdirAll(g.root, 0o750); err != nil {
		return fmt.Errorf("create fixture root: %w", err)
	}

	songData, err := json.MarshalIndent(songs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode song catalog: %w", err)
	}
	if err := os.WriteFile(g.SongsPath(), songData, 0o600); err != nil {
		return fmt.Errorf("write song catalog: %w", err)
	}

	// Flat mild-loss audiograms at the canonical bands. Encoded by hand
	// to keep the file's key order deterministic.
	var buf []byte
	buf = append(buf, '{', '\n')
	for i, id := range listenerIDs {
		entry := fmt.Sprintf(
			"  %q: {\"audiogram_cfs\": [250, 500, 1000, 2000, 4000, 6000], "+
				"\"audiogram_levels_l\": [10, 10, 20, 30, 40, 40], "+
				"\"audiogram_levels_r\": [10, 10, 20, 30, 40, 40]}", id)
		buf = append(buf, entry...)
		if i < len(listenerIDs)-1 {
			buf = append(buf, ',')
		}
		buf = append(buf, '\n')
	}
	buf = append(buf, '}', '\n')
	if err := os.WriteFile(g.ListenersPath(), buf, 0o600); err != nil {
		return fmt.Errorf("write listener catalog: %w", err)
	}

	return nil
}

func (g *Generator) writeSignals(song catalog.Song, inst types.Instrument, tone float64, listenerIDs []string) error {
	samples := g.sine(tone)

	// Stereo reference: identical tone on both channels.
	stereo := make([]int, 0, 2*len(samples))
	for _, s := range samples {
		stereo = append(stereo, s, s)
	}
	refPath := filepath.Join(g.MusicDir(), song.Split, song.Name, string(inst)+".wav")
	if err := g.writeWAV(refPath, 2, stereo); err != nil {
		return err
	}

	for _, listener := range listenerIDs {
		for _, ch := range types.Channels() {
			name := fmt.Sprintf("%s_%s_%s_%s.wav", listener, song.Name, ch, inst)
			if err := g.writeWAV(filepath.Join(g.EnhancedDir(), name), 1, samples); err != nil {
				return err
			}
		}
	}

	return nil
}

// sine renders one 16-bit tone at the generator's rate and duration.
func (g *Generator) sine(freq float64) []int {
	n := int(g.seconds * float64(g.sampleRate))
	fullScale := float64(int(1) << (bitDepth - 1))
	out := make([]int, n)
	for i := range out {
		v := g.amplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(g.sampleRate))
		out[i] = int(v * (fullScale - 1))
	}
	return out
}

func (g *Generator) writeWAV(path string, channels int, data []int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create signal dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create signal %s: %w", path, err)
	}

	enc := wav.NewEncoder(f, g.sampleRate, bitDepth, channels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: g.sampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		_ = enc.Close()
		_ = f.Close()
		return fmt.Errorf("write signal %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("finalize signal %s: %w", path, err)
	}
	return f.Close()
}
