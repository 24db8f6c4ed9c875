package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/auralab/stemscore/internal/fixtures"
	"github.com/auralab/stemscore/pkg/logger"
)

// Default configuration constants.
const (
	defaultRoot       = "fixtures"
	defaultSampleRate = 44100
	defaultDuration   = 0.25
	defaultSongs      = 2
	defaultListeners  = 2
)

func main() {
	var (
		root       = flag.String("root", defaultRoot, "Root directory for the generated tree")
		sampleRate = flag.Int("rate", defaultSampleRate, "Sample rate (Hz) of the generated signals")
		duration   = flag.Float64("duration", defaultDuration, "Duration (seconds) of each signal")
		songs      = flag.Int("songs", defaultSongs, "Number of songs to generate")
		listeners  = flag.Int("listeners", defaultListeners, "Number of listeners to generate")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gen := fixtures.New(
		fixtures.WithRoot(*root),
		fixtures.WithSampleRate(*sampleRate),
		fixtures.WithDuration(*duration),
		fixtures.WithSongs(*songs),
		fixtures.WithListeners(*listeners),
	)

	if err := gen.Generate(ctx); err != nil {
		logger.Get().Error(ctx, "fixture generation failed", logger.Error(err))
		os.Exit(1)
	}

	logger.Get().Info(ctx, "fixtures generated",
		logger.String("root", *root),
		logger.String("songs", gen.SongsPath()),
		logger.String("listeners", gen.ListenersPath()),
	)
}
