// Package service drives a full evaluation run: catalog loading, pair
// enumeration, audio loading, metric invocation, aggregation, and report
// writing.
package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/auralab/stemscore/internal/adapters/audioio"
	pairqueue "github.com/auralab/stemscore/internal/adapters/mq/queue"
	workerpool "github.com/auralab/stemscore/internal/adapters/mq/worker"
	"github.com/auralab/stemscore/internal/adapters/report"
	"github.com/auralab/stemscore/internal/config"
	"github.com/auralab/stemscore/internal/domain/catalog"
	"github.com/auralab/stemscore/internal/domain/dedupe"
	"github.com/auralab/stemscore/internal/domain/pairing"
	"github.com/auralab/stemscore/internal/domain/scoring"
	"github.com/auralab/stemscore/internal/domain/types"
	"github.com/auralab/stemscore/pkg/logger"
	"github.com/auralab/stemscore/pkg/metrics"
)

// Service runs the batch evaluation. One Service instance performs one run.
type Service struct {
	// Core components
	cfg     *config.Config
	metric  scoring.Metric
	adapter *scoring.Adapter
	loader  *audioio.Loader
	deduper dedupe.Deduper

	// State
	runID     string
	songs     map[string]catalog.Song
	songOrder []string
	listeners *catalog.Listeners

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithConfig sets the run configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithMetric sets the external quality metric scoring every channel.
func WithMetric(m scoring.Metric) Option {
	return func(s *Service) {
		if m != nil {
			s.metric = m
		}
	}
}

// WithLoader sets a custom audio loader.
func WithLoader(l *audioio.Loader) Option {
	return func(s *Service) {
		if l != nil {
			s.loader = l
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		cfg:     config.New(),
		deduper: dedupe.NewInMemoryDeduper(),
		runID:   uuid.NewString(),
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("evaluation")
	}
	if s.loader == nil {
		s.loader = audioio.NewLoader(
			audioio.WithMusicDir(s.cfg.MusicDir),
			audioio.WithEnhancedDir(s.cfg.EnhancedDir),
		)
	}
	if s.metric != nil {
		s.adapter = scoring.NewAdapter(s.metric, scoring.WithEqualisation(s.cfg.Equalisation))
	}

	return s
}

// Evaluate scores one song/listener pair: for every instrument it loads
// the stereo reference stem and both enhanced mono channels, validates
// sample rates, and invokes the metric once per ear against the matching
// reference channel. The 8 channel scores are averaged into the combined
// score. Any failure aborts the pair with no record.
func (s *Service) Evaluate(ctx context.Context, pair types.Pair) (types.ScoreRecord, error) {
	if s.adapter == nil {
		return types.ScoreRecord{}, ErrNoMetric
	}
	song, ok := s.songs[pair.Song]
	if !ok {
		return types.ScoreRecord{}, fmt.Errorf("%w: song %q", ErrUnknownPair, pair.Song)
	}
	listener, ok := s.listeners.Get(pair.Listener)
	if !ok {
		return types.ScoreRecord{}, fmt.Errorf("%w: listener %q", ErrUnknownPair, pair.Listener)
	}

	var seed *int64
	if s.cfg.SetRandomSeed {
		v := pairing.SongSeed(pair.Song)
		seed = &v
	}

	channels := make(map[types.ScoreKey]float64, len(types.ScoreKeys()))
	for _, inst := range types.Instruments() {
		ref, err := s.loader.Reference(song.Split, pair.Song, inst)
		if err != nil {
			return types.ScoreRecord{}, err
		}
		left, err := s.loader.Enhanced(pair.Listener, pair.Song, types.Left, inst)
		if err != nil {
			return types.ScoreRecord{}, err
		}
		right, err := s.loader.Enhanced(pair.Listener, pair.Song, types.Right, inst)
		if err != nil {
			return types.ScoreRecord{}, err
		}

		// Rates are checked before any metric work so a bad stem fails
		// fast instead of after an expensive invocation.
		if err := audioio.ValidateRates(s.cfg.SampleRate, ref, left, right); err != nil {
			return types.ScoreRecord{}, err
		}

		scoreLeft, err := s.adapter.Score(ctx, left, ref.Left, listener.Levels(types.Left), listener.Frequencies, seed)
		if err != nil {
			return types.ScoreRecord{}, err
		}
		scoreRight, err := s.adapter.Score(ctx, right, ref.Right, listener.Levels(types.Right), listener.Frequencies, seed)
		if err != nil {
			return types.ScoreRecord{}, err
		}

		channels[types.ScoreKey{Channel: types.Left, Instrument: inst}] = scoreLeft
		channels[types.ScoreKey{Channel: types.Right, Instrument: inst}] = scoreRight

		s.logger.Debug(ctx, "instrument scored",
			logger.String("song", pair.Song),
			logger.String("listener", pair.Listener),
			logger.String("instrument", string(inst)),
			logger.Float64("left", scoreLeft),
			logger.Float64("right", scoreRight),
		)
	}

	combined, err := scoring.Aggregate(channels)
	if err != nil {
		return types.ScoreRecord{}, err
	}

	metrics.RecordPairEvaluated()
	metrics.ObserveCombinedScore(combined)

	s.logger.Info(ctx, "pair evaluated",
		logger.String("song", pair.Song),
		logger.String("listener", pair.Listener),
		logger.Float64("score", combined),
	)

	return types.ScoreRecord{
		Song:     pair.Song,
		Listener: pair.Listener,
		Score:    combined,
		Channels: channels,
	}, nil
}

// Run executes the full evaluation: it loads both catalogs, enumerates the
// pairs, opens the report, and evaluates every non-duplicate pair. With a
// single worker the run is fully sequential in enumeration order; with
// more, report rows land in completion order. The first failure aborts the
// run with the rows written so far intact on disk.
func (s *Service) Run(ctx context.Context) error {
	if s.adapter == nil {
		return ErrNoMetric
	}
	if err := s.loadCatalogs(ctx); err != nil {
		return err
	}

	pairs := pairing.Pairs(s.songOrder, s.listeners.IDs(), s.cfg.SmallTest)
	metrics.UpdatePairsTotal(len(pairs))

	s.logger.Info(ctx, "starting evaluation run",
		logger.String("runID", s.runID),
		logger.Int("songs", len(s.songOrder)),
		logger.Int("listeners", s.listeners.Len()),
		logger.Int("pairs", len(pairs)),
		logger.Int("workers", s.cfg.Workers),
		logger.Bool("smallTest", s.cfg.SmallTest),
	)

	fresh := make([]types.Pair, 0, len(pairs))
	for _, p := range pairs {
		if s.deduper.SeenAndRecord(ctx, p.ID()) {
			metrics.RecordPairDuplicate()
			s.logger.Warn(ctx, "duplicate pair skipped",
				logger.String("song", p.Song),
				logger.String("listener", p.Listener),
			)
			continue
		}
		fresh = append(fresh, p)
	}

	writer, err := report.Open(s.cfg.ResultsFile)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := writer.Close(); cerr != nil {
			s.logger.Error(ctx, "closing report failed", logger.Error(cerr))
		}
	}()

	if s.cfg.Workers > 1 {
		q := pairqueue.NewInMemoryQueue(pairqueue.WithCapacity(len(fresh)))
		pool := workerpool.NewPool(s.cfg.Workers, q, s, writer)
		if err := pool.Run(ctx, fresh); err != nil {
			return err
		}
	} else {
		for _, p := range fresh {
			if err := ctx.Err(); err != nil {
				return err
			}
			rec, err := s.Evaluate(ctx, p)
			if err != nil {
				return err
			}
			if err := writer.Append(rec); err != nil {
				return err
			}
		}
	}

	s.logger.Info(ctx, "evaluation run complete",
		logger.String("runID", s.runID),
		logger.String("report", writer.Path()),
		logger.Int("pairs", len(fresh)),
	)

	return nil
}

// loadCatalogs reads the song and listener catalogs, preserving their file
// order for enumeration.
func (s *Service) loadCatalogs(ctx context.Context) error {
	songs, err := catalog.LoadSongs(s.cfg.SongsFile)
	if err != nil {
		return err
	}
	s.songs = make(map[string]catalog.Song, len(songs))
	s.songOrder = make([]string, 0, len(songs))
	for _, song := range songs {
		if _, dup := s.songs[song.Name]; dup {
			s.logger.Warn(ctx, "duplicate song catalog entry skipped",
				logger.String("song", song.Name),
			)
			continue
		}
		s.songs[song.Name] = song
		s.songOrder = append(s.songOrder, song.Name)
	}

	listeners, err := catalog.LoadListeners(s.cfg.ListenersFile)
	if err != nil {
		return err
	}
	s.listeners = listeners

	s.logger.Debug(ctx, "catalogs loaded",
		logger.Int("songs", len(s.songOrder)),
		logger.Int("listeners", listeners.Len()),
	)

	return nil
}
