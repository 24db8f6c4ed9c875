package service_test

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"

	service "github.com/auralab/stemscore/internal/app"
	"github.com/auralab/stemscore/internal/config"
	"github.com/auralab/stemscore/internal/domain/catalog"
	"github.com/auralab/stemscore/internal/domain/pairing"
	"github.com/auralab/stemscore/internal/domain/scoring"
	"github.com/auralab/stemscore/internal/domain/types"
	"github.com/auralab/stemscore/internal/fixtures"
	"github.com/auralab/stemscore/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

// fixtureConfig generates a small benchmark tree and returns a config
// pointing at it.
func fixtureConfig(t *testing.T, songs, listeners int) *config.Config {
	t.Helper()

	dir := t.TempDir()
	gen := fixtures.New(
		fixtures.WithRoot(dir),
		fixtures.WithSampleRate(8000),
		fixtures.WithDuration(0.05),
		fixtures.WithSongs(songs),
		fixtures.WithListeners(listeners),
	)
	if err := gen.Generate(context.Background()); err != nil {
		t.Fatalf("generating fixtures: %v", err)
	}

	cfg := config.New()
	cfg.SampleRate = 8000
	cfg.MusicDir = gen.MusicDir()
	cfg.EnhancedDir = gen.EnhancedDir()
	cfg.SongsFile = gen.SongsPath()
	cfg.ListenersFile = gen.ListenersPath()
	cfg.ResultsFile = filepath.Join(dir, "scores.csv")
	return cfg
}

func readReport(t *testing.T, path string) [][]string {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening report: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	return rows
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New(service.WithMetric(scoring.MetricFunc(
			func(context.Context, scoring.Request) (float64, error) { return 1, nil },
		)))

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
		})
	})
}

func TestService_Run(t *testing.T) {
	Convey("Given a run over one song and one listener", t, func() {
		cfg := fixtureConfig(t, 1, 1)

		var calls int64
		var lastSeed atomic.Pointer[int64]
		metric := scoring.MetricFunc(func(_ context.Context, req scoring.Request) (float64, error) {
			atomic.AddInt64(&calls, 1)
			lastSeed.Store(req.Seed)
			return 1.0, nil
		})

		svc := service.New(service.WithConfig(cfg), service.WithMetric(metric))
		err := svc.Run(context.Background())

		Convey("Then it should complete without error", func() {
			So(err, ShouldBeNil)
		})

		Convey("And it should invoke the metric twice per instrument", func() {
			So(atomic.LoadInt64(&calls), ShouldEqual, 8)
		})

		Convey("And it should pass the deterministic song seed", func() {
			seed := lastSeed.Load()
			So(seed, ShouldNotBeNil)
			So(*seed, ShouldEqual, pairing.SongSeed("song01"))
		})

		Convey("And the report should hold the header plus one row", func() {
			rows := readReport(t, cfg.ResultsFile)
			So(rows, ShouldHaveLength, 2)
			So(rows[0][:3], ShouldResemble, []string{"song", "listener", "score"})
			So(rows[1][0], ShouldEqual, "song01")
			So(rows[1][1], ShouldEqual, "L0001")

			combined, perr := strconv.ParseFloat(rows[1][2], 64)
			So(perr, ShouldBeNil)
			So(combined, ShouldEqual, 1.0)
		})
	})

	Convey("Given a metric that fails", t, func() {
		cfg := fixtureConfig(t, 1, 1)

		metric := scoring.MetricFunc(func(context.Context, scoring.Request) (float64, error) {
			return 0, os.ErrDeadlineExceeded
		})

		svc := service.New(service.WithConfig(cfg), service.WithMetric(metric))
		err := svc.Run(context.Background())

		Convey("Then the run should abort", func() {
			So(err, ShouldNotBeNil)
		})

		Convey("And the report should hold only the header", func() {
			rows := readReport(t, cfg.ResultsFile)
			So(rows, ShouldHaveLength, 1)
		})
	})

	Convey("Given signals whose rate disagrees with the configuration", t, func() {
		cfg := fixtureConfig(t, 1, 1)
		cfg.SampleRate = 44100

		var calls int64
		metric := scoring.MetricFunc(func(context.Context, scoring.Request) (float64, error) {
			atomic.AddInt64(&calls, 1)
			return 1.0, nil
		})

		svc := service.New(service.WithConfig(cfg), service.WithMetric(metric))
		err := svc.Run(context.Background())

		Convey("Then the run should abort before any metric call", func() {
			So(err, ShouldNotBeNil)
			So(atomic.LoadInt64(&calls), ShouldEqual, 0)
		})
	})

	Convey("Given a service without a metric", t, func() {
		cfg := fixtureConfig(t, 1, 1)
		svc := service.New(service.WithConfig(cfg))

		Convey("Then the run should refuse to start", func() {
			err := svc.Run(context.Background())
			So(err, ShouldNotBeNil)
			So(errors.Is(err, service.ErrNoMetric), ShouldBeTrue)
		})

		Convey("And a direct evaluation should refuse as well", func() {
			_, err := svc.Evaluate(context.Background(), types.Pair{Song: "song01", Listener: "L0001"})
			So(errors.Is(err, service.ErrNoMetric), ShouldBeTrue)
		})
	})

	Convey("Given a song catalog with a duplicate entry", t, func() {
		cfg := fixtureConfig(t, 1, 1)
		data, rerr := os.ReadFile(cfg.SongsFile)
		So(rerr, ShouldBeNil)
		var songs []catalog.Song
		So(json.Unmarshal(data, &songs), ShouldBeNil)
		songs = append(songs, songs[0])
		dup, merr := json.Marshal(songs)
		So(merr, ShouldBeNil)
		So(os.WriteFile(cfg.SongsFile, dup, 0o600), ShouldBeNil)

		svc := service.New(service.WithConfig(cfg), service.WithMetric(scoring.MetricFunc(
			func(context.Context, scoring.Request) (float64, error) { return 1, nil },
		)))
		err := svc.Run(context.Background())

		Convey("Then the duplicated song should be evaluated only once", func() {
			So(err, ShouldBeNil)
			rows := readReport(t, cfg.ResultsFile)
			So(rows, ShouldHaveLength, 2)
			So(rows[1][0], ShouldEqual, "song01")
		})
	})

	Convey("Given a missing song catalog", t, func() {
		cfg := fixtureConfig(t, 1, 1)
		cfg.SongsFile = filepath.Join(t.TempDir(), "absent.json")

		svc := service.New(service.WithConfig(cfg), service.WithMetric(scoring.MetricFunc(
			func(context.Context, scoring.Request) (float64, error) { return 1, nil },
		)))

		Convey("Then the run should abort", func() {
			So(svc.Run(context.Background()), ShouldNotBeNil)
		})
	})
}
