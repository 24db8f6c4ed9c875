package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/auralab/stemscore/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func clearConfigEnvVars() {
	for _, key := range []string{
		"STEMSCORE_CONFIG",
		"STEMSCORE_LOG_LEVEL",
		"STEMSCORE_SAMPLE_RATE",
		"STEMSCORE_MUSIC_DIR",
		"STEMSCORE_ENHANCED_DIR",
		"STEMSCORE_SONGS_FILE",
		"STEMSCORE_LISTENERS_FILE",
		"STEMSCORE_RESULTS_FILE",
		"STEMSCORE_SMALL_TEST",
		"STEMSCORE_SET_RANDOM_SEED",
		"STEMSCORE_WORKERS",
		"STEMSCORE_METRICS_ADDR",
		"STEMSCORE_METRIC_CMD",
		"STEMSCORE_EQUALISATION",
	} {
		_ = os.Unsetenv(key)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.SampleRate, convey.ShouldEqual, 44100)
				convey.So(cfg.MusicDir, convey.ShouldEqual, "music")
				convey.So(cfg.EnhancedDir, convey.ShouldEqual, "enhanced_signals")
				convey.So(cfg.ResultsFile, convey.ShouldEqual, "scores.csv")
				convey.So(cfg.SmallTest, convey.ShouldBeFalse)
				convey.So(cfg.SetRandomSeed, convey.ShouldBeTrue)
				convey.So(cfg.Workers, convey.ShouldEqual, 1)
				convey.So(cfg.Equalisation, convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("STEMSCORE_SAMPLE_RATE", "32000")
			_ = os.Setenv("STEMSCORE_SMALL_TEST", "true")
			_ = os.Setenv("STEMSCORE_WORKERS", "4")
			_ = os.Setenv("STEMSCORE_METRIC_CMD", "python3 -m haaqi_score")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.SampleRate, convey.ShouldEqual, 32000)
				convey.So(cfg.SmallTest, convey.ShouldBeTrue)
				convey.So(cfg.Workers, convey.ShouldEqual, 4)
				convey.So(cfg.MetricCmd, convey.ShouldEqual, "python3 -m haaqi_score")
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
sample_rate: 24000
music_dir: /data/music
enhanced_dir: /data/enhanced
results_file: /tmp/scores.csv
small_test: true
workers: 2
`
			tmpFile := createTempConfigFile(t, yamlContent)
			_ = os.Setenv("STEMSCORE_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.SampleRate, convey.ShouldEqual, 24000)
				convey.So(cfg.MusicDir, convey.ShouldEqual, "/data/music")
				convey.So(cfg.EnhancedDir, convey.ShouldEqual, "/data/enhanced")
				convey.So(cfg.ResultsFile, convey.ShouldEqual, "/tmp/scores.csv")
				convey.So(cfg.SmallTest, convey.ShouldBeTrue)
				convey.So(cfg.Workers, convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
sample_rate: 24000
workers: 2
`
			tmpFile := createTempConfigFile(t, yamlContent)
			_ = os.Setenv("STEMSCORE_CONFIG", tmpFile)
			_ = os.Setenv("STEMSCORE_WORKERS", "8") // This should override the file
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.SampleRate, convey.ShouldEqual, 24000) // From file
				convey.So(cfg.Workers, convey.ShouldEqual, 8)        // Overridden by env
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			invalidYaml := `invalid: yaml: content: [`
			tmpFile := createTempConfigFile(t, invalidYaml)
			_ = os.Setenv("STEMSCORE_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the configuration fails validation", func() {
			_ = os.Setenv("STEMSCORE_SAMPLE_RATE", "0")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should report an invalid config", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When workers is set below 1", func() {
			_ = os.Setenv("STEMSCORE_WORKERS", "0")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.So(cfg, convey.ShouldBeNil)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}
