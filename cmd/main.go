package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/auralab/stemscore/internal/adapters/haaqiexec"
	app "github.com/auralab/stemscore/internal/app"
	"github.com/auralab/stemscore/internal/config"
	"github.com/auralab/stemscore/pkg/logger"
	"github.com/auralab/stemscore/pkg/metrics"
)

// HTTP server timeout constants for the metrics endpoint.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Initialize logging
	if err := logger.Init(); err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	metric, err := haaqiexec.New(cfg.MetricCmd, haaqiexec.WithLogger(loggerInstance))
	if err != nil {
		loggerInstance.Error(ctx, "metric bridge unavailable", logger.Error(err))
		os.Exit(1)
	}

	// Serve Prometheus metrics while the run is in flight.
	if cfg.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}),
			ReadTimeout:       readTimeout,
			WriteTimeout:      writeTimeout,
			IdleTimeout:       idleTimeout,
			ReadHeaderTimeout: readHeaderTimeout,
		}
		go func() {
			loggerInstance.Info(ctx, "serving metrics", logger.String("addr", cfg.MetricsAddr))
			if serr := srv.ListenAndServe(); serr != nil && serr != http.ErrServerClosed {
				loggerInstance.Error(ctx, "metrics server failed", logger.Error(serr))
			}
		}()
		defer func() { _ = srv.Close() }()
	}

	svc := app.New(
		app.WithConfig(cfg),
		app.WithMetric(metric),
		app.WithLogger(loggerInstance),
	)
	if err := svc.Run(ctx); err != nil {
		loggerInstance.Error(ctx, "evaluation run failed", logger.Error(err))
		os.Exit(1)
	}
}
