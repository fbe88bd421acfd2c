package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"

	"github.com/pagescope/pagescope/internal/config"
	"github.com/pagescope/pagescope/internal/telemetry"
	"github.com/pagescope/pagescope/monitor"
	"github.com/pagescope/pagescope/sink"
)

var (
	runConfigPath string
	runInterval   time.Duration
	runOnce       bool
)

// runCmd drives a scripted synthetic page session through the full
// interception pipeline against in-memory capability fakes. Useful for
// demos, sink smoke tests, and soak-testing the suppression ledger.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the reference harness",
	Long: `Run a synthetic page session through the interception pipeline.

The harness binds the monitor to in-memory capability implementations and
replays a scripted session against them: media grants, one-shot and
continuous location queries, clipboard traffic, and notifications. Admitted
events flow to the configured sinks; Prometheus metrics are served over HTTP.`,
	Example: `  pagescope run                          # Run with defaults
  pagescope run --interval 3s            # Replay the session every 3 seconds
  pagescope run --config pagescope.yaml  # Load sink and engine settings
  pagescope run --once                   # Single session, then exit`,
	RunE: runHarness,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runConfigPath, "config", "", "Path to YAML config")
	runCmd.Flags().DurationVar(&runInterval, "interval", 5*time.Second, "Session replay interval")
	runCmd.Flags().BoolVar(&runOnce, "once", false, "Replay one session and exit")
}

func runHarness(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(runConfigPath)
	if err != nil {
		return err
	}

	logger := telemetry.NewLogger(cfg.Service.Name, cfg.Log.Level)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	promExporter, err := otelprom.New()
	if err != nil {
		return fmt.Errorf("create prometheus exporter: %w", err)
	}

	provider, err := telemetry.NewProvider(ctx, cfg.Service.Name, cfg.OTEL, promExporter)
	if err != nil {
		return fmt.Errorf("create telemetry provider: %w", err)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("telemetry shutdown failed")
		}
	}()

	metrics, err := telemetry.NewEventMetrics()
	if err != nil {
		return fmt.Errorf("create event metrics: %w", err)
	}

	sinks, err := buildSinks(cfg, logger)
	if err != nil {
		return err
	}

	session := newSession(cfg, sinks, metrics, logger)
	defer session.Close()

	var group run.Group

	group.Add(func() error {
		<-ctx.Done()
		return ctx.Err()
	}, func(error) {
		cancel()
	})

	metricsServer := &http.Server{
		Addr:              cfg.Metrics.Addr,
		Handler:           metricsHandler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	group.Add(func() error {
		logger.Info().Str("addr", cfg.Metrics.Addr).Msg("metrics server listening")
		return metricsServer.ListenAndServe()
	}, func(error) {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	})

	group.Add(func() error {
		return session.Run(ctx, runInterval, runOnce)
	}, func(error) {
		cancel()
	})

	err = group.Run()
	if err != nil && err != context.Canceled && err != http.ErrServerClosed {
		return err
	}

	logger.Info().Msg("shutdown complete")
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func metricsHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

func buildSinks(cfg *config.Config, logger zerolog.Logger) ([]sink.Sink, error) {
	sinks := []sink.Sink{sink.NewLogSink(logger)}

	if cfg.Sinks.ArchiveDir != "" {
		if err := os.MkdirAll(cfg.Sinks.ArchiveDir, 0750); err != nil {
			return nil, fmt.Errorf("create archive dir: %w", err)
		}
		archive, err := sink.NewArchiveSink(cfg.Sinks.ArchiveDir)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, archive)
	}

	if cfg.Sinks.StreamURL != "" {
		stream, err := sink.NewStreamSink(cfg.Sinks.StreamURL)
		if err != nil {
			// A missing live observer must not stop the harness;
			// events simply go to the remaining sinks.
			logger.Warn().Err(err).Str("url", cfg.Sinks.StreamURL).Msg("stream sink unavailable")
		} else {
			sinks = append(sinks, stream)
		}
	}

	return sinks, nil
}

// monitorOptions translates config into monitor options.
func monitorOptions(cfg *config.Config, metrics *telemetry.EventMetrics, logger zerolog.Logger) []monitor.Option {
	opts := []monitor.Option{
		monitor.WithLogger(logger),
		monitor.WithMetrics(metrics),
		monitor.WithDetection(cfg.Monitor.Detection),
	}
	if cfg.Monitor.Debounce > 0 {
		opts = append(opts, monitor.WithDebounce(cfg.Monitor.Debounce))
	}
	if cfg.Monitor.Retention > 0 {
		opts = append(opts, monitor.WithRetention(cfg.Monitor.Retention))
	}
	return opts
}
