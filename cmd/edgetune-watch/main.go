// Command edgetune-watch connects to an EdgeTune backend, follows its event
// stream, and periodically logs what the dashboard would show: latest
// telemetry, recent autopilot decisions, and connection health. With metrics
// enabled it also exposes everything on a Prometheus endpoint.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/DHRUVXJANI/EdgeTune/config"
	"github.com/DHRUVXJANI/EdgeTune/control"
	"github.com/DHRUVXJANI/EdgeTune/envelope"
	"github.com/DHRUVXJANI/EdgeTune/health"
	"github.com/DHRUVXJANI/EdgeTune/metric"
	"github.com/DHRUVXJANI/EdgeTune/stream"
)

const (
	Version = "0.1.0"
	appName = "edgetune-watch"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("application failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cliCfg := parseFlags()

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil
	}
	if cliCfg.ShowHelp {
		printDetailedHelp()
		return nil
	}

	cfg, err := config.Load(cliCfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyFlagOverrides(cfg, cliCfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	logger := setupLogger(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	if cliCfg.Validate {
		logger.Info("configuration is valid", "config_path", cliCfg.ConfigPath)
		return nil
	}

	logger.Info("starting",
		"ws_url", cfg.Server.WebSocketURL,
		"control_url", cfg.Server.ControlURL,
		"metrics_enabled", cfg.Metrics.Enabled)

	signalCtx, signalCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	registry := metric.NewRegistry()

	var opts []stream.Option
	opts = append(opts, stream.WithLogger(logger))
	if cfg.Metrics.Enabled {
		opts = append(opts, stream.WithMetrics(registry))
	}

	client, err := stream.New(cfg.StreamConfig(), opts...)
	if err != nil {
		return fmt.Errorf("create stream client: %w", err)
	}

	var frameCount atomic.Uint64
	if cliCfg.CountFrames {
		client.Sinks().Frames.Subscribe(func(envelope.VideoFrame) {
			frameCount.Add(1)
		})
	}

	monitor := health.NewMonitor()
	if cliCfg.CheckBackend {
		checkBackend(signalCtx, cfg.Server.ControlURL, monitor, logger)
	}

	if err := client.Start(signalCtx); err != nil {
		return fmt.Errorf("start stream client: %w", err)
	}

	group, groupCtx := errgroup.WithContext(signalCtx)

	var metricsServer *metric.Server
	if cfg.Metrics.Enabled {
		metricsServer = metric.NewServer(cfg.Metrics.Port, cfg.Metrics.Path, registry)
		group.Go(func() error {
			logger.Info("metrics server listening", "port", cfg.Metrics.Port, "path", cfg.Metrics.Path)
			return metricsServer.Start()
		})
	}

	group.Go(func() error {
		watchLoop(groupCtx, client, monitor, &frameCount, cliCfg.StatusEvery, logger)
		return nil
	})

	<-signalCtx.Done()
	logger.Info("received shutdown signal")

	if err := client.Stop(); err != nil {
		logger.Error("stream client stop failed", "error", err)
	}
	if metricsServer != nil {
		if err := metricsServer.Stop(); err != nil {
			logger.Error("metrics server stop failed", "error", err)
		}
	}

	if err := group.Wait(); err != nil {
		return err
	}
	logger.Info("shutdown complete")
	return nil
}

// applyFlagOverrides lets explicit flags win over both file and env.
func applyFlagOverrides(cfg *config.Config, cliCfg *CLIConfig) {
	if cliCfg.URL != "" {
		cfg.Server.WebSocketURL = cliCfg.URL
	}
	if cliCfg.LogLevel != "" {
		cfg.Logging.Level = cliCfg.LogLevel
	}
	if cliCfg.LogFormat != "" {
		cfg.Logging.Format = cliCfg.LogFormat
	}
}

// checkBackend queries the control-plane health endpoint once at startup.
// Failures are logged, not fatal; the stream client reconnects on its own.
func checkBackend(ctx context.Context, controlURL string, monitor *health.Monitor, logger *slog.Logger) {
	ctl, err := control.New(controlURL, control.WithLogger(logger))
	if err != nil {
		logger.Warn("control client unavailable", "error", err)
		monitor.UpdateUnhealthy("backend", health.SanitizeMessage(err.Error()))
		return
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	info, err := ctl.Health(checkCtx)
	if err != nil {
		logger.Warn("backend health check failed", "error", err)
		monitor.UpdateUnhealthy("backend", health.SanitizeMessage(err.Error()))
		return
	}
	monitor.UpdateHealthy("backend", info.Status)
	logger.Info("backend health",
		"status", info.Status,
		"gpu_available", info.GPUAvailable,
		"inference_running", info.InferenceRunning,
		"llm_available", info.LLMAvailable)
}

// watchLoop logs a periodic summary of the stream state.
func watchLoop(ctx context.Context, client *stream.Client, monitor *health.Monitor, frames *atomic.Uint64, every time.Duration, logger *slog.Logger) {
	if every <= 0 {
		every = 10 * time.Second
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			logSummary(client, monitor, frames, logger)
		}
	}
}

func logSummary(client *stream.Client, monitor *health.Monitor, frames *atomic.Uint64, logger *slog.Logger) {
	sinks := client.Sinks()
	status := client.Health()
	monitor.Update("stream_client", status)
	overall := monitor.AggregateHealth("edgetune-watch")

	attrs := []any{
		"state", client.State().String(),
		"health", overall.Status,
		"telemetry", sinks.Telemetry.Len(),
		"decisions", sinks.Decisions.Len(),
		"explanations", sinks.Explanations.Len(),
		"suggestions", sinks.Suggestions.Len(),
		"frames", frames.Load(),
	}

	if latest, ok := sinks.LatestTelemetry.Get(); ok {
		attrs = append(attrs,
			"fps", latest.FPS,
			"gpu_util", latest.GPUUtil,
			"latency_ms", latest.LatencyMS)
	}
	if notification, ok := sinks.Notifications.Current(); ok {
		attrs = append(attrs, "notification", notification.Message)
	}

	logger.Info("stream summary", attrs...)
}
