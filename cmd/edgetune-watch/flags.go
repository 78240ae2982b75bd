package main

import (
	"flag"
	"fmt"
	"os"
	"time"
)

// CLIConfig holds command-line configuration.
type CLIConfig struct {
	ConfigPath   string
	URL          string
	LogLevel     string
	LogFormat    string
	StatusEvery  time.Duration
	CountFrames  bool
	CheckBackend bool
	ShowVersion  bool
	ShowHelp     bool
	Validate     bool
}

func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}

	flag.StringVar(&cfg.ConfigPath, "config",
		getEnv("EDGETUNE_CONFIG", ""),
		"Path to JSON or YAML configuration file (env: EDGETUNE_CONFIG)")

	flag.StringVar(&cfg.URL, "url", "",
		"WebSocket URL, overrides the config file (env: EDGETUNE_WS_URL)")

	flag.StringVar(&cfg.LogLevel, "log-level", "",
		"Log level: debug, info, warn, error (overrides config)")

	flag.StringVar(&cfg.LogFormat, "log-format", "",
		"Log format: text, json (overrides config)")

	flag.DurationVar(&cfg.StatusEvery, "status-every",
		getEnvDuration("EDGETUNE_STATUS_EVERY", 10*time.Second),
		"How often to log a stream summary (env: EDGETUNE_STATUS_EVERY)")

	flag.BoolVar(&cfg.CountFrames, "count-frames", true,
		"Subscribe to the video frame feed and count frames")

	flag.BoolVar(&cfg.CheckBackend, "check-backend", true,
		"Query the backend health endpoint on startup")

	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	flag.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")
	flag.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")
	flag.BoolVar(&cfg.ShowHelp, "h", false, "Show help information")
	flag.BoolVar(&cfg.Validate, "validate", false, "Validate configuration and exit")

	flag.Usage = printDetailedHelp

	flag.Parse()
	return cfg
}

func printDetailedHelp() {
	_, _ = fmt.Fprintf(os.Stderr, `%s - EdgeTune stream watcher

Usage: %s [options]

Options:
`, appName, os.Args[0])
	flag.PrintDefaults()
	_, _ = fmt.Fprintf(os.Stderr, `
Examples:
  # Watch the default local backend
  %s

  # Custom backend with a config file
  %s --config=/etc/edgetune/client.yaml

  # Point at a remote backend directly
  %s --url=ws://gpu-box:8000/ws --log-level=debug

  # Validate configuration only
  %s --config=client.yaml --validate

Version: %s
`, os.Args[0], os.Args[0], os.Args[0], os.Args[0], Version)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
