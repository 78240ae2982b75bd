// Package config loads client configuration from JSON or YAML files with
// EDGETUNE_* environment overrides. Precedence is env > file > default.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/DHRUVXJANI/EdgeTune/errors"
	"github.com/DHRUVXJANI/EdgeTune/notify"
	"github.com/DHRUVXJANI/EdgeTune/pkg/retry"
	"github.com/DHRUVXJANI/EdgeTune/stream"
)

// envPrefix is prepended to every environment override.
const envPrefix = "EDGETUNE"

// Config is the complete client configuration.
type Config struct {
	Server  ServerConfig  `json:"server" yaml:"server"`
	Stream  StreamConfig  `json:"stream" yaml:"stream"`
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// ServerConfig names the backend endpoints.
type ServerConfig struct {
	// WebSocketURL is the event stream endpoint.
	WebSocketURL string `json:"websocket_url" yaml:"websocket_url"`
	// ControlURL is the REST control-plane base URL.
	ControlURL string `json:"control_url" yaml:"control_url"`
}

// StreamConfig tunes the stream client.
type StreamConfig struct {
	HandshakeTimeout Duration          `json:"handshake_timeout" yaml:"handshake_timeout"`
	Capacities       stream.Capacities `json:"capacities" yaml:"capacities"`
	NotificationTTL  Duration          `json:"notification_ttl" yaml:"notification_ttl"`
	PingInterval     Duration          `json:"ping_interval" yaml:"ping_interval"`
	StaleAfter       Duration          `json:"stale_after" yaml:"stale_after"`
	Backoff          BackoffConfig     `json:"backoff" yaml:"backoff"`
}

// BackoffConfig is the reconnect schedule.
type BackoffConfig struct {
	InitialDelay Duration `json:"initial_delay" yaml:"initial_delay"`
	MaxDelay     Duration `json:"max_delay" yaml:"max_delay"`
	Multiplier   float64  `json:"multiplier" yaml:"multiplier"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Port    int    `json:"port" yaml:"port"`
	Path    string `json:"path" yaml:"path"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level"`   // debug, info, warn, error
	Format string `json:"format" yaml:"format"` // text, json
}

// Default returns the configuration the client ships with.
func Default() Config {
	reconnect := retry.Reconnect()
	return Config{
		Server: ServerConfig{
			WebSocketURL: stream.DefaultURL,
			ControlURL:   "http://localhost:8000",
		},
		Stream: StreamConfig{
			HandshakeTimeout: Duration(stream.DefaultHandshakeTimeout),
			Capacities:       stream.DefaultCapacities(),
			NotificationTTL:  Duration(notify.DefaultTTL),
			Backoff: BackoffConfig{
				InitialDelay: Duration(reconnect.InitialDelay),
				MaxDelay:     Duration(reconnect.MaxDelay),
				Multiplier:   reconnect.Multiplier,
			},
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9091,
			Path:    "/metrics",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the file at path (JSON or YAML by extension), layers it over
// defaults, applies environment overrides, and validates the result. An
// empty path skips the file layer.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.WrapInvalid(err, "config", "Load", "read config file")
		}

		switch strings.ToLower(filepath.Ext(path)) {
		case ".json":
			if err := json.Unmarshal(raw, &cfg); err != nil {
				return nil, errors.WrapInvalid(err, "config", "Load", "parse JSON config")
			}
		case ".yaml", ".yml":
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return nil, errors.WrapInvalid(err, "config", "Load", "parse YAML config")
			}
		default:
			return nil, errors.WrapInvalid(
				fmt.Errorf("unsupported config extension %q, want .json, .yaml, or .yml", filepath.Ext(path)),
				"config", "Load", "detect file format")
		}
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnvOverrides layers EDGETUNE_* variables over the loaded values.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv(envPrefix + "_WS_URL"); val != "" {
		cfg.Server.WebSocketURL = val
	}
	if val := os.Getenv(envPrefix + "_CONTROL_URL"); val != "" {
		cfg.Server.ControlURL = val
	}
	if val := os.Getenv(envPrefix + "_PING_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Stream.PingInterval = Duration(d)
		}
	}
	if val := os.Getenv(envPrefix + "_STALE_AFTER"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Stream.StaleAfter = Duration(d)
		}
	}
	if val := os.Getenv(envPrefix + "_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Metrics.Enabled = b
		}
	}
	if val := os.Getenv(envPrefix + "_METRICS_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			cfg.Metrics.Port = port
		}
	}
	if val := os.Getenv(envPrefix + "_LOG_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv(envPrefix + "_LOG_FORMAT"); val != "" {
		cfg.Logging.Format = val
	}
}

// Validate checks the assembled configuration.
func (c *Config) Validate() error {
	if err := c.StreamConfig().Validate(); err != nil {
		return err
	}
	if c.Server.ControlURL != "" &&
		!strings.HasPrefix(c.Server.ControlURL, "http://") &&
		!strings.HasPrefix(c.Server.ControlURL, "https://") {
		return errors.WrapInvalid(
			fmt.Errorf("control URL %q must be http or https", c.Server.ControlURL),
			"config", "Validate", "check control URL")
	}
	if c.Metrics.Enabled && (c.Metrics.Port <= 0 || c.Metrics.Port > 65535) {
		return errors.WrapInvalid(
			fmt.Errorf("metrics port %d out of range", c.Metrics.Port),
			"config", "Validate", "check metrics port")
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return errors.WrapInvalid(
			fmt.Errorf("unknown log level %q", c.Logging.Level),
			"config", "Validate", "check log level")
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		return errors.WrapInvalid(
			fmt.Errorf("unknown log format %q", c.Logging.Format),
			"config", "Validate", "check log format")
	}
	return nil
}

// StreamConfig converts the file representation into the stream client's
// config.
func (c *Config) StreamConfig() stream.Config {
	return stream.Config{
		URL:              c.Server.WebSocketURL,
		HandshakeTimeout: time.Duration(c.Stream.HandshakeTimeout),
		Capacities:       c.Stream.Capacities,
		NotificationTTL:  time.Duration(c.Stream.NotificationTTL),
		PingInterval:     time.Duration(c.Stream.PingInterval),
		StaleAfter:       time.Duration(c.Stream.StaleAfter),
		Backoff: retry.Config{
			InitialDelay: time.Duration(c.Stream.Backoff.InitialDelay),
			MaxDelay:     time.Duration(c.Stream.Backoff.MaxDelay),
			Multiplier:   c.Stream.Backoff.Multiplier,
		},
	}
}
