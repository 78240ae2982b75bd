package stream

import (
	"fmt"
	"net/url"
	"time"

	"github.com/DHRUVXJANI/EdgeTune/errors"
	"github.com/DHRUVXJANI/EdgeTune/notify"
	"github.com/DHRUVXJANI/EdgeTune/pkg/retry"
)

// Default connection settings.
const (
	DefaultURL              = "ws://localhost:8000/ws"
	DefaultHandshakeTimeout = 10 * time.Second
)

// Capacities fixes the bounded history sizes. They are set at construction
// and never change for the life of the client.
type Capacities struct {
	Telemetry    int `json:"telemetry" yaml:"telemetry"`
	Decisions    int `json:"decisions" yaml:"decisions"`
	Explanations int `json:"explanations" yaml:"explanations"`
	Suggestions  int `json:"suggestions" yaml:"suggestions"`
}

// DefaultCapacities returns the history sizes the dashboard was tuned for.
func DefaultCapacities() Capacities {
	return Capacities{
		Telemetry:    120,
		Decisions:    50,
		Explanations: 50,
		Suggestions:  20,
	}
}

// Config configures the stream client.
type Config struct {
	// URL is the backend WebSocket endpoint (ws:// or wss://).
	URL string

	// HandshakeTimeout bounds the WebSocket dial.
	HandshakeTimeout time.Duration

	// Backoff is the reconnect schedule. The zero value falls back to
	// retry.Reconnect(): 1s doubling to a 30s cap, no jitter.
	Backoff retry.Config

	// Capacities sets the bounded history sizes.
	Capacities Capacities

	// NotificationTTL is how long a status notification stays visible.
	// Zero falls back to notify.DefaultTTL.
	NotificationTTL time.Duration

	// PingInterval, when positive, sends a keep-alive ping on each open
	// connection at this interval. Zero disables client-side pings; the
	// backend pushes telemetry continuously, so pings are rarely needed.
	PingInterval time.Duration

	// StaleAfter, when positive, degrades the reported health when no
	// frame has arrived for this long on an open connection. It never
	// triggers a reconnect. Zero disables staleness detection.
	StaleAfter time.Duration
}

// DefaultConfig returns the configuration the dashboard ships with.
func DefaultConfig() Config {
	return Config{
		URL:              DefaultURL,
		HandshakeTimeout: DefaultHandshakeTimeout,
		Backoff:          retry.Reconnect(),
		Capacities:       DefaultCapacities(),
		NotificationTTL:  notify.DefaultTTL,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.URL == "" {
		c.URL = def.URL
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = def.HandshakeTimeout
	}
	if c.Backoff == (retry.Config{}) {
		c.Backoff = def.Backoff
	}
	if c.Capacities.Telemetry <= 0 {
		c.Capacities.Telemetry = def.Capacities.Telemetry
	}
	if c.Capacities.Decisions <= 0 {
		c.Capacities.Decisions = def.Capacities.Decisions
	}
	if c.Capacities.Explanations <= 0 {
		c.Capacities.Explanations = def.Capacities.Explanations
	}
	if c.Capacities.Suggestions <= 0 {
		c.Capacities.Suggestions = def.Capacities.Suggestions
	}
	if c.NotificationTTL <= 0 {
		c.NotificationTTL = def.NotificationTTL
	}
	return c
}

// Validate checks the configuration after defaults are applied.
func (c Config) Validate() error {
	u, err := url.Parse(c.URL)
	if err != nil {
		return errors.WrapInvalid(err, "stream", "Validate", "parse URL")
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return errors.WrapInvalid(
			fmt.Errorf("%w: unsupported scheme %q, want ws or wss", errors.ErrInvalidConfig, u.Scheme),
			"stream", "Validate", "check URL scheme")
	}
	if u.Host == "" {
		return errors.WrapInvalid(
			fmt.Errorf("%w: URL %q has no host", errors.ErrInvalidConfig, c.URL),
			"stream", "Validate", "check URL host")
	}
	if c.PingInterval < 0 {
		return errors.WrapInvalid(
			fmt.Errorf("%w: negative ping interval %v", errors.ErrInvalidConfig, c.PingInterval),
			"stream", "Validate", "check ping interval")
	}
	if c.StaleAfter < 0 {
		return errors.WrapInvalid(
			fmt.Errorf("%w: negative stale threshold %v", errors.ErrInvalidConfig, c.StaleAfter),
			"stream", "Validate", "check stale threshold")
	}
	return nil
}
