package stream

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/DHRUVXJANI/EdgeTune/envelope"
	"github.com/DHRUVXJANI/EdgeTune/errors"
	"github.com/DHRUVXJANI/EdgeTune/health"
	"github.com/DHRUVXJANI/EdgeTune/metric"
)

// Client maintains one persistent WebSocket to the EdgeTune backend and
// routes inbound frames into its Sinks. Connection failures are never
// surfaced as errors; the client reconnects forever with capped exponential
// backoff, and callers observe only Connected, State, Health, and the sink
// contents.
type Client struct {
	cfg      Config
	logger   *slog.Logger
	registry *metric.Registry
	sinks    *Sinks
	metrics  *Metrics
	core     *metric.Metrics
	router   *router

	dialer *websocket.Dialer

	// Live connection, replaced on every attempt and never reused.
	connMu  sync.Mutex
	conn    *websocket.Conn
	writeMu sync.Mutex

	lifecycleMu sync.Mutex
	cancel      context.CancelFunc
	wg          sync.WaitGroup

	started      atomic.Bool
	state        atomic.Int32
	connected    atomic.Bool
	lastActivity atomic.Value // time.Time
	startTime    time.Time

	errorCount atomic.Int64
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the client's logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics enables Prometheus export through the given registry, for both
// the client itself and its histories.
func WithMetrics(registry *metric.Registry) Option {
	return func(c *Client) {
		c.registry = registry
	}
}

// New creates a stream client. Zero config fields fall back to defaults;
// the remainder is validated.
func New(cfg Config, options ...Option) (*Client, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		cfg:    cfg,
		logger: slog.Default(),
	}
	for _, opt := range options {
		opt(c)
	}

	sinks, err := NewSinks(cfg.Capacities, cfg.NotificationTTL, c.registry)
	if err != nil {
		return nil, err
	}
	c.sinks = sinks
	c.metrics = newMetrics(c.registry)
	if c.registry != nil {
		c.core = c.registry.CoreMetrics()
	}
	c.router = newRouter(c)

	c.dialer = &websocket.Dialer{
		HandshakeTimeout: cfg.HandshakeTimeout,
	}
	c.setState(StateIdle)
	c.lastActivity.Store(time.Time{})

	return c, nil
}

// Sinks returns the client's session state. The same sinks are reused across
// reconnects.
func (c *Client) Sinks() *Sinks {
	return c.sinks
}

// Start launches the connection manager. It returns immediately; dialing and
// all retries happen in the background.
func (c *Client) Start(ctx context.Context) error {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()

	if c.started.Load() {
		return errors.WrapFatal(errors.ErrAlreadyStarted, "stream", "Start", "check started state")
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.startTime = time.Now()
	c.started.Store(true)

	c.wg.Add(1)
	go c.run(runCtx)

	return nil
}

// Stop tears the client down: the live connection is closed, any pending
// reconnect timer is cancelled, and no further attempt is scheduled. Sinks
// keep their contents.
func (c *Client) Stop() error {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()

	if !c.started.Load() {
		return nil
	}

	c.cancel()

	// Unblock the read loop; the run loop handles the rest.
	c.connMu.Lock()
	if c.conn != nil {
		_ = c.conn.Close()
	}
	c.connMu.Unlock()

	c.wg.Wait()
	c.started.Store(false)
	return nil
}

// Reset empties all sinks. Reconnects never do this; a reset is an explicit
// session boundary requested by the caller.
func (c *Client) Reset() {
	c.sinks.Reset()
	c.logger.Info("session sinks reset")
}

// Connected reports whether the WebSocket is currently open.
func (c *Client) Connected() bool {
	return c.connected.Load()
}

// State returns the connection manager's current state.
func (c *Client) State() State {
	return State(c.state.Load())
}

// LastActivity returns when the last frame arrived. The zero time means no
// frame has arrived yet.
func (c *Client) LastActivity() time.Time {
	return c.lastActivity.Load().(time.Time)
}

// Health reports the client's health: healthy when the connection is open
// and fresh, degraded when open but stale (with StaleAfter set), unhealthy
// when disconnected or stopped.
func (c *Client) Health() health.Status {
	status := c.healthStatus()
	status.Metrics = &health.Metrics{
		Uptime:       c.uptime(),
		ErrorCount:   int(c.errorCount.Load()),
		LastActivity: c.LastActivity(),
	}
	return status
}

func (c *Client) healthStatus() health.Status {
	if !c.started.Load() {
		return health.NewUnhealthy("stream_client", "not started")
	}
	if !c.connected.Load() {
		return health.NewUnhealthy("stream_client", "disconnected, reconnecting")
	}
	if c.cfg.StaleAfter > 0 {
		if last := c.LastActivity(); !last.IsZero() && time.Since(last) > c.cfg.StaleAfter {
			return health.NewDegraded("stream_client", "connection open but no recent frames")
		}
	}
	return health.NewHealthy("stream_client", "connected")
}

func (c *Client) uptime() time.Duration {
	if c.startTime.IsZero() {
		return 0
	}
	return time.Since(c.startTime)
}

// run is the connection manager loop: dial, read until the connection drops,
// back off on failure, repeat until the context is cancelled.
func (c *Client) run(ctx context.Context) {
	defer c.wg.Done()
	defer func() { c.setState(StateIdle) }()

	attempt := 0

	for {
		if ctx.Err() != nil {
			return
		}

		c.setState(StateConnecting)
		conn, _, err := c.dialer.DialContext(ctx, c.cfg.URL, nil)
		if err != nil {
			if ctx.Err() != nil {
				return
			}

			c.trackError("connect_error")
			cause := fmt.Errorf("%w: %s", errors.ErrHandshakeFailed,
				health.SanitizeMessage(err.Error()))
			if !c.waitReconnect(ctx, &attempt, "connect failed, backing off", cause) {
				return
			}
			continue
		}

		// Successful open resets the backoff schedule.
		attempt = 0
		c.setConn(conn)
		c.setState(StateOpen)
		c.connected.Store(true)
		c.markActivity()
		if c.metrics != nil {
			c.metrics.connectionsTotal.Inc()
			c.metrics.connected.Set(1)
		}
		c.logger.Info("connected", "url", c.cfg.URL)

		c.serveConn(ctx, conn)

		c.connected.Store(false)
		c.setConn(nil)
		_ = conn.Close()
		c.setState(StateClosed)
		if c.metrics != nil {
			c.metrics.connected.Set(0)
		}

		if ctx.Err() != nil {
			return
		}
		// A dropped connection reschedules like a failed dial; attempt was
		// reset on Open, so the first delay after a drop is the initial one.
		if !c.waitReconnect(ctx, &attempt, "connection lost, backing off", errors.ErrConnectionLost) {
			return
		}
	}
}

// waitReconnect blocks for the backoff delay of the given attempt and then
// advances the counter. Returns false when the context is cancelled first.
func (c *Client) waitReconnect(ctx context.Context, attempt *int, msg string, cause error) bool {
	if c.metrics != nil {
		c.metrics.reconnectAttempts.Inc()
	}

	delay := c.cfg.Backoff.DelayFor(*attempt)
	*attempt++
	c.logger.Warn(msg,
		"url", c.cfg.URL,
		"attempt", *attempt,
		"delay", delay,
		"error", cause.Error())

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// serveConn reads frames from one connection until it drops, with an
// optional keep-alive ping ticker alongside.
func (c *Client) serveConn(ctx context.Context, conn *websocket.Conn) {
	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if c.cfg.PingInterval > 0 {
		c.wg.Add(1)
		go c.pingLoop(connCtx, conn)
	}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				c.trackError("read_error")
			}
			return
		}

		c.markActivity()
		c.router.route(conn, raw)
	}
}

// pingLoop sends keep-alive pings until the connection's context ends.
func (c *Client) pingLoop(ctx context.Context, conn *websocket.Conn) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			raw, err := envelope.Encode(envelope.TypePing, envelope.Ping{
				Timestamp: float64(time.Now().UnixMilli()) / 1000,
			})
			if err != nil {
				continue
			}
			if err := c.writeMessage(conn, raw); err != nil {
				return
			}
		}
	}
}

// writeMessage serializes writers on the live connection. Gorilla allows
// only one concurrent writer per conn.
func (c *Client) writeMessage(conn *websocket.Conn, raw []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return conn.WriteMessage(websocket.TextMessage, raw)
}

func (c *Client) setConn(conn *websocket.Conn) {
	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()
}

// setState records a state transition, mirrored to the core status gauge.
func (c *Client) setState(s State) {
	c.state.Store(int32(s))
	if c.core != nil {
		c.core.SetClientStatus("stream_client", float64(s))
	}
}

// trackError counts an error in both the atomic counter and the core
// error metric.
func (c *Client) trackError(errorType string) {
	c.errorCount.Add(1)
	if c.core != nil {
		c.core.RecordError("stream_client", errorType)
	}
}

func (c *Client) markActivity() {
	c.lastActivity.Store(time.Now())
}
