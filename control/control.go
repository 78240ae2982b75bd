// Package control is the REST control-plane client for the EdgeTune backend.
// The stream package carries everything the backend pushes; control carries
// everything the dashboard asks for: health, on-demand telemetry, autopilot
// mode changes, inference start/stop, and playback control.
package control

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/DHRUVXJANI/EdgeTune/envelope"
	"github.com/DHRUVXJANI/EdgeTune/errors"
)

// DefaultTimeout bounds each control-plane request.
const DefaultTimeout = 10 * time.Second

// Client issues control-plane requests against the backend's HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithLogger sets the client's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a control client for the backend at baseURL
// (e.g. "http://localhost:8000").
func New(baseURL string, options ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.WrapInvalid(err, "control", "New", "parse base URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.WrapInvalid(
			fmt.Errorf("unsupported scheme %q, want http or https", u.Scheme),
			"control", "New", "check base URL scheme")
	}
	if u.Host == "" {
		return nil, errors.WrapInvalid(
			fmt.Errorf("base URL %q has no host", baseURL),
			"control", "New", "check base URL host")
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		logger:  slog.Default(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// Health returns the backend's health summary.
func (c *Client) Health(ctx context.Context) (*HealthInfo, error) {
	var out HealthInfo
	if err := c.getJSON(ctx, "/api/health", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Hardware returns the backend's hardware profile.
func (c *Client) Hardware(ctx context.Context) (*HardwareInfo, error) {
	var out HardwareInfo
	if err := c.getJSON(ctx, "/api/hardware", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Telemetry returns the most recent telemetry snapshot, or nil when the
// backend has not produced one yet.
func (c *Client) Telemetry(ctx context.Context) (*envelope.Telemetry, error) {
	var out envelope.Telemetry
	if err := c.getJSON(ctx, "/api/telemetry", &out); err != nil {
		return nil, err
	}
	if out.Timestamp == 0 {
		// The backend answers with a plain message before the first
		// snapshot exists.
		return nil, nil
	}
	return &out, nil
}

// TelemetryHistory returns up to n recent telemetry snapshots, oldest first.
func (c *Client) TelemetryHistory(ctx context.Context, n int) ([]envelope.Telemetry, error) {
	path := "/api/telemetry/history"
	if n > 0 {
		path += "?n=" + strconv.Itoa(n)
	}
	var out []envelope.Telemetry
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AutopilotState returns the autopilot controller's current state.
func (c *Client) AutopilotState(ctx context.Context) (*AutopilotState, error) {
	var out AutopilotState
	if err := c.getJSON(ctx, "/api/autopilot/state", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetAutopilotMode switches the autopilot optimization mode
// ("speed", "balanced", or "accuracy").
func (c *Client) SetAutopilotMode(ctx context.Context, mode string) error {
	return c.postJSON(ctx, "/api/autopilot/mode", map[string]string{"mode": mode}, nil)
}

// StartInference starts the inference engine on the given source.
// Source is "camera" or a file path; processingMode is "paced" or
// "benchmark". Empty strings take the backend defaults.
func (c *Client) StartInference(ctx context.Context, source, processingMode string) error {
	body := map[string]string{}
	if source != "" {
		body["source"] = source
	}
	if processingMode != "" {
		body["processing_mode"] = processingMode
	}
	return c.postJSON(ctx, "/api/inference/start", body, nil)
}

// StopInference stops the inference engine.
func (c *Client) StopInference(ctx context.Context) error {
	return c.postJSON(ctx, "/api/inference/stop", map[string]string{}, nil)
}

// SourceInfo returns details about the active video source.
func (c *Client) SourceInfo(ctx context.Context) (*SourceInfo, error) {
	var out SourceInfo
	if err := c.getJSON(ctx, "/api/source/info", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Playback drives the active source: "pause", "resume", "seek" (frame),
// "seek_percent" (0..100), or "speed" (multiplier).
func (c *Client) Playback(ctx context.Context, action string, value float64) error {
	return c.postJSON(ctx, "/api/source/playback", PlaybackRequest{
		Action: action,
		Value:  value,
	}, nil)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return errors.WrapInvalid(err, "control", "getJSON", "build request")
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return errors.WrapInvalid(err, "control", "postJSON", "marshal request body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return errors.WrapInvalid(err, "control", "postJSON", "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.WrapTransient(err, "control", "do", "execute request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return errors.WrapTransient(err, "control", "do", "read response body")
	}

	if err := classifyStatus(resp.StatusCode, req.URL.Path, body); err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.WrapInvalid(err, "control", "do",
			fmt.Sprintf("decode %s response", req.URL.Path))
	}
	return nil
}

// classifyStatus maps HTTP status codes onto the error taxonomy: 429 and 5xx
// are transient, other non-2xx are invalid requests.
func classifyStatus(code int, path string, body []byte) error {
	if code >= 200 && code < 300 {
		return nil
	}

	detail := strings.TrimSpace(string(body))
	if len(detail) > 200 {
		detail = detail[:200]
	}
	base := fmt.Errorf("%s returned %d: %s: %w", path, code, detail, errors.ErrRequestFailed)

	switch {
	case code == http.StatusTooManyRequests:
		return errors.WrapTransient(errors.ErrRateLimited, "control", "do", path)
	case code >= 500:
		return errors.WrapTransient(base, "control", "do", "server error")
	default:
		return errors.WrapInvalid(base, "control", "do", "request rejected")
	}
}
