package stream

import (
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/DHRUVXJANI/EdgeTune/envelope"
)

// router dispatches decoded envelopes into the client's sinks. Dispatch is
// synchronous on the read loop: no queuing, no reordering. Malformed frames
// and unknown type tags are discarded without touching sink state; they show
// up only in metrics and rate-limited debug logs.
type router struct {
	client *Client

	// Throttles discard logging so a misbehaving server cannot flood the
	// log at frame rate.
	discardLog *rate.Limiter
}

func newRouter(c *Client) *router {
	return &router{
		client:     c,
		discardLog: rate.NewLimiter(rate.Every(time.Second), 5),
	}
}

func (r *router) route(conn *websocket.Conn, raw []byte) {
	c := r.client

	env, err := envelope.Decode(raw)
	if err != nil {
		if c.metrics != nil {
			c.metrics.decodeFailures.Inc()
		}
		r.logDiscard("discarding malformed frame", "error", err)
		return
	}

	if c.metrics != nil {
		c.metrics.messagesReceived.WithLabelValues(string(env.Type)).Inc()
	}

	switch env.Type {
	case envelope.TypeTelemetry:
		var t envelope.Telemetry
		if !r.decodeBody(env, &t) {
			return
		}
		c.sinks.Telemetry.Append(t)
		c.sinks.LatestTelemetry.Set(t)

	case envelope.TypeAutopilotDecision:
		var d envelope.AutopilotDecision
		if !r.decodeBody(env, &d) {
			return
		}
		c.sinks.Decisions.Append(d)

	case envelope.TypeLLMExplanation:
		var e envelope.LLMExplanation
		if !r.decodeBody(env, &e) {
			return
		}
		c.sinks.Explanations.Append(e)

	case envelope.TypeAdvisorSuggestion:
		var s envelope.AdvisorSuggestion
		if !r.decodeBody(env, &s) {
			return
		}
		c.sinks.Suggestions.Append(s)

	case envelope.TypeDetectionSummary:
		var d envelope.DetectionSummary
		if !r.decodeBody(env, &d) {
			return
		}
		c.sinks.Detections.Set(d)

	case envelope.TypeSourceProgress:
		var p envelope.SourceProgress
		if !r.decodeBody(env, &p) {
			return
		}
		c.sinks.Progress.Set(p)

	case envelope.TypeVideoFrame:
		var f envelope.VideoFrame
		if !r.decodeBody(env, &f) {
			return
		}
		c.sinks.Frames.Publish(f)
		if c.metrics != nil {
			c.metrics.framesPublished.Inc()
		}

	case envelope.TypeStatus:
		var s envelope.Status
		if !r.decodeBody(env, &s) {
			return
		}
		c.sinks.Notifications.Post(s)

	case envelope.TypePing:
		r.replyPong(conn)

	case envelope.TypePong:
		// Activity is already marked by the read loop.

	default:
		if c.metrics != nil {
			c.metrics.unknownTypes.Inc()
		}
		r.logDiscard("discarding unknown frame type", "type", string(env.Type))
	}
}

// decodeBody unmarshals the envelope body, discarding the frame on failure.
func (r *router) decodeBody(env *envelope.Envelope, v any) bool {
	if err := env.DecodeData(v); err != nil {
		if r.client.metrics != nil {
			r.client.metrics.decodeFailures.Inc()
		}
		r.logDiscard("discarding frame with bad body", "type", string(env.Type), "error", err)
		return false
	}
	return true
}

// replyPong answers a server ping on the same connection. Write failures are
// ignored; the read loop will observe the broken connection.
func (r *router) replyPong(conn *websocket.Conn) {
	c := r.client

	raw, err := envelope.Encode(envelope.TypePong, envelope.Ping{
		Timestamp: float64(time.Now().UnixMilli()) / 1000,
	})
	if err != nil {
		return
	}

	if err := c.writeMessage(conn, raw); err != nil {
		return
	}
	if c.metrics != nil {
		c.metrics.pongsSent.Inc()
	}
}

func (r *router) logDiscard(msg string, args ...any) {
	if r.discardLog.Allow() {
		r.client.logger.Debug(msg, args...)
	}
}
