package stream

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/DHRUVXJANI/EdgeTune/metric"
)

// Metrics holds Prometheus metrics for the stream client.
type Metrics struct {
	messagesReceived  *prometheus.CounterVec
	decodeFailures    prometheus.Counter
	unknownTypes      prometheus.Counter
	reconnectAttempts prometheus.Counter
	connectionsTotal  prometheus.Counter
	connected         prometheus.Gauge
	framesPublished   prometheus.Counter
	pongsSent         prometheus.Counter
}

// newMetrics creates and registers stream client metrics. A nil registry
// disables metrics entirely.
func newMetrics(registry *metric.Registry) *Metrics {
	if registry == nil {
		return nil
	}

	m := &Metrics{
		messagesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "edgetune",
			Subsystem: "stream",
			Name:      "messages_received_total",
			Help:      "Total frames received, by envelope type",
		}, []string{"type"}),

		decodeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "edgetune",
			Subsystem: "stream",
			Name:      "decode_failures_total",
			Help:      "Total frames discarded as malformed",
		}),

		unknownTypes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "edgetune",
			Subsystem: "stream",
			Name:      "unknown_types_total",
			Help:      "Total frames discarded for an unrecognized type tag",
		}),

		reconnectAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "edgetune",
			Subsystem: "stream",
			Name:      "reconnect_attempts_total",
			Help:      "Total failed connection attempts",
		}),

		connectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "edgetune",
			Subsystem: "stream",
			Name:      "connections_total",
			Help:      "Total successful connections",
		}),

		connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "edgetune",
			Subsystem: "stream",
			Name:      "connected",
			Help:      "Whether the WebSocket is currently open (0 or 1)",
		}),

		framesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "edgetune",
			Subsystem: "stream",
			Name:      "frames_published_total",
			Help:      "Total video frames handed to subscribers",
		}),

		pongsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "edgetune",
			Subsystem: "stream",
			Name:      "pongs_sent_total",
			Help:      "Total pong replies sent to server pings",
		}),
	}

	registry.RegisterCounterVec("stream_client", "messages_received", m.messagesReceived)
	registry.RegisterCounter("stream_client", "decode_failures", m.decodeFailures)
	registry.RegisterCounter("stream_client", "unknown_types", m.unknownTypes)
	registry.RegisterCounter("stream_client", "reconnect_attempts", m.reconnectAttempts)
	registry.RegisterCounter("stream_client", "connections_total", m.connectionsTotal)
	registry.RegisterGauge("stream_client", "connected", m.connected)
	registry.RegisterCounter("stream_client", "frames_published", m.framesPublished)
	registry.RegisterCounter("stream_client", "pongs_sent", m.pongsSent)

	return m
}
