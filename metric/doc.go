// Package metric provides Prometheus metrics registration and serving for
// the EdgeTune client.
//
// # Overview
//
// Registry wraps a private prometheus.Registry with named registration and
// duplicate detection: every metric is keyed by (component, name) so two
// components cannot silently shadow each other's collectors. Core client
// metrics (status, health, errors) are created with the registry; component
// metrics (stream counters, history gauges) are registered by their owners.
//
// # Usage
//
//	registry := metric.NewRegistry()
//
//	counter := prometheus.NewCounter(prometheus.CounterOpts{...})
//	if err := registry.RegisterCounter("stream", "frames_published", counter); err != nil {
//	    return err
//	}
//
// Serving:
//
//	server := metric.NewServer(9090, "/metrics", registry)
//	go server.Start()
//	defer server.Stop()
package metric
