package buffer

import (
	"github.com/DHRUVXJANI/EdgeTune/metric"
)

// Option configures history behavior using the functional options pattern.
type Option[T any] func(*historyOptions[T])

// historyOptions holds internal configuration for history instances.
// Stats are ALWAYS collected - they are not optional.
// Metrics are optional and exposed via WithMetrics().
type historyOptions[T any] struct {
	evictCallback EvictCallback[T]

	// metricsReg is optional - if provided, history stats are also exposed as Prometheus metrics
	metricsReg *metric.Registry

	// metricsPrefix is used as the component label for Prometheus metrics
	metricsPrefix string
}

// EvictCallback is called with each record dropped by FIFO eviction.
type EvictCallback[T any] func(item T)

// WithMetrics enables Prometheus metrics export for history statistics.
// If registry is nil or prefix is empty, this option is ignored.
func WithMetrics[T any](registry *metric.Registry, prefix string) Option[T] {
	return func(opts *historyOptions[T]) {
		if registry != nil && prefix != "" {
			opts.metricsReg = registry
			opts.metricsPrefix = prefix
		}
	}
}

// WithEvictCallback sets a callback invoked for each evicted record.
func WithEvictCallback[T any](callback EvictCallback[T]) Option[T] {
	return func(opts *historyOptions[T]) {
		opts.evictCallback = callback
	}
}

// applyOptions applies functional options to create final configuration.
func applyOptions[T any](options ...Option[T]) *historyOptions[T] {
	opts := &historyOptions[T]{}

	for _, opt := range options {
		if opt != nil {
			opt(opts)
		}
	}

	return opts
}
