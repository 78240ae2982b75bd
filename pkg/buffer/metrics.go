package buffer

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/DHRUVXJANI/EdgeTune/metric"
)

// historyMetrics holds Prometheus metrics for history operations.
type historyMetrics struct {
	appends   prometheus.Counter
	evictions prometheus.Counter
	snapshots prometheus.Counter

	size        prometheus.Gauge
	utilization prometheus.Gauge
}

// newHistoryMetrics creates and registers history metrics with the provided registry.
func newHistoryMetrics(registry *metric.Registry, prefix string) (*historyMetrics, error) {
	m := &historyMetrics{
		appends: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "edgetune",
			Subsystem:   "history",
			Name:        "appends_total",
			ConstLabels: prometheus.Labels{"stream": prefix},
			Help:        "Total number of records appended",
		}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "edgetune",
			Subsystem:   "history",
			Name:        "evictions_total",
			ConstLabels: prometheus.Labels{"stream": prefix},
			Help:        "Total number of records dropped by FIFO eviction",
		}),
		snapshots: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "edgetune",
			Subsystem:   "history",
			Name:        "snapshots_total",
			ConstLabels: prometheus.Labels{"stream": prefix},
			Help:        "Total number of snapshot reads",
		}),
		size: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "edgetune",
			Subsystem:   "history",
			Name:        "size",
			ConstLabels: prometheus.Labels{"stream": prefix},
			Help:        "Current number of records in the history",
		}),
		utilization: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "edgetune",
			Subsystem:   "history",
			Name:        "utilization",
			ConstLabels: prometheus.Labels{"stream": prefix},
			Help:        "History utilization as a fraction (0.0 to 1.0)",
		}),
	}

	if err := registry.RegisterCounter(prefix, "history_appends", m.appends); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(prefix, "history_evictions", m.evictions); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(prefix, "history_snapshots", m.snapshots); err != nil {
		return nil, err
	}
	if err := registry.RegisterGauge(prefix, "history_size", m.size); err != nil {
		return nil, err
	}
	if err := registry.RegisterGauge(prefix, "history_utilization", m.utilization); err != nil {
		return nil, err
	}

	return m, nil
}

// recordAppend increments the append counter and updates size/utilization.
func (m *historyMetrics) recordAppend(size, capacity int) {
	m.appends.Inc()
	m.size.Set(float64(size))
	m.utilization.Set(float64(size) / float64(capacity))
}

// recordEvict increments the eviction counter.
func (m *historyMetrics) recordEvict() {
	m.evictions.Inc()
}

// recordSnapshot increments the snapshot counter.
func (m *historyMetrics) recordSnapshot() {
	m.snapshots.Inc()
}

// updateSize sets the current size and utilization.
func (m *historyMetrics) updateSize(size, capacity int) {
	m.size.Set(float64(size))
	m.utilization.Set(float64(size) / float64(capacity))
}
