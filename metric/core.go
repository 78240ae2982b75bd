package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains core client-level metrics shared by all components.
// Component-specific metrics (stream counters, history gauges) are
// registered separately by their owners.
type Metrics struct {
	ClientStatus      *prometheus.GaugeVec
	HealthCheckStatus *prometheus.GaugeVec
	ErrorsTotal       *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all core metrics
func NewMetrics() *Metrics {
	return &Metrics{
		ClientStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "edgetune",
				Subsystem: "client",
				Name:      "status",
				Help:      "Client status (0=idle, 1=connecting, 2=open, 3=closed)",
			},
			[]string{"component"},
		),

		HealthCheckStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "edgetune",
				Subsystem: "client",
				Name:      "health_check_status",
				Help:      "Health check status (1=healthy, 0.5=degraded, 0=unhealthy)",
			},
			[]string{"component"},
		),

		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "edgetune",
				Subsystem: "client",
				Name:      "errors_total",
				Help:      "Total errors encountered, by component and type",
			},
			[]string{"component", "type"},
		),
	}
}

// SetClientStatus records a client state transition for a component.
func (m *Metrics) SetClientStatus(component string, status float64) {
	m.ClientStatus.WithLabelValues(component).Set(status)
}

// SetHealthStatus records a health check result for a component.
func (m *Metrics) SetHealthStatus(component string, healthy float64) {
	m.HealthCheckStatus.WithLabelValues(component).Set(healthy)
}

// RecordError increments the error counter for a component and error type.
func (m *Metrics) RecordError(component, errorType string) {
	m.ErrorsTotal.WithLabelValues(component, errorType).Inc()
}
