package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// MetricsNamespace is the namespace for all agent metrics.
	MetricsNamespace = "pinescript_agents"

	// MetricsSubsystem is the subsystem for scheduled run metrics.
	MetricsSubsystem = "runs"
)

// Run results used as the "result" label.
const (
	ResultSuccess  = "success"
	ResultPartial  = "partial"
	ResultCritical = "critical"
)

// Metrics holds the Prometheus metrics recorded for each run.
type Metrics struct {
	registry *prometheus.Registry

	RunsTotal          *prometheus.CounterVec
	RunDurationSeconds *prometheus.HistogramVec
	LastSuccess        prometheus.Gauge
}

// NewMetrics creates the run metrics in a private registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: MetricsNamespace,
				Subsystem: MetricsSubsystem,
				Name:      "total",
				Help:      "Total number of agent runs by result",
			},
			[]string{"result"},
		),
		RunDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: MetricsNamespace,
				Subsystem: MetricsSubsystem,
				Name:      "duration_seconds",
				Help:      "Duration of agent runs in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12), // 0.5s to ~17min
			},
			[]string{"result"},
		),
		LastSuccess: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: MetricsNamespace,
				Subsystem: MetricsSubsystem,
				Name:      "last_success_timestamp_seconds",
				Help:      "Unix time of the last successful run",
			},
		),
	}
}

// Registry exposes the registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) observe(result string, duration time.Duration) {
	m.RunsTotal.WithLabelValues(result).Inc()
	m.RunDurationSeconds.WithLabelValues(result).Observe(duration.Seconds())
	if result == ResultSuccess {
		m.LastSuccess.SetToCurrentTime()
	}
}
