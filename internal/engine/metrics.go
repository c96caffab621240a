package engine

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics содержит собственные метрики экспортера.
type Metrics struct {
	RefreshTotal    *prometheus.CounterVec
	RefreshDuration prometheus.Histogram
	LastRefresh     prometheus.Gauge
}

// NewMetrics создаёт незарегистрированный набор метрик.
func NewMetrics() *Metrics {
	return &Metrics{
		RefreshTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "remo_exporter_refresh_total",
				Help: "Total number of upstream refresh cycles by result",
			},
			[]string{"result"},
		),
		RefreshDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "remo_exporter_refresh_duration_seconds",
				Help:    "Duration of upstream refresh cycles in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
		),
		LastRefresh: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "remo_exporter_last_refresh_timestamp_seconds",
				Help: "Unix time of the last successful refresh cycle",
			},
		),
	}
}

// Register регистрирует метрики в реестре.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.RefreshTotal, m.RefreshDuration, m.LastRefresh} {
		if err := reg.Register(c); err != nil {
			return fmt.Errorf("failed to register exporter metrics: %w", err)
		}
	}
	return nil
}

func (m *Metrics) observe(start time.Time, elapsed time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.RefreshTotal.WithLabelValues(result).Inc()
	m.RefreshDuration.Observe(elapsed.Seconds())
	if err == nil {
		m.LastRefresh.Set(float64(start.Unix()))
	}
}
