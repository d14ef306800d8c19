// Package prometheus implements metrics.Metrics on top of a
// Prometheus registry.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/carlfranklin/BlobRepositoryDemo/metrics"
)

type repoMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	refreshTotal      *prometheus.CounterVec
	saveBytesTotal    prometheus.Counter
}

// New registers the repository metric families with reg and returns
// the recorder. Passing prometheus.DefaultRegisterer wires them into
// the default registry.
func New(reg prometheus.Registerer) metrics.Metrics {
	return &repoMetrics{
		operationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "blobrepo_operations_total",
				Help: "Total mirror operations by type and status",
			},
			[]string{"operation", "status"},
		),
		operationDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "blobrepo_operation_duration_milliseconds",
				Help:    "Duration of mirror operations in milliseconds",
				Buckets: []float64{10, 50, 100, 500, 1000, 5000, 10000, 30000},
			},
			[]string{"operation"},
		),
		refreshTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "blobrepo_cache_refresh_total",
				Help: "Staleness check outcomes",
			},
			[]string{"outcome"},
		),
		saveBytesTotal: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "blobrepo_snapshot_bytes_total",
				Help: "Snapshot bytes uploaded to the mirror",
			},
		),
	}
}

func (m *repoMetrics) ObserveOperation(op string, d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.operationsTotal.WithLabelValues(op, status).Inc()
	m.operationDuration.WithLabelValues(op).Observe(float64(d.Milliseconds()))
}

func (m *repoMetrics) RecordRefresh(outcome string) {
	m.refreshTotal.WithLabelValues(outcome).Inc()
}

func (m *repoMetrics) RecordSaveBytes(n int64) {
	m.saveBytesTotal.Add(float64(n))
}
