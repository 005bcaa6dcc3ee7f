package services

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func invalidStoreConfig(msg string, args ...any) error {
	return fmt.Errorf("%w: "+msg, append([]any{ErrStoreInvalidConfig}, args...)...)
}

type storeMetrics struct {
	tasksTotal  *prometheus.CounterVec
	taskLatency *prometheus.HistogramVec

	queueDepth prometheus.Gauge
	batchSize  prometheus.Histogram
}

var storeMetricsSingleton = sync.OnceValue(func() *storeMetrics {
	return &storeMetrics{
		tasksTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eventstream",
			Name:      "tasks_total",
			Help:      "Total number of event store tasks processed.",
		}, []string{"type", "result"}),
		taskLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "eventstream",
			Name:      "task_latency_seconds",
			Help:      "Latency distribution for event store backend primitives.",
			Buckets: []float64{
				0.001, 0.002, 0.005,
				0.01, 0.02, 0.05,
				0.1, 0.2, 0.5,
				1, 2, 5,
			},
		}, []string{"type"}),
		queueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "eventstream",
			Name:      "queue_depth",
			Help:      "Current number of queued event store tasks.",
		}),
		batchSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: "eventstream",
			Name:      "batch_size",
			Help:      "Number of tasks drained per batch.",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
	}
})

func getStoreMetrics() *storeMetrics {
	return storeMetricsSingleton()
}
