package services

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func invalidExecutorConfig(msg string, args ...any) error {
	return fmt.Errorf("%w: "+msg, append([]any{ErrExecutorInvalidConfig}, args...)...)
}

type mentionsMetrics struct {
	jobsTotal          *prometheus.CounterVec
	notificationsTotal *prometheus.CounterVec

	analysisLatency prometheus.Histogram
	queueDepth      prometheus.Gauge
}

var mentionsMetricsSingleton = sync.OnceValue(func() *mentionsMetrics {
	return &mentionsMetrics{
		jobsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mentions",
			Name:      "jobs_total",
			Help:      "Total number of mention analysis jobs by outcome.",
		}, []string{"result"}),
		notificationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mentions",
			Name:      "notifications_total",
			Help:      "Total number of new-mention notifications by location.",
		}, []string{"location"}),
		analysisLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: "mentions",
			Name:      "analysis_latency_seconds",
			Help:      "Latency distribution for one revision analysis.",
			Buckets: []float64{
				0.001, 0.005,
				0.01, 0.05,
				0.1, 0.5,
				1, 2, 5,
			},
		}),
		queueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "mentions",
			Name:      "queue_depth",
			Help:      "Current number of queued analysis jobs.",
		}),
	}
})

func getMentionsMetrics() *mentionsMetrics {
	return mentionsMetricsSingleton()
}
