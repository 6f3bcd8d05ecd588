// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "vidfetch"

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route pattern, method and status class",
	}, []string{"route", "method", "status"})

	extractorRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "extractor_runs_total",
		Help:      "Extractor subprocess invocations by operation and outcome",
	}, []string{"op", "outcome"}) // outcome=success|failure|timeout

	extractorDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "extractor_duration_seconds",
		Help:      "Extractor subprocess wall time",
		Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 900},
	}, []string{"op"})

	downloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "downloads_total",
		Help:      "Download orchestrations by outcome",
	}, []string{"outcome"})

	retentionRemoved = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "retention_files_removed_total",
		Help:      "Files deleted by the retention sweeper",
	})

	retentionErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "retention_errors_total",
		Help:      "Stat or delete failures seen by the retention sweeper",
	})

	rateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ratelimit_rejections_total",
		Help:      "Requests rejected by an admission limiter",
	}, []string{"limiter"})

	wsClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "websocket_clients",
		Help:      "Connected websocket clients",
	})
)

func ObserveHTTPRequest(route, method, status string) {
	httpRequests.WithLabelValues(route, method, status).Inc()
}

// ObserveExtractorRun records one subprocess invocation.
func ObserveExtractorRun(op, outcome string, elapsed time.Duration) {
	extractorRuns.WithLabelValues(op, outcome).Inc()
	extractorDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

func IncDownload(outcome string) {
	downloads.WithLabelValues(outcome).Inc()
}

func AddRetentionRemoved(n int) {
	retentionRemoved.Add(float64(n))
}

func IncRetentionError() {
	retentionErrors.Inc()
}

func IncRateLimited(limiter string) {
	rateLimited.WithLabelValues(limiter).Inc()
}

func SetWebsocketClients(n int) {
	wsClients.Set(float64(n))
}
