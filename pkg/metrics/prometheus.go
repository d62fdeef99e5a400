package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	queriesTotal  *prometheus.CounterVec
	reasonerCalls *prometheus.CounterVec
	anomaliesSeen *prometheus.CounterVec
	latency       *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		queriesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finsight_queries_total",
				Help: "Natural-language queries by generation method and outcome",
			},
			[]string{"method", "result"},
		),
		reasonerCalls: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finsight_reasoner_calls_total",
				Help: "Remote reasoner calls by outcome",
			},
			[]string{"outcome"},
		),
		anomaliesSeen: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finsight_anomalies_total",
				Help: "Anomalies detected by severity",
			},
			[]string{"severity"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finsight_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordQuery records a processed natural-language query.
func (r *Recorder) RecordQuery(method string, success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	r.queriesTotal.WithLabelValues(method, result).Inc()
}

// RecordReasonerCall records a remote reasoner call outcome.
func (r *Recorder) RecordReasonerCall(outcome string) {
	r.reasonerCalls.WithLabelValues(outcome).Inc()
}

// RecordAnomalies records detected anomalies for a severity grade.
func (r *Recorder) RecordAnomalies(severity string, n int) {
	r.anomaliesSeen.WithLabelValues(severity).Add(float64(n))
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
