package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "internal_ops"

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"method", "path"},
	)

	BillingRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "billing_runs_total",
			Help:      "Billing runs by outcome",
		},
		[]string{"outcome"}, // success, failed, skipped
	)

	BillingRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "billing_run_duration_seconds",
			Help:      "Duration of one billing run in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		},
	)

	InvoiceLineItems = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "invoice_line_items",
			Help:      "Line items per generated invoice",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		},
	)

	JobsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_consumed_total",
			Help:      "Queue messages handled by result",
		},
		[]string{"routing_key", "result"}, // ack, requeue, dead_letter
	)
)

func RecordHTTPRequestDuration(method, path string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordBillingRun records one finished run. Line items are only observed for
// successful runs.
func RecordBillingRun(outcome string, duration time.Duration, lineItems int) {
	BillingRuns.WithLabelValues(outcome).Inc()
	BillingRunDuration.Observe(duration.Seconds())
	if outcome == OutcomeSuccess {
		InvoiceLineItems.Observe(float64(lineItems))
	}
}

func IncrementJobsConsumed(routingKey, result string) {
	JobsConsumed.WithLabelValues(routingKey, result).Inc()
}

const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
)
