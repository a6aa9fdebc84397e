package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordBillingRun(t *testing.T) {
	before := testutil.ToFloat64(BillingRuns.WithLabelValues(OutcomeSuccess))
	failedBefore := testutil.ToFloat64(BillingRuns.WithLabelValues(OutcomeFailed))

	RecordBillingRun(OutcomeSuccess, 120*time.Millisecond, 3)
	RecordBillingRun(OutcomeFailed, 10*time.Millisecond, 0)

	assert.Equal(t, before+1, testutil.ToFloat64(BillingRuns.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, failedBefore+1, testutil.ToFloat64(BillingRuns.WithLabelValues(OutcomeFailed)))
}

func TestIncrementJobsConsumed(t *testing.T) {
	counter := JobsConsumed.WithLabelValues("billing.generate_invoice", "ack")
	before := testutil.ToFloat64(counter)

	IncrementJobsConsumed("billing.generate_invoice", "ack")

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestRecordHTTPRequestDuration(t *testing.T) {
	RecordHTTPRequestDuration("GET", "/api/v1/projects", 5*time.Millisecond)

	assert.Equal(t, 1, testutil.CollectAndCount(HTTPRequestDuration))
}
