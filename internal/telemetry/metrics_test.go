package telemetry

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestInitMetrics_Idempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		InitMetrics()
		InitMetrics()
	})
}

func TestObserveUpstream(t *testing.T) {
	before := testutil.ToFloat64(UpstreamRequests.WithLabelValues("places", "ok"))
	ObserveUpstream("places", "ok", time.Now().Add(-50*time.Millisecond))
	after := testutil.ToFloat64(UpstreamRequests.WithLabelValues("places", "ok"))
	assert.Equal(t, before+1, after)
}

func TestObserveHTTP(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequests.WithLabelValues("GET", "400"))
	ObserveHTTP("GET", 400)
	assert.Equal(t, before+1, testutil.ToFloat64(HTTPRequests.WithLabelValues("GET", "400")))
}
