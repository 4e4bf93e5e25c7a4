package telemetry

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// UpstreamRequests counts calls to external providers by outcome kind.
	UpstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "taller_finder",
			Name:      "upstream_requests_total",
			Help:      "Calls made to external providers, by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	// UpstreamDuration tracks provider latency.
	UpstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "taller_finder",
			Name:      "upstream_request_duration_seconds",
			Help:      "Latency of calls to external providers",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	// SearchResults observes how many workshops a search produced.
	SearchResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "taller_finder",
			Name:      "search_results",
			Help:      "Number of places returned per proximity search",
			Buckets:   []float64{0, 1, 5, 10, 20, 40, 60},
		},
	)

	// HTTPRequests counts served requests.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "taller_finder",
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by method and status code",
		},
		[]string{"method", "status"},
	)

	once sync.Once
)

// InitMetrics registers all collectors with the default registry. Safe to call more than once.
func InitMetrics() {
	once.Do(func() {
		prometheus.DefaultRegisterer.Register(UpstreamRequests)
		prometheus.DefaultRegisterer.Register(UpstreamDuration)
		prometheus.DefaultRegisterer.Register(SearchResults)
		prometheus.DefaultRegisterer.Register(HTTPRequests)
	})
}

// ObserveUpstream records one provider call.
func ObserveUpstream(provider, outcome string, started time.Time) {
	UpstreamRequests.WithLabelValues(provider, outcome).Inc()
	UpstreamDuration.WithLabelValues(provider).Observe(time.Since(started).Seconds())
}

// ObserveHTTP records one served request.
func ObserveHTTP(method string, status int) {
	HTTPRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}
